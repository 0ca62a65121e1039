package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceRun is one saved compliance check: which corpus and proposal
// were compared, which model judged them, and the resulting report.
type ComplianceRun struct {
	ID               uuid.UUID        `json:"id"`
	CorpusID         *uuid.UUID       `json:"corpus_id,omitempty"`
	RegulationSource string           `json:"regulation_file"`
	ProposalSource   string           `json:"proposal_file"`
	Model            string           `json:"model"`
	Report           ComplianceReport `json:"report"`
	CreatedAt        time.Time        `json:"created_at"`
}
