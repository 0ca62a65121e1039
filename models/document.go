package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRole distinguishes the two document kinds the pipeline consumes.
type DocumentRole string

const (
	RoleRegulation DocumentRole = "regulation"
	RoleProposal   DocumentRole = "proposal"
)

// Document represents an uploaded source document (regulation text, proposal
// text, or a previously extracted corpus JSON file).
type Document struct {
	ID          uuid.UUID    `json:"id"`
	Role        DocumentRole `json:"role"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	Size        int64        `json:"size"`
	StoragePath string       `json:"storage_path"`
	CreatedAt   time.Time    `json:"created_at"`
}
