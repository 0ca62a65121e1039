package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeletionLog is the list of collapsed duplicates for a corpus, stored as a
// single JSONB column.
type DeletionLog []DeletionEntry

// Value implements driver.Valuer for JSONB
func (l DeletionLog) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *DeletionLog) Scan(value interface{}) error {
	if value == nil {
		*l = make(DeletionLog, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(DeletionLog, 0)
		return nil
	}

	if len(bytes) == 0 {
		*l = make(DeletionLog, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// RegulationCorpus is a cleaned, quality-filtered, deduplicated set of
// regulation records extracted from one source document, plus the records
// that were routed to manual review. A corpus produced by one extraction run
// is the input of later compliance runs.
type RegulationCorpus struct {
	ID                uuid.UUID      `json:"id"`
	DocumentID        *uuid.UUID     `json:"document_id,omitempty"`
	SourceFilename    string         `json:"source_filename"`
	TotalSections     int            `json:"total_sections"`
	SectionsWithRegs  int            `json:"sections_with_regulations"`
	ExtractedCount    int            `json:"total_regulations_extracted"`
	Regulations       RegulationList `json:"regulations"`
	ReviewRegulations RegulationList `json:"regulations_for_review"`
	DeletionLog       DeletionLog    `json:"deletion_log"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CorpusFile is the JSON file shape written by cmd/extract and accepted back
// by the corpus loader, so an extraction run's output can seed a later
// compliance run.
type CorpusFile struct {
	SourceFilename    string         `json:"source_file"`
	TotalSections     int            `json:"total_sections"`
	SectionsWithRegs  int            `json:"sections_with_regulations"`
	ExtractedCount    int            `json:"total_regulations_extracted"`
	Regulations       RegulationList `json:"cleaned_regulations"`
	ReviewRegulations RegulationList `json:"regulations_for_review"`
	DeletionLog       DeletionLog    `json:"deletion_log"`
}
