package models

// DuplicatePair is one provisional edge in the duplicate graph over a
// regulation list. Indices are absolute positions in the full original list,
// never batch-local positions.
type DuplicatePair struct {
	DeleteIndex  int    `json:"delete_index"`
	KeepIndex    int    `json:"keep_index"`
	RegulationID string `json:"regulation_id"`
	Reason       string `json:"reason"`
}

// RegulationRef is a compact reference to a record in a deletion log entry.
type RegulationRef struct {
	Index         int    `json:"index"`
	RegulationID  string `json:"regulation_id"`
	Name          string `json:"regulation_name"`
	SourceSection string `json:"source_section"`
}

// DeletionEntry records one collapsed duplicate: which record was removed,
// which survived, and the oracle's stated reason.
type DeletionEntry struct {
	Deleted RegulationRef `json:"deleted_regulation"`
	Kept    RegulationRef `json:"kept_regulation"`
	Reason  string        `json:"reason"`
}

// DedupSummary summarizes one deduplication run.
// CleanedCount + DuplicatesRemoved always equals OriginalCount.
type DedupSummary struct {
	OriginalCount     int `json:"original_count"`
	CleanedCount      int `json:"cleaned_count"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}
