package models

import "time"

// FailMode controls how the classifier reports a regulation whose oracle
// call failed. FailOpen preserves the original behavior (COMPLIANT with the
// error noted); FailClosed routes failures to HUMAN_REQUIRED so transport
// problems cannot masquerade as compliance.
type FailMode string

const (
	FailOpen   FailMode = "fail_open"
	FailClosed FailMode = "fail_closed"
)

// Settings is the runtime configuration surface consumed by the pipeline.
type Settings struct {
	Model              string    `json:"model"`
	QualityThreshold   float64   `json:"quality_threshold"`
	MaxRegulations     int       `json:"max_regulations_to_check"`
	DedupBatchSize     int       `json:"dedup_batch_size"`
	AutoSaveReports    bool      `json:"auto_save_reports"`
	ClassifierFailMode FailMode  `json:"classifier_fail_mode"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSettings returns the configuration used before any operator edits.
func DefaultSettings() Settings {
	return Settings{
		Model:              "gemini-2.5-pro",
		QualityThreshold:   40,
		MaxRegulations:     10,
		DedupBatchSize:     50,
		AutoSaveReports:    true,
		ClassifierFailMode: FailOpen,
	}
}
