package models

import (
	"database/sql/driver"
	"encoding/json"
)

// ComplianceStatus is the four-outcome verdict for one regulation against
// one proposal document.
type ComplianceStatus string

const (
	StatusCompliant        ComplianceStatus = "COMPLIANT"
	StatusNonCompliant     ComplianceStatus = "NON_COMPLIANT"
	StatusInsufficientInfo ComplianceStatus = "INSUFFICIENT_INFORMATION"
	StatusHumanRequired    ComplianceStatus = "HUMAN_REQUIRED"
)

// ComplianceResult is the verdict for one (regulation, proposal) pair.
// The status field is never taken from the oracle's own verdict string; it
// is re-derived from ContradictionFound, HasRelevantInformation and
// ConfidenceScore after the call returns.
type ComplianceResult struct {
	RegulationID           string           `json:"regulation_id"`
	RegulationName         string           `json:"regulation_name"`
	ContradictionFound     bool             `json:"contradiction_found"`
	HasRelevantInformation bool             `json:"has_relevant_information"`
	ComplianceStatus       ComplianceStatus `json:"compliance_status"`
	MissingInformation     string           `json:"missing_information,omitempty"`
	ContradictionDetails   string           `json:"contradiction_details,omitempty"`
	Evidence               string           `json:"evidence,omitempty"`
	ConfidenceScore        float64          `json:"confidence_score"`
	Explanation            string           `json:"explanation,omitempty"`
	Error                  string           `json:"error,omitempty"`
}

// OverallStatus is the tri-level roll-up of a compliance report.
type OverallStatus string

const (
	OverallNonCompliant   OverallStatus = "NON_COMPLIANT"
	OverallReviewRequired OverallStatus = "REVIEW_REQUIRED"
	OverallCompliant      OverallStatus = "COMPLIANT"
)

// ReportSummary tallies verdicts per status. ComplianceRate only counts
// definitive results: compliant / (compliant + non_compliant) * 100, and is
// 0 when there are no definitive results at all.
type ReportSummary struct {
	Compliant        int     `json:"compliant"`
	NonCompliant     int     `json:"non_compliant"`
	InsufficientInfo int     `json:"insufficient_info"`
	HumanRequired    int     `json:"human_required"`
	Total            int     `json:"total"`
	ComplianceRate   float64 `json:"compliance_rate"`
}

// ComplianceReport is a pure reduction over a list of results. It carries no
// identity of its own and can be regenerated from the result list at any
// time.
type ComplianceReport struct {
	OverallStatus   OverallStatus      `json:"overall_status"`
	Summary         ReportSummary      `json:"summary"`
	Violations      []ComplianceResult `json:"violations"`
	NeedsReview     []ComplianceResult `json:"needs_review"`
	DetailedResults []ComplianceResult `json:"detailed_results"`
}

// Value implements driver.Valuer for JSONB
func (r ComplianceReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *ComplianceReport) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, r)
}
