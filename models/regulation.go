package models

import (
	"database/sql/driver"
	"encoding/json"
)

// RegulationRecord is one regulatory provision as extracted by the oracle.
// The extraction prompt asks for a deeply nested template (identity,
// jurisdiction, domain, scope, requirements, restrictions, enforcement and
// so on) but any field may legitimately be absent or null, so the record is
// kept as a free-form mapping rather than a rigid struct. Two keys are
// attached after extraction: "source_section" (provenance) and
// "_quality_score" (see QualityAssessment).
type RegulationRecord map[string]any

// Keys attached to a record after extraction.
const (
	KeySourceSection = "source_section"
	KeyQualityScore  = "_quality_score"
)

// Value implements driver.Valuer for JSONB
func (r RegulationRecord) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *RegulationRecord) Scan(value interface{}) error {
	if value == nil {
		*r = make(RegulationRecord)
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
		*r = make(RegulationRecord)
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// RegulationList is a list of records stored as a single JSONB column.
type RegulationList []RegulationRecord

// Value implements driver.Valuer for JSONB
func (l RegulationList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *RegulationList) Scan(value interface{}) error {
	if value == nil {
		*l = make(RegulationList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(RegulationList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*l = make(RegulationList, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// stringField returns a top-level string field, or fallback when the field
// is missing, null or not a string.
func (r RegulationRecord) stringField(key, fallback string) string {
	if v, ok := r[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// ID returns the official regulation identifier (e.g. "GDPR Article 5").
func (r RegulationRecord) ID() string {
	return r.stringField("regulation_id", "N/A")
}

// Name returns the full official regulation name.
func (r RegulationRecord) Name() string {
	return r.stringField("regulation_name", "Unknown")
}

// Type returns the regulation type (law, directive, article, ...).
func (r RegulationRecord) Type() string {
	return r.stringField("regulation_type", "N/A")
}

// SourceSection returns the title of the section the record came from.
func (r RegulationRecord) SourceSection() string {
	return r.stringField(KeySourceSection, "N/A")
}

// BriefSummary returns the description's brief_summary when the description
// is the nested template shape, or the description rendered as a string
// otherwise, truncated to max characters.
func (r RegulationRecord) BriefSummary(max int) string {
	var brief string
	switch desc := r["description"].(type) {
	case map[string]any:
		if s, ok := desc["brief_summary"].(string); ok {
			brief = s
		}
	case string:
		brief = desc
	}
	if brief == "" {
		brief = "N/A"
	}
	return truncate(brief, max)
}

// RequirementsSummary renders the requirements group as compact JSON,
// truncated to max characters.
func (r RegulationRecord) RequirementsSummary(max int) string {
	reqs, ok := r["requirements"]
	if !ok || reqs == nil {
		return "{}"
	}
	data, err := json.Marshal(reqs)
	if err != nil {
		return "{}"
	}
	return truncate(string(data), max)
}

// PrimaryDomain returns domain.primary_domain when present.
func (r RegulationRecord) PrimaryDomain() string {
	if domain, ok := r["domain"].(map[string]any); ok {
		if s, ok := domain["primary_domain"].(string); ok {
			return s
		}
	}
	return ""
}

// Keywords returns the keywords list when present.
func (r RegulationRecord) Keywords() []string {
	raw, ok := r["keywords"].([]any)
	if !ok {
		return nil
	}
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keywords = append(keywords, s)
		}
	}
	return keywords
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
