package models

// Recommendation is the filtering verdict attached to a quality assessment.
type Recommendation string

const (
	RecommendationKeep    Recommendation = "KEEP"
	RecommendationReview  Recommendation = "REVIEW"
	RecommendationDiscard Recommendation = "DISCARD"
)

// QualityAssessment is a deterministic completeness score for one extracted
// regulation record. Score is in [0,100]; NullRatio is the fraction of leaf
// values that are blank, only populated by the strict scoring strategy.
type QualityAssessment struct {
	Score          float64        `json:"score"`
	MaxScore       float64        `json:"max_score"`
	NullRatio      float64        `json:"null_ratio"`
	Recommendation Recommendation `json:"recommendation"`
	Issues         []string       `json:"issues"`
	Strengths      []string       `json:"strengths"`
}

// FilterResult buckets a set of records by their quality recommendation.
type FilterResult struct {
	Kept       []RegulationRecord `json:"kept"`
	Review     []RegulationRecord `json:"review"`
	Discarded  []RegulationRecord `json:"discarded"`
	Statistics FilterStatistics   `json:"statistics"`
}

// Analyzable returns the records that proceed through the rest of the
// pipeline: the kept bucket followed by the review bucket. Review-scored
// records stay flagged but are still deduplicated and checked.
func (r FilterResult) Analyzable() []RegulationRecord {
	working := make([]RegulationRecord, 0, len(r.Kept)+len(r.Review))
	working = append(working, r.Kept...)
	working = append(working, r.Review...)
	return working
}

// FilterStatistics summarizes one filtering pass.
type FilterStatistics struct {
	Total          int     `json:"total"`
	KeptCount      int     `json:"kept_count"`
	ReviewCount    int     `json:"review_count"`
	DiscardedCount int     `json:"discarded_count"`
	AverageScore   float64 `json:"avg_score"`
}
