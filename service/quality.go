package service

import (
	"fmt"
	"math"

	"arccs-backend/models"
)

// Field tiers for completeness scoring. Critical fields are worth 10 points
// each, important fields 6, supplementary fields 5, for a 40/30/30 split of
// the 100-point scale.
var (
	criticalFields = []string{
		"regulation_id",
		"regulation_name",
		"regulation_type",
		"description",
	}
	importantFields = []string{
		"jurisdiction",
		"domain",
		"scope",
		"requirements",
		"restrictions",
	}
	supplementaryFields = []string{
		"rights_granted",
		"exceptions",
		"compliance_requirements",
		"enforcement",
		"dates",
		"keywords",
	}
)

const (
	criticalPoints      = 10.0
	importantPoints     = 6.0
	supplementaryPoints = 5.0

	keepThreshold   = 70.0
	reviewThreshold = 40.0

	nullRatioDepthLimit = 5
)

// isBlank reports whether a value is one of the blank sentinels the oracle
// emits for unknown fields.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "null" || t == "N/A" || t == "Unknown"
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// countNonBlank counts the immediate sub-fields of a mapping that carry a
// real value.
func countNonBlank(m map[string]any) int {
	n := 0
	for _, v := range m {
		if !isBlank(v) {
			n++
		}
	}
	return n
}

// ScoreBasic computes the lenient completeness score: mapping-valued fields
// earn points proportional to their populated sub-fields, and supplementary
// fields earn full points on mere presence.
func ScoreBasic(record models.RegulationRecord) models.QualityAssessment {
	score := 0.0
	var issues, strengths []string

	for _, field := range criticalFields {
		value, present := record[field]
		if !present || isBlank(value) {
			issues = append(issues, "missing: "+field)
			continue
		}
		if m, ok := value.(map[string]any); ok {
			score += criticalPoints * float64(countNonBlank(m)) / float64(max(len(m), 1))
		} else {
			score += criticalPoints
		}
		strengths = append(strengths, "has "+field)
	}

	for _, field := range importantFields {
		value, present := record[field]
		if !present || isBlank(value) {
			issues = append(issues, "missing: "+field)
			continue
		}
		switch t := value.(type) {
		case map[string]any:
			score += importantPoints * float64(countNonBlank(t)) / float64(max(len(t), 1))
		case []any:
			score += importantPoints
		default:
			score += importantPoints
		}
	}

	for _, field := range supplementaryFields {
		if value, present := record[field]; present && !isBlank(value) {
			score += supplementaryPoints
		}
	}

	return assess(score, 0, issues, strengths)
}

// ScoreStrict computes the penalized completeness score: critical mappings
// are all-or-nothing, supplementary mappings need at least two populated
// sub-fields for full points, and an overall null-ratio penalty punishes
// records that are mostly empty template.
func ScoreStrict(record models.RegulationRecord) models.QualityAssessment {
	score := 0.0
	var issues, strengths []string

	for _, field := range criticalFields {
		value, present := record[field]
		if !present || isBlank(value) {
			issues = append(issues, "missing critical field: "+field)
			continue
		}
		if m, ok := value.(map[string]any); ok {
			if countNonBlank(m) == 0 {
				issues = append(issues, field+" is empty")
				continue
			}
		}
		score += criticalPoints
		strengths = append(strengths, field+" is present")
	}

	for _, field := range importantFields {
		value, present := record[field]
		if !present || isBlank(value) {
			issues = append(issues, "missing important field: "+field)
			continue
		}
		switch t := value.(type) {
		case map[string]any:
			nonBlank := countNonBlank(t)
			total := len(t)
			score += importantPoints * float64(nonBlank) / float64(total)
			pct := nonBlank * 100 / total
			if nonBlank*2 >= total {
				strengths = append(strengths, fmt.Sprintf("%s is %d%% complete", field, pct))
			} else {
				issues = append(issues, fmt.Sprintf("%s is only %d%% complete", field, pct))
			}
		case []any:
			score += importantPoints
			strengths = append(strengths, fmt.Sprintf("%s has %d items", field, len(t)))
		default:
			score += importantPoints
		}
	}

	for _, field := range supplementaryFields {
		value, present := record[field]
		if !present || isBlank(value) {
			continue
		}
		switch t := value.(type) {
		case map[string]any:
			// At least two populated sub-fields for full points.
			score += supplementaryPoints * math.Min(1, float64(countNonBlank(t))/2)
		default:
			score += supplementaryPoints
		}
	}

	nullRatio := blankLeafRatio(record)
	switch {
	case nullRatio > 0.7:
		score = math.Max(0, score-20)
		issues = append(issues, fmt.Sprintf("too many null values (%d%% empty)", int(nullRatio*100)))
	case nullRatio > 0.5:
		score = math.Max(0, score-10)
		issues = append(issues, fmt.Sprintf("many null values (%d%% empty)", int(nullRatio*100)))
	}

	return assess(score, nullRatio, issues, strengths)
}

// assess rounds the score, clamps it to [0,100] and picks the
// recommendation from the 70/40 thresholds.
func assess(score, nullRatio float64, issues, strengths []string) models.QualityAssessment {
	score = math.Round(math.Min(100, math.Max(0, score))*10) / 10

	recommendation := models.RecommendationDiscard
	switch {
	case score >= keepThreshold:
		recommendation = models.RecommendationKeep
	case score >= reviewThreshold:
		recommendation = models.RecommendationReview
	}

	return models.QualityAssessment{
		Score:          score,
		MaxScore:       100,
		NullRatio:      math.Round(nullRatio*1000) / 1000,
		Recommendation: recommendation,
		Issues:         issues,
		Strengths:      strengths,
	}
}

// blankLeafRatio walks the record and returns the fraction of leaf values
// that are blank, recursing at most nullRatioDepthLimit levels down. A
// record with no leaves at all counts as fully blank.
func blankLeafRatio(record models.RegulationRecord) float64 {
	blank, total := countBlankLeaves(map[string]any(record), 0)
	if total == 0 {
		return 1
	}
	return float64(blank) / float64(total)
}

func countBlankLeaves(v any, depth int) (blank, total int) {
	if depth > nullRatioDepthLimit {
		return 0, 0
	}

	switch t := v.(type) {
	case map[string]any:
		for _, item := range t {
			switch item.(type) {
			case map[string]any, []any:
				if isBlank(item) {
					blank++
					total++
					continue
				}
				b, n := countBlankLeaves(item, depth+1)
				blank += b
				total += n
			default:
				if isBlank(item) {
					blank++
				}
				total++
			}
		}
	case []any:
		for _, item := range t {
			switch item.(type) {
			case map[string]any, []any:
				b, n := countBlankLeaves(item, depth+1)
				blank += b
				total += n
			default:
				if isBlank(item) {
					blank++
				}
				total++
			}
		}
	}

	return blank, total
}

// FilterByQuality scores every record with the strict strategy, attaches
// the assessment to the record, and buckets records into kept (score >= 70),
// review (score >= minScore) and discarded. Malformed records are not
// errors; they score low and land in discarded.
func FilterByQuality(records []models.RegulationRecord, minScore float64) models.FilterResult {
	result := models.FilterResult{
		Kept:      make([]models.RegulationRecord, 0),
		Review:    make([]models.RegulationRecord, 0),
		Discarded: make([]models.RegulationRecord, 0),
	}

	scoreSum := 0.0
	for _, record := range records {
		quality := ScoreStrict(record)
		record[models.KeyQualityScore] = quality
		scoreSum += quality.Score

		switch {
		case quality.Score >= keepThreshold:
			result.Kept = append(result.Kept, record)
		case quality.Score >= minScore:
			result.Review = append(result.Review, record)
		default:
			result.Discarded = append(result.Discarded, record)
		}
	}

	result.Statistics = models.FilterStatistics{
		Total:          len(records),
		KeptCount:      len(result.Kept),
		ReviewCount:    len(result.Review),
		DiscardedCount: len(result.Discarded),
	}
	if len(records) > 0 {
		result.Statistics.AverageScore = math.Round(scoreSum/float64(len(records))*10) / 10
	}

	return result
}
