package service

import (
	"testing"

	"arccs-backend/models"
)

// fullRecord builds a record with every schema field populated.
func fullRecord() models.RegulationRecord {
	return models.RegulationRecord{
		"regulation_id":   "GDPR Article 8",
		"regulation_name": "Conditions applicable to child's consent",
		"regulation_type": "article",
		"description": map[string]any{
			"brief_summary":        "Sets the minimum age for valid consent.",
			"detailed_explanation": "Processing of a child's data is lawful where the child is at least 16 years old.",
			"purpose":              "Protect minors online.",
		},
		"jurisdiction": map[string]any{
			"geographic_scope":           "EU",
			"applicable_regions":         []any{"EU member states"},
			"cross_border_applicability": true,
		},
		"domain": map[string]any{
			"primary_domain":   "Data Protection",
			"sub_domains":      []any{"Consent"},
			"industry_sectors": []any{"Online services"},
		},
		"scope": map[string]any{
			"what_it_covers":         []any{"Information society services offered to children"},
			"who_it_applies_to":      map[string]any{"target_entities": []any{"Controllers"}},
			"what_it_does_not_cover": []any{"Offline services"},
		},
		"requirements": map[string]any{
			"mandatory_obligations": []any{"Verify parental consent below age 16"},
			"timeline_requirements": []any{"Before processing begins"},
		},
		"restrictions": map[string]any{
			"general_restrictions": []any{"No processing without valid consent"},
			"data_restrictions":    []any{"Children's data"},
		},
		"rights_granted": map[string]any{
			"individual_rights":      []any{"Withdraw consent"},
			"how_to_exercise_rights": []any{"Contact the controller"},
		},
		"exceptions": map[string]any{
			"general_exceptions":     []any{"Preventive or counselling services"},
			"size_based_exceptions":  []any{},
			"conditional_exemptions": []any{"Member state law may lower the age to 13"},
		},
		"compliance_requirements": map[string]any{
			"technical_measures":      []any{"Age verification"},
			"organizational_measures": []any{"Consent records"},
		},
		"enforcement": map[string]any{
			"regulatory_authority":   "National supervisory authorities",
			"enforcement_mechanisms": []any{"Administrative fines"},
		},
		"dates": map[string]any{
			"effective_date":      "2018-05-25",
			"compliance_deadline": "2018-05-25",
		},
		"keywords": []any{"consent", "children", "age"},
	}
}

func TestScoreStrictFullRecordKeeps(t *testing.T) {
	q := ScoreStrict(fullRecord())
	if q.Score < 70 {
		t.Errorf("fully populated record scored %.1f, want >= 70", q.Score)
	}
	if q.Recommendation != models.RecommendationKeep {
		t.Errorf("recommendation = %s, want KEEP", q.Recommendation)
	}
	if q.Score > 100 || q.Score < 0 {
		t.Errorf("score %.1f out of [0,100]", q.Score)
	}
}

func TestScoreBasicFullRecordKeeps(t *testing.T) {
	q := ScoreBasic(fullRecord())
	if q.Score < 70 {
		t.Errorf("fully populated record scored %.1f, want >= 70", q.Score)
	}
	if q.Recommendation != models.RecommendationKeep {
		t.Errorf("recommendation = %s, want KEEP", q.Recommendation)
	}
}

func TestScoreEmptyRecordDiscards(t *testing.T) {
	for name, score := range map[string]func(models.RegulationRecord) models.QualityAssessment{
		"basic":  ScoreBasic,
		"strict": ScoreStrict,
	} {
		q := score(models.RegulationRecord{})
		if q.Score != 0 {
			t.Errorf("%s: empty record scored %.1f, want 0", name, q.Score)
		}
		if q.Recommendation != models.RecommendationDiscard {
			t.Errorf("%s: recommendation = %s, want DISCARD", name, q.Recommendation)
		}
	}
}

func TestScoreMonotonicAsFieldsFill(t *testing.T) {
	// Filling a blank field never lowers the score.
	record := models.RegulationRecord{
		"regulation_id": "GDPR Article 8",
	}
	fill := []struct {
		key   string
		value any
	}{
		{"regulation_name", "Conditions applicable to child's consent"},
		{"regulation_type", "article"},
		{"description", map[string]any{"brief_summary": "Minimum age for consent."}},
		{"jurisdiction", map[string]any{"geographic_scope": "EU"}},
		{"requirements", map[string]any{"mandatory_obligations": []any{"Verify age"}}},
		{"keywords", []any{"consent"}},
	}

	for name, score := range map[string]func(models.RegulationRecord) models.QualityAssessment{
		"basic":  ScoreBasic,
		"strict": ScoreStrict,
	} {
		r := models.RegulationRecord{}
		for k, v := range record {
			r[k] = v
		}
		prev := score(r).Score
		for _, f := range fill {
			r[f.key] = f.value
			cur := score(r).Score
			if cur < prev {
				t.Errorf("%s: score dropped from %.1f to %.1f after filling %s", name, prev, cur, f.key)
			}
			prev = cur
		}
	}
}

func TestBlankSentinelsScoreNothing(t *testing.T) {
	blank := models.RegulationRecord{
		"regulation_id":   "N/A",
		"regulation_name": "Unknown",
		"regulation_type": "",
		"description":     nil,
		"requirements":    map[string]any{},
		"keywords":        []any{},
	}
	if q := ScoreStrict(blank); q.Score != 0 {
		t.Errorf("all-blank record scored %.1f, want 0", q.Score)
	}
}

func TestScoreStrictNullRatioPenalty(t *testing.T) {
	// Critical identity fields populated, everything else blank template:
	// the null ratio pushes past 0.5 and the penalty kicks in.
	record := models.RegulationRecord{
		"regulation_id":   "GDPR Article 8",
		"regulation_name": "Conditions applicable to child's consent",
		"regulation_type": "article",
		"description":     map[string]any{"brief_summary": "Minimum age for consent."},
		"jurisdiction": map[string]any{
			"geographic_scope":           nil,
			"applicable_regions":         []any{},
			"cross_border_applicability": "null",
		},
		"scope": map[string]any{
			"what_it_covers":         nil,
			"who_it_applies_to":      nil,
			"what_it_does_not_cover": nil,
		},
		"dates": map[string]any{
			"effective_date":      "N/A",
			"compliance_deadline": nil,
			"review_date":         nil,
			"amendment_history":   []any{},
		},
	}

	q := ScoreStrict(record)
	if q.NullRatio <= 0.5 {
		t.Fatalf("null ratio = %.3f, expected > 0.5 for mostly-blank record", q.NullRatio)
	}
	if q.Score > 40 {
		t.Errorf("penalized score = %.1f, expected the penalty to pull it to REVIEW or below", q.Score)
	}

	// The same record without the blank template groups scores at least as
	// high: the penalty only ever subtracts.
	trimmed := models.RegulationRecord{
		"regulation_id":   record["regulation_id"],
		"regulation_name": record["regulation_name"],
		"regulation_type": record["regulation_type"],
		"description":     record["description"],
	}
	if qt := ScoreStrict(trimmed); qt.Score < q.Score {
		t.Errorf("trimmed record scored %.1f, below padded record's %.1f", qt.Score, q.Score)
	}
}

func TestFilterByQuality(t *testing.T) {
	records := []models.RegulationRecord{
		fullRecord(),
		{
			"regulation_id":   "GDPR Article 6",
			"regulation_name": "Lawfulness of processing",
			"regulation_type": "article",
			"description":     map[string]any{"brief_summary": "Legal bases for processing."},
			"requirements":    map[string]any{"mandatory_obligations": []any{"Have a legal basis"}},
		},
		{},
	}

	result := FilterByQuality(records, 40)

	if got := result.Statistics.KeptCount + result.Statistics.ReviewCount + result.Statistics.DiscardedCount; got != len(records) {
		t.Errorf("bucket counts sum to %d, want %d", got, len(records))
	}
	if len(result.Kept) != 1 {
		t.Errorf("kept = %d, want 1", len(result.Kept))
	}
	if len(result.Discarded) == 0 {
		t.Error("empty record should be discarded")
	}

	// Every bucketed record carries its assessment.
	for _, bucket := range [][]models.RegulationRecord{result.Kept, result.Review, result.Discarded} {
		for _, r := range bucket {
			if _, ok := r[models.KeyQualityScore]; !ok {
				t.Errorf("record %s missing attached quality score", r.ID())
			}
		}
	}
}

func TestFilterResultAnalyzableIncludesReviewBucket(t *testing.T) {
	records := []models.RegulationRecord{
		fullRecord(),
		{
			"regulation_id":   "GDPR Article 6",
			"regulation_name": "Lawfulness of processing",
			"regulation_type": "article",
			"description":     map[string]any{"brief_summary": "Legal bases for processing."},
			"requirements":    map[string]any{"mandatory_obligations": []any{"Have a legal basis"}},
		},
		{},
	}

	result := FilterByQuality(records, 40)
	working := result.Analyzable()

	// Review-scored records keep flowing through dedup and compliance;
	// only discarded records leave the pipeline.
	if len(working) != len(result.Kept)+len(result.Review) {
		t.Fatalf("analyzable = %d records, want kept+review = %d",
			len(working), len(result.Kept)+len(result.Review))
	}
	if len(result.Review) == 0 {
		t.Fatal("expected the partial record to land in the review bucket")
	}
	if working[0].ID() != fullRecord().ID() {
		t.Error("analyzable records must start with the kept bucket")
	}
	if working[len(working)-1].ID() != "GDPR Article 6" {
		t.Error("review records must follow the kept bucket")
	}
}

func TestFilterByQualityEmptyInput(t *testing.T) {
	result := FilterByQuality(nil, 40)
	if result.Statistics.Total != 0 || result.Statistics.AverageScore != 0 {
		t.Errorf("unexpected statistics for empty input: %+v", result.Statistics)
	}
}
