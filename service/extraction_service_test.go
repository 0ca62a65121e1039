package service

import (
	"context"
	"errors"
	"testing"

	"arccs-backend/models"
)

// stubOracle returns canned responses in call order, or a fixed error.
// Shared by the oracle-backed service tests in this package.
type stubOracle struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubOracle) CompleteJSON(ctx context.Context, model, systemInstruction, prompt string) ([]byte, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("stub oracle: no responses left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return []byte(resp), nil
}

func TestExtractSubstantiveSection(t *testing.T) {
	stub := &stubOracle{responses: []string{`{
		"contains_regulation": true,
		"confidence_score": 0.95,
		"section_summary": "Consent requirements for processing children's data",
		"is_introductory": false,
		"regulations": [
			{"regulation_id": "GDPR Article 8", "regulation_name": "Conditions applicable to child's consent"}
		]
	}`}}
	svc := NewExtractionService(ExtractionWithOracle(stub), ExtractionWithModel("test-model"))

	analysis := svc.Extract(context.Background(), models.Section{
		Title:   "## Article 8",
		Content: "Processing of a child's data is lawful where the child is at least 16 years old.",
	})

	if analysis.Error != "" {
		t.Fatalf("unexpected error: %s", analysis.Error)
	}
	if !analysis.ContainsRegulation {
		t.Fatal("expected contains_regulation=true")
	}
	if len(analysis.Regulations) != 1 {
		t.Fatalf("expected 1 regulation, got %d", len(analysis.Regulations))
	}
	if got := analysis.Regulations[0].ID(); got != "GDPR Article 8" {
		t.Errorf("regulation ID = %q, want GDPR Article 8", got)
	}
	if analysis.SectionTitle != "## Article 8" {
		t.Errorf("section title = %q", analysis.SectionTitle)
	}
}

func TestExtractIntroductoryGate(t *testing.T) {
	// Even if the oracle proposes records alongside is_introductory=true,
	// the section contributes nothing.
	stub := &stubOracle{responses: []string{`{
		"contains_regulation": true,
		"confidence_score": 0.4,
		"section_summary": "Overview chapter",
		"is_introductory": true,
		"regulations": [{"regulation_id": "GDPR Article 5"}]
	}`}}
	svc := NewExtractionService(ExtractionWithOracle(stub))

	analysis := svc.Extract(context.Background(), models.Section{Title: "## Introduction", Content: "The following articles shall apply."})

	if !analysis.IsIntroductory {
		t.Fatal("expected is_introductory=true")
	}
	if len(analysis.Regulations) != 0 {
		t.Fatalf("introductory section must yield no regulations, got %d", len(analysis.Regulations))
	}
}

func TestExtractDegradesOnOracleError(t *testing.T) {
	stub := &stubOracle{err: errors.New("deadline exceeded")}
	svc := NewExtractionService(ExtractionWithOracle(stub))

	analysis := svc.Extract(context.Background(), models.Section{Title: "## Article 5", Content: "content"})

	if analysis.Error == "" {
		t.Fatal("expected error to be recorded")
	}
	if analysis.ContainsRegulation {
		t.Error("failed extraction must not claim regulations")
	}
	if analysis.Regulations == nil || len(analysis.Regulations) != 0 {
		t.Error("failed extraction must yield an empty, non-nil regulation list")
	}
}

func TestExtractDegradesOnMalformedJSON(t *testing.T) {
	stub := &stubOracle{responses: []string{`not json at all`}}
	svc := NewExtractionService(ExtractionWithOracle(stub))

	analysis := svc.Extract(context.Background(), models.Section{Title: "## Article 5", Content: "content"})

	if analysis.Error == "" {
		t.Fatal("expected parse failure to be recorded")
	}
	if analysis.ContainsRegulation {
		t.Error("unparseable response must not claim regulations")
	}
}

func TestExtractAllIsolatesFailures(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`{"contains_regulation": true, "is_introductory": false, "regulations": [{"regulation_id": "A-1"}]}`,
		`broken`,
		`{"contains_regulation": true, "is_introductory": false, "regulations": [{"regulation_id": "C-3"}]}`,
	}}
	svc := NewExtractionService(ExtractionWithOracle(stub))
	sections := []models.Section{
		{Title: "## A", Content: "a"},
		{Title: "## B", Content: "b"},
		{Title: "## C", Content: "c"},
	}

	results := svc.ExtractAll(context.Background(), sections)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].SectionTitle != "## A" || results[2].SectionTitle != "## C" {
		t.Error("results must preserve section order")
	}
	if results[1].Error == "" {
		t.Error("middle section should carry the failure")
	}
	if !results[0].ContainsRegulation || !results[2].ContainsRegulation {
		t.Error("surrounding sections must be unaffected by the failure")
	}
}

func TestCollectRegulationsStampsSourceSection(t *testing.T) {
	results := []*SectionAnalysis{
		{
			SectionTitle:       "## Article 8",
			ContainsRegulation: true,
			Regulations: []models.RegulationRecord{
				{"regulation_id": "GDPR Article 8"},
				{"regulation_id": "GDPR Article 8a"},
			},
		},
		{SectionTitle: "## Recitals", ContainsRegulation: false},
		{
			SectionTitle:       "## Article 17",
			ContainsRegulation: true,
			Regulations:        []models.RegulationRecord{{"regulation_id": "GDPR Article 17"}},
		},
	}

	all := CollectRegulations(results)

	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if got := all[0].SourceSection(); got != "## Article 8" {
		t.Errorf("source_section = %q, want ## Article 8", got)
	}
	if got := all[2].SourceSection(); got != "## Article 17" {
		t.Errorf("source_section = %q, want ## Article 17", got)
	}
}

func TestExtractWithoutOracle(t *testing.T) {
	svc := NewExtractionService()
	analysis := svc.Extract(context.Background(), models.Section{Title: "## A", Content: "a"})
	if analysis.Error == "" {
		t.Fatal("expected a configuration error")
	}
}
