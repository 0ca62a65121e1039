package service

import (
	"errors"
	"testing"
)

func TestParseCorpusJSONKeyFallbacks(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"cleaned_regulations", `{"cleaned_regulations": [{"regulation_id": "R-1"}]}`},
		{"regulations", `{"regulations": [{"regulation_id": "R-1"}]}`},
		{"filtered_regulations", `{"filtered_regulations": [{"regulation_id": "R-1"}]}`},
		{"all_regulations", `{"all_regulations": [{"regulation_id": "R-1"}]}`},
		{"kept", `{"kept": [{"regulation_id": "R-1"}]}`},
		{"bare array", `[{"regulation_id": "R-1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseCorpusJSON([]byte(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 1 || records[0].ID() != "R-1" {
				t.Errorf("records = %+v", records)
			}
		})
	}
}

func TestParseCorpusJSONPrefersCleanedRegulations(t *testing.T) {
	data := `{
		"regulations": [{"regulation_id": "raw"}],
		"cleaned_regulations": [{"regulation_id": "clean"}]
	}`
	records, err := ParseCorpusJSON([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "clean" {
		t.Errorf("expected cleaned_regulations to win, got %+v", records)
	}
}

func TestParseCorpusJSONNoKnownKey(t *testing.T) {
	_, err := ParseCorpusJSON([]byte(`{"something_else": []}`))
	if !errors.Is(err, ErrNoRegulationsInFile) {
		t.Errorf("err = %v, want ErrNoRegulationsInFile", err)
	}
}

func TestParseCorpusJSONInvalid(t *testing.T) {
	if _, err := ParseCorpusJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
