package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"arccs-backend/models"
)

func dedupRecords(ids ...string) []models.RegulationRecord {
	records := make([]models.RegulationRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, models.RegulationRecord{
			"regulation_id":   id,
			"regulation_name": "Regulation " + id,
			"source_section":  "## " + id,
		})
	}
	return records
}

func TestAbsoluteIndex(t *testing.T) {
	if got := absoluteIndex(0, 3); got != 3 {
		t.Errorf("absoluteIndex(0, 3) = %d, want 3", got)
	}
	if got := absoluteIndex(50, 0); got != 50 {
		t.Errorf("absoluteIndex(50, 0) = %d, want 50", got)
	}
	if got := absoluteIndex(100, 49); got != 149 {
		t.Errorf("absoluteIndex(100, 49) = %d, want 149", got)
	}
}

func TestDeduplicateRemovesFlaggedRecords(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`{"duplicates": [{"delete_index": 2, "keep_index": 0, "regulation_id": "A", "reason": "same article restated"}]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub))
	records := dedupRecords("A", "B", "A")

	cleaned, deletionLog, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 cleaned records, got %d", len(cleaned))
	}
	if cleaned[0].ID() != "A" || cleaned[1].ID() != "B" {
		t.Error("cleaned records must preserve original order")
	}
	if len(deletionLog) != 1 {
		t.Fatalf("expected 1 deletion entry, got %d", len(deletionLog))
	}
	entry := deletionLog[0]
	if entry.Deleted.Index != 2 || entry.Kept.Index != 0 {
		t.Errorf("deletion entry indices = %d/%d, want 2/0", entry.Deleted.Index, entry.Kept.Index)
	}
	if entry.Reason == "" {
		t.Error("deletion entry must carry the oracle's reason")
	}
	if entry.Deleted.SourceSection != "## A" || entry.Kept.SourceSection != "## A" {
		t.Errorf("deletion entry source sections = %q/%q, want the records' sections",
			entry.Deleted.SourceSection, entry.Kept.SourceSection)
	}
	if summary.OriginalCount != 3 || summary.CleanedCount != 2 || summary.DuplicatesRemoved != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestDeduplicateCountsAlwaysReconcile(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`{"duplicates": [
			{"delete_index": 1, "keep_index": 0, "regulation_id": "A", "reason": "dup"},
			{"delete_index": 3, "keep_index": 2, "regulation_id": "B", "reason": "dup"}
		]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub))
	records := dedupRecords("A", "A", "B", "B", "C")

	cleaned, _, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.CleanedCount+summary.DuplicatesRemoved != summary.OriginalCount {
		t.Errorf("cleaned %d + removed %d != original %d", summary.CleanedCount, summary.DuplicatesRemoved, summary.OriginalCount)
	}
	if len(cleaned) != summary.CleanedCount {
		t.Errorf("len(cleaned) %d != summary.CleanedCount %d", len(cleaned), summary.CleanedCount)
	}
}

func TestDeduplicateBatchOffsets(t *testing.T) {
	// Two batches of 2: the second batch's summaries must carry absolute
	// indices 2 and 3, and a deletion there must land on the right record.
	stub := &stubOracle{responses: []string{
		`{"duplicates": []}`,
		`{"duplicates": [{"delete_index": 3, "keep_index": 2, "regulation_id": "D", "reason": "dup"}]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub), DedupWithBatchSize(2))
	records := dedupRecords("A", "B", "C", "D")

	cleaned, _, _, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", stub.calls)
	}
	if !strings.Contains(stub.prompts[1], `"index": "2"`) || !strings.Contains(stub.prompts[1], `"index": "3"`) {
		t.Error("second batch prompt must carry absolute indices")
	}
	if len(cleaned) != 3 {
		t.Fatalf("expected 3 cleaned records, got %d", len(cleaned))
	}
	for _, record := range cleaned {
		if record.ID() == "D" {
			t.Error("record D should have been deleted")
		}
	}
}

func TestDeduplicateSkipsFailedBatch(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`not json`,
		`{"duplicates": [{"delete_index": 2, "keep_index": 3, "regulation_id": "C", "reason": "dup"}]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub), DedupWithBatchSize(2))
	records := dedupRecords("A", "B", "C", "C")

	cleaned, _, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First batch failed: A and B survive untouched.
	if cleaned[0].ID() != "A" || cleaned[1].ID() != "B" {
		t.Error("records of a failed batch must survive")
	}
	if summary.DuplicatesRemoved != 1 {
		t.Errorf("removed = %d, want 1", summary.DuplicatesRemoved)
	}
}

func TestDeduplicateDiscardsOutOfRangeIndices(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`{"duplicates": [
			{"delete_index": 99, "keep_index": 0, "regulation_id": "A", "reason": "bogus"},
			{"delete_index": -1, "keep_index": 0, "regulation_id": "A", "reason": "bogus"}
		]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub))
	records := dedupRecords("A", "B")

	cleaned, deletionLog, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaned) != 2 || summary.DuplicatesRemoved != 0 || len(deletionLog) != 0 {
		t.Error("out-of-range indices must be ignored")
	}
}

func TestDeduplicateDiscardsPairWithInvalidKeepIndex(t *testing.T) {
	stub := &stubOracle{responses: []string{
		`{"duplicates": [
			{"delete_index": 1, "keep_index": 99, "regulation_id": "B", "reason": "bogus"},
			{"delete_index": 0, "keep_index": -1, "regulation_id": "A", "reason": "bogus"}
		]}`,
	}}
	svc := NewDedupService(DedupWithOracle(stub))
	records := dedupRecords("A", "B")

	cleaned, deletionLog, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A deletion with no resolvable kept record cannot be trusted at all.
	if len(cleaned) != 2 {
		t.Fatalf("cleaned = %d, want 2 (pair with invalid keep index must not delete)", len(cleaned))
	}
	if summary.DuplicatesRemoved != 0 || len(deletionLog) != 0 {
		t.Error("pairs with invalid keep indices must be discarded whole")
	}
}

func TestDeduplicateEmptyCorpus(t *testing.T) {
	svc := NewDedupService(DedupWithOracle(&stubOracle{}))
	cleaned, deletionLog, summary, err := svc.Deduplicate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaned) != 0 || len(deletionLog) != 0 || summary.OriginalCount != 0 {
		t.Error("empty corpus must pass through untouched")
	}
}

func TestDeduplicateAllOracleFailures(t *testing.T) {
	stub := &stubOracle{err: errors.New("unavailable")}
	svc := NewDedupService(DedupWithOracle(stub))
	records := dedupRecords("A", "B")

	cleaned, _, summary, err := svc.Deduplicate(context.Background(), records)
	if err != nil {
		t.Fatalf("total oracle failure must not be fatal: %v", err)
	}
	if len(cleaned) != 2 || summary.DuplicatesRemoved != 0 {
		t.Error("all records must survive when every batch fails")
	}
}
