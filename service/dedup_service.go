package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"arccs-backend/models"
	"arccs-backend/oracle"
)

const defaultDedupBatchSize = 50

// DedupService removes exact duplicate regulation records from a corpus.
// The oracle judges duplicates batch by batch over compact record summaries;
// similar-but-distinct regulations (different articles, jurisdictions,
// versions) are always kept.
type DedupService struct {
	oracle    oracle.Client
	model     string
	batchSize int
}

// DedupServiceOption is a functional option for DedupService
type DedupServiceOption func(*DedupService)

// DedupWithOracle sets the oracle client
func DedupWithOracle(client oracle.Client) DedupServiceOption {
	return func(s *DedupService) {
		s.oracle = client
	}
}

// DedupWithModel sets the oracle model name
func DedupWithModel(model string) DedupServiceOption {
	return func(s *DedupService) {
		s.model = model
	}
}

// DedupWithBatchSize sets how many record summaries go into one oracle call
func DedupWithBatchSize(size int) DedupServiceOption {
	return func(s *DedupService) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewDedupService creates a new deduplication service
func NewDedupService(opts ...DedupServiceOption) *DedupService {
	s := &DedupService{
		model:     models.DefaultSettings().Model,
		batchSize: defaultDedupBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// recordSummary is the compact projection sent to the oracle. Truncation
// keeps batch prompts bounded regardless of record verbosity.
type recordSummary struct {
	Index         string `json:"index"`
	RegulationID  string `json:"regulation_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	SourceSection string `json:"source_section"`
	BriefSummary  string `json:"brief_summary"`
	Requirements  string `json:"requirements"`
}

type duplicateVerdict struct {
	Duplicates []models.DuplicatePair `json:"duplicates"`
}

// absoluteIndex maps a batch-local position to its position in the full
// corpus slice.
func absoluteIndex(batchStart, local int) int {
	return batchStart + local
}

func summarize(records []models.RegulationRecord, batchStart int) []recordSummary {
	summaries := make([]recordSummary, 0, len(records))
	for i, record := range records {
		summaries = append(summaries, recordSummary{
			Index:         fmt.Sprintf("%d", absoluteIndex(batchStart, i)),
			RegulationID:  record.ID(),
			Name:          record.Name(),
			Type:          record.Type(),
			SourceSection: record.SourceSection(),
			BriefSummary:  record.BriefSummary(300),
			Requirements:  record.RequirementsSummary(500),
		})
	}
	return summaries
}

const dedupSystemInstruction = "You are a meticulous compliance data curator. " +
	"You identify EXACT duplicate regulation entries and nothing else. " +
	"When in doubt, keep both entries. Always respond with valid JSON only."

func buildDedupPrompt(summaries []recordSummary) string {
	encoded, _ := json.MarshalIndent(summaries, "", "  ")
	return fmt.Sprintf(`Review the following regulation entries and identify EXACT DUPLICATES only.

Two entries are duplicates ONLY when they describe the SAME regulation provision:
same regulation identifier or clearly the same article/clause, same obligations,
same scope. Entries that are merely similar are NOT duplicates:
- different articles of the same regulation are NOT duplicates
- the same topic under different jurisdictions is NOT a duplicate
- different versions or amendment states are NOT duplicates

When duplicates are found, prefer to KEEP the entry with the richer detail and
DELETE the sparser one.

ENTRIES:
%s

Respond with JSON:
{
    "duplicates": [
        {
            "delete_index": <index of the entry to remove>,
            "keep_index": <index of the entry to keep>,
            "regulation_id": "<regulation_id of the duplicate>",
            "reason": "<one sentence explaining why these are exact duplicates>"
        }
    ]
}

If there are no exact duplicates, return {"duplicates": []}.

Return ONLY valid JSON.`, string(encoded))
}

// Deduplicate scans records in fixed-size batches and removes every index the
// oracle flags for deletion. A failed batch is skipped, never guessed: its
// records survive. Indices the oracle returns outside the corpus range are
// discarded. The returned slices preserve original record order.
func (s *DedupService) Deduplicate(ctx context.Context, records []models.RegulationRecord) ([]models.RegulationRecord, models.DeletionLog, *models.DedupSummary, error) {
	summary := &models.DedupSummary{OriginalCount: len(records)}
	if len(records) == 0 {
		summary.CleanedCount = 0
		return []models.RegulationRecord{}, models.DeletionLog{}, summary, nil
	}
	if s.oracle == nil {
		return nil, nil, nil, fmt.Errorf("oracle client not set")
	}

	toDelete := make(map[int]models.DuplicatePair)
	for batchStart := 0; batchStart < len(records); batchStart += s.batchSize {
		end := batchStart + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		log.Printf("Deduplicating batch %d-%d of %d", batchStart, end-1, len(records))

		pairs, err := s.judgeBatch(ctx, records[batchStart:end], batchStart)
		if err != nil {
			log.Printf("   batch failed, keeping its records: %v", err)
			continue
		}
		for _, pair := range pairs {
			// A pair is only actionable when both indices resolve to
			// records; anything else is oracle noise.
			if pair.DeleteIndex < 0 || pair.DeleteIndex >= len(records) {
				log.Printf("   discarding out-of-range delete index %d", pair.DeleteIndex)
				continue
			}
			if pair.KeepIndex < 0 || pair.KeepIndex >= len(records) {
				log.Printf("   discarding pair with out-of-range keep index %d", pair.KeepIndex)
				continue
			}
			toDelete[pair.DeleteIndex] = pair
		}
	}

	cleaned := make([]models.RegulationRecord, 0, len(records))
	deletionLog := models.DeletionLog{}
	for i, record := range records {
		pair, deleted := toDelete[i]
		if !deleted {
			cleaned = append(cleaned, record)
			continue
		}
		kept := records[pair.KeepIndex]
		deletionLog = append(deletionLog, models.DeletionEntry{
			Deleted: models.RegulationRef{
				Index:         i,
				RegulationID:  record.ID(),
				Name:          record.Name(),
				SourceSection: record.SourceSection(),
			},
			Kept: models.RegulationRef{
				Index:         pair.KeepIndex,
				RegulationID:  kept.ID(),
				Name:          kept.Name(),
				SourceSection: kept.SourceSection(),
			},
			Reason: pair.Reason,
		})
	}

	summary.CleanedCount = len(cleaned)
	summary.DuplicatesRemoved = len(toDelete)
	log.Printf("Deduplication done: %d -> %d records (%d removed)", summary.OriginalCount, summary.CleanedCount, summary.DuplicatesRemoved)
	return cleaned, deletionLog, summary, nil
}

func (s *DedupService) judgeBatch(ctx context.Context, batch []models.RegulationRecord, batchStart int) ([]models.DuplicatePair, error) {
	raw, err := s.oracle.CompleteJSON(ctx, s.model, dedupSystemInstruction, buildDedupPrompt(summarize(batch, batchStart)))
	if err != nil {
		return nil, fmt.Errorf("oracle call failed: %w", err)
	}
	var verdict duplicateVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("unparseable oracle response: %w", err)
	}
	return verdict.Duplicates, nil
}
