package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"arccs-backend/models"
	"arccs-backend/oracle"
	"arccs-backend/service"

	"github.com/joho/godotenv"
)

// Offline extraction pipeline: regulation text in, corpus JSON out. The
// output file loads back into a compliance run via the corpus endpoints or
// the corpus_document_id request field.
func main() {
	var (
		inPath    = flag.String("in", "", "path to the regulation text file (.txt or .md)")
		outPath   = flag.String("out", "", "path for the corpus JSON output (default <in>_corpus.json)")
		model     = flag.String("model", "", "oracle model name (default from settings)")
		threshold = flag.Float64("threshold", 0, "quality threshold 0-100 (default from settings)")
		batchSize = flag.Int("batch", 0, "dedup batch size (default from settings)")
	)
	flag.Parse()

	if *inPath == "" {
		log.Fatal("Usage: extract -in regulation.md [-out corpus.json] [-model NAME] [-threshold N] [-batch N]")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	defaults := models.DefaultSettings()
	if *model == "" {
		*model = defaults.Model
	}
	if *threshold == 0 {
		*threshold = defaults.QualityThreshold
	}
	if *batchSize == 0 {
		*batchSize = defaults.DedupBatchSize
	}
	if *outPath == "" {
		ext := filepath.Ext(*inPath)
		*outPath = (*inPath)[:len(*inPath)-len(ext)] + "_corpus.json"
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := oracle.NewGemini(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize oracle client: %v", err)
	}
	defer client.Close()

	text := string(data)
	sections := service.SplitSections(text)
	if len(sections) == 0 {
		sections = []models.Section{service.SyntheticSection(text)}
	}
	log.Printf("Segmented %s into %d section(s)", filepath.Base(*inPath), len(sections))

	extractor := service.NewExtractionService(
		service.ExtractionWithOracle(client),
		service.ExtractionWithModel(*model),
	)
	analyses := extractor.ExtractAll(ctx, sections)
	extracted := service.CollectRegulations(analyses)
	sectionsWithRegs := 0
	for _, analysis := range analyses {
		if analysis.ContainsRegulation {
			sectionsWithRegs++
		}
	}
	log.Printf("Extracted %d regulation(s) from %d section(s)", len(extracted), sectionsWithRegs)

	filtered := service.FilterByQuality(extracted, *threshold)
	log.Printf("Quality filter: %d kept, %d review, %d discarded",
		len(filtered.Kept), len(filtered.Review), len(filtered.Discarded))

	deduper := service.NewDedupService(
		service.DedupWithOracle(client),
		service.DedupWithModel(*model),
		service.DedupWithBatchSize(*batchSize),
	)
	cleaned, deletionLog, summary, err := deduper.Deduplicate(ctx, filtered.Analyzable())
	if err != nil {
		log.Fatalf("Deduplication failed: %v", err)
	}

	corpus := models.CorpusFile{
		SourceFilename:    filepath.Base(*inPath),
		TotalSections:     len(sections),
		SectionsWithRegs:  sectionsWithRegs,
		ExtractedCount:    len(extracted),
		Regulations:       models.RegulationList(cleaned),
		ReviewRegulations: models.RegulationList(filtered.Review),
		DeletionLog:       deletionLog,
	}

	out, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode corpus: %v", err)
	}
	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		log.Fatalf("Failed to write corpus file: %v", err)
	}

	log.Printf("Wrote %d regulation(s) to %s (%d duplicates removed)",
		summary.CleanedCount, *outPath, summary.DuplicatesRemoved)
}
