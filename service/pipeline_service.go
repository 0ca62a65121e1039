package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"arccs-backend/models"
	"arccs-backend/oracle"
	"arccs-backend/repository"
	"arccs-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrJobNotFound         = errors.New("analysis job not found")
	ErrJobCreationFailed   = errors.New("failed to create analysis job")
	ErrUnsupportedDocument = errors.New("unsupported document type for analysis")
	ErrWrongDocumentRole   = errors.New("document is not a regulation document")
)

const (
	stepSegmenting    = "Segmenting Document"
	stepExtracting    = "Extracting Regulations"
	stepScoring       = "Scoring Quality"
	stepDeduplicating = "Removing Duplicates"
	stepSaving        = "Saving Corpus"
)

// PipelineService runs the regulation extraction pipeline over an uploaded
// document as a background job: segment, extract, score, deduplicate, persist.
// Progress is written to the job row step by step so clients can poll.
type PipelineService struct {
	documentRepo *repository.DocumentRepository
	corpusRepo   *repository.CorpusRepository
	jobRepo      *repository.AnalysisJobRepository
	settingsRepo *repository.SettingsRepository
	store        storage.Storage
	oracle       oracle.Client
}

// PipelineServiceOption is a functional option for PipelineService
type PipelineServiceOption func(*PipelineService)

// PipelineWithDocumentRepository sets the document repository
func PipelineWithDocumentRepository(repo *repository.DocumentRepository) PipelineServiceOption {
	return func(s *PipelineService) {
		s.documentRepo = repo
	}
}

// PipelineWithCorpusRepository sets the corpus repository
func PipelineWithCorpusRepository(repo *repository.CorpusRepository) PipelineServiceOption {
	return func(s *PipelineService) {
		s.corpusRepo = repo
	}
}

// PipelineWithJobRepository sets the analysis job repository
func PipelineWithJobRepository(repo *repository.AnalysisJobRepository) PipelineServiceOption {
	return func(s *PipelineService) {
		s.jobRepo = repo
	}
}

// PipelineWithSettingsRepository sets the settings repository
func PipelineWithSettingsRepository(repo *repository.SettingsRepository) PipelineServiceOption {
	return func(s *PipelineService) {
		s.settingsRepo = repo
	}
}

// PipelineWithStorage sets the document storage backend
func PipelineWithStorage(store storage.Storage) PipelineServiceOption {
	return func(s *PipelineService) {
		s.store = store
	}
}

// PipelineWithOracle sets the oracle client
func PipelineWithOracle(client oracle.Client) PipelineServiceOption {
	return func(s *PipelineService) {
		s.oracle = client
	}
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(opts ...PipelineServiceOption) *PipelineService {
	s := &PipelineService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAnalysisRequest represents a request to analyze a regulation document
type StartAnalysisRequest struct {
	DocumentID uuid.UUID
}

// StartAnalysisResult represents the result of creating an analysis job
type StartAnalysisResult struct {
	JobID uuid.UUID
}

// GetAnalysisStatusRequest represents a request to get analysis job status
type GetAnalysisStatusRequest struct {
	JobID uuid.UUID
}

// GetAnalysisStatusResult represents the result of getting analysis job status
type GetAnalysisStatusResult struct {
	Job *models.AnalysisJob
}

// StartAnalysis validates the document and creates a pending job. The actual
// pipeline runs in ProcessAnalysis, which the caller launches in a goroutine;
// this method returns quickly.
func (s *PipelineService) StartAnalysis(ctx context.Context, req StartAnalysisRequest) (*StartAnalysisResult, error) {
	if s.documentRepo == nil {
		return nil, errors.New("document repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("analysis job repository not set")
	}

	document, err := s.documentRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}
	if document.Role != models.RoleRegulation {
		return nil, ErrWrongDocumentRole
	}

	job := &models.AnalysisJob{
		DocumentID: req.DocumentID,
		Status:     models.JobStatusPending,
		Steps:      initializeAnalysisSteps(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrJobCreationFailed
	}

	return &StartAnalysisResult{JobID: job.ID}, nil
}

// GetAnalysisStatus retrieves the status of an analysis job
func (s *PipelineService) GetAnalysisStatus(ctx context.Context, req GetAnalysisStatusRequest) (*GetAnalysisStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("analysis job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetAnalysisStatusResult{Job: job}, nil
}

// GetDocumentJob retrieves the most recent analysis job for a document
func (s *PipelineService) GetDocumentJob(ctx context.Context, documentID uuid.UUID) (*models.AnalysisJob, error) {
	if s.jobRepo == nil {
		return nil, errors.New("analysis job repository not set")
	}

	job, err := s.jobRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func initializeAnalysisSteps() models.AnalysisSteps {
	names := []string{stepSegmenting, stepExtracting, stepScoring, stepDeduplicating, stepSaving}
	steps := make(models.AnalysisSteps, 0, len(names))
	for _, name := range names {
		steps = append(steps, models.AnalysisStep{Name: name, Status: "pending"})
	}
	return steps
}

// ProcessAnalysis performs the extraction pipeline in the background. It can
// take minutes on large documents; progress is persisted per step.
func (s *PipelineService) ProcessAnalysis(ctx context.Context, jobID uuid.UUID) error {
	if s.jobRepo == nil || s.documentRepo == nil || s.corpusRepo == nil {
		return errors.New("pipeline service not fully configured")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load analysis job: %w", err)
	}

	document, err := s.documentRepo.GetByID(ctx, job.DocumentID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load document: "+err.Error())
		return err
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	settings := s.currentSettings(ctx)

	// Segment
	if err := s.updateStepStatus(ctx, jobID, stepSegmenting, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	text, err := s.readDocumentText(ctx, document)
	if err != nil {
		s.markJobFailed(ctx, jobID, err.Error())
		return err
	}
	sections := SplitSections(text)
	if len(sections) == 0 {
		// Plain text without markdown headers is treated as one section.
		sections = []models.Section{SyntheticSection(text)}
	}
	if err := s.updateStepStatus(ctx, jobID, stepSegmenting, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// Extract
	if err := s.updateStepStatus(ctx, jobID, stepExtracting, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	extractor := NewExtractionService(ExtractionWithOracle(s.oracle), ExtractionWithModel(settings.Model))
	analyses := extractor.ExtractAll(ctx, sections)
	extracted := CollectRegulations(analyses)
	sectionsWithRegs := 0
	for _, analysis := range analyses {
		if analysis.ContainsRegulation {
			sectionsWithRegs++
		}
	}
	if err := s.updateStepStatus(ctx, jobID, stepExtracting, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// Score
	if err := s.updateStepStatus(ctx, jobID, stepScoring, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	filtered := FilterByQuality(extracted, settings.QualityThreshold)
	log.Printf("Quality filter: %d kept, %d review, %d discarded",
		len(filtered.Kept), len(filtered.Review), len(filtered.Discarded))
	if err := s.updateStepStatus(ctx, jobID, stepScoring, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// Deduplicate
	if err := s.updateStepStatus(ctx, jobID, stepDeduplicating, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	deduper := NewDedupService(DedupWithOracle(s.oracle), DedupWithModel(settings.Model), DedupWithBatchSize(settings.DedupBatchSize))
	cleaned, deletionLog, _, err := deduper.Deduplicate(ctx, filtered.Analyzable())
	if err != nil {
		s.markJobFailed(ctx, jobID, "deduplication failed: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepDeduplicating, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// Persist corpus
	if err := s.updateStepStatus(ctx, jobID, stepSaving, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	corpus := &models.RegulationCorpus{
		DocumentID:        &document.ID,
		SourceFilename:    document.Filename,
		TotalSections:     len(sections),
		SectionsWithRegs:  sectionsWithRegs,
		ExtractedCount:    len(extracted),
		Regulations:       models.RegulationList(cleaned),
		ReviewRegulations: models.RegulationList(filtered.Review),
		DeletionLog:       deletionLog,
	}
	if err := s.corpusRepo.Create(ctx, corpus); err != nil {
		s.markJobFailed(ctx, jobID, "failed to save corpus: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepSaving, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.jobRepo.Complete(ctx, jobID, corpus.ID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("Analysis job %s completed: %d regulations in corpus %s", jobID, len(cleaned), corpus.ID)
	return nil
}

// readDocumentText loads a document's raw text from storage. Only plain text
// and markdown are analyzable; PDFs must be converted to text before upload.
func (s *PipelineService) readDocumentText(ctx context.Context, document *models.Document) (string, error) {
	if s.store == nil {
		return "", errors.New("storage not set")
	}

	switch strings.ToLower(filepath.Ext(document.Filename)) {
	case ".txt", ".md", ".markdown", "":
		// analyzable
	case ".pdf":
		return "", fmt.Errorf("%w: PDF text must be extracted before upload", ErrUnsupportedDocument)
	case ".json":
		return "", fmt.Errorf("%w: corpus files are loaded directly, not re-analyzed", ErrUnsupportedDocument)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, filepath.Ext(document.Filename))
	}

	reader, err := s.store.Download(ctx, document.StoragePath)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

func (s *PipelineService) currentSettings(ctx context.Context) models.Settings {
	if s.settingsRepo == nil {
		return models.DefaultSettings()
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		log.Printf("Warning: failed to load settings, using defaults: %v", err)
		return models.DefaultSettings()
	}
	return *settings
}

// updateStepStatus updates the status of a specific step in the analysis job
func (s *PipelineService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *PipelineService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Warning: failed to mark job %s as failed: %v", jobID, err)
	}
}
