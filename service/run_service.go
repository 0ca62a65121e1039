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
	ErrCorpusNotFound   = errors.New("regulation corpus not found")
	ErrNoRegulations    = errors.New("no regulations available to check")
	ErrNoProposalText   = errors.New("no proposal text provided")
	ErrRunNotFound      = errors.New("compliance run not found")
	ErrReportSaveFailed = errors.New("failed to save compliance run")
)

// RunService orchestrates one compliance check: resolve the regulation
// corpus, resolve the proposal text, classify each regulation, aggregate the
// report, and record the run in history.
type RunService struct {
	corpusRepo   *repository.CorpusRepository
	runRepo      *repository.RunRepository
	documentRepo *repository.DocumentRepository
	settingsRepo *repository.SettingsRepository
	store        storage.Storage
	oracle       oracle.Client
}

// RunServiceOption is a functional option for RunService
type RunServiceOption func(*RunService)

// RunWithCorpusRepository sets the corpus repository
func RunWithCorpusRepository(repo *repository.CorpusRepository) RunServiceOption {
	return func(s *RunService) {
		s.corpusRepo = repo
	}
}

// RunWithRunRepository sets the compliance run repository
func RunWithRunRepository(repo *repository.RunRepository) RunServiceOption {
	return func(s *RunService) {
		s.runRepo = repo
	}
}

// RunWithDocumentRepository sets the document repository
func RunWithDocumentRepository(repo *repository.DocumentRepository) RunServiceOption {
	return func(s *RunService) {
		s.documentRepo = repo
	}
}

// RunWithSettingsRepository sets the settings repository
func RunWithSettingsRepository(repo *repository.SettingsRepository) RunServiceOption {
	return func(s *RunService) {
		s.settingsRepo = repo
	}
}

// RunWithStorage sets the document storage backend
func RunWithStorage(store storage.Storage) RunServiceOption {
	return func(s *RunService) {
		s.store = store
	}
}

// RunWithOracle sets the oracle client
func RunWithOracle(client oracle.Client) RunServiceOption {
	return func(s *RunService) {
		s.oracle = client
	}
}

// NewRunService creates a new compliance run service
func NewRunService(opts ...RunServiceOption) *RunService {
	s := &RunService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunComplianceRequest represents a request to run a compliance check.
// Regulations come from a named corpus, a corpus JSON document, or, when
// neither is given, the most recent corpus. The proposal is inline text or an
// uploaded document.
type RunComplianceRequest struct {
	CorpusID           *uuid.UUID
	CorpusDocumentID   *uuid.UUID
	ProposalText       string
	ProposalDocumentID *uuid.UUID
	SaveReport         *bool // overrides the auto-save setting when set
}

// RunComplianceResult represents the outcome of a compliance check
type RunComplianceResult struct {
	Run *models.ComplianceRun
}

// RunCompliance executes the check end to end. The run is saved to history
// unless auto-save is off and the request does not force saving; an unsaved
// run is still returned, just with a zero ID.
func (s *RunService) RunCompliance(ctx context.Context, req RunComplianceRequest) (*RunComplianceResult, error) {
	if s.oracle == nil {
		return nil, errors.New("oracle client not set")
	}

	regulations, regulationSource, corpusID, err := s.resolveRegulations(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(regulations) == 0 {
		return nil, ErrNoRegulations
	}

	proposalText, proposalSource, err := s.resolveProposal(ctx, req)
	if err != nil {
		return nil, err
	}

	settings := s.currentSettings(ctx)
	classifier := NewComplianceService(
		ComplianceWithOracle(s.oracle),
		ComplianceWithModel(settings.Model),
		ComplianceWithFailMode(settings.ClassifierFailMode),
		ComplianceWithMaxRegulations(settings.MaxRegulations),
	)

	results := classifier.ClassifyAll(ctx, regulations, proposalText)
	report := BuildReport(results)

	run := &models.ComplianceRun{
		CorpusID:         corpusID,
		RegulationSource: regulationSource,
		ProposalSource:   proposalSource,
		Model:            settings.Model,
		Report:           *report,
	}

	save := settings.AutoSaveReports
	if req.SaveReport != nil {
		save = *req.SaveReport
	}
	if save {
		if s.runRepo == nil {
			return nil, ErrReportSaveFailed
		}
		if err := s.runRepo.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReportSaveFailed, err)
		}
	}

	log.Printf("Compliance run finished: %s (%d results, rate %.1f%%)",
		report.OverallStatus, report.Summary.Total, report.Summary.ComplianceRate)
	return &RunComplianceResult{Run: run}, nil
}

// PrepareProposalRequest represents a request to preview a proposal before
// running checks against it
type PrepareProposalRequest struct {
	ProposalText       string
	ProposalDocumentID *uuid.UUID
}

// ProposalPreview summarizes the resolved proposal text
type ProposalPreview struct {
	Source     string `json:"source"`
	Preview    string `json:"preview"`
	Characters int    `json:"characters"`
	Words      int    `json:"words"`
	Lines      int    `json:"lines"`
}

const proposalPreviewLength = 500

// PrepareProposal resolves the proposal the same way RunCompliance does and
// returns its text statistics without calling the oracle, so a caller can
// confirm what would be analyzed.
func (s *RunService) PrepareProposal(ctx context.Context, req PrepareProposalRequest) (*ProposalPreview, error) {
	text, source, err := s.resolveProposal(ctx, RunComplianceRequest{
		ProposalText:       req.ProposalText,
		ProposalDocumentID: req.ProposalDocumentID,
	})
	if err != nil {
		return nil, err
	}

	preview := text
	if len(preview) > proposalPreviewLength {
		preview = preview[:proposalPreviewLength] + "..."
	}
	return &ProposalPreview{
		Source:     source,
		Preview:    preview,
		Characters: len(text),
		Words:      len(strings.Fields(text)),
		Lines:      len(strings.Split(text, "\n")),
	}, nil
}

// GetRunRequest represents a request to fetch one saved run
type GetRunRequest struct {
	RunID uuid.UUID
}

// GetRunResult represents the result of fetching one saved run
type GetRunResult struct {
	Run *models.ComplianceRun
}

// GetRun retrieves one saved compliance run
func (s *RunService) GetRun(ctx context.Context, req GetRunRequest) (*GetRunResult, error) {
	if s.runRepo == nil {
		return nil, errors.New("run repository not set")
	}
	run, err := s.runRepo.GetByID(ctx, req.RunID)
	if err != nil {
		return nil, ErrRunNotFound
	}
	return &GetRunResult{Run: run}, nil
}

// DeleteRun removes one saved run from history
func (s *RunService) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	if s.runRepo == nil {
		return errors.New("run repository not set")
	}
	if err := s.runRepo.Delete(ctx, runID); err != nil {
		return ErrRunNotFound
	}
	return nil
}

// ListRuns retrieves the saved run history, newest first
func (s *RunService) ListRuns(ctx context.Context) ([]*models.ComplianceRun, error) {
	if s.runRepo == nil {
		return nil, errors.New("run repository not set")
	}
	return s.runRepo.List(ctx)
}

// ClearRuns deletes the whole run history
func (s *RunService) ClearRuns(ctx context.Context) error {
	if s.runRepo == nil {
		return errors.New("run repository not set")
	}
	return s.runRepo.Clear(ctx)
}

func (s *RunService) resolveRegulations(ctx context.Context, req RunComplianceRequest) (models.RegulationList, string, *uuid.UUID, error) {
	switch {
	case req.CorpusID != nil:
		if s.corpusRepo == nil {
			return nil, "", nil, errors.New("corpus repository not set")
		}
		corpus, err := s.corpusRepo.GetByID(ctx, *req.CorpusID)
		if err != nil {
			return nil, "", nil, ErrCorpusNotFound
		}
		return corpus.Regulations, corpus.SourceFilename, &corpus.ID, nil

	case req.CorpusDocumentID != nil:
		document, data, err := s.readDocument(ctx, *req.CorpusDocumentID)
		if err != nil {
			return nil, "", nil, err
		}
		records, err := ParseCorpusJSON(data)
		if err != nil {
			return nil, "", nil, err
		}
		return records, document.Filename, nil, nil

	default:
		if s.corpusRepo == nil {
			return nil, "", nil, errors.New("corpus repository not set")
		}
		corpus, err := s.corpusRepo.GetLatest(ctx)
		if err != nil {
			return nil, "", nil, ErrCorpusNotFound
		}
		return corpus.Regulations, corpus.SourceFilename, &corpus.ID, nil
	}
}

func (s *RunService) resolveProposal(ctx context.Context, req RunComplianceRequest) (string, string, error) {
	if strings.TrimSpace(req.ProposalText) != "" {
		return req.ProposalText, "inline text", nil
	}
	if req.ProposalDocumentID == nil {
		return "", "", ErrNoProposalText
	}

	document, data, err := s.readDocument(ctx, *req.ProposalDocumentID)
	if err != nil {
		return "", "", err
	}
	if strings.EqualFold(filepath.Ext(document.Filename), ".pdf") {
		return "", "", fmt.Errorf("%w: PDF text must be extracted before upload", ErrUnsupportedDocument)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", "", ErrNoProposalText
	}
	return text, document.Filename, nil
}

func (s *RunService) readDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, []byte, error) {
	if s.documentRepo == nil || s.store == nil {
		return nil, nil, errors.New("document access not configured")
	}
	document, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, ErrDocumentNotFound
	}
	reader, err := s.store.Download(ctx, document.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	return document, data, nil
}

func (s *RunService) currentSettings(ctx context.Context) models.Settings {
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
