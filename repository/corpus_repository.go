package repository

import (
	"context"

	"arccs-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CorpusRepository handles database operations for regulation corpora
type CorpusRepository struct {
	db *pgxpool.Pool
}

// NewCorpusRepository creates a new corpus repository
func NewCorpusRepository(db *pgxpool.Pool) *CorpusRepository {
	return &CorpusRepository{db: db}
}

// Create creates a new corpus record
func (r *CorpusRepository) Create(ctx context.Context, corpus *models.RegulationCorpus) error {
	query := `
		INSERT INTO regulation_corpora (
			document_id, source_filename, total_sections, sections_with_regulations,
			total_regulations_extracted, regulations, review_regulations, deletion_log
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		corpus.DocumentID,
		corpus.SourceFilename,
		corpus.TotalSections,
		corpus.SectionsWithRegs,
		corpus.ExtractedCount,
		corpus.Regulations,
		corpus.ReviewRegulations,
		corpus.DeletionLog,
	).Scan(&corpus.ID, &corpus.CreatedAt)

	return err
}

// GetByID retrieves a corpus by ID
func (r *CorpusRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RegulationCorpus, error) {
	corpus := &models.RegulationCorpus{}
	query := `
		SELECT id, document_id, source_filename, total_sections, sections_with_regulations,
			total_regulations_extracted, regulations, review_regulations, deletion_log, created_at
		FROM regulation_corpora
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&corpus.ID,
		&corpus.DocumentID,
		&corpus.SourceFilename,
		&corpus.TotalSections,
		&corpus.SectionsWithRegs,
		&corpus.ExtractedCount,
		&corpus.Regulations,
		&corpus.ReviewRegulations,
		&corpus.DeletionLog,
		&corpus.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if corpus.Regulations == nil {
		corpus.Regulations = make(models.RegulationList, 0)
	}
	if corpus.ReviewRegulations == nil {
		corpus.ReviewRegulations = make(models.RegulationList, 0)
	}

	return corpus, nil
}

// GetLatest retrieves the most recently created corpus
func (r *CorpusRepository) GetLatest(ctx context.Context) (*models.RegulationCorpus, error) {
	corpus := &models.RegulationCorpus{}
	query := `
		SELECT id, document_id, source_filename, total_sections, sections_with_regulations,
			total_regulations_extracted, regulations, review_regulations, deletion_log, created_at
		FROM regulation_corpora
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query).Scan(
		&corpus.ID,
		&corpus.DocumentID,
		&corpus.SourceFilename,
		&corpus.TotalSections,
		&corpus.SectionsWithRegs,
		&corpus.ExtractedCount,
		&corpus.Regulations,
		&corpus.ReviewRegulations,
		&corpus.DeletionLog,
		&corpus.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if corpus.Regulations == nil {
		corpus.Regulations = make(models.RegulationList, 0)
	}
	if corpus.ReviewRegulations == nil {
		corpus.ReviewRegulations = make(models.RegulationList, 0)
	}

	return corpus, nil
}

// List retrieves corpus summaries without their regulation payloads
func (r *CorpusRepository) List(ctx context.Context) ([]*models.RegulationCorpus, error) {
	query := `
		SELECT id, document_id, source_filename, total_sections, sections_with_regulations,
			total_regulations_extracted, created_at
		FROM regulation_corpora
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corpora []*models.RegulationCorpus
	for rows.Next() {
		corpus := &models.RegulationCorpus{}
		err := rows.Scan(
			&corpus.ID,
			&corpus.DocumentID,
			&corpus.SourceFilename,
			&corpus.TotalSections,
			&corpus.SectionsWithRegs,
			&corpus.ExtractedCount,
			&corpus.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, corpus)
	}

	return corpora, rows.Err()
}

// Delete deletes a corpus record
func (r *CorpusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM regulation_corpora WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
