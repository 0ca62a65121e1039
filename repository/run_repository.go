package repository

import (
	"context"

	"arccs-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// historyLimit caps how many compliance runs are retained. Older runs are
// pruned on insert.
const historyLimit = 50

// RunRepository handles database operations for saved compliance runs
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a new compliance run repository
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Create saves a compliance run and prunes history beyond the retention cap
func (r *RunRepository) Create(ctx context.Context, run *models.ComplianceRun) error {
	query := `
		INSERT INTO compliance_runs (
			corpus_id, regulation_file, proposal_file, model, report
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		run.CorpusID,
		run.RegulationSource,
		run.ProposalSource,
		run.Model,
		run.Report,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return err
	}

	prune := `
		DELETE FROM compliance_runs
		WHERE id NOT IN (
			SELECT id FROM compliance_runs
			ORDER BY created_at DESC
			LIMIT $1
		)`
	_, err = r.db.Exec(ctx, prune, historyLimit)
	return err
}

// GetByID retrieves a compliance run by ID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceRun, error) {
	run := &models.ComplianceRun{}
	query := `
		SELECT id, corpus_id, regulation_file, proposal_file, model, report, created_at
		FROM compliance_runs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.CorpusID,
		&run.RegulationSource,
		&run.ProposalSource,
		&run.Model,
		&run.Report,
		&run.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return run, nil
}

// List retrieves saved runs, newest first, up to the retention cap
func (r *RunRepository) List(ctx context.Context) ([]*models.ComplianceRun, error) {
	query := `
		SELECT id, corpus_id, regulation_file, proposal_file, model, report, created_at
		FROM compliance_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, historyLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ComplianceRun
	for rows.Next() {
		run := &models.ComplianceRun{}
		err := rows.Scan(
			&run.ID,
			&run.CorpusID,
			&run.RegulationSource,
			&run.ProposalSource,
			&run.Model,
			&run.Report,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Delete deletes one saved run
func (r *RunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM compliance_runs WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Clear deletes the whole run history
func (r *RunRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM compliance_runs`
	_, err := r.db.Exec(ctx, query)
	return err
}
