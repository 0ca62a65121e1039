package repository

import (
	"context"
	"errors"

	"arccs-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository handles database operations for the single settings row
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the current settings, falling back to defaults when no row
// has been saved yet
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{}
	query := `
		SELECT model, quality_threshold, max_regulations, dedup_batch_size,
			auto_save_reports, classifier_fail_mode, updated_at
		FROM settings
		WHERE id = 1`

	err := r.db.QueryRow(ctx, query).Scan(
		&settings.Model,
		&settings.QualityThreshold,
		&settings.MaxRegulations,
		&settings.DedupBatchSize,
		&settings.AutoSaveReports,
		&settings.ClassifierFailMode,
		&settings.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		defaults := models.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Save upserts the settings row
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (
			id, model, quality_threshold, max_regulations, dedup_batch_size,
			auto_save_reports, classifier_fail_mode, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			model = EXCLUDED.model,
			quality_threshold = EXCLUDED.quality_threshold,
			max_regulations = EXCLUDED.max_regulations,
			dedup_batch_size = EXCLUDED.dedup_batch_size,
			auto_save_reports = EXCLUDED.auto_save_reports,
			classifier_fail_mode = EXCLUDED.classifier_fail_mode,
			updated_at = NOW()
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		settings.Model,
		settings.QualityThreshold,
		settings.MaxRegulations,
		settings.DedupBatchSize,
		settings.AutoSaveReports,
		settings.ClassifierFailMode,
	).Scan(&settings.UpdatedAt)
}
