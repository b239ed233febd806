package repositories

import (
	"context"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
	"github.com/lpdswing/mineru-web/pkg/postgres"

	"github.com/jackc/pgx/v5"
)

type SettingsRepository struct {
	db *postgres.DB
}

func NewSettingsRepository(db *postgres.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query := `
		SELECT user_id, ocr_lang, force_ocr, table_recognition, formula_recognition, backend
		FROM settings
		WHERE user_id = $1
	`

	settings := &models.Settings{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID, &settings.OCRLang, &settings.ForceOCR,
		&settings.TableRecognition, &settings.FormulaRecognition, &settings.Backend,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get settings", errors.ErrInternalServer.Status)
	}

	return settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, ocr_lang, force_ocr, table_recognition, formula_recognition, backend)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			ocr_lang = EXCLUDED.ocr_lang,
			force_ocr = EXCLUDED.force_ocr,
			table_recognition = EXCLUDED.table_recognition,
			formula_recognition = EXCLUDED.formula_recognition,
			backend = EXCLUDED.backend
	`

	_, err := r.db.Exec(ctx, query,
		settings.UserID, settings.OCRLang, settings.ForceOCR,
		settings.TableRecognition, settings.FormulaRecognition, settings.Backend,
	)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to save settings", errors.ErrInternalServer.Status)
	}

	return nil
}
