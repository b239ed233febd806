package repositories

import (
	"context"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
	"github.com/lpdswing/mineru-web/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ParsedContentRepository struct {
	db *postgres.DB
}

func NewParsedContentRepository(db *postgres.DB) *ParsedContentRepository {
	return &ParsedContentRepository{db: db}
}

func (r *ParsedContentRepository) Create(ctx context.Context, content *models.ParsedContent) error {
	query := `
		INSERT INTO parsed_contents (id, user_id, file_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		content.ID, content.UserID, content.FileID, content.Content,
	).Scan(&content.CreatedAt)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to create parsed content", errors.ErrInternalServer.Status)
	}

	return nil
}

// GetByFileID returns the most recent parsed content for a file. A re-parse
// creates a new record, so ordering by created_at picks the current one.
func (r *ParsedContentRepository) GetByFileID(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParsedContent, error) {
	query := `
		SELECT id, user_id, file_id, content, created_at
		FROM parsed_contents
		WHERE file_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	content := &models.ParsedContent{}
	err := r.db.QueryRow(ctx, query, fileID, userID).Scan(
		&content.ID, &content.UserID, &content.FileID, &content.Content, &content.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get parsed content", errors.ErrInternalServer.Status)
	}

	return content, nil
}
