package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
	"github.com/lpdswing/mineru-web/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FileRepository struct {
	db *postgres.DB
}

func NewFileRepository(db *postgres.DB) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `id, user_id, filename, size, status, upload_time, start_at, finish_at, minio_path, content_type, backend`

func scanFile(row pgx.Row) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(
		&file.ID, &file.UserID, &file.Filename, &file.Size, &file.Status,
		&file.UploadTime, &file.StartAt, &file.FinishAt, &file.MinioPath,
		&file.ContentType, &file.Backend,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to scan file", errors.ErrInternalServer.Status)
	}
	return file, nil
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, user_id, filename, size, status, upload_time, minio_path, content_type, backend)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		file.ID, file.UserID, file.Filename, file.Size, file.Status,
		file.UploadTime, file.MinioPath, file.ContentType, file.Backend,
	)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to create file", errors.ErrInternalServer.Status)
	}

	return nil
}

// GetByID returns the file only if it belongs to the given user.
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	return scanFile(r.db.QueryRow(ctx, query, id, userID))
}

func (r *FileRepository) List(ctx context.Context, userID string, page, pageSize int, search, status string) ([]*models.File, int64, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND filename ILIKE $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files `+where, args...).Scan(&count); err != nil {
		return nil, 0, errors.WrapError(err, "INTERNAL_ERROR", "Failed to count files", errors.ErrInternalServer.Status)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf(`SELECT `+fileColumns+` FROM files `+where+` ORDER BY upload_time DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list files", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		files = append(files, file)
	}

	return files, count, nil
}

// SetPending marks a file waiting for a worker.
func (r *FileRepository) SetPending(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, models.StatusPending)
}

// MarkParsing is the conditional entry into the parsing state: it records
// start_at and returns false when another worker already holds the file,
// closing the race between two concurrent triggers.
func (r *FileRepository) MarkParsing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE files SET status = $1, start_at = now()
		WHERE id = $2 AND status NOT IN ($3, $4)
	`
	result, err := r.db.Exec(ctx, query, models.StatusParsing, id, models.StatusParsing, models.StatusParsed)
	if err != nil {
		return false, errors.WrapError(err, "INTERNAL_ERROR", "Failed to mark file parsing", errors.ErrInternalServer.Status)
	}
	return result.RowsAffected() > 0, nil
}

// MarkParsed records the successful terminal transition.
func (r *FileRepository) MarkParsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE files SET status = $1, finish_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, models.StatusParsed, id)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to mark file parsed", errors.ErrInternalServer.Status)
	}
	if result.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// MarkParseFailed records the failed terminal transition.
func (r *FileRepository) MarkParseFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE files SET status = $1, finish_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, models.StatusParseFailed, id)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to mark file failed", errors.ErrInternalServer.Status)
	}
	if result.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *FileRepository) setStatus(ctx context.Context, id uuid.UUID, status models.FileStatus) error {
	result, err := r.db.Exec(ctx, `UPDATE files SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to update file status", errors.ErrInternalServer.Status)
	}
	if result.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to delete file", errors.ErrInternalServer.Status)
	}
	if result.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *FileRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, errors.WrapError(err, "INTERNAL_ERROR", "Failed to count files", errors.ErrInternalServer.Status)
	}
	return count, nil
}

func (r *FileRepository) CountUploadedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE user_id = $1 AND upload_time >= $2`, userID, since).Scan(&count)
	if err != nil {
		return 0, errors.WrapError(err, "INTERNAL_ERROR", "Failed to count uploads", errors.ErrInternalServer.Status)
	}
	return count, nil
}

func (r *FileRepository) SumSizeByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(size), 0) FROM files WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, errors.WrapError(err, "INTERNAL_ERROR", "Failed to sum file sizes", errors.ErrInternalServer.Status)
	}
	return total, nil
}

func (r *FileRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1 ORDER BY upload_time DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list recent files", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
