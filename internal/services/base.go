package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lpdswing/mineru-web/internal/dispatch"
	"github.com/lpdswing/mineru-web/internal/models"
)

// Storage and queue dependencies are consumed through narrow interfaces so
// services can be exercised against fakes.

// FileStore is the relational source of truth for file rows. Status is
// mutated only through the transition methods below.
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.File, error)
	List(ctx context.Context, userID string, page, pageSize int, search, status string) ([]*models.File, int64, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	SetPending(ctx context.Context, id uuid.UUID) error
	MarkParsing(ctx context.Context, id uuid.UUID) (bool, error)
	MarkParsed(ctx context.Context, id uuid.UUID) error
	MarkParseFailed(ctx context.Context, id uuid.UUID) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountUploadedSince(ctx context.Context, userID string, since time.Time) (int64, error)
	SumSizeByUser(ctx context.Context, userID string) (int64, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.File, error)
}

type ContentStore interface {
	Create(ctx context.Context, content *models.ParsedContent) error
	GetByFileID(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParsedContent, error)
}

type SettingsStore interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Upsert(ctx context.Context, settings *models.Settings) error
}

// ObjectStore is the object storage boundary shared by uploads and artifacts.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Remove(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// TaskPublisher appends parse tasks to the durable stream.
type TaskPublisher interface {
	PublishTask(ctx context.Context, stream string, values map[string]interface{}) (string, error)
}

// Dispatcher runs the analysis strategy selected for a backend.
type Dispatcher interface {
	Run(ctx context.Context, req dispatch.Request) ([]dispatch.DocumentResult, error)
}

// Services holds all service instances
type Services struct {
	File     *FileService
	Parser   *ParserService
	Settings *SettingsService
	Stats    *StatsService
}
