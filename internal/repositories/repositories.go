package repositories

import (
	"context"

	"github.com/lpdswing/mineru-web/pkg/postgres"
)

// Repositories holds all repository instances
type Repositories struct {
	File          *FileRepository
	ParsedContent *ParsedContentRepository
	Settings      *SettingsRepository
}

// NewRepositories creates and returns all repository instances
func NewRepositories(db *postgres.DB) *Repositories {
	return &Repositories{
		File:          NewFileRepository(db),
		ParsedContent: NewParsedContentRepository(db),
		Settings:      NewSettingsRepository(db),
	}
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *postgres.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS files (
			id UUID PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			filename TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			upload_time TIMESTAMPTZ NOT NULL DEFAULT now(),
			start_at TIMESTAMPTZ,
			finish_at TIMESTAMPTZ,
			minio_path TEXT NOT NULL,
			content_type TEXT,
			backend VARCHAR(32) NOT NULL DEFAULT 'pipeline'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_user_id ON files (user_id)`,
		`CREATE TABLE IF NOT EXISTS parsed_contents (
			id UUID PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			file_id UUID NOT NULL REFERENCES files (id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parsed_contents_file_id ON parsed_contents (file_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			user_id VARCHAR(64) PRIMARY KEY,
			ocr_lang VARCHAR(32) NOT NULL DEFAULT 'ch',
			force_ocr BOOLEAN NOT NULL DEFAULT false,
			table_recognition BOOLEAN NOT NULL DEFAULT true,
			formula_recognition BOOLEAN NOT NULL DEFAULT true,
			backend VARCHAR(32) NOT NULL DEFAULT 'pipeline'
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
