package models

import (
	"time"

	"github.com/google/uuid"
)

// File represents one uploaded document and its parsing lifecycle.
type File struct {
	ID          uuid.UUID   `json:"id"`
	UserID      string      `json:"user_id"`
	Filename    string      `json:"filename"`
	Size        int64       `json:"size"`
	Status      FileStatus  `json:"status"`
	UploadTime  time.Time   `json:"upload_time"`
	StartAt     *time.Time  `json:"start_at,omitempty"`
	FinishAt    *time.Time  `json:"finish_at,omitempty"`
	MinioPath   string      `json:"minio_path"`
	ContentType string      `json:"content_type"`
	Backend     BackendType `json:"backend"`
}

// ParsedContent holds the primary rendered markdown for a file. Created only
// on a successful terminal transition; a re-parse creates a new record.
type ParsedContent struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	FileID    uuid.UUID `json:"file_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseTask is the queue message handed from the API to a worker.
type ParseTask struct {
	FileID      uuid.UUID `json:"file_id"`
	UserID      string    `json:"user_id"`
	ParseMethod string    `json:"parse_method"`
}

type FileListRequest struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

type FileListResponse struct {
	Files []*File `json:"files"`
	Total int64   `json:"total"`
}

type UploadFileResult struct {
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
	FileID   uuid.UUID `json:"file_id,omitempty"`
}

type UploadResponse struct {
	Total   int                `json:"total"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Files   []UploadFileResult `json:"files"`
}

type ParseStatusResponse struct {
	FileID  uuid.UUID  `json:"file_id"`
	Status  FileStatus `json:"status"`
	Message string     `json:"message"`
}

type ExportResponse struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
}

type StatsResponse struct {
	TotalFiles   int64        `json:"totalFiles"`
	TodayUploads int64        `json:"todayUploads"`
	UsedSpace    int64        `json:"usedSpace"`
	RecentFiles  []RecentFile `json:"recentFiles"`
}

type RecentFile struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	UploadTime time.Time  `json:"uploadTime"`
	Status     FileStatus `json:"status"`
}
