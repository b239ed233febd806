package services

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lpdswing/mineru-web/config"
	"github.com/lpdswing/mineru-web/internal/dispatch"
	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/internal/output"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

const downloadURLExpiry = time.Hour

// FileService handles upload, listing and deletion of files. Parsing itself
// belongs to the parser service.
type FileService struct {
	files    FileStore
	contents ContentStore
	store    ObjectStore
	parser   *ParserService
	cfg      *config.Config
}

func NewFileService(files FileStore, contents ContentStore, store ObjectStore,
	parser *ParserService, cfg *config.Config) *FileService {
	return &FileService{
		files:    files,
		contents: contents,
		store:    store,
		parser:   parser,
		cfg:      cfg,
	}
}

// Upload stores each file in the uploads bucket, creates its pending row and
// queues a parse task. Per-file failures are reported in the response instead
// of failing the whole batch.
func (s *FileService) Upload(ctx context.Context, userID string, headers []*multipart.FileHeader) (*models.UploadResponse, error) {
	if err := s.store.EnsureBucket(ctx, s.cfg.Minio.UploadsBucket); err != nil {
		return nil, err
	}

	settings, err := s.parser.effectiveSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.UploadResponse{Total: len(headers)}
	for _, header := range headers {
		result, err := s.uploadOne(ctx, userID, settings, header)
		if err != nil {
			log.Error().Err(err).Str("filename", header.Filename).Str("user_id", userID).Msg("upload failed")
			resp.Failed++
			resp.Files = append(resp.Files, models.UploadFileResult{
				Filename: header.Filename,
				Status:   "failed",
			})
			continue
		}
		resp.Success++
		resp.Files = append(resp.Files, *result)
	}
	return resp, nil
}

func (s *FileService) uploadOne(ctx context.Context, userID string, settings *models.Settings,
	header *multipart.FileHeader) (*models.UploadFileResult, error) {
	if !dispatch.Supported(header.Filename) {
		return nil, errors.NewError(errors.ErrUnsupportedFileType.Code,
			"unsupported file type: "+filepath.Ext(header.Filename), errors.ErrUnsupportedFileType.Status)
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := id.String() + strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	if err := s.store.Put(ctx, s.cfg.Minio.UploadsBucket, key, data, contentType); err != nil {
		return nil, err
	}

	file := &models.File{
		ID:          id,
		UserID:      userID,
		Filename:    header.Filename,
		Size:        header.Size,
		Status:      models.StatusPending,
		UploadTime:  time.Now(),
		MinioPath:   key,
		ContentType: contentType,
		Backend:     settings.Backend,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	if _, err := s.parser.QueueParse(ctx, id, userID); err != nil {
		// The file row exists either way; parsing can be retried manually.
		log.Error().Err(err).Stringer("file_id", id).Msg("queue parse")
	}

	return &models.UploadFileResult{Filename: header.Filename, Status: "success", FileID: id}, nil
}

func (s *FileService) List(ctx context.Context, userID string, req *models.FileListRequest) (*models.FileListResponse, error) {
	files, total, err := s.files.List(ctx, userID, req.Page, req.PageSize, req.Search, req.Status)
	if err != nil {
		return nil, err
	}
	return &models.FileListResponse{Files: files, Total: total}, nil
}

func (s *FileService) Get(ctx context.Context, fileID uuid.UUID, userID string) (*models.File, error) {
	return s.files.GetByID(ctx, fileID, userID)
}

// Delete removes the database row, the uploaded object and every artifact the
// parse ever produced. Object storage failures are logged, not fatal; the row
// is the source of truth.
func (s *FileService) Delete(ctx context.Context, fileID uuid.UUID, userID string) error {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, fileID, userID); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, s.cfg.Minio.UploadsBucket, file.MinioPath); err != nil {
		log.Error().Err(err).Str("key", file.MinioPath).Msg("remove upload")
	}

	stem := output.Stem(file.MinioPath)
	for _, key := range []string{
		output.MarkdownKey(stem),
		output.PagesKey(stem),
		output.ContentListKey(stem),
		output.MiddleKey(stem),
		output.ModelKey(stem),
	} {
		if err := s.store.Remove(ctx, s.cfg.Minio.ArtifactsBucket, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("remove artifact")
		}
	}
	return nil
}

// DownloadURL returns a presigned URL for the original uploaded object.
func (s *FileService) DownloadURL(ctx context.Context, fileID uuid.UUID, userID string) (string, error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, s.cfg.Minio.UploadsBucket, file.MinioPath, downloadURLExpiry)
}
