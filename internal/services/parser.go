package services

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lpdswing/mineru-web/config"
	"github.com/lpdswing/mineru-web/internal/dispatch"
	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/internal/output"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

const exportURLExpiry = time.Hour

// ParserService owns the file lifecycle: it is the only component that moves
// files between pending, parsing, parsed and parse_failed.
type ParserService struct {
	files      FileStore
	contents   ContentStore
	settings   SettingsStore
	store      ObjectStore
	queue      TaskPublisher
	dispatcher Dispatcher
	cfg        *config.Config
}

func NewParserService(files FileStore, contents ContentStore, settings SettingsStore,
	store ObjectStore, queue TaskPublisher, dispatcher Dispatcher, cfg *config.Config) *ParserService {
	return &ParserService{
		files:      files,
		contents:   contents,
		settings:   settings,
		store:      store,
		queue:      queue,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// effectiveSettings loads the user's saved settings, falling back to defaults
// when the user never saved any.
func (s *ParserService) effectiveSettings(ctx context.Context, userID string) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if err == errors.ErrNotFound {
			return models.DefaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

// QueueParse validates the parse request, moves the file to pending and
// publishes the task to the stream. Files already parsed or currently being
// parsed are left untouched.
func (s *ParserService) QueueParse(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParseStatusResponse, error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	switch file.Status {
	case models.StatusParsed:
		return &models.ParseStatusResponse{FileID: fileID, Status: file.Status, Message: "file already parsed"}, nil
	case models.StatusParsing:
		return &models.ParseStatusResponse{FileID: fileID, Status: file.Status, Message: "parsing in progress"}, nil
	}

	settings, err := s.effectiveSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Reject invalid backend configuration before any state is touched.
	if _, err := dispatch.Resolve(settings.Backend, s.cfg.Parser.ServerURL); err != nil {
		return nil, err
	}

	parseMethod := models.MethodAuto
	if settings.ForceOCR {
		parseMethod = models.MethodOCR
	}

	if err := s.files.SetPending(ctx, fileID); err != nil {
		return nil, err
	}

	_, err = s.queue.PublishTask(ctx, s.cfg.Parser.Stream, map[string]interface{}{
		"file_id":      fileID.String(),
		"user_id":      userID,
		"parse_method": parseMethod,
	})
	if err != nil {
		if ferr := s.files.MarkParseFailed(ctx, fileID); ferr != nil {
			log.Error().Err(ferr).Stringer("file_id", fileID).Msg("mark parse_failed after publish failure")
		}
		return nil, errors.WrapError(err, errors.ErrQueuePublish.Code, errors.ErrQueuePublish.Message, errors.ErrQueuePublish.Status)
	}

	return &models.ParseStatusResponse{FileID: fileID, Status: models.StatusPending, Message: "parsing task queued"}, nil
}

// ParseSync parses a file in the caller's request, returning only once the
// file reached parsed or the parse failed. Files already parsed or currently
// claimed by a worker are left untouched.
func (s *ParserService) ParseSync(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParseStatusResponse, error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	switch file.Status {
	case models.StatusParsed:
		return &models.ParseStatusResponse{FileID: fileID, Status: file.Status, Message: "file already parsed"}, nil
	case models.StatusParsing:
		return &models.ParseStatusResponse{FileID: fileID, Status: file.Status, Message: "parsing in progress"}, nil
	}

	if err := s.Parse(ctx, fileID, userID, ""); err != nil {
		return nil, err
	}
	return &models.ParseStatusResponse{FileID: fileID, Status: models.StatusParsed, Message: "parsing complete"}, nil
}

// Parse runs one document through analysis and writes the artifact set. It is
// invoked by workers consuming the task stream. Any error after the file
// entered parsing moves it to parse_failed.
func (s *ParserService) Parse(ctx context.Context, fileID uuid.UUID, userID, parseMethod string) (retErr error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return err
	}
	if file.Status == models.StatusParsed {
		return nil
	}

	settings, err := s.effectiveSettings(ctx, userID)
	if err != nil {
		return err
	}

	backend, err := dispatch.Resolve(settings.Backend, s.cfg.Parser.ServerURL)
	if err != nil {
		return err
	}

	if parseMethod == "" {
		parseMethod = models.MethodAuto
	}
	// force_ocr wins over whatever the task requested.
	if settings.ForceOCR {
		parseMethod = models.MethodOCR
	}

	claimed, err := s.files.MarkParsing(ctx, fileID)
	if err != nil {
		return err
	}
	if !claimed {
		// Another worker holds the file.
		return nil
	}

	defer func() {
		if retErr == nil {
			return
		}
		// The file entered parsing, so the failure must be recorded even when
		// the request context is already gone.
		rbCtx := context.WithoutCancel(ctx)
		if err := s.files.MarkParseFailed(rbCtx, fileID); err != nil {
			log.Error().Err(err).Stringer("file_id", fileID).Msg("mark parse_failed")
		}
	}()

	data, err := s.store.Get(ctx, s.cfg.Minio.UploadsBucket, file.MinioPath)
	if err != nil {
		return errors.WrapError(err, errors.ErrParseFailed.Code, "read uploaded file", errors.ErrParseFailed.Status)
	}

	if err := s.store.EnsureBucket(ctx, s.cfg.Minio.ArtifactsBucket); err != nil {
		return errors.WrapError(err, errors.ErrParseFailed.Code, "ensure artifacts bucket", errors.ErrParseFailed.Status)
	}

	writer := output.NewWriter(s.store, s.cfg.Minio.ArtifactsBucket, s.cfg.Minio.PublicEndpoint)
	sink := output.NewImageSink(s.store, s.cfg.Minio.ArtifactsBucket)

	results, err := s.dispatcher.Run(ctx, dispatch.Request{
		Documents: []dispatch.Document{{
			Name: filepath.Base(file.MinioPath),
			Data: data,
			Lang: settings.OCRLang,
		}},
		Backend:       backend,
		ParseMethod:   parseMethod,
		FormulaEnable: settings.FormulaRecognition,
		TableEnable:   settings.TableRecognition,
		ImageWriter:   sink,
	})
	if err != nil {
		return errors.WrapError(err, errors.ErrParseFailed.Code, errors.ErrParseFailed.Message, errors.ErrParseFailed.Status)
	}

	markdown, err := writer.Write(ctx, output.Stem(file.MinioPath), results[0], backend.Family, output.DefaultFlags())
	if err != nil {
		return errors.WrapError(err, errors.ErrParseFailed.Code, "write artifacts", errors.ErrParseFailed.Status)
	}

	if err := s.contents.Create(ctx, &models.ParsedContent{
		ID:      uuid.New(),
		UserID:  userID,
		FileID:  fileID,
		Content: markdown,
	}); err != nil {
		return errors.WrapError(err, errors.ErrParseFailed.Code, "save parsed content", errors.ErrParseFailed.Status)
	}

	return s.files.MarkParsed(ctx, fileID)
}

// GetStatus reports the current lifecycle state of a file.
func (s *ParserService) GetStatus(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParseStatusResponse, error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.ParseStatusResponse{FileID: fileID, Status: file.Status}
	switch file.Status {
	case models.StatusParsed:
		resp.Message = "parsing complete"
	case models.StatusParsing:
		resp.Message = "parsing in progress"
	case models.StatusParseFailed:
		resp.Message = "parsing failed"
	default:
		resp.Message = "waiting to be parsed"
	}
	return resp, nil
}

// GetParsedContent returns the latest parsed markdown for a file.
func (s *ParserService) GetParsedContent(ctx context.Context, fileID uuid.UUID, userID string) (*models.ParsedContent, error) {
	if _, err := s.files.GetByID(ctx, fileID, userID); err != nil {
		return nil, err
	}
	return s.contents.GetByFileID(ctx, fileID, userID)
}

// Export resolves the stored artifact for the requested format and returns a
// presigned download URL. Export never re-renders; the only gate is whether
// the artifact exists, so a file mid re-parse still serves its previous
// artifacts.
func (s *ParserService) Export(ctx context.Context, fileID uuid.UUID, userID, format string) (*models.ExportResponse, error) {
	file, err := s.files.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	key, err := output.ExportKey(output.Stem(file.MinioPath), format)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, s.cfg.Minio.ArtifactsBucket, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewError(errors.ErrNotFound.Code, "exported artifact not found", errors.ErrNotFound.Status)
	}

	url, err := s.store.PresignGet(ctx, s.cfg.Minio.ArtifactsBucket, key, exportURLExpiry)
	if err != nil {
		return nil, err
	}

	filename, err := output.ExportFilename(file.Filename, format)
	if err != nil {
		return nil, err
	}

	return &models.ExportResponse{Status: "success", DownloadURL: url, Filename: filename}, nil
}
