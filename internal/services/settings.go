package services

import (
	"context"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

// SettingsService reads and writes per-user parsing configuration.
type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, userID string) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if err == errors.ErrNotFound {
			return models.DefaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

// Update applies the provided fields on top of the current settings and saves
// the result. Unknown backend values are rejected before anything is written.
func (s *SettingsService) Update(ctx context.Context, userID string, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.OCRLang != nil {
		settings.OCRLang = *req.OCRLang
	}
	if req.ForceOCR != nil {
		settings.ForceOCR = *req.ForceOCR
	}
	if req.TableRecognition != nil {
		settings.TableRecognition = *req.TableRecognition
	}
	if req.FormulaRecognition != nil {
		settings.FormulaRecognition = *req.FormulaRecognition
	}
	if req.Backend != nil {
		backend, err := models.ParseBackendType(*req.Backend)
		if err != nil {
			return nil, err
		}
		settings.Backend = backend
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
