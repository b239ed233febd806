package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

func TestSettingsGetDefaults(t *testing.T) {
	svc := NewSettingsService(&fakeSettings{})

	settings, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ch", settings.OCRLang)
	assert.False(t, settings.ForceOCR)
	assert.True(t, settings.TableRecognition)
	assert.True(t, settings.FormulaRecognition)
	assert.Equal(t, models.BackendPipeline, settings.Backend)
}

func TestSettingsUpdateMergesFields(t *testing.T) {
	store := &fakeSettings{}
	svc := NewSettingsService(store)

	lang := "en"
	force := true
	updated, err := svc.Update(context.Background(), "u1", &models.UpdateSettingsRequest{
		OCRLang:  &lang,
		ForceOCR: &force,
	})
	require.NoError(t, err)
	assert.Equal(t, "en", updated.OCRLang)
	assert.True(t, updated.ForceOCR)
	// Untouched fields keep their defaults.
	assert.True(t, updated.TableRecognition)
	assert.Equal(t, models.BackendPipeline, updated.Backend)

	// Second update sees the stored value, not the defaults.
	table := false
	updated, err = svc.Update(context.Background(), "u1", &models.UpdateSettingsRequest{
		TableRecognition: &table,
	})
	require.NoError(t, err)
	assert.Equal(t, "en", updated.OCRLang)
	assert.False(t, updated.TableRecognition)
}

func TestSettingsUpdateBackend(t *testing.T) {
	store := &fakeSettings{}
	svc := NewSettingsService(store)

	backend := "vlm-http-client"
	updated, err := svc.Update(context.Background(), "u1", &models.UpdateSettingsRequest{
		Backend: &backend,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BackendVLMHTTPClient, updated.Backend)
}

func TestSettingsUpdateRejectsUnknownBackend(t *testing.T) {
	store := &fakeSettings{}
	svc := NewSettingsService(store)

	backend := "sglang"
	_, err := svc.Update(context.Background(), "u1", &models.UpdateSettingsRequest{
		Backend: &backend,
	})
	assert.Equal(t, errors.ErrInvalidBackend, err)
	assert.Nil(t, store.settings)
}
