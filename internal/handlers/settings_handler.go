package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpdswing/mineru-web/internal/middleware"
	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/internal/services"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrBadRequest.Code,
			Message: err.Error(),
		})
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
