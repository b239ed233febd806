package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lpdswing/mineru-web/internal/services"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

// Handlers holds all handler instances
type Handlers struct {
	File     *FileHandler
	Parse    *ParseHandler
	Settings *SettingsHandler
	Stats    *StatsHandler
}

// NewHandlers creates and returns all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		File:     NewFileHandler(svcs.File),
		Parse:    NewParseHandler(svcs.Parser),
		Settings: NewSettingsHandler(svcs.Settings),
		Stats:    NewStatsHandler(svcs.Stats),
	}
}

// respondError records the error on the context; the error middleware maps it
// onto an HTTP response once the handler chain returns.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// fileIDParam parses the :id path segment. Responds with 400 and returns false
// when the value is not a UUID.
func fileIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrBadRequest.Code,
			Message: "Invalid file ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
