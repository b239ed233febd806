package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpdswing/mineru-web/internal/middleware"
	"github.com/lpdswing/mineru-web/internal/services"
)

type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(c *gin.Context) {
	resp, err := h.stats.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
