package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpdswing/mineru-web/internal/middleware"
	"github.com/lpdswing/mineru-web/internal/output"
	"github.com/lpdswing/mineru-web/internal/services"
)

type ParseHandler struct {
	parser *services.ParserService
}

func NewParseHandler(parser *services.ParserService) *ParseHandler {
	return &ParseHandler{parser: parser}
}

// Parse runs the file through analysis before responding, so the caller sees
// the final state. Already parsed or in-progress files are reported as such
// without re-parsing.
func (h *ParseHandler) Parse(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	resp, err := h.parser.ParseSync(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ParseHandler) Status(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	resp, err := h.parser.GetStatus(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ParseHandler) ParsedContent(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	content, err := h.parser.GetParsedContent(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// Export returns a presigned URL to a rendered markdown artifact. Format
// defaults to plain markdown.
func (h *ParseHandler) Export(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", output.FormatMarkdown)
	resp, err := h.parser.Export(c.Request.Context(), id, middleware.UserID(c), format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
