package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpdswing/mineru-web/internal/middleware"
	"github.com/lpdswing/mineru-web/internal/models"
	"github.com/lpdswing/mineru-web/internal/services"
	"github.com/lpdswing/mineru-web/pkg/errors"
)

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload accepts one or more files under the "files" multipart field.
func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrBadRequest.Code,
			Message: "Invalid multipart form",
		})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrBadRequest.Code,
			Message: "No files provided",
		})
		return
	}

	resp, err := h.files.Upload(c.Request.Context(), middleware.UserID(c), headers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FileHandler) List(c *gin.Context) {
	var req models.FileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrBadRequest.Code,
			Message: err.Error(),
		})
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	resp, err := h.files.List(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FileHandler) Get(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	file, err := h.files.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	if err := h.files.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// DownloadURL returns a presigned URL for the original upload.
func (h *FileHandler) DownloadURL(c *gin.Context) {
	id, ok := fileIDParam(c)
	if !ok {
		return
	}

	url, err := h.files.DownloadURL(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"download_url": url})
}
