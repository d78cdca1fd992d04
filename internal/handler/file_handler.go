package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/service"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type fileService interface {
	Upload(ctx context.Context, category service.FileCategory, r io.Reader) (*dto.FileResponse, error)
	Link(fileID string) (*dto.FileResponse, error)
	Open(token string) (*os.File, error)
	Remove(ctx context.Context, fileID string)
}

// FileHandler serves stored uploads behind signed links.
type FileHandler struct {
	files fileService
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(files fileService) *FileHandler {
	return &FileHandler{files: files}
}

// Download godoc
// @Summary Download a stored file
// @Tags Files
// @Produce application/octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	file, err := h.files.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamFile(c, file, filepath.Base(file.Name()), "inline")
}

// upload reads the multipart "file" field, stores it and hands the id to attach.
// The stored object is removed again when attach fails.
func upload(c *gin.Context, files fileService, category service.FileCategory, attach func(fileID string) (interface{}, error)) {
	if !category.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown file kind"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file field is required"))
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	stored, err := files.Upload(c.Request.Context(), category, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := attach(stored.FileID)
	if err != nil {
		files.Remove(c.Request.Context(), stored.FileID)
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"file": stored, "record": record})
}

func streamFile(c *gin.Context, file *os.File, name, disposition string) {
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": disposition + `; filename="` + name + `"`,
	})
}
