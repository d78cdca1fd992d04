package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type exportService interface {
	Fields() []dto.ExportField
	Export(ctx context.Context, principal *models.Principal, req dto.ExportRequest) (*dto.ExportResponse, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler generates and serves application exports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Fields godoc
// @Summary List exportable fields
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/exports/fields [get]
func (h *ExportHandler) Fields(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.exports.Fields(), nil)
}

// Create godoc
// @Summary Export applications
// @Description Renders the selected applications as csv, xlsx or pdf and returns a signed download link
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportRequest true "Selection"
// @Success 201 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.exports.Export(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated export
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamFile(c, file, name, "attachment")
}
