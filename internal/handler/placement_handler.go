package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type placementService interface {
	Create(ctx context.Context, principal *models.Principal, req dto.PlacementRequest) (*models.Placement, error)
	Update(ctx context.Context, id string, req dto.PlacementRequest) (*models.Placement, error)
	SetAttachment(ctx context.Context, id string, category service.FileCategory, fileID string) (*models.Placement, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Placement, error)
	List(ctx context.Context, filter models.PlacementFilter) ([]models.Placement, *models.Pagination, error)
}

// PlacementHandler exposes placement records.
type PlacementHandler struct {
	placements placementService
	files      fileService
}

// NewPlacementHandler constructs a PlacementHandler.
func NewPlacementHandler(placements placementService, files fileService) *PlacementHandler {
	return &PlacementHandler{placements: placements, files: files}
}

// List godoc
// @Summary List placement records
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param company query string false "Company"
// @Param department query string false "Department"
// @Param batch query string false "Batch"
// @Param search query string false "Matches student or company"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/placements [get]
func (h *PlacementHandler) List(c *gin.Context) {
	placements, page, err := h.placements.List(c.Request.Context(), placementFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placements, page)
}

// Testimonials godoc
// @Summary List placement testimonials
// @Tags Placements
// @Produce json
// @Security BearerAuth
// @Param company query string false "Company"
// @Param department query string false "Department"
// @Param batch query string false "Batch"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /placements [get]
func (h *PlacementHandler) Testimonials(c *gin.Context) {
	placements, page, err := h.placements.List(c.Request.Context(), placementFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]dto.PlacementTestimonial, len(placements))
	for i, p := range placements {
		views[i] = dto.PlacementTestimonial{
			ID:            p.ID,
			StudentName:   p.StudentName,
			Department:    p.Department,
			Batch:         p.Batch,
			Company:       p.Company,
			Position:      p.Position,
			Package:       p.Package,
			PlacementDate: p.PlacementDate,
			Testimonial:   p.Testimonial,
		}
		if p.PhotoFileID != nil && h.files != nil {
			if link, err := h.files.Link(*p.PhotoFileID); err == nil {
				views[i].Photo = link
			}
		}
	}
	response.JSON(c, http.StatusOK, views, page)
}

func placementFilter(c *gin.Context) models.PlacementFilter {
	return models.PlacementFilter{
		Company:    c.Query("company"),
		Department: c.Query("department"),
		Batch:      c.Query("batch"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
}

// Get godoc
// @Summary Get a placement
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Placement ID"
// @Success 200 {object} response.Envelope
// @Router /admin/placements/{id} [get]
func (h *PlacementHandler) Get(c *gin.Context) {
	placement, err := h.placements.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placement, nil)
}

// Create godoc
// @Summary Record a placement
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Router /admin/placements [post]
func (h *PlacementHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.PlacementRequest
	if !bindJSON(c, &req) {
		return
	}
	placement, err := h.placements.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, placement)
}

// Update godoc
// @Summary Update a placement
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Placement ID"
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /admin/placements/{id} [put]
func (h *PlacementHandler) Update(c *gin.Context) {
	var req dto.PlacementRequest
	if !bindJSON(c, &req) {
		return
	}
	placement, err := h.placements.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, placement, nil)
}

// Delete godoc
// @Summary Delete a placement
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Placement ID"
// @Success 204
// @Router /admin/placements/{id} [delete]
func (h *PlacementHandler) Delete(c *gin.Context) {
	if err := h.placements.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadFile godoc
// @Summary Attach a photo or offer letter to a placement
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Placement ID"
// @Param kind path string true "photo or offer_letter"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Router /admin/placements/{id}/files/{kind} [post]
func (h *PlacementHandler) UploadFile(c *gin.Context) {
	id := c.Param("id")
	category := service.FileCategory(c.Param("kind"))
	upload(c, h.files, category, func(fileID string) (interface{}, error) {
		return h.placements.SetAttachment(c.Request.Context(), id, category, fileID)
	})
}
