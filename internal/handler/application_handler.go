package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, principal *models.Principal, jobID string, req dto.ApplyRequest) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error)
	BulkUpdateStatus(ctx context.Context, req dto.BulkStatusRequest) (*dto.BulkStatusResponse, error)
	ListMine(ctx context.Context, principal *models.Principal, page, pageSize int) ([]models.Application, *models.Pagination, error)
	ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error)
	CountForJob(ctx context.Context, jobID string) (int, error)
}

// ApplicationHandler exposes the application lifecycle.
type ApplicationHandler struct {
	apps applicationService
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(apps applicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

// Apply godoc
// @Summary Apply to a posting
// @Description Re-checks eligibility against the stored posting and profile before creating the application
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param payload body dto.ApplyRequest false "Cover letter and notes"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /jobs/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	app, err := h.apps.Apply(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Mine godoc
// @Summary List own applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications/mine [get]
func (h *ApplicationHandler) Mine(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	apps, page, err := h.apps.ListMine(c.Request.Context(), principal, queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, page)
}

// List godoc
// @Summary List applications with applicant profiles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param jobId query string false "Job ID"
// @Param department query string false "Applicant department"
// @Param search query string false "Matches job, company, name or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := models.ApplicationFilter{
		Status:     queryPtr[models.ApplicationStatus](c, "status"),
		JobID:      c.Query("jobId"),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	details, page, err := h.apps.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, page)
}

// UpdateStatus godoc
// @Summary Set an application status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body dto.ApplicationStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.ApplicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	app, err := h.apps.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// BulkStatus godoc
// @Summary Set one status on many applications
// @Description Each id is updated independently; the response lists per-id outcomes
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkStatusRequest true "Ids and status"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/bulk-status [post]
func (h *ApplicationHandler) BulkStatus(c *gin.Context) {
	var req dto.BulkStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.apps.BulkUpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CountForJob godoc
// @Summary Count applications for a posting
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /admin/jobs/{id}/applications/count [get]
func (h *ApplicationHandler) CountForJob(c *gin.Context) {
	count, err := h.apps.CountForJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CountResponse{Count: count}, nil)
}
