package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type jobService interface {
	Create(ctx context.Context, principal *models.Principal, req dto.JobRequest) (*models.Job, error)
	Update(ctx context.Context, id string, req dto.JobRequest) (*models.Job, error)
	UpdateStatus(ctx context.Context, id string, req dto.JobStatusRequest) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter, studentView bool) ([]models.Job, *models.Pagination, bool, error)
	WithEligibility(principal *models.Principal, jobs []models.Job) []service.JobView
	Eligibility(ctx context.Context, principal *models.Principal, id string) (*service.EligibilityResult, error)
	SetAttachment(ctx context.Context, id string, category service.FileCategory, fileID string) (*models.Job, error)
}

// JobHandler exposes postings to students and admins.
type JobHandler struct {
	jobs  jobService
	files fileService
}

// NewJobHandler constructs a JobHandler.
func NewJobHandler(jobs jobService, files fileService) *JobHandler {
	return &JobHandler{jobs: jobs, files: files}
}

// List godoc
// @Summary List job postings
// @Description Students only see active postings. withEligibility=true attaches the caller's eligibility to each posting.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, closed or draft (admins only)"
// @Param jobType query string false "Job type"
// @Param department query string false "Department code"
// @Param search query string false "Matches title or company"
// @Param withEligibility query bool false "Attach eligibility"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	filter := models.JobFilter{
		Status:     queryPtr[models.JobStatus](c, "status"),
		JobType:    queryPtr[models.JobType](c, "jobType"),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	studentView := !middleware.CurrentCapabilities(c).Has(models.CapabilityAdmin)
	jobs, page, hit, err := h.jobs.List(c.Request.Context(), filter, studentView)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	if c.Query("withEligibility") == "true" {
		jsonWithMeta(c, http.StatusOK, h.jobs.WithEligibility(principal, jobs), page)
		return
	}
	jsonWithMeta(c, http.StatusOK, jobs, page)
}

// Get godoc
// @Summary Get a job posting
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Eligibility godoc
// @Summary Check eligibility for a posting
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/eligibility [get]
func (h *JobHandler) Eligibility(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	result, err := h.jobs.Eligibility(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create a job posting
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.JobRequest true "Posting"
// @Success 201 {object} response.Envelope
// @Router /admin/jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.JobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// Update godoc
// @Summary Update a job posting
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param payload body dto.JobRequest true "Posting"
// @Success 200 {object} response.Envelope
// @Router /admin/jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	var req dto.JobRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// UpdateStatus godoc
// @Summary Change a posting status
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param payload body dto.JobStatusRequest true "Status"
// @Success 204
// @Router /admin/jobs/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req dto.JobStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.jobs.UpdateStatus(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadFile godoc
// @Summary Attach a logo or document to a posting
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param kind path string true "logo or document"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Router /admin/jobs/{id}/files/{kind} [post]
func (h *JobHandler) UploadFile(c *gin.Context) {
	id := c.Param("id")
	category := service.FileCategory(c.Param("kind"))
	upload(c, h.files, category, func(fileID string) (interface{}, error) {
		return h.jobs.SetAttachment(c.Request.Context(), id, category, fileID)
	})
}
