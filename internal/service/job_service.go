package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/events"
)

const jobCachePattern = "jobs:*"

type jobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
	CloseExpired(ctx context.Context, now time.Time) ([]string, error)
}

// JobView is a posting with the caller's eligibility badge.
type JobView struct {
	models.Job
	Eligibility *EligibilityResult `json:"eligibility,omitempty"`
}

type cachedJobPage struct {
	Jobs  []models.Job `json:"jobs"`
	Total int          `json:"total"`
}

// JobService manages postings.
type JobService struct {
	repo      jobRepository
	cache     *CacheService
	files     fileRemover
	publisher events.Publisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewJobService constructs a JobService. cache and files may be nil.
func NewJobService(repo jobRepository, cache *CacheService, files fileRemover, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &JobService{repo: repo, cache: cache, files: files, publisher: publisher, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Create stores a new posting. Status defaults to active.
func (s *JobService) Create(ctx context.Context, principal *models.Principal, req dto.JobRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	job := &models.Job{ID: uuid.NewString(), Status: models.JobStatusActive}
	applyJobRequest(job, req)
	if principal != nil {
		job.CreatedBy = principal.Email
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}
	s.cache.Invalidate(ctx, jobCachePattern)
	return job, nil
}

// Update overwrites the editable fields of a posting.
func (s *JobService) Update(ctx context.Context, id string, req dto.JobRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyJobRequest(job, req)
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, s.writeError(err, "failed to update job")
	}
	s.cache.Invalidate(ctx, jobCachePattern)
	return job, nil
}

// UpdateStatus moves a posting between active, closed and draft.
func (s *JobService) UpdateStatus(ctx context.Context, id string, req dto.JobStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return s.writeError(err, "failed to update job status")
	}
	s.cache.Invalidate(ctx, jobCachePattern)
	if req.Status == models.JobStatusClosed {
		s.publish(ctx, events.JobClosed, map[string]interface{}{"job_id": id, "reason": "manual"})
	}
	return nil
}

// Get returns one posting.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

// List returns postings matching filter. Students only ever see active postings.
// The bool result reports a cache hit.
func (s *JobService) List(ctx context.Context, filter models.JobFilter, studentView bool) ([]models.Job, *models.Pagination, bool, error) {
	if studentView {
		active := models.JobStatusActive
		filter.Status = &active
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown job status")
	}
	if filter.JobType != nil && !filter.JobType.Valid() {
		return nil, nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown job type")
	}

	key := jobListCacheKey(filter)
	var cached cachedJobPage
	if s.cache.Get(ctx, key, &cached) {
		return cached.Jobs, pagination(filter.Page, filter.PageSize, cached.Total), true, nil
	}

	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	s.cache.Set(ctx, key, cachedJobPage{Jobs: jobs, Total: total}, 0)
	return jobs, pagination(filter.Page, filter.PageSize, total), false, nil
}

// WithEligibility attaches a badge to each posting. Badges skip the status check.
func (s *JobService) WithEligibility(principal *models.Principal, jobs []models.Job) []JobView {
	var profile *EligibilityProfile
	if principal != nil {
		profile = NormalizeProfile(principal.Profile)
	}
	now := s.now()
	views := make([]JobView, len(jobs))
	for i := range jobs {
		result := Evaluate(&jobs[i], profile, now, EligibilityOptions{})
		s.metrics.EligibilityChecked(result.Eligible)
		views[i] = JobView{Job: jobs[i], Eligibility: &result}
	}
	return views
}

// Eligibility evaluates the principal against one posting, including its status.
func (s *JobService) Eligibility(ctx context.Context, principal *models.Principal, id string) (*EligibilityResult, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var profile *EligibilityProfile
	if principal != nil {
		profile = NormalizeProfile(principal.Profile)
	}
	result := Evaluate(job, profile, s.now(), EligibilityOptions{CheckStatus: true})
	s.metrics.EligibilityChecked(result.Eligible)
	return &result, nil
}

// SetAttachment stores an uploaded logo or document id on the posting and removes the file it replaces.
func (s *JobService) SetAttachment(ctx context.Context, id string, category FileCategory, fileID string) (*models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var slot **string
	switch category {
	case FileLogo:
		slot = &job.LogoFileID
	case FileDocument:
		slot = &job.DocumentFileID
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "jobs accept logo or document files")
	}
	previous := *slot
	*slot = &fileID
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, s.writeError(err, "failed to attach file")
	}
	if previous != nil && *previous != fileID && s.files != nil {
		s.files.Remove(ctx, *previous)
	}
	s.cache.Invalidate(ctx, jobCachePattern)
	return job, nil
}

// CloseExpired closes active postings past their deadline and returns how many were closed.
func (s *JobService) CloseExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.CloseExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close expired jobs")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	s.cache.Invalidate(ctx, jobCachePattern)
	for _, id := range ids {
		s.publish(ctx, events.JobClosed, map[string]interface{}{"job_id": id, "reason": "deadline"})
	}
	return len(ids), nil
}

func (s *JobService) writeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *JobService) publish(ctx context.Context, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warn("event publish failed", zap.String("event", eventType), zap.Error(err))
	}
}

func applyJobRequest(job *models.Job, req dto.JobRequest) {
	job.Title = strings.TrimSpace(req.Title)
	job.Company = strings.TrimSpace(req.Company)
	job.Location = strings.TrimSpace(req.Location)
	job.JobType = req.JobType
	job.Package = strings.TrimSpace(req.Package)
	job.Description = req.Description
	job.MinCGPA = strings.TrimSpace(req.MinCGPA)
	job.NoBacklogs = req.NoBacklogs
	job.Departments = uniqueDepartments(req.Departments)
	job.Deadline = req.Deadline.UTC()
	job.DriveDate = req.DriveDate
	if req.Status != nil {
		job.Status = *req.Status
	}
}

func uniqueDepartments(in []string) models.DepartmentList {
	out := make(models.DepartmentList, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, dep := range in {
		dep = strings.TrimSpace(dep)
		if _, ok := seen[dep]; ok || dep == "" {
			continue
		}
		seen[dep] = struct{}{}
		out = append(out, dep)
	}
	return out
}

func jobListCacheKey(filter models.JobFilter) string {
	var b strings.Builder
	b.WriteString("jobs:list")
	part := func(name, value string) {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(value, ":", "|"))
	}
	if filter.Status != nil {
		part("status", string(*filter.Status))
	}
	if filter.JobType != nil {
		part("type", string(*filter.JobType))
	}
	part("dept", filter.Department)
	part("q", strings.ToLower(filter.Search))
	part("page", strconv.Itoa(filter.Page))
	part("size", strconv.Itoa(filter.PageSize))
	part("sort", filter.SortBy+"."+filter.SortOrder)
	return b.String()
}
