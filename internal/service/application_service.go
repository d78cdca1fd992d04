package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/events"
)

const bulkStatusWorkers = 8

type applicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ExistsForUserJob(ctx context.Context, userID, jobID string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, at time.Time) error
	CountForJob(ctx context.Context, jobID string) (int, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	ListForExport(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
}

type jobReader interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

type profileReader interface {
	FindByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// ApplicationService drives an application from submission through review.
type ApplicationService struct {
	apps      applicationRepository
	jobs      jobReader
	profiles  profileReader
	publisher events.Publisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApplicationService constructs the service. A nil publisher disables events.
func NewApplicationService(apps applicationRepository, jobs jobReader, profiles profileReader, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &ApplicationService{
		apps:      apps,
		jobs:      jobs,
		profiles:  profiles,
		publisher: publisher,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Apply submits an application for the principal's profile.
func (s *ApplicationService) Apply(ctx context.Context, principal *models.Principal, jobID string, req dto.ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if principal == nil || principal.Profile == nil {
		return nil, appErrors.Clone(appErrors.ErrProfileIncomplete, "complete your profile before applying")
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}

	result := Evaluate(job, NormalizeProfile(principal.Profile), s.now(), EligibilityOptions{CheckStatus: true})
	s.metrics.EligibilityChecked(result.Eligible)
	if !result.Eligible {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, result.Reason)
	}

	userID := principal.Profile.ID
	exists, err := s.apps.ExistsForUserJob(ctx, userID, job.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.ErrAlreadyApplied
	}

	now := s.now().UTC()
	app := &models.Application{
		ID:             uuid.NewString(),
		JobID:          job.ID,
		UserID:         userID,
		JobTitle:       job.Title,
		Company:        job.Company,
		Status:         models.ApplicationApplied,
		CoverLetter:    trimmedOrNil(req.CoverLetter),
		AdditionalInfo: trimmedOrNil(req.AdditionalInfo),
		AppliedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if database.IsUniqueViolation(err, repository.ApplicationUniqueConstraint) {
			return nil, appErrors.ErrAlreadyApplied
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.metrics.ApplicationCreated()
	s.publish(ctx, events.ApplicationCreated, map[string]interface{}{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"user_id":        app.UserID,
		"company":        app.Company,
	})
	return app, nil
}

// UpdateStatus sets any known status regardless of the current one. Concurrent writers race; the last write wins.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	now := s.now().UTC()
	if err := s.apps.UpdateStatus(ctx, id, status, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	previous := app.Status
	app.Status = status
	app.UpdatedAt = now
	s.metrics.StatusUpdated(status)
	s.publish(ctx, events.ApplicationStatusChanged, map[string]interface{}{
		"application_id": app.ID,
		"user_id":        app.UserID,
		"job_id":         app.JobID,
		"from":           previous,
		"to":             status,
	})
	return app, nil
}

// BulkUpdateStatus applies the same status to every id concurrently. Each id succeeds or
// fails on its own; nothing is rolled back.
func (s *ApplicationService) BulkUpdateStatus(ctx context.Context, req dto.BulkStatusRequest) (*dto.BulkStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}

	results := make([]dto.BulkStatusResult, len(req.IDs))
	sem := make(chan struct{}, bulkStatusWorkers)
	var wg sync.WaitGroup
	for i, id := range req.IDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = dto.BulkStatusResult{ID: id, OK: true}
			if _, err := s.UpdateStatus(ctx, id, req.Status); err != nil {
				results[i].OK = false
				results[i].Error = appErrors.FromError(err).Message
			}
		}(i, id)
	}
	wg.Wait()

	resp := &dto.BulkStatusResponse{Results: results}
	for _, r := range results {
		if r.OK {
			resp.Updated++
		} else {
			resp.Failed++
		}
	}
	if resp.Failed > 0 {
		s.logger.Warn("bulk status update partially failed", zap.Int("updated", resp.Updated), zap.Int("failed", resp.Failed))
	}
	return resp, nil
}

// ListMine returns the applications of the principal. A principal without a profile has none.
func (s *ApplicationService) ListMine(ctx context.Context, principal *models.Principal, page, pageSize int) ([]models.Application, *models.Pagination, error) {
	if principal.ProfileID() == "" {
		return []models.Application{}, &models.Pagination{Page: 1, PageSize: pageSize}, nil
	}
	filter := models.ApplicationFilter{UserID: principal.ProfileID(), Page: page, PageSize: pageSize}
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, pagination(filter.Page, filter.PageSize, total), nil
}

// ListAll returns applications with their owner's profile attached.
func (s *ApplicationService) ListAll(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, *models.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	details, err := s.enrich(ctx, apps)
	if err != nil {
		return nil, nil, err
	}
	return details, pagination(filter.Page, filter.PageSize, total), nil
}

// ExportDetails returns every matching application with its profile, unpaginated.
func (s *ApplicationService) ExportDetails(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}
	apps, err := s.apps.ListForExport(ctx, filter)
	if errors.Is(err, repository.ErrExportTooLarge) {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("export matches more than %d applications; narrow the filter", repository.MaxExportRows)),
			map[string]string{"limit": strconv.Itoa(repository.MaxExportRows)},
		)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return s.enrich(ctx, apps)
}

// CountForJob returns the number of applications for a job.
func (s *ApplicationService) CountForJob(ctx context.Context, jobID string) (int, error) {
	count, err := s.apps.CountForJob(ctx, jobID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	return count, nil
}

// enrich loads each distinct owner profile once, concurrently. A deleted profile leaves the
// detail without one; any other failure aborts the listing.
func (s *ApplicationService) enrich(ctx context.Context, apps []models.Application) ([]models.ApplicationDetail, error) {
	ids := make([]string, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.UserID]; ok {
			continue
		}
		seen[app.UserID] = struct{}{}
		ids = append(ids, app.UserID)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		profiles = make(map[string]*models.UserProfile, len(ids))
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			profile, err := s.profiles.FindByID(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				profiles[id] = profile
			case errors.Is(err, sql.ErrNoRows):
			case firstErr == nil:
				firstErr = err
			}
		}(id)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, appErrors.Wrap(firstErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant profiles")
	}

	details := make([]models.ApplicationDetail, len(apps))
	for i, app := range apps {
		details[i] = models.ApplicationDetail{Application: app, Profile: profiles[app.UserID]}
	}
	return details, nil
}

func (s *ApplicationService) publish(ctx context.Context, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warn("event publish failed", zap.String("event", eventType), zap.Error(err))
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func pagination(page, pageSize, total int) *models.Pagination {
	page, pageSize = models.NormalizePage(page, pageSize)
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
