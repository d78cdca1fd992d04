package service

import (
	"context"
	"database/sql"
	"errors"
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

type placementRepository interface {
	FindByID(ctx context.Context, id string) (*models.Placement, error)
	List(ctx context.Context, filter models.PlacementFilter) ([]models.Placement, int, error)
	Create(ctx context.Context, placement *models.Placement) error
	Update(ctx context.Context, placement *models.Placement) error
	Delete(ctx context.Context, id string) error
}

type fileRemover interface {
	Remove(ctx context.Context, fileID string)
}

// PlacementService records finalized offers. Placements are not reconciled with applications.
type PlacementService struct {
	repo      placementRepository
	files     fileRemover
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPlacementService constructs a PlacementService. files may be nil.
func NewPlacementService(repo placementRepository, files fileRemover, publisher events.Publisher, validate *validator.Validate, logger *zap.Logger) *PlacementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &PlacementService{repo: repo, files: files, publisher: publisher, validator: validate, logger: logger, now: time.Now}
}

// Create stores a placement. Without a user id a manual placeholder is generated.
func (s *PlacementService) Create(ctx context.Context, principal *models.Principal, req dto.PlacementRequest) (*models.Placement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	placement := &models.Placement{ID: uuid.NewString()}
	s.apply(placement, req)
	if principal != nil {
		placement.CreatedBy = principal.Email
	}
	if err := s.repo.Create(ctx, placement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create placement")
	}
	if err := s.publisher.Publish(ctx, events.PlacementCreated, map[string]interface{}{
		"placement_id": placement.ID,
		"user_id":      placement.UserID,
		"company":      placement.Company,
		"package":      placement.Package,
		"manual":       placement.IsManual(),
	}); err != nil {
		s.logger.Warn("event publish failed", zap.String("event", events.PlacementCreated), zap.Error(err))
	}
	return placement, nil
}

// Update overwrites a placement. File references are kept; use SetAttachment to replace them.
func (s *PlacementService) Update(ctx context.Context, id string, req dto.PlacementRequest) (*models.Placement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	placement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(placement, req)
	if err := s.repo.Update(ctx, placement); err != nil {
		return nil, s.writeError(err, "failed to update placement")
	}
	return placement, nil
}

// SetAttachment replaces the photo or offer letter and deletes the previous file best-effort.
func (s *PlacementService) SetAttachment(ctx context.Context, id string, category FileCategory, fileID string) (*models.Placement, error) {
	placement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var slot **string
	switch category {
	case FilePhoto:
		slot = &placement.PhotoFileID
	case FileOfferLetter:
		slot = &placement.OfferLetterFileID
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "placements accept photo or offer letter files")
	}
	previous := *slot
	*slot = &fileID
	if err := s.repo.Update(ctx, placement); err != nil {
		return nil, s.writeError(err, "failed to attach file")
	}
	if previous != nil && *previous != fileID && s.files != nil {
		s.files.Remove(ctx, *previous)
	}
	return placement, nil
}

// Delete removes a placement and its files.
func (s *PlacementService) Delete(ctx context.Context, id string) error {
	placement, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError(err, "failed to delete placement")
	}
	if s.files != nil {
		for _, fileID := range []*string{placement.PhotoFileID, placement.OfferLetterFileID} {
			if fileID != nil {
				s.files.Remove(ctx, *fileID)
			}
		}
	}
	return nil
}

// Get returns one placement.
func (s *PlacementService) Get(ctx context.Context, id string) (*models.Placement, error) {
	placement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	return placement, nil
}

// List returns placements matching filter.
func (s *PlacementService) List(ctx context.Context, filter models.PlacementFilter) ([]models.Placement, *models.Pagination, error) {
	placements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list placements")
	}
	if placements == nil {
		placements = []models.Placement{}
	}
	return placements, pagination(filter.Page, filter.PageSize, total), nil
}

func (s *PlacementService) apply(p *models.Placement, req dto.PlacementRequest) {
	if req.UserID != nil && strings.TrimSpace(*req.UserID) != "" {
		p.UserID = strings.TrimSpace(*req.UserID)
	} else if p.UserID == "" {
		p.UserID = models.ManualPlacementPrefix + uuid.NewString()
	}
	p.JobID = trimmedOrNil(req.JobID)
	p.ApplicationID = trimmedOrNil(req.ApplicationID)
	p.StudentName = strings.TrimSpace(req.StudentName)
	p.StudentEmail = trimmedOrNil(req.StudentEmail)
	p.RollNumber = trimmedOrNil(req.RollNumber)
	p.Department = trimmedOrNil(req.Department)
	p.Batch = trimmedOrNil(req.Batch)
	p.Company = strings.TrimSpace(req.Company)
	p.Position = strings.TrimSpace(req.Position)
	p.Package = strings.TrimSpace(req.Package)
	p.Location = trimmedOrNil(req.Location)
	p.OfferDate = req.OfferDate
	p.JoiningDate = req.JoiningDate
	p.Testimonial = trimmedOrNil(req.Testimonial)
	switch {
	case req.PlacementDate != nil:
		p.PlacementDate = req.PlacementDate.UTC()
	case p.PlacementDate.IsZero():
		p.PlacementDate = s.now().UTC()
	}
}

func (s *PlacementService) writeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "placement not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
