package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

// ProfileEmailConstraint is the unique index on user_profiles.email.
const ProfileEmailConstraint = "user_profiles_email_key"

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// ProfileService manages self-service student profiles.
type ProfileService struct {
	repo      profileRepository
	files     fileRemover
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService. files may be nil.
func NewProfileService(repo profileRepository, files fileRemover, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &ProfileService{repo: repo, files: files, validator: validate, logger: logger}
}

// Register creates the student profile for a verified email.
func (s *ProfileService) Register(ctx context.Context, email string, req dto.ProfileRequest) (*models.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile := &models.UserProfile{ID: uuid.NewString(), Email: email, Role: models.RoleStudent}
	applyProfileRequest(profile, req)
	if err := s.repo.Create(ctx, profile); err != nil {
		if database.IsUniqueViolation(err, ProfileEmailConstraint) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	return profile, nil
}

// GetMine reloads the caller's profile.
func (s *ProfileService) GetMine(ctx context.Context, principal *models.Principal) (*models.UserProfile, error) {
	if principal.ProfileID() == "" {
		return nil, appErrors.ErrProfileIncomplete
	}
	return s.Get(ctx, principal.ProfileID())
}

// UpdateMine edits the caller's profile. Role and the placement rep flag are not editable here.
func (s *ProfileService) UpdateMine(ctx context.Context, principal *models.Principal, req dto.ProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	profile, err := s.GetMine(ctx, principal)
	if err != nil {
		return nil, err
	}
	applyProfileRequest(profile, req)
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, profileWriteError(err)
	}
	return profile, nil
}

// SetAttachment stores a resume or photo id on the caller's profile and removes the old file.
func (s *ProfileService) SetAttachment(ctx context.Context, principal *models.Principal, category FileCategory, fileID string) (*models.UserProfile, error) {
	profile, err := s.GetMine(ctx, principal)
	if err != nil {
		return nil, err
	}
	var slot **string
	switch category {
	case FileResume:
		slot = &profile.ResumeFileID
	case FilePhoto:
		slot = &profile.PhotoFileID
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "profiles accept resume or photo files")
	}
	previous := *slot
	*slot = &fileID
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, profileWriteError(err)
	}
	if previous != nil && *previous != fileID && s.files != nil {
		s.files.Remove(ctx, *previous)
	}
	return profile, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func profileWriteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
}

func applyProfileRequest(p *models.UserProfile, req dto.ProfileRequest) {
	p.FullName = strings.TrimSpace(req.FullName)
	p.PersonalEmail = trimmedOrNil(req.PersonalEmail)
	p.Department = strings.TrimSpace(req.Department)
	p.Batch = strings.TrimSpace(req.Batch)
	p.RollNumber = strings.TrimSpace(req.RollNumber)
	p.Phone = trimmedOrNil(req.Phone)
	p.CurrentCGPA = strings.TrimSpace(req.CurrentCGPA)
	p.ActiveBacklog = req.ActiveBacklog
	p.HistoryOfArrear = req.HistoryOfArrear
	p.BacklogCount = req.BacklogCount
	p.TenthPercentage = trimmedOrNil(req.TenthPercentage)
	p.TwelfthPercentage = trimmedOrNil(req.TwelfthPercentage)
	grades := make([]*string, 8)
	for i := range grades {
		if i < len(req.SemesterGrades) {
			grades[i] = trimmedOrNil(req.SemesterGrades[i])
		}
	}
	p.SetSemesterGrades(grades)
	p.LinkedInURL = trimmedOrNil(req.LinkedInURL)
	p.GitHubURL = trimmedOrNil(req.GitHubURL)
	p.PortfolioURL = trimmedOrNil(req.PortfolioURL)
}
