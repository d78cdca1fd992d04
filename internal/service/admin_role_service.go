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
	"github.com/noah-isme/campus-placement-api/internal/repository"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type adminRoleRepository interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.AdminRole, error)
	FindByID(ctx context.Context, id string) (*models.AdminRole, error)
	List(ctx context.Context, filter models.AdminRoleFilter) ([]models.AdminRole, error)
	Create(ctx context.Context, role *models.AdminRole) error
	Deactivate(ctx context.Context, id string) error
}

type placementRepFlagger interface {
	SetPlacementRep(ctx context.Context, email string, rep bool) error
}

// AdminRoleService grants and revokes admin roles. Only coordinators may change grants.
// Granting or revoking a placement_rep role mirrors the grant onto the student profile flag.
type AdminRoleService struct {
	repo      adminRoleRepository
	profiles  placementRepFlagger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminRoleService constructs an AdminRoleService. profiles may be nil.
func NewAdminRoleService(repo adminRoleRepository, profiles placementRepFlagger, validate *validator.Validate, logger *zap.Logger) *AdminRoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	return &AdminRoleService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// Create grants a role. An email holds at most one active grant.
func (s *AdminRoleService) Create(ctx context.Context, principal *models.Principal, req dto.AdminRoleRequest) (*models.AdminRole, error) {
	if !HasRole(principal, models.RolePlacementCoordinator) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators can grant roles")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindActiveByEmail(ctx, email); err == nil {
		return nil, appErrors.ErrRoleAlreadyActive
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin role")
	}

	createdBy := principal.Email
	role := &models.AdminRole{
		ID:         uuid.NewString(),
		Email:      email,
		Role:       req.Role,
		Name:       strings.TrimSpace(req.Name),
		Department: trimmedOrNil(req.Department),
		Active:     true,
		CreatedBy:  &createdBy,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		if database.IsUniqueViolation(err, repository.ActiveAdminRoleConstraint) {
			return nil, appErrors.ErrRoleAlreadyActive
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin role")
	}
	s.logger.Info("admin role granted", zap.String("email", role.Email), zap.String("role", string(role.Role)), zap.String("by", createdBy))
	if role.Role == models.RolePlacementRep {
		s.syncRepFlag(ctx, role.Email, true)
	}
	return role, nil
}

// List returns grants matching filter.
func (s *AdminRoleService) List(ctx context.Context, filter models.AdminRoleFilter) ([]models.AdminRole, error) {
	roles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admin roles")
	}
	if roles == nil {
		roles = []models.AdminRole{}
	}
	return roles, nil
}

// Deactivate soft-deletes a grant. Coordinators cannot revoke their own grant.
func (s *AdminRoleService) Deactivate(ctx context.Context, principal *models.Principal, id string) error {
	if !HasRole(principal, models.RolePlacementCoordinator) {
		return appErrors.Clone(appErrors.ErrForbidden, "only coordinators can revoke roles")
	}
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin role")
	}
	if strings.EqualFold(role.Email, principal.Email) {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot revoke your own role")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate admin role")
	}
	if role.Role == models.RolePlacementRep {
		s.syncRepFlag(ctx, role.Email, false)
	}
	return nil
}

// syncRepFlag is best-effort: the grant itself already decides placement rep access, and
// a rep who has not registered yet has no profile to flag.
func (s *AdminRoleService) syncRepFlag(ctx context.Context, email string, rep bool) {
	if s.profiles == nil {
		return
	}
	err := s.profiles.SetPlacementRep(ctx, email, rep)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return
	}
	s.logger.Warn("failed to sync placement rep flag", zap.String("email", email), zap.Bool("rep", rep), zap.Error(err))
}
