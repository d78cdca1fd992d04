package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type profileLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
}

type adminRoleLookup interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.AdminRole, error)
}

// IsAdmin reports whether the principal holds an active admin role.
func IsAdmin(p *models.Principal) bool {
	return activeAdminRole(p) != nil
}

// IsPlacementRep is true when either the admin role or the profile flag says so.
func IsPlacementRep(p *models.Principal) bool {
	if role := activeAdminRole(p); role != nil && role.Role == models.RolePlacementRep {
		return true
	}
	return p != nil && p.Profile != nil && p.Profile.IsPlacementRep
}

// HasStudentAccess reports whether the principal may use student pages.
func HasStudentAccess(p *models.Principal) bool {
	if p != nil && p.Profile != nil && p.Profile.Role == models.RoleStudent {
		return true
	}
	return IsPlacementRep(p)
}

// HasAdminOnlyAccess is limited to officers and coordinators. Placement reps are excluded.
func HasAdminOnlyAccess(p *models.Principal) bool {
	role := activeAdminRole(p)
	return role != nil && (role.Role == models.RolePlacementOfficer || role.Role == models.RolePlacementCoordinator)
}

// HasRole checks the role against both the active admin role and the profile.
func HasRole(p *models.Principal, role models.Role) bool {
	if admin := activeAdminRole(p); admin != nil && admin.Role == role {
		return true
	}
	return p != nil && p.Profile != nil && p.Profile.Role == role
}

func activeAdminRole(p *models.Principal) *models.AdminRole {
	if p == nil || p.AdminRole == nil || !p.AdminRole.Active || !p.AdminRole.Role.IsAdminRole() {
		return nil
	}
	return p.AdminRole
}

// Capabilities evaluates every predicate once and returns the resulting tag set.
func Capabilities(p *models.Principal) models.CapabilitySet {
	set := models.CapabilitySet{}
	if p == nil {
		return set
	}
	if HasStudentAccess(p) {
		set[models.CapabilityStudent] = struct{}{}
	}
	if IsAdmin(p) {
		set[models.CapabilityAdmin] = struct{}{}
	}
	if HasAdminOnlyAccess(p) {
		set[models.CapabilityAdminOnly] = struct{}{}
	}
	if IsPlacementRep(p) {
		set[models.CapabilityPlacementRep] = struct{}{}
	}
	for _, role := range []models.Role{models.RoleStudent, models.RolePlacementRep, models.RolePlacementOfficer, models.RolePlacementCoordinator} {
		if HasRole(p, role) {
			set[models.RoleCapability(role)] = struct{}{}
		}
	}
	return set
}

// LandingPage picks where a principal goes when a guard rejects it.
func LandingPage(caps models.CapabilitySet) string {
	switch {
	case caps.Has(models.CapabilityAdminOnly):
		return models.LandingAdminDashboard
	case caps.Has(models.CapabilityStudent):
		return models.LandingStudentDashboard
	default:
		return models.LandingLogin
	}
}

// Guard evaluates a route guard. While the principal is still loading the state stays checking.
// A nil capability set means no authenticated principal.
func Guard(loading bool, caps models.CapabilitySet, required ...models.Capability) models.GuardDecision {
	if loading {
		return models.GuardDecision{State: models.GuardChecking}
	}
	if caps == nil {
		return models.GuardDecision{State: models.GuardRedirecting, Redirect: models.LandingLogin}
	}
	if caps.Has(required...) {
		return models.GuardDecision{State: models.GuardAuthorized}
	}
	return models.GuardDecision{State: models.GuardRedirecting, Redirect: LandingPage(caps)}
}

// AccessResolver loads the two authorization sources for an email.
type AccessResolver struct {
	profiles profileLookup
	roles    adminRoleLookup
	logger   *zap.Logger
}

// NewAccessResolver constructs an AccessResolver.
func NewAccessResolver(profiles profileLookup, roles adminRoleLookup, logger *zap.Logger) *AccessResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessResolver{profiles: profiles, roles: roles, logger: logger}
}

// Resolve builds the principal and its capability set.
// A failing admin role lookup is logged and treated as no admin role.
func (r *AccessResolver) Resolve(ctx context.Context, email string) (*models.Principal, models.CapabilitySet, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	principal := &models.Principal{Email: email}

	profile, err := r.profiles.FindByEmail(ctx, email)
	switch {
	case err == nil:
		principal.Profile = profile
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	role, err := r.roles.FindActiveByEmail(ctx, email)
	switch {
	case err == nil:
		principal.AdminRole = role
	case errors.Is(err, sql.ErrNoRows):
	default:
		r.logger.Warn("admin role lookup failed, denying admin capabilities", zap.String("email", email), zap.Error(err))
	}

	return principal, Capabilities(principal), nil
}
