package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

type stubProfileLookup struct {
	profiles map[string]*models.UserProfile
	err      error
}

func (s *stubProfileLookup) FindByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.profiles[email]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type stubRoleLookup struct {
	roles map[string]*models.AdminRole
	err   error
}

func (s *stubRoleLookup) FindActiveByEmail(_ context.Context, email string) (*models.AdminRole, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.roles[email]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func principal(profileRole models.Role, repFlag bool, adminRole models.Role, active bool) *models.Principal {
	p := &models.Principal{Email: "x@college.edu"}
	if profileRole != "" {
		p.Profile = &models.UserProfile{Role: profileRole, IsPlacementRep: repFlag}
	}
	if adminRole != "" {
		p.AdminRole = &models.AdminRole{Role: adminRole, Active: active}
	}
	return p
}

func TestIsPlacementRepIsLogicalOr(t *testing.T) {
	cases := []struct {
		repFlag   bool
		adminRole models.Role
		active    bool
		want      bool
	}{
		{false, "", false, false},
		{true, "", false, true},
		{false, models.RolePlacementRep, true, true},
		{false, models.RolePlacementRep, false, false},
		{true, models.RolePlacementRep, true, true},
		{false, models.RolePlacementOfficer, true, false},
	}
	for _, tc := range cases {
		p := principal(models.RoleStudent, tc.repFlag, tc.adminRole, tc.active)
		assert.Equal(t, tc.want, IsPlacementRep(p), "%+v", tc)
	}
}

func TestPlacementRepHoldsBothCapabilitySets(t *testing.T) {
	p := principal(models.RoleStudent, false, models.RolePlacementRep, true)
	caps := Capabilities(p)

	assert.True(t, caps.Has(models.CapabilityStudent, models.CapabilityAdmin, models.CapabilityPlacementRep))
	assert.False(t, caps.Has(models.CapabilityAdminOnly))
	assert.False(t, HasAdminOnlyAccess(p))
	assert.True(t, HasRole(p, models.RolePlacementRep))
	assert.True(t, HasRole(p, models.RoleStudent))
}

func TestAdminOnlyAccess(t *testing.T) {
	assert.True(t, HasAdminOnlyAccess(principal("", false, models.RolePlacementOfficer, true)))
	assert.True(t, HasAdminOnlyAccess(principal("", false, models.RolePlacementCoordinator, true)))
	assert.False(t, HasAdminOnlyAccess(principal("", false, models.RolePlacementCoordinator, false)))
	assert.False(t, HasAdminOnlyAccess(principal(models.RoleStudent, true, "", false)))
	assert.False(t, IsAdmin(principal(models.RoleStudent, true, "", false)))
	assert.False(t, HasStudentAccess(principal(models.RolePlacementOfficer, false, models.RolePlacementOfficer, true)))
	assert.False(t, IsAdmin(nil))
}

func TestGuardStates(t *testing.T) {
	assert.Equal(t, models.GuardChecking, Guard(true, nil).State)
	assert.Equal(t, models.GuardDecision{State: models.GuardRedirecting, Redirect: models.LandingLogin}, Guard(false, nil, models.CapabilityStudent))

	student := Capabilities(principal(models.RoleStudent, false, "", false))
	assert.Equal(t, models.GuardAuthorized, Guard(false, student, models.CapabilityStudent).State)
	assert.Equal(t, models.LandingStudentDashboard, Guard(false, student, models.CapabilityAdmin).Redirect)

	officer := Capabilities(principal("", false, models.RolePlacementOfficer, true))
	assert.Equal(t, models.LandingAdminDashboard, Guard(false, officer, models.CapabilityStudent).Redirect)

	nobody := Capabilities(&models.Principal{Email: "new@college.edu"})
	assert.Equal(t, models.LandingLogin, Guard(false, nobody, models.CapabilityStudent).Redirect)
}

func TestResolveFailsClosedOnAdminLookupError(t *testing.T) {
	profiles := &stubProfileLookup{profiles: map[string]*models.UserProfile{
		"rep@college.edu": {ID: "p1", Email: "rep@college.edu", Role: models.RoleStudent},
	}}
	roles := &stubRoleLookup{err: errors.New("network down")}
	resolver := NewAccessResolver(profiles, roles, nil)

	p, caps, err := resolver.Resolve(context.Background(), " REP@college.edu ")
	require.NoError(t, err)
	assert.Nil(t, p.AdminRole)
	assert.Equal(t, "rep@college.edu", p.Email)
	assert.True(t, caps.Has(models.CapabilityStudent))
	assert.False(t, caps.HasAny(models.CapabilityAdmin, models.CapabilityAdminOnly))
}

func TestResolveLoadsBothSources(t *testing.T) {
	profiles := &stubProfileLookup{}
	roles := &stubRoleLookup{roles: map[string]*models.AdminRole{
		"coord@college.edu": {Email: "coord@college.edu", Role: models.RolePlacementCoordinator, Active: true},
	}}
	resolver := NewAccessResolver(profiles, roles, nil)

	p, caps, err := resolver.Resolve(context.Background(), "coord@college.edu")
	require.NoError(t, err)
	assert.Nil(t, p.Profile)
	assert.True(t, caps.Has(models.CapabilityAdmin, models.CapabilityAdminOnly, models.RoleCapability(models.RolePlacementCoordinator)))
}

func TestResolveProfileErrorIsInternal(t *testing.T) {
	resolver := NewAccessResolver(&stubProfileLookup{err: errors.New("db down")}, &stubRoleLookup{}, nil)
	_, _, err := resolver.Resolve(context.Background(), "a@college.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")

	_, _, err = resolver.Resolve(context.Background(), "  ")
	require.Error(t, err)
}
