package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type mockProfileRepo struct {
	profiles  map[string]*models.UserProfile
	createErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*models.UserProfile{}}
}

func (m *mockProfileRepo) FindByID(_ context.Context, id string) (*models.UserProfile, error) {
	if p, ok := m.profiles[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) FindByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			copy := *p
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileRepo) Create(_ context.Context, p *models.UserProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	copy := *p
	m.profiles[p.ID] = &copy
	return nil
}

func (m *mockProfileRepo) Update(_ context.Context, p *models.UserProfile) error {
	if _, ok := m.profiles[p.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *p
	m.profiles[p.ID] = &copy
	return nil
}

func strPtr(v string) *string { return &v }

func validProfileRequest() dto.ProfileRequest {
	return dto.ProfileRequest{
		FullName:        "Asha Rao",
		Department:      "CSE",
		Batch:           "2025",
		RollNumber:      "21CS001",
		CurrentCGPA:     "8.4",
		ActiveBacklog:   models.FlagNo,
		HistoryOfArrear: models.FlagNo,
		SemesterGrades:  []*string{strPtr("8.1"), nil, strPtr(" 8.6 ")},
	}
}

func TestProfileServiceRegister(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewProfileService(repo, nil, nil, nil)

	profile, err := svc.Register(context.Background(), " Asha@College.edu ", validProfileRequest())
	require.NoError(t, err)
	assert.Equal(t, "asha@college.edu", profile.Email)
	assert.Equal(t, models.RoleStudent, profile.Role)
	assert.False(t, profile.IsPlacementRep)
	require.NotNil(t, profile.Sem1)
	assert.Nil(t, profile.Sem2)
	assert.Equal(t, "8.6", *profile.Sem3)

	_, err = svc.Register(context.Background(), "asha@college.edu", validProfileRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceRegisterMapsUniqueViolation(t *testing.T) {
	repo := newMockProfileRepo()
	repo.createErr = &pq.Error{Code: "23505", Constraint: ProfileEmailConstraint}
	svc := NewProfileService(repo, nil, nil, nil)

	_, err := svc.Register(context.Background(), "asha@college.edu", validProfileRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceRegisterValidation(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo(), nil, nil, nil)

	req := validProfileRequest()
	req.Department = "ARTS"
	_, err := svc.Register(context.Background(), "a@college.edu", req)
	require.Error(t, err)

	req = validProfileRequest()
	req.CurrentCGPA = "abc"
	_, err = svc.Register(context.Background(), "a@college.edu", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceUpdateMineKeepsRole(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["user-1"] = &models.UserProfile{ID: "user-1", Email: "rep@college.edu", Role: models.RoleStudent, IsPlacementRep: true}
	files := &recordingRemover{}
	svc := NewProfileService(repo, files, nil, nil)
	principal := &models.Principal{Email: "rep@college.edu", Profile: repo.profiles["user-1"]}

	updated, err := svc.UpdateMine(context.Background(), principal, validProfileRequest())
	require.NoError(t, err)
	assert.True(t, updated.IsPlacementRep)
	assert.Equal(t, models.RoleStudent, updated.Role)
	assert.Equal(t, "Asha Rao", repo.profiles["user-1"].FullName)

	_, err = svc.SetAttachment(context.Background(), principal, FileResume, "resume/a.pdf")
	require.NoError(t, err)
	_, err = svc.SetAttachment(context.Background(), principal, FileResume, "resume/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"resume/a.pdf"}, files.removed)

	_, err = svc.SetAttachment(context.Background(), principal, FileLogo, "logo/x.png")
	require.Error(t, err)
}

func TestProfileServiceGetMineWithoutProfile(t *testing.T) {
	svc := NewProfileService(newMockProfileRepo(), nil, nil, nil)

	_, err := svc.GetMine(context.Background(), &models.Principal{Email: "new@college.edu"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileIncomplete.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
