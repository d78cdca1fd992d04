package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/events"
)

type mockJobRepo struct {
	jobs      map[string]*models.Job
	listCalls int
	lastList  models.JobFilter
	listErr   error
	expired   []string
}

func newMockJobRepo(jobs ...*models.Job) *mockJobRepo {
	repo := &mockJobRepo{jobs: map[string]*models.Job{}}
	for _, job := range jobs {
		repo.jobs[job.ID] = job
	}
	return repo
}

func (m *mockJobRepo) FindByID(_ context.Context, id string) (*models.Job, error) {
	if job, ok := m.jobs[id]; ok {
		copy := *job
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockJobRepo) List(_ context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	m.listCalls++
	m.lastList = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.Job
	for _, job := range m.jobs {
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		out = append(out, *job)
	}
	return out, len(out), nil
}

func (m *mockJobRepo) Create(_ context.Context, job *models.Job) error {
	copy := *job
	m.jobs[job.ID] = &copy
	return nil
}

func (m *mockJobRepo) Update(_ context.Context, job *models.Job) error {
	if _, ok := m.jobs[job.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *job
	m.jobs[job.ID] = &copy
	return nil
}

func (m *mockJobRepo) UpdateStatus(_ context.Context, id string, status models.JobStatus) error {
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = status
	return nil
}

func (m *mockJobRepo) CloseExpired(_ context.Context, now time.Time) ([]string, error) {
	var ids []string
	for id, job := range m.jobs {
		if job.Status == models.JobStatusActive && job.Deadline.Before(now) {
			job.Status = models.JobStatusClosed
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTestJobService(repo *mockJobRepo, cache *CacheService, pub events.Publisher) *JobService {
	svc := NewJobService(repo, cache, nil, pub, nil, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validJobRequest() dto.JobRequest {
	return dto.JobRequest{
		Title:       " Data Analyst ",
		Company:     "Globex",
		JobType:     models.JobTypeInternship,
		MinCGPA:     "6.5",
		Departments: []string{"ECE", "CSE", "ECE"},
		Deadline:    fixedNow.Add(72 * time.Hour),
	}
}

func TestJobServiceCreateDefaultsAndInvalidates(t *testing.T) {
	repo := newMockJobRepo()
	cacheRepo := newMemoryCache()
	cacheRepo.items["jobs:list:stale"] = []byte(`{}`)
	svc := newTestJobService(repo, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil)

	job, err := svc.Create(context.Background(), &models.Principal{Email: "officer@college.edu"}, validJobRequest())
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", job.Title)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.Equal(t, models.DepartmentList{"ECE", "CSE"}, job.Departments)
	assert.Equal(t, "officer@college.edu", job.CreatedBy)
	assert.Empty(t, cacheRepo.items)
}

func TestJobServiceCreateValidation(t *testing.T) {
	svc := newTestJobService(newMockJobRepo(), nil, nil)

	req := validJobRequest()
	req.Departments = nil
	_, err := svc.Create(context.Background(), nil, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validJobRequest()
	req.Departments = []string{"ARTS"}
	_, err = svc.Create(context.Background(), nil, req)
	require.Error(t, err)

	req = validJobRequest()
	req.Deadline = time.Time{}
	_, err = svc.Create(context.Background(), nil, req)
	require.Error(t, err)
}

func TestJobServiceListStudentViewUsesCache(t *testing.T) {
	draft := sampleJob()
	draft.ID = "job-2"
	draft.Status = models.JobStatusDraft
	repo := newMockJobRepo(sampleJob(), draft)
	svc := newTestJobService(repo, NewCacheService(newMemoryCache(), nil, time.Minute, nil, true), nil)

	jobs, page, hit, err := svc.List(context.Background(), models.JobFilter{}, true)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, 1, page.TotalCount)
	require.NotNil(t, repo.lastList.Status)
	assert.Equal(t, models.JobStatusActive, *repo.lastList.Status)

	jobs, _, hit, err = svc.List(context.Background(), models.JobFilter{}, true)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, repo.listCalls)

	require.NoError(t, svc.UpdateStatus(context.Background(), "job-2", dto.JobStatusRequest{Status: models.JobStatusActive}))
	jobs, _, hit, err = svc.List(context.Background(), models.JobFilter{}, true)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, jobs, 2)
}

func TestJobServiceListErrorIsNotMasked(t *testing.T) {
	repo := newMockJobRepo()
	repo.listErr = errors.New("db down")
	svc := newTestJobService(repo, nil, nil)

	_, _, _, err := svc.List(context.Background(), models.JobFilter{}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestJobServiceEligibilityViews(t *testing.T) {
	closed := sampleJob()
	closed.ID = "job-closed"
	closed.Status = models.JobStatusClosed
	repo := newMockJobRepo(sampleJob(), closed)
	svc := newTestJobService(repo, nil, nil)

	views := svc.WithEligibility(sampleStudent(), []models.Job{*closed})
	require.Len(t, views, 1)
	assert.True(t, views[0].Eligibility.Eligible)

	result, err := svc.Eligibility(context.Background(), sampleStudent(), "job-closed")
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, ReasonInactive, result.Reason)

	result, err = svc.Eligibility(context.Background(), &models.Principal{Email: "x@college.edu"}, "job-1")
	require.NoError(t, err)
	assert.Equal(t, ReasonProfileMissing, result.Reason)

	_, err = svc.Eligibility(context.Background(), sampleStudent(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestJobServiceCloseExpiredPublishes(t *testing.T) {
	expired := sampleJob()
	expired.ID = "job-old"
	expired.Deadline = fixedNow.Add(-time.Hour)
	repo := newMockJobRepo(sampleJob(), expired)
	pub := &recordingPublisher{}
	svc := newTestJobService(repo, nil, pub)

	closed, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, models.JobStatusClosed, repo.jobs["job-old"].Status)
	assert.Equal(t, models.JobStatusActive, repo.jobs["job-1"].Status)
	assert.Equal(t, []string{events.JobClosed}, pub.events)
}

func TestJobServiceUpdateAndAttachment(t *testing.T) {
	repo := newMockJobRepo(sampleJob())
	svc := newTestJobService(repo, nil, nil)

	job, err := svc.Update(context.Background(), "job-1", validJobRequest())
	require.NoError(t, err)
	assert.Equal(t, "Globex", job.Company)

	_, err = svc.Update(context.Background(), "missing", validJobRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	job, err = svc.SetAttachment(context.Background(), "job-1", FileLogo, "logo/abc.png")
	require.NoError(t, err)
	require.NotNil(t, job.LogoFileID)
	assert.Equal(t, "logo/abc.png", *repo.jobs["job-1"].LogoFileID)

	_, err = svc.SetAttachment(context.Background(), "job-1", FileResume, "resume/x.pdf")
	require.Error(t, err)

	err = svc.UpdateStatus(context.Background(), "missing", dto.JobStatusRequest{Status: models.JobStatusClosed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
