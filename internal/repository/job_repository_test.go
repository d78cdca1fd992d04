package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

var jobCols = []string{"id", "title", "company", "location", "job_type", "package", "description", "min_cgpa", "no_backlogs", "departments", "deadline", "drive_date", "logo_file_id", "document_file_id", "status", "created_by", "created_at", "updated_at"}

func TestJobFindByIDMaterialisesDepartments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(jobCols).
		AddRow("j1", "SDE", "Acme", "Chennai", "full-time", "12 LPA", "desc", "7.0", true, "CSE, IT,", now, nil, nil, nil, "active", "admin@college.edu", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + jobColumns + " FROM jobs WHERE id = $1 LIMIT 1")).
		WithArgs("j1").
		WillReturnRows(rows)

	job, err := repo.FindByID(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentList{"CSE", "IT"}, job.Departments)
	assert.True(t, job.NoBacklogs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCreateStoresDelimitedDepartments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(sqlmock.AnyArg(), "SDE", "Acme", "", models.JobTypeFullTime, "", "", "7.0", false, "CSE,ECE",
			sqlmock.AnyArg(), nil, nil, nil, models.JobStatusActive, "admin", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.Job{Title: "SDE", Company: "Acme", JobType: models.JobTypeFullTime, MinCGPA: "7.0",
		Departments: models.DepartmentList{"CSE", "ECE"}, Deadline: time.Now().Add(time.Hour), Status: models.JobStatusActive, CreatedBy: "admin"}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobListDepartmentFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	active := models.JobStatusActive
	base := "FROM jobs WHERE 1=1 AND status = $1 AND (',' || departments || ',') LIKE $2"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+jobColumns+" "+base+" ORDER BY deadline ASC LIMIT 20 OFFSET 0")).
		WithArgs(active, "%,CSE,%").
		WillReturnRows(sqlmock.NewRows(jobCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) "+base)).
		WithArgs(active, "%,CSE,%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	jobs, total, err := repo.List(context.Background(), models.JobFilter{Status: &active, Department: "CSE", SortBy: "deadline", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCloseExpired(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs SET status = 'closed', updated_at = $1 WHERE status = 'active' AND deadline < $1 RETURNING id")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("j1").AddRow("j2"))

	ids, err := repo.CloseExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
