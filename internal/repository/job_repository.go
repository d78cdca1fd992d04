package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const jobColumns = `id, title, company, location, job_type, package, description, min_cgpa, no_backlogs, departments, deadline, drive_date, logo_file_id, document_file_id, status, created_by, created_at, updated_at`

var jobSorts = map[string]string{
	"created_at": "created_at",
	"deadline":   "deadline",
	"company":    "company",
	"title":      "title",
}

// JobRepository provides database access for job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new instance of JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// FindByID returns a posting by identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 LIMIT 1`
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return &job, nil
}

// List returns postings matching filter with the total count.
// The department filter matches a whole entry of the stored comma separated list.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	var where whereBuilder
	if filter.Status != nil {
		where.add("status = ?", *filter.Status)
	}
	if filter.JobType != nil {
		where.add("job_type = ?", *filter.JobType)
	}
	if filter.Department != "" {
		where.add("(',' || departments || ',') LIKE ?", "%,"+filter.Department+",%")
	}
	if filter.Search != "" {
		where.add("(LOWER(title) LIKE ? OR LOWER(company) LIKE ?)", likePattern(filter.Search))
	}

	base := `FROM jobs WHERE 1=1` + where.clause()
	_, pageSize, offset := normalizePage(filter.Page, filter.PageSize)
	order := orderClause(filter.SortBy, filter.SortOrder, jobSorts, "created_at")

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", jobColumns, base, order, pageSize, offset)
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

// Create inserts a new posting.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	const query = `INSERT INTO jobs (id, title, company, location, job_type, package, description, min_cgpa, no_backlogs, departments, deadline, drive_date, logo_file_id, document_file_id, status, created_by, created_at, updated_at) VALUES (:id, :title, :company, :location, :job_type, :package, :description, :min_cgpa, :no_backlogs, :departments, :deadline, :drive_date, :logo_file_id, :document_file_id, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a posting.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs SET title = :title, company = :company, location = :location, job_type = :job_type, package = :package, description = :description, min_cgpa = :min_cgpa, no_backlogs = :no_backlogs, departments = :departments, deadline = :deadline, drive_date = :drive_date, logo_file_id = :logo_file_id, document_file_id = :document_file_id, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return requireAffected(res)
}

// UpdateStatus sets the status of a posting.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	const query = `UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return requireAffected(res)
}

// CloseExpired closes active postings whose deadline is before now and returns their ids.
func (r *JobRepository) CloseExpired(ctx context.Context, now time.Time) ([]string, error) {
	const query = `UPDATE jobs SET status = 'closed', updated_at = $1 WHERE status = 'active' AND deadline < $1 RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, now); err != nil {
		return nil, fmt.Errorf("close expired jobs: %w", err)
	}
	return ids, nil
}
