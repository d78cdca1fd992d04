package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// ApplicationUniqueConstraint enforces one application per user and job.
const ApplicationUniqueConstraint = "applications_user_job_key"

// MaxExportRows bounds unpaged listings used by exports.
const MaxExportRows = 5000

// ErrExportTooLarge is returned when an export selection exceeds MaxExportRows.
var ErrExportTooLarge = errors.New("export selection exceeds row limit")

const applicationColumns = `a.id, a.job_id, a.user_id, a.job_title, a.company, a.status, a.cover_letter, a.additional_info, a.applied_at, a.updated_at`

var applicationSorts = map[string]string{
	"applied_at": "a.applied_at",
	"updated_at": "a.updated_at",
	"status":     "a.status",
	"company":    "a.company",
}

// ApplicationRepository provides database access for applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1 LIMIT 1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// ExistsForUserJob reports whether userID already applied to jobID.
func (r *ApplicationRepository) ExistsForUserJob(ctx context.Context, userID, jobID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, jobID); err != nil {
		return false, fmt.Errorf("check existing application: %w", err)
	}
	return exists, nil
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	app.UpdatedAt = now

	const query = `INSERT INTO applications (id, job_id, user_id, job_title, company, status, cover_letter, additional_info, applied_at, updated_at) VALUES (:id, :job_id, :user_id, :job_title, :company, :status, :cover_letter, :additional_info, :applied_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status and updated_at. Missing ids yield sql.ErrNoRows.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, at time.Time) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return requireAffected(res)
}

// CountForJob returns the number of applications for a job.
func (r *ApplicationRepository) CountForJob(ctx context.Context, jobID string) (int, error) {
	const query = `SELECT COUNT(*) FROM applications WHERE job_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, jobID); err != nil {
		return 0, fmt.Errorf("count applications for job: %w", err)
	}
	return total, nil
}

// List returns a page of applications matching filter with the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	base, args := r.filtered(filter)
	_, pageSize, offset := normalizePage(filter.Page, filter.PageSize)
	order := orderClause(filter.SortBy, filter.SortOrder, applicationSorts, "applied_at")

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", applicationColumns, base, order, pageSize, offset)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// ListForExport returns every application matching filter, newest first. A selection larger
// than MaxExportRows yields ErrExportTooLarge instead of a truncated list.
func (r *ApplicationRepository) ListForExport(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	base, args := r.filtered(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY a.applied_at DESC LIMIT %d", applicationColumns, base, MaxExportRows+1)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications for export: %w", err)
	}
	if len(apps) > MaxExportRows {
		return nil, ErrExportTooLarge
	}
	return apps, nil
}

func (r *ApplicationRepository) filtered(filter models.ApplicationFilter) (string, []interface{}) {
	var where whereBuilder
	if len(filter.IDs) > 0 {
		where.add("a.id = ANY(?)", pq.Array(filter.IDs))
	}
	if filter.Status != nil {
		where.add("a.status = ?", *filter.Status)
	}
	if filter.JobID != "" {
		where.add("a.job_id = ?", filter.JobID)
	}
	if filter.UserID != "" {
		where.add("a.user_id = ?", filter.UserID)
	}
	if filter.Department != "" {
		where.add("p.department = ?", filter.Department)
	}
	if filter.Search != "" {
		where.add("(LOWER(a.job_title) LIKE ? OR LOWER(a.company) LIKE ? OR LOWER(p.full_name) LIKE ? OR LOWER(p.email) LIKE ?)", likePattern(filter.Search))
	}
	return `FROM applications a LEFT JOIN user_profiles p ON p.id = a.user_id WHERE 1=1` + where.clause(), where.args
}
