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

const placementColumns = `id, user_id, job_id, application_id, student_name, student_email, roll_number, department, batch, company, position, package, location, offer_date, joining_date, placement_date, testimonial, photo_file_id, offer_letter_file_id, created_by, created_at, updated_at`

var placementSorts = map[string]string{
	"placement_date": "placement_date",
	"created_at":     "created_at",
	"company":        "company",
	"student_name":   "student_name",
}

// PlacementRepository provides database access for placement records.
type PlacementRepository struct {
	db *sqlx.DB
}

// NewPlacementRepository creates a new instance of PlacementRepository.
func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

// FindByID returns a placement by identifier.
func (r *PlacementRepository) FindByID(ctx context.Context, id string) (*models.Placement, error) {
	query := `SELECT ` + placementColumns + ` FROM placements WHERE id = $1 LIMIT 1`
	var placement models.Placement
	if err := r.db.GetContext(ctx, &placement, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find placement by id: %w", err)
	}
	return &placement, nil
}

// List returns placements matching filter with the total count.
func (r *PlacementRepository) List(ctx context.Context, filter models.PlacementFilter) ([]models.Placement, int, error) {
	var where whereBuilder
	if filter.Company != "" {
		where.add("LOWER(company) = LOWER(?)", filter.Company)
	}
	if filter.Department != "" {
		where.add("department = ?", filter.Department)
	}
	if filter.Batch != "" {
		where.add("batch = ?", filter.Batch)
	}
	if filter.Search != "" {
		where.add("(LOWER(student_name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(position) LIKE ?)", likePattern(filter.Search))
	}

	base := `FROM placements WHERE 1=1` + where.clause()
	_, pageSize, offset := normalizePage(filter.Page, filter.PageSize)
	order := orderClause(filter.SortBy, filter.SortOrder, placementSorts, "placement_date")

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", placementColumns, base, order, pageSize, offset)
	var placements []models.Placement
	if err := r.db.SelectContext(ctx, &placements, listQuery, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list placements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count placements: %w", err)
	}
	return placements, total, nil
}

// Create inserts a new placement.
func (r *PlacementRepository) Create(ctx context.Context, placement *models.Placement) error {
	if placement.ID == "" {
		placement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if placement.CreatedAt.IsZero() {
		placement.CreatedAt = now
	}
	placement.UpdatedAt = now

	const query = `INSERT INTO placements (id, user_id, job_id, application_id, student_name, student_email, roll_number, department, batch, company, position, package, location, offer_date, joining_date, placement_date, testimonial, photo_file_id, offer_letter_file_id, created_by, created_at, updated_at) VALUES (:id, :user_id, :job_id, :application_id, :student_name, :student_email, :roll_number, :department, :batch, :company, :position, :package, :location, :offer_date, :joining_date, :placement_date, :testimonial, :photo_file_id, :offer_letter_file_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, placement); err != nil {
		return fmt.Errorf("create placement: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a placement.
func (r *PlacementRepository) Update(ctx context.Context, placement *models.Placement) error {
	placement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE placements SET user_id = :user_id, job_id = :job_id, application_id = :application_id, student_name = :student_name, student_email = :student_email, roll_number = :roll_number, department = :department, batch = :batch, company = :company, position = :position, package = :package, location = :location, offer_date = :offer_date, joining_date = :joining_date, placement_date = :placement_date, testimonial = :testimonial, photo_file_id = :photo_file_id, offer_letter_file_id = :offer_letter_file_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, placement)
	if err != nil {
		return fmt.Errorf("update placement: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a placement.
func (r *PlacementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM placements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return requireAffected(res)
}
