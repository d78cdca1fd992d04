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

// ActiveAdminRoleConstraint is the partial unique index guarding one active role per email.
const ActiveAdminRoleConstraint = "admin_roles_active_email_key"

const adminRoleColumns = `id, email, role, name, department, active, created_by, created_at, updated_at`

// AdminRoleRepository provides database access for admin role grants.
type AdminRoleRepository struct {
	db *sqlx.DB
}

// NewAdminRoleRepository creates a new instance of AdminRoleRepository.
func NewAdminRoleRepository(db *sqlx.DB) *AdminRoleRepository {
	return &AdminRoleRepository{db: db}
}

// FindActiveByEmail returns the active grant for email.
func (r *AdminRoleRepository) FindActiveByEmail(ctx context.Context, email string) (*models.AdminRole, error) {
	query := `SELECT ` + adminRoleColumns + ` FROM admin_roles WHERE LOWER(email) = LOWER($1) AND active = TRUE LIMIT 1`
	var role models.AdminRole
	if err := r.db.GetContext(ctx, &role, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active admin role: %w", err)
	}
	return &role, nil
}

// FindByID returns a grant by identifier.
func (r *AdminRoleRepository) FindByID(ctx context.Context, id string) (*models.AdminRole, error) {
	query := `SELECT ` + adminRoleColumns + ` FROM admin_roles WHERE id = $1 LIMIT 1`
	var role models.AdminRole
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin role by id: %w", err)
	}
	return &role, nil
}

// List returns grants ordered by newest first.
func (r *AdminRoleRepository) List(ctx context.Context, filter models.AdminRoleFilter) ([]models.AdminRole, error) {
	var where whereBuilder
	if filter.Active != nil {
		where.add("active = ?", *filter.Active)
	}
	if filter.Role != nil {
		where.add("role = ?", *filter.Role)
	}
	if filter.Search != "" {
		where.add("(LOWER(email) LIKE ? OR LOWER(name) LIKE ?)", likePattern(filter.Search))
	}

	query := `SELECT ` + adminRoleColumns + ` FROM admin_roles WHERE 1=1` + where.clause() + ` ORDER BY created_at DESC`
	var roles []models.AdminRole
	if err := r.db.SelectContext(ctx, &roles, query, where.args...); err != nil {
		return nil, fmt.Errorf("list admin roles: %w", err)
	}
	return roles, nil
}

// Create inserts a new grant. A concurrent active grant for the same email fails on the partial unique index.
func (r *AdminRoleRepository) Create(ctx context.Context, role *models.AdminRole) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	const query = `INSERT INTO admin_roles (id, email, role, name, department, active, created_by, created_at, updated_at) VALUES (:id, :email, :role, :name, :department, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create admin role: %w", err)
	}
	return nil
}

// Deactivate flips active to false. Grants are never hard-deleted.
func (r *AdminRoleRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE admin_roles SET active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate admin role: %w", err)
	}
	return requireAffected(res)
}
