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

const profileColumns = `id, email, personal_email, full_name, role, is_placement_rep, department, batch, roll_number, phone, current_cgpa, active_backlog, history_of_arrear, backlog_count, tenth_percentage, twelfth_percentage, sem1, sem2, sem3, sem4, sem5, sem6, sem7, sem8, resume_file_id, photo_file_id, linkedin_url, github_url, portfolio_url, created_at, updated_at`

// ProfileRepository provides database access for user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1 LIMIT 1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// FindByEmail returns a profile by institutional email.
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	return &profile, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO user_profiles (id, email, personal_email, full_name, role, is_placement_rep, department, batch, roll_number, phone, current_cgpa, active_backlog, history_of_arrear, backlog_count, tenth_percentage, twelfth_percentage, sem1, sem2, sem3, sem4, sem5, sem6, sem7, sem8, resume_file_id, photo_file_id, linkedin_url, github_url, portfolio_url, created_at, updated_at) VALUES (:id, :email, :personal_email, :full_name, :role, :is_placement_rep, :department, :batch, :roll_number, :phone, :current_cgpa, :active_backlog, :history_of_arrear, :backlog_count, :tenth_percentage, :twelfth_percentage, :sem1, :sem2, :sem3, :sem4, :sem5, :sem6, :sem7, :sem8, :resume_file_id, :photo_file_id, :linkedin_url, :github_url, :portfolio_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update overwrites the self-service fields. Role and the placement rep flag are left untouched.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_profiles SET personal_email = :personal_email, full_name = :full_name, department = :department, batch = :batch, roll_number = :roll_number, phone = :phone, current_cgpa = :current_cgpa, active_backlog = :active_backlog, history_of_arrear = :history_of_arrear, backlog_count = :backlog_count, tenth_percentage = :tenth_percentage, twelfth_percentage = :twelfth_percentage, sem1 = :sem1, sem2 = :sem2, sem3 = :sem3, sem4 = :sem4, sem5 = :sem5, sem6 = :sem6, sem7 = :sem7, sem8 = :sem8, resume_file_id = :resume_file_id, photo_file_id = :photo_file_id, linkedin_url = :linkedin_url, github_url = :github_url, portfolio_url = :portfolio_url, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(res)
}

// SetPlacementRep sets the placement rep flag on the profile registered under email.
func (r *ProfileRepository) SetPlacementRep(ctx context.Context, email string, rep bool) error {
	const query = `UPDATE user_profiles SET is_placement_rep = $2, updated_at = $3 WHERE email = $1`
	res, err := r.db.ExecContext(ctx, query, email, rep, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set placement rep flag: %w", err)
	}
	return requireAffected(res)
}

// requireAffected converts a zero-row update into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
