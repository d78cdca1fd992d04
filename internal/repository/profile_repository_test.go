package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

func TestProfileFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + profileColumns + " FROM user_profiles WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("s@college.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "s@college.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO user_profiles").WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.UserProfile{Email: "s@college.edu", FullName: "S", Role: models.RoleStudent, Department: "CSE", CurrentCGPA: "8.2", ActiveBacklog: models.FlagNo}
	require.NoError(t, repo.Create(context.Background(), profile))
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("UPDATE user_profiles SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.UserProfile{ID: "p1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetPlacementRep(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	query := regexp.QuoteMeta("UPDATE user_profiles SET is_placement_rep = $2, updated_at = $3 WHERE email = $1")
	mock.ExpectExec(query).
		WithArgs("rep@college.edu", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("ghost@college.edu", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetPlacementRep(context.Background(), "rep@college.edu", true))
	assert.ErrorIs(t, repo.SetPlacementRep(context.Background(), "ghost@college.edu", false), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
