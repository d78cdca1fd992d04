package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

var adminRoleCols = []string{"id", "email", "role", "name", "department", "active", "created_by", "created_at", "updated_at"}

func TestAdminRoleFindActiveByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRoleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + adminRoleColumns + " FROM admin_roles WHERE LOWER(email) = LOWER($1) AND active = TRUE LIMIT 1")).
		WithArgs("rep@college.edu").
		WillReturnRows(sqlmock.NewRows(adminRoleCols).AddRow("r1", "rep@college.edu", "placement_rep", "Rep", "CSE", true, nil, now, now))

	role, err := repo.FindActiveByEmail(context.Background(), "rep@college.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RolePlacementRep, role.Role)
	require.NotNil(t, role.Department)
	assert.Equal(t, "CSE", *role.Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRoleFindActiveByEmailMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRoleRepository(db)

	mock.ExpectQuery("FROM admin_roles").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByEmail(context.Background(), "nobody@college.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRoleListSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRoleRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + adminRoleColumns + " FROM admin_roles WHERE 1=1 AND active = $1 AND (LOWER(email) LIKE $2 OR LOWER(name) LIKE $2) ORDER BY created_at DESC")).
		WithArgs(true, "%off%").
		WillReturnRows(sqlmock.NewRows(adminRoleCols))

	roles, err := repo.List(context.Background(), models.AdminRoleFilter{Active: &active, Search: " Off "})
	require.NoError(t, err)
	assert.Empty(t, roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRoleDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRoleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admin_roles SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
