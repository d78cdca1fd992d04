package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDeclareGuardConstraints(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "001", migrations[0].Version)

	var schema strings.Builder
	for _, m := range migrations {
		schema.WriteString(m.SQL)
	}
	ddl := schema.String()

	assert.Regexp(t, regexp.MustCompile(`CONSTRAINT `+ApplicationUniqueConstraint+` UNIQUE \(user_id, job_id\)`), ddl)
	assert.Regexp(t, regexp.MustCompile(`CREATE UNIQUE INDEX IF NOT EXISTS `+ActiveAdminRoleConstraint+` ON admin_roles \(email\) WHERE active`), ddl)
	for _, table := range []string{"user_profiles", "admin_roles", "jobs", "applications", "placements", "audit_logs"} {
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestMigrateAppliesPendingFiles(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS user_profiles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("001").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsRecordedVersions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, Migrate(context.Background(), db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePageClampsOversizedPages(t *testing.T) {
	page, size, offset := normalizePage(2, 150)
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, size)
	assert.Equal(t, 100, offset)

	page, size, offset = normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
	assert.Equal(t, 0, offset)
}
