// Package testutil opens a migrated in-memory database for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

// NewDB returns a migrated sqlite database that is closed with the test.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := repositories.Open(ctx, repositories.DriverSQLite, ":memory:", repositories.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repositories.Migrate(ctx, db))
	return db
}

// SeedProject inserts a project owned by organizationID.
func SeedProject(t testing.TB, db *sqlx.DB, organizationID int64, name string) models.Project {
	t.Helper()
	p := models.Project{OrganizationID: organizationID, Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, repositories.NewProjectRepository(db).Create(context.Background(), &p))
	return p
}
