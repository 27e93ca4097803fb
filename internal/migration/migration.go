// Package migration creates the schema of the optional saved-views database.
package migration

import (
	"context"
	"database/sql"
	stderrors "errors"

	"heartdash/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Connect opens and pings a PostgreSQL database
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to connect to database")
	}
	return db, nil
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaVersionTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	if err := r.createSavedViewsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create saved_views table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createSchemaVersionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version VARCHAR(20) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSavedViewsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS saved_views (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			selection JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_saved_views_created_at ON saved_views(created_at DESC)
	`)
	return err
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_version (version) VALUES ($1)
		ON CONFLICT (version) DO NOTHING
	`, r.version)
	return err
}

// CurrentVersion returns the latest applied version, or "" when none is
// recorded. The schema_version table must exist.
func CurrentVersion(ctx context.Context, db *sqlx.DB) (string, error) {
	var version string
	err := db.GetContext(ctx, &version, `
		SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1
	`)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.DatabaseError(err.Error()), "failed to read schema version")
	}
	return version, nil
}
