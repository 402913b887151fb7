package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator applies the embedded SQL files in name order and records each one
// in schema_migrations so it never runs twice.
type Migrator struct {
	pool  *pgxpool.Pool
	files fs.FS
}

// NewMigrator creates a migration runner over the given SQL files
func NewMigrator(pool *pgxpool.Pool, files fs.FS) *Migrator {
	return &Migrator{
		pool:  pool,
		files: files,
	}
}

// RunMigrations executes all pending database migrations. Each file runs in
// its own transaction together with its bookkeeping row.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log := utils.GetLogger()
	log.Info("Starting database migrations")

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	appliedMigrations, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	migrationFiles, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(migrationFiles)

	migrationsRun := 0
	for _, filename := range migrationFiles {
		// Reset scripts are for manual use only
		if strings.Contains(filename, "reset") {
			log.WithField("file", filename).Debug("Skipping reset script")
			continue
		}
		if appliedMigrations[filename] {
			continue
		}

		content, err := fs.ReadFile(m.files, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		log.WithField("file", filename).Info("Running migration")
		if err := m.apply(ctx, filename, string(content)); err != nil {
			return err
		}
		migrationsRun++
	}

	if migrationsRun > 0 {
		log.WithField("count", migrationsRun).Info("Database migrations applied")
	} else {
		log.Info("All migrations already applied - database is up to date")
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, filename, sql string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to run migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
		filename); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", filename, err)
	}
	return tx.Commit(ctx)
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.pool.Exec(ctx, query)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}
