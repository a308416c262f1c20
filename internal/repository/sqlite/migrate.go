package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/kmoran-dev/soundshelf/internal/repository/sqlite/migrations"
)

// Migrate brings the schema up to date. Every embedded .sql file runs at
// most once, each inside its own transaction; schema_migrations records
// what has already run, so calling Migrate repeatedly is safe.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.SqlDB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			run_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := db.migrationsRun(ctx)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	// Glob returns names sorted, and the files are numbered, so this is
	// also the application order.
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}

	for _, name := range names {
		if _, ok := done[name]; ok {
			continue
		}
		if err := db.runMigration(ctx, name); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		slog.Info("schema migration run", "name", name)
	}
	return nil
}

func (db *DB) migrationsRun(ctx context.Context) (map[string]struct{}, error) {
	rows, err := db.SqlDB.QueryContext(ctx, "SELECT name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = struct{}{}
	}
	return done, rows.Err()
}

func (db *DB) runMigration(ctx context.Context, name string) error {
	script, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	tx, err := db.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("mark as run: %w", err)
	}
	return tx.Commit()
}
