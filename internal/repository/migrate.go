package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func (r *Repository) migrationProvider() (*goose.Provider, func() error, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(r.pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, db.Close, nil
}

// Migrate applies every pending migration and returns the resulting version.
func (r *Repository) Migrate(ctx context.Context) (int64, error) {
	provider, closeDB, err := r.migrationProvider()
	if err != nil {
		return 0, err
	}
	defer closeDB()

	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// ResetSchema rolls every migration back and applies them again.
// Intended for tests.
func (r *Repository) ResetSchema(ctx context.Context) error {
	provider, closeDB, err := r.migrationProvider()
	if err != nil {
		return err
	}
	defer closeDB()

	if _, err := provider.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
