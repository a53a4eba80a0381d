package db

import (
	"context"
	"database/sql"
	"fmt"

	"product_api/internal/db/migrations"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Migrate creates the products and users tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(logrus.StandardLogger())

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
