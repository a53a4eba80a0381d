package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"product_api/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

const maxRetries = 5

// Init opens the pgx pool and waits for Postgres to answer, backing off
// linearly between attempts.
func Init(ctx context.Context, dbCfg *config.DBConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("pgx", dbCfg.URL)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to open database connection (attempt %d/%d)", i+1, maxRetries)
			if !sleep(ctx, time.Duration(i+1)*time.Second) {
				return nil, ctx.Err()
			}
			continue
		}

		if err = db.PingContext(ctx); err != nil {
			logrus.WithError(err).Warnf("Failed to ping database (attempt %d/%d)", i+1, maxRetries)
			if cerr := db.Close(); cerr != nil {
				logrus.WithError(cerr).Warn("Failed to close database connection")
			}
			if !sleep(ctx, time.Duration(i+1)*time.Second) {
				return nil, ctx.Err()
			}
			continue
		}

		break
	}

	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logrus.Info("Database connection established successfully")
	return db, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
