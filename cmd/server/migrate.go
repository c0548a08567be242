package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"Piazza/internal/db/migrations"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "print migration status instead of migrating",
			},
		},
		Action: runMigrate,
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDatabase(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("failed to close database", zap.Error(closeErr))
		}
	}()

	if cmd.Bool("status") {
		return migrations.Status(ctx, db)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	logger.Info("migrations completed successfully")
	return nil
}

func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
