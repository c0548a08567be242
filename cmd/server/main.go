package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"Piazza/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  "piazza",
		Usage: "Threaded discussion server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("PIAZZA_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres connection string (overrides the config file)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "human readable debug logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies flags on top of the file and environment configuration
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if url := cmd.String("database-url"); url != "" {
		cfg.Storage.DatabaseURL = url
	}
	if cmd.Bool("dev") {
		cfg.Log.Dev = true
	}
	if cmd.IsSet("addr") {
		cfg.Server.Addr = cmd.String("addr")
	}
	if cmd.IsSet("storage") {
		cfg.Storage.Driver = cmd.String("storage")
	}
	if cmd.Bool("migrate") {
		cfg.Storage.Migrate = true
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Dev {
		zc = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if cfg.Dev && cfg.Level == "" {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
