package main

import (
	"context"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"Piazza/internal/auth"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
	"Piazza/internal/seed"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Populate the database with demo users, posts and reactions",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 8, Usage: "number of demo users"},
			&cli.IntFlag{Name: "posts", Value: 20, Usage: "number of root posts"},
			&cli.IntFlag{Name: "comments", Value: 3, Usage: "comments per post"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed"},
		},
		Action: runSeed,
	}
}

func runSeed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, _, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := auth.NewProvider([]byte(cfg.Auth.JWTKey), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	seeder := seed.NewSeeder(
		users.NewUserService(store.Users(), auth.NewBcryptHasher(cfg.Auth.BcryptCost), provider, nil),
		interactions.NewService(store, posts.NewExpiryPolicy(cfg.Posts.ExpiryWindow), nil),
		seed.Options{
			Users:           int(cmd.Int("users")),
			Posts:           int(cmd.Int("posts")),
			CommentsPerPost: int(cmd.Int("comments")),
			Seed:            cmd.Int64("seed"),
		},
	)

	summary, err := seeder.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("seeded demo data",
		zap.Int("users", summary.Users),
		zap.Int("posts", summary.Posts),
		zap.Int("comments", summary.Comments),
		zap.Int("reactions", summary.Reactions),
		zap.String("password", seed.DemoPassword))
	return nil
}
