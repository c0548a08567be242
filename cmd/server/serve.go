package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"Piazza/internal/api/middleware"
	"Piazza/internal/api/routes"
	"Piazza/internal/auth"
	"Piazza/internal/config"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
	"Piazza/internal/db/memory"
	"Piazza/internal/db/migrations"
	"Piazza/internal/db/postgres"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "storage driver: postgres or memory",
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply migrations before serving",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, ping, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	limiter, closeLimiter, err := buildRateLimiter(cfg.RateLimit, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	provider, err := auth.NewProvider([]byte(cfg.Auth.JWTKey), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	policy := posts.NewExpiryPolicy(cfg.Posts.ExpiryWindow)

	handler := routes.NewRouter(routes.Deps{
		Posts:       posts.NewPostService(store.Posts(), policy, nil),
		Engine:      interactions.NewService(store, policy, nil),
		Users:       users.NewUserService(store.Users(), auth.NewBcryptHasher(cfg.Auth.BcryptCost), provider, nil),
		Presenter:   posts.NewPresenter(policy, nil),
		Auth:        middleware.NewAuthMiddleware(provider, logger),
		RateLimit:   limiter,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Ping:        ping,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Duration("expiry_window", cfg.Posts.ExpiryWindow))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStore returns the configured store, its health check and a cleanup func
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interactions.Store, func(context.Context) error, func(), error) {
	if cfg.Storage.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore(), nil, func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("connected to database")

	if cfg.Storage.Migrate {
		if err := migrations.Up(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		logger.Info("migrations completed successfully")
	}

	store := postgres.NewStore(db, logger)
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
	return store, store.Ping, cleanup, nil
}

// buildRateLimiter picks the redis limiter when a url is configured and the
// in-process one otherwise; zero requests disables limiting
func buildRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) (*middleware.RateLimiter, func(), error) {
	if cfg.Requests <= 0 {
		return nil, func() {}, nil
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opts)
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		}
		limiter := middleware.NewRedisLimiter(client, cfg.Requests, cfg.Window)
		return middleware.NewRateLimiter(limiter, logger), closeFn, nil
	}

	local := middleware.NewLocalLimiter(cfg.Requests, cfg.Window)
	return middleware.NewRateLimiter(local, logger), local.Close, nil
}
