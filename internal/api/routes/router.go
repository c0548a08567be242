package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/api/middleware"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// Deps is everything the HTTP layer needs
type Deps struct {
	Posts     posts.Service
	Engine    interactions.Service
	Users     users.UserService
	Presenter *posts.Presenter
	Auth      *middleware.AuthMiddleware
	// RateLimit is optional; nil disables rate limiting
	RateLimit   *middleware.RateLimiter
	Logger      *zap.Logger
	CORSOrigins []string
	// Ping is optional and backs GET /health
	Ping func(ctx context.Context) error
}

// NewRouter builds the full HTTP handler
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				d.Logger.Warn("health check failed", zap.Error(err))
				handlers.WriteError(w, http.StatusServiceUnavailable, "Unavailable", "storage unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	RegisterPostRoutes(r, d)
	RegisterUserRoutes(r, d)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
	})

	return r
}

// limited applies the rate limiter when one is configured
func (d Deps) limited(next http.Handler) http.Handler {
	if d.RateLimit == nil {
		return next
	}
	return d.RateLimit.Middleware(next)
}
