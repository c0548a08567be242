package post

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
)

// ReactHandler handles like and dislike toggles
type ReactHandler struct {
	engine    interactions.Service
	presenter *posts.Presenter
	logger    *zap.Logger
}

// NewReactHandler creates a new react handler
func NewReactHandler(engine interactions.Service, presenter *posts.Presenter, logger *zap.Logger) *ReactHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReactHandler{
		engine:    engine,
		presenter: presenter,
		logger:    logger,
	}
}

// HandleLike handles POST /posts/{id}/like
func (h *ReactHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.engine.ToggleLike)
}

// HandleDislike handles POST /posts/{id}/dislike
func (h *ReactHandler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.engine.ToggleDislike)
}

type toggleFunc func(ctx context.Context, actor interactions.Actor, postID string) (*posts.Post, error)

func (h *ReactHandler) react(w http.ResponseWriter, r *http.Request, toggle toggleFunc) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	post, err := toggle(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, h.presenter.View(post))
}
