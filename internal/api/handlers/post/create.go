package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/api/middleware"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
)

// CreateHandler handles post and comment creation
type CreateHandler struct {
	engine    interactions.Service
	presenter *posts.Presenter
	logger    *zap.Logger
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(engine interactions.Service, presenter *posts.Presenter, logger *zap.Logger) *CreateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateHandler{
		engine:    engine,
		presenter: presenter,
		logger:    logger,
	}
}

// HandleCreate handles POST /posts
//
// Request body: { "title": "...", "content": "...", "topics": ["Tech"] }
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req posts.CreatePostRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	post, err := h.engine.CreatePost(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, h.presenter.View(post))
}

// HandleComment handles POST /posts/{id}
//
// Request body: { "content": "..." }
func (h *CreateHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req posts.CreateCommentRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	comment, err := h.engine.CreateComment(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusCreated, h.presenter.View(comment))
}

// actorFrom reads the authenticated identity set by the auth middleware
func actorFrom(w http.ResponseWriter, r *http.Request) (interactions.Actor, bool) {
	id := middleware.GetIdentity(r)
	if id == nil {
		handlers.WriteError(w, http.StatusForbidden, "AuthenticationRequired", "token is missing")
		return interactions.Actor{}, false
	}
	return interactions.Actor{ID: id.ID, UserName: id.UserName, Email: id.Email}, true
}
