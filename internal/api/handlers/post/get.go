package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/posts"
)

// GetPostResponse is a post with its comments in childIds order
type GetPostResponse struct {
	Post     *posts.PostView   `json:"post"`
	Comments []*posts.PostView `json:"comments"`
}

// GetHandler serves single posts
type GetHandler struct {
	service   posts.Service
	presenter *posts.Presenter
	logger    *zap.Logger
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service, presenter *posts.Presenter, logger *zap.Logger) *GetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetHandler{
		service:   service,
		presenter: presenter,
		logger:    logger,
	}
}

// HandleGet handles GET /posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, comments, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, GetPostResponse{
		Post:     h.presenter.View(post),
		Comments: h.presenter.Views(comments),
	})
}
