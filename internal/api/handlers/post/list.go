package post

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/posts"
)

// ListHandler serves the root post listings
type ListHandler struct {
	service   posts.Service
	presenter *posts.Presenter
	logger    *zap.Logger
}

// NewListHandler creates a new list handler
func NewListHandler(service posts.Service, presenter *posts.Presenter, logger *zap.Logger) *ListHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListHandler{
		service:   service,
		presenter: presenter,
		logger:    logger,
	}
}

// HandleList handles GET /posts
//
// Query: topic, expired (bool), orderBy (Likes|Dislikes|Activity)
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	expired := false
	if raw := q.Get("expired"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "ValidationError", "expired must be true or false")
			return
		}
		expired = v
	}

	h.list(w, r, posts.ListRequest{
		Topic:   q.Get("topic"),
		OrderBy: q.Get("orderBy"),
		Expired: expired,
	})
}

// HandleListExpired handles GET /posts/expired
func (h *ListHandler) HandleListExpired(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, posts.ListRequest{
		Topic:   r.URL.Query().Get("topic"),
		OrderBy: r.URL.Query().Get("orderBy"),
		Expired: true,
	})
}

// HandleListByTopic handles GET /posts/topics/{topic}
func (h *ListHandler) HandleListByTopic(w http.ResponseWriter, r *http.Request) {
	h.listByTopic(w, r, false)
}

// HandleListByTopicExpired handles GET /posts/topics/{topic}/expired
func (h *ListHandler) HandleListByTopicExpired(w http.ResponseWriter, r *http.Request) {
	h.listByTopic(w, r, true)
}

// HandleTopics handles GET /posts/topics
func (h *ListHandler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string][]posts.Topic{"topics": posts.AllTopics})
}

func (h *ListHandler) listByTopic(w http.ResponseWriter, r *http.Request, expired bool) {
	topic := chi.URLParam(r, "topic")
	if _, err := posts.ParseTopic(topic); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.list(w, r, posts.ListRequest{
		Topic:   topic,
		OrderBy: r.URL.Query().Get("orderBy"),
		Expired: expired,
	})
}

func (h *ListHandler) list(w http.ResponseWriter, r *http.Request, req posts.ListRequest) {
	list, err := h.service.ListPosts(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, h.presenter.Views(list))
}
