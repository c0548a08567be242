package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/api/middleware"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// ProfileResponse is a user with their root posts and comments
type ProfileResponse struct {
	User     *users.UserView   `json:"user"`
	Posts    []*posts.PostView `json:"posts"`
	Comments []*posts.PostView `json:"comments"`
}

// ProfileHandler serves user profiles
type ProfileHandler struct {
	users     users.UserService
	posts     posts.Service
	presenter *posts.Presenter
	logger    *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService users.UserService, postService posts.Service, presenter *posts.Presenter, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{
		users:     userService,
		posts:     postService,
		presenter: presenter,
		logger:    logger,
	}
}

// HandleMe handles GET /user
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		handlers.WriteError(w, http.StatusForbidden, "AuthenticationRequired", "token is missing")
		return
	}
	h.profile(w, r, id.ID)
}

// HandleGet handles GET /user/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.profile(w, r, chi.URLParam(r, "id"))
}

func (h *ProfileHandler) profile(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	roots, comments, err := h.posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, ProfileResponse{
		User:     users.NewUserView(user),
		Posts:    h.presenter.Views(roots),
		Comments: h.presenter.Views(comments),
	})
}
