package post

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var valErr *posts.ValidationError

	switch {
	case errors.As(err, &valErr):
		handlers.WriteError(w, http.StatusBadRequest, "ValidationError", valErr.Message)

	case posts.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Post not found")

	case errors.Is(err, posts.ErrInactive):
		handlers.WriteError(w, http.StatusBadRequest, "InactivePost", posts.ErrInactive.Error())

	case errors.Is(err, posts.ErrNotCommentable):
		handlers.WriteError(w, http.StatusBadRequest, "NotCommentable", posts.ErrNotCommentable.Error())

	case errors.Is(err, interactions.ErrSelfInteraction):
		handlers.WriteError(w, http.StatusBadRequest, "SelfInteraction", interactions.ErrSelfInteraction.Error())

	case errors.Is(err, interactions.ErrActorNotFound):
		handlers.WriteError(w, http.StatusBadRequest, "UserNotFound", "User not found")

	default:
		// Don't leak internal error details to clients
		logger.Error("unexpected error in post handler", zap.Error(err))
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
