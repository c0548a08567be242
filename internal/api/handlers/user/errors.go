package user

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// handleServiceError maps user service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var idErr *posts.ValidationError

	switch {
	case users.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "ValidationError", err.Error())

	case errors.As(err, &idErr):
		handlers.WriteError(w, http.StatusBadRequest, "ValidationError", idErr.Message)

	case errors.Is(err, users.ErrEmailTaken):
		handlers.WriteError(w, http.StatusConflict, "Conflict", "Email already in use")

	case errors.Is(err, users.ErrUserNameTaken):
		handlers.WriteError(w, http.StatusConflict, "Conflict", "Username already in use")

	case errors.Is(err, users.ErrInvalidCredentials):
		handlers.WriteError(w, http.StatusUnauthorized, "AuthFailed", "Auth Failed")

	case errors.Is(err, users.ErrUserNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "user not found")

	default:
		logger.Error("unexpected error in user handler", zap.Error(err))
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
