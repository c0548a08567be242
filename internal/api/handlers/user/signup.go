package user

import (
	"net/http"

	"go.uber.org/zap"

	"Piazza/internal/api/handlers"
	"Piazza/internal/core/users"
)

// AccountHandler handles signup and login
type AccountHandler struct {
	service users.UserService
	logger  *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service users.UserService, logger *zap.Logger) *AccountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSignup handles POST /user/signup
//
// Request body: { "email": "...", "userName": "...", "password": "..." }
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req users.SignupRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user signed up", zap.String("user_id", user.ID))
	handlers.WriteJSON(w, http.StatusCreated, users.NewUserView(user))
}

// HandleLogin handles POST /user/login
//
// Request body: { "email": "...", "password": "..." }
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req users.LoginRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, resp)
}
