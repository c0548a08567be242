package routes

import (
	"github.com/go-chi/chi/v5"

	"Piazza/internal/api/handlers/user"
)

// RegisterUserRoutes registers the /user endpoints.
// Signup and login are public; profiles require authentication.
func RegisterUserRoutes(r chi.Router, d Deps) {
	accountHandler := user.NewAccountHandler(d.Users, d.Logger)
	profileHandler := user.NewProfileHandler(d.Users, d.Posts, d.Presenter, d.Logger)

	r.Route("/user", func(r chi.Router) {
		r.With(d.limited).Post("/signup", accountHandler.HandleSignup)
		r.With(d.limited).Post("/login", accountHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.RequireAuth, d.limited)
			r.Get("/", profileHandler.HandleMe)
			r.Get("/{id}", profileHandler.HandleGet)
		})
	})
}
