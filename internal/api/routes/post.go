package routes

import (
	"github.com/go-chi/chi/v5"

	"Piazza/internal/api/handlers/post"
)

// RegisterPostRoutes registers the /posts endpoints. All of them require authentication.
func RegisterPostRoutes(r chi.Router, d Deps) {
	listHandler := post.NewListHandler(d.Posts, d.Presenter, d.Logger)
	getHandler := post.NewGetHandler(d.Posts, d.Presenter, d.Logger)
	createHandler := post.NewCreateHandler(d.Engine, d.Presenter, d.Logger)
	reactHandler := post.NewReactHandler(d.Engine, d.Presenter, d.Logger)

	r.Route("/posts", func(r chi.Router) {
		// auth runs first so the limiter can key by user
		r.Use(d.Auth.RequireAuth, d.limited)

		r.Get("/", listHandler.HandleList)
		r.Get("/expired", listHandler.HandleListExpired)
		r.Get("/topics", listHandler.HandleTopics)
		r.Get("/topics/{topic}", listHandler.HandleListByTopic)
		r.Get("/topics/{topic}/expired", listHandler.HandleListByTopicExpired)
		r.Get("/{id}", getHandler.HandleGet)

		r.Post("/", createHandler.HandleCreate)
		r.Post("/{id}", createHandler.HandleComment)
		r.Post("/{id}/like", reactHandler.HandleLike)
		r.Post("/{id}/dislike", reactHandler.HandleDislike)
	})
}
