package interactions

import (
	"context"

	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// Service is the interaction engine. Every write to posts and users goes through it
// so that post/comment links and reaction counters stay consistent with user state.
type Service interface {
	// CreatePost creates a root post owned by actor
	CreatePost(ctx context.Context, actor Actor, req posts.CreatePostRequest) (*posts.Post, error)

	// CreateComment creates a comment under parentID and appends it to the parent's
	// childIds in one transaction
	CreateComment(ctx context.Context, actor Actor, parentID string, req posts.CreateCommentRequest) (*posts.Post, error)

	// ToggleLike applies or retracts a like; see toggle for the exact rules
	ToggleLike(ctx context.Context, actor Actor, postID string) (*posts.Post, error)

	// ToggleDislike mirrors ToggleLike
	ToggleDislike(ctx context.Context, actor Actor, postID string) (*posts.Post, error)
}

// Repositories groups the stores an operation may touch
type Repositories interface {
	Posts() posts.Repository
	Users() users.UserRepository
}

// Store is the persistence boundary of the engine.
// InTx runs fn against repositories bound to one transaction: commit if fn returns nil,
// roll back if it returns an error or panics. No partial state is visible afterwards.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(tx Repositories) error) error
}

// Actor is the verified identity performing an operation
type Actor struct {
	ID       string
	UserName string
	Email    string
}
