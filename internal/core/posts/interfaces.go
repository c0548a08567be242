package posts

import (
	"context"
	"time"
)

// Service defines the read side of posts: listings, single post lookups and profiles.
// Writes go through the interaction engine so that multi-document invariants hold.
type Service interface {
	// ListPosts returns root posts in the active or expired partition, optionally
	// restricted to a topic, ordered by req.OrderBy (newest first by default)
	ListPosts(ctx context.Context, req ListRequest) ([]*Post, error)

	// GetPost returns a post and its comments in childIds order
	GetPost(ctx context.Context, id string) (*Post, []*Post, error)

	// ListByOwner returns the root posts and the comments written by a user
	ListByOwner(ctx context.Context, ownerID string) (roots []*Post, comments []*Post, err error)
}

// ListRequest is the raw listing input as received from a client
type ListRequest struct {
	Topic   string
	OrderBy string
	Expired bool
}

// ListQuery is a validated listing filter handed to the Repository.
// Expired selects posts created at or before Horizon; otherwise posts created after it.
type ListQuery struct {
	Horizon time.Time
	Topic   *Topic
	Expired bool
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post, returning ErrNotFound if absent.
	// Inside a transaction the row is locked until commit.
	GetByID(ctx context.Context, id string) (*Post, error)

	// GetByIDs retrieves posts in the order of ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*Post, error)

	// ListRoots returns root posts matching q in insertion order
	ListRoots(ctx context.Context, q ListQuery) ([]*Post, error)

	// ListByOwner returns every post (roots and comments) by ownerID in insertion order
	ListByOwner(ctx context.Context, ownerID string) ([]*Post, error)

	// Update persists the mutable fields of a post: childIds and the reaction counters.
	// Returns ErrNotFound if the post no longer exists.
	Update(ctx context.Context, post *Post) error
}
