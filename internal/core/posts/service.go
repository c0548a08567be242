package posts

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type postService struct {
	repo   Repository
	policy ExpiryPolicy
	now    func() time.Time
}

// NewPostService creates the read side post service.
// now is the clock used to evaluate the expiry horizon; nil means time.Now.
func NewPostService(repo Repository, policy ExpiryPolicy, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &postService{
		repo:   repo,
		policy: policy,
		now:    now,
	}
}

// ListPosts lists root posts in one side of the expiry partition
func (s *postService) ListPosts(ctx context.Context, req ListRequest) ([]*Post, error) {
	order, err := ParseOrderBy(req.OrderBy)
	if err != nil {
		return nil, err
	}

	q := ListQuery{
		Horizon: s.policy.Horizon(s.now()),
		Expired: req.Expired,
	}
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		t, err := ParseTopic(topic)
		if err != nil {
			return nil, err
		}
		q.Topic = &t
	}

	list, err := s.repo.ListRoots(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	Sort(list, order)
	return list, nil
}

// GetPost returns a post together with its comments
func (s *postService) GetPost(ctx context.Context, id string) (*Post, []*Post, error) {
	id, err := CanonicalID(id)
	if err != nil {
		return nil, nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.repo.GetByIDs(ctx, post.ChildIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load comments: %w", err)
	}

	return post, comments, nil
}

// ListByOwner splits a user's posts into root posts and comments
func (s *postService) ListByOwner(ctx context.Context, ownerID string) ([]*Post, []*Post, error) {
	ownerID, err := CanonicalID(ownerID)
	if err != nil {
		return nil, nil, err
	}

	all, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts by owner: %w", err)
	}

	roots := make([]*Post, 0, len(all))
	comments := make([]*Post, 0, len(all))
	for _, p := range all {
		if p.IsRoot() {
			roots = append(roots, p)
		} else {
			comments = append(comments, p)
		}
	}
	return roots, comments, nil
}
