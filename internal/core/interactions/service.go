package interactions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

type interactionService struct {
	store  Store
	policy posts.ExpiryPolicy
	now    func() time.Time
}

// NewService creates the interaction engine; nil now means time.Now
func NewService(store Store, policy posts.ExpiryPolicy, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &interactionService{
		store:  store,
		policy: policy,
		now:    now,
	}
}

// CreatePost validates and stores a new root post
func (s *interactionService) CreatePost(ctx context.Context, actor Actor, req posts.CreatePostRequest) (*posts.Post, error) {
	actorID, err := posts.CanonicalID(actor.ID)
	if err != nil {
		return nil, err
	}
	if err := validateText("title", req.Title, posts.MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validateText("content", req.Content, posts.MaxContentLength); err != nil {
		return nil, err
	}
	topics, err := parseTopics(req.Topics)
	if err != nil {
		return nil, err
	}

	post := &posts.Post{
		ID:       posts.NewID(),
		OwnerID:  actorID,
		Title:    req.Title,
		UserName: actor.UserName,
		Content:  req.Content,
		Topics:   topics,
		ChildIDs: []string{},
		Created:  s.now().UTC(),
	}

	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// CreateComment stores a comment and links it from its parent atomically
func (s *interactionService) CreateComment(ctx context.Context, actor Actor, parentID string, req posts.CreateCommentRequest) (*posts.Post, error) {
	actorID, err := posts.CanonicalID(actor.ID)
	if err != nil {
		return nil, err
	}
	parentID, err = posts.CanonicalID(parentID)
	if err != nil {
		return nil, err
	}
	if err := validateText("content", req.Content, posts.MaxContentLength); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var comment *posts.Post

	err = s.store.InTx(ctx, func(tx Repositories) error {
		parent, err := tx.Posts().GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		if !parent.IsRoot() {
			return posts.ErrNotCommentable
		}
		if !s.policy.IsActive(parent.Created, now) {
			return posts.ErrInactive
		}

		comment = &posts.Post{
			ID:       posts.NewID(),
			OwnerID:  actorID,
			ParentID: &parent.ID,
			UserName: actor.UserName,
			Content:  req.Content,
			Topics:   slices.Clone(parent.Topics),
			ChildIDs: []string{},
			Created:  now,
		}
		if err := tx.Posts().Create(ctx, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		parent.ChildIDs = append(parent.ChildIDs, comment.ID)
		if err := tx.Posts().Update(ctx, parent); err != nil {
			return fmt.Errorf("failed to link comment to parent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleLike applies or retracts a like by actor on postID
func (s *interactionService) ToggleLike(ctx context.Context, actor Actor, postID string) (*posts.Post, error) {
	return s.react(ctx, actor, postID, Like)
}

// ToggleDislike applies or retracts a dislike by actor on postID
func (s *interactionService) ToggleDislike(ctx context.Context, actor Actor, postID string) (*posts.Post, error) {
	return s.react(ctx, actor, postID, Dislike)
}

// react loads the post and the acting user inside one transaction, applies the toggle
// and writes both back. Nothing is written unless every check passes.
func (s *interactionService) react(ctx context.Context, actor Actor, postID string, r Reaction) (*posts.Post, error) {
	actorID, err := posts.CanonicalID(actor.ID)
	if err != nil {
		return nil, err
	}
	postID, err = posts.CanonicalID(postID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var result *posts.Post

	err = s.store.InTx(ctx, func(tx Repositories) error {
		post, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if !s.policy.IsActive(post.Created, now) {
			return posts.ErrInactive
		}

		user, err := tx.Users().GetByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return ErrActorNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		if post.OwnerID == user.ID {
			return ErrSelfInteraction
		}

		toggle(post, user, r)

		if err := tx.Posts().Update(ctx, post); err != nil {
			return fmt.Errorf("failed to update post counters: %w", err)
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user reactions: %w", err)
		}

		result = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateText enforces a 1..max character length on non-blank text
func validateText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return posts.NewValidationError(field, fmt.Sprintf("%s should be text between 1 and %d characters", field, maxLen))
	}
	if utf8.RuneCountInString(value) > maxLen {
		return posts.NewValidationError(field, fmt.Sprintf("%s should be text between 1 and %d characters", field, maxLen))
	}
	return nil
}

// parseTopics checks topics against the enumeration and drops duplicates
func parseTopics(raw []string) ([]posts.Topic, error) {
	if len(raw) == 0 {
		return nil, posts.NewValidationError("topics", "topics array must have at least one topic")
	}
	topics := make([]posts.Topic, 0, len(raw))
	for _, name := range raw {
		t, err := posts.ParseTopic(name)
		if err != nil {
			return nil, posts.NewValidationError("topics", "invalid topic(s) provided")
		}
		if !slices.Contains(topics, t) {
			topics = append(topics, t)
		}
	}
	return topics, nil
}
