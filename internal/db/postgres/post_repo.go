package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"Piazza/internal/core/posts"
)

const postColumns = `id, parent_id, owner_id, title, user_name, content, topics, child_ids,
	likes, dislikes, activity, created_at`

type postgresPostRepo struct {
	db dbtx
	// forUpdate adds FOR UPDATE to single row reads; set for repositories bound to a transaction
	forUpdate bool
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a new post into the posts table
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		INSERT INTO posts (
			id, parent_id, owner_id, title, user_name, content, topics, child_ids,
			likes, dislikes, activity, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12
		)`

	var parentID sql.NullString
	if post.ParentID != nil {
		parentID = sql.NullString{String: *post.ParentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		post.ID, parentID, post.OwnerID, post.Title, post.UserName, post.Content,
		pq.Array(topicStrings(post.Topics)), pq.Array(nonNil(post.ChildIDs)),
		post.Likes, post.Dislikes, post.Activity, post.Created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("post with id %s already exists", post.ID)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by id
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetByIDs retrieves posts in the order of ids, skipping unknown ids
func (r *postgresPostRepo) GetByIDs(ctx context.Context, ids []string) ([]*posts.Post, error) {
	if len(ids) == 0 {
		return []*posts.Post{}, nil
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ANY($1)`
	found, err := r.queryPosts(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}

	byID := make(map[string]*posts.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	result := make([]*posts.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListRoots returns root posts on one side of the expiry horizon, oldest first
func (r *postgresPostRepo) ListRoots(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	var (
		where = []string{"parent_id IS NULL"}
		args  = []any{q.Horizon}
	)
	if q.Expired {
		where = append(where, "created_at <= $1")
	} else {
		where = append(where, "created_at > $1")
	}
	if q.Topic != nil {
		args = append(args, string(*q.Topic))
		where = append(where, fmt.Sprintf("$%d = ANY(topics)", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY seq`

	list, err := r.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list root posts: %w", err)
	}
	return list, nil
}

// ListByOwner returns all posts and comments written by ownerID, oldest first
func (r *postgresPostRepo) ListByOwner(ctx context.Context, ownerID string) ([]*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE owner_id = $1 ORDER BY seq`

	list, err := r.queryPosts(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by owner: %w", err)
	}
	return list, nil
}

// Update writes childIds and the reaction counters back.
// Counters are clamped at zero by GREATEST as well as by the CHECK constraints.
func (r *postgresPostRepo) Update(ctx context.Context, post *posts.Post) error {
	query := `
		UPDATE posts
		SET child_ids = $2,
		    likes = GREATEST(0, $3),
		    dislikes = GREATEST(0, $4),
		    activity = GREATEST(0, $5)
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		post.ID, pq.Array(nonNil(post.ChildIDs)), post.Likes, post.Dislikes, post.Activity)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return posts.ErrNotFound
	}
	return nil
}

func (r *postgresPostRepo) queryPosts(ctx context.Context, query string, args ...any) ([]*posts.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := []*posts.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return result, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		p        posts.Post
		parentID sql.NullString
		topics   []string
		childIDs []string
	)
	err := row.Scan(
		&p.ID, &parentID, &p.OwnerID, &p.Title, &p.UserName, &p.Content,
		pq.Array(&topics), pq.Array(&childIDs),
		&p.Likes, &p.Dislikes, &p.Activity, &p.Created,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		p.ParentID = &parentID.String
	}
	p.Topics = make([]posts.Topic, 0, len(topics))
	for _, t := range topics {
		p.Topics = append(p.Topics, posts.Topic(t))
	}
	p.ChildIDs = nonNil(childIDs)
	p.Created = p.Created.UTC()
	return &p, nil
}

func topicStrings(topics []posts.Topic) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, string(t))
	}
	return out
}

// nonNil keeps pq from writing NULL for an empty array column
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
