package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Piazza/internal/core/users"
)

const userColumns = `id, user_name, email, password_hash, liked_post_ids, disliked_post_ids, created_at`

type postgresUserRepo struct {
	db        dbtx
	forUpdate bool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) error {
	query := `
		INSERT INTO users (id, user_name, email, password_hash, liked_post_ids, disliked_post_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash,
		pq.Array(nonNil(user.LikedPostIDs)), pq.Array(nonNil(user.DislikedPostIDs)),
		user.Created,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case "users_email_key":
				return users.ErrEmailTaken
			case "users_user_name_key":
				return users.ErrUserNameTaken
			}
			return fmt.Errorf("user with id %s already exists", user.ID)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by normalized email
func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByUserName retrieves a user by username
func (r *postgresUserRepo) GetByUserName(ctx context.Context, userName string) (*users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
}

// Update writes the reaction sets back
func (r *postgresUserRepo) Update(ctx context.Context, user *users.User) error {
	query := `UPDATE users SET liked_post_ids = $2, disliked_post_ids = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID, pq.Array(nonNil(user.LikedPostIDs)), pq.Array(nonNil(user.DislikedPostIDs)))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	var (
		u        users.User
		liked    []string
		disliked []string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UserName, &u.Email, &u.PasswordHash,
		pq.Array(&liked), pq.Array(&disliked), &u.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.LikedPostIDs = users.ReactionSet(nonNil(liked))
	u.DislikedPostIDs = users.ReactionSet(nonNil(disliked))
	u.Created = u.Created.UTC()
	return &u, nil
}
