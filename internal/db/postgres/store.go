// Package postgres implements the persistence interfaces on PostgreSQL via lib/pq
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation pq.ErrorCode = "23505"

// dbtx is the subset of *sql.DB and *sql.Tx used by the repositories
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store binds the post and user repositories to one database and runs transactions across them
type Store struct {
	db     *sql.DB
	posts  *postgresPostRepo
	users  *postgresUserRepo
	logger *zap.Logger
}

// NewStore creates a Store over db
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		posts:  &postgresPostRepo{db: db},
		users:  &postgresUserRepo{db: db},
		logger: logger,
	}
}

func (s *Store) Posts() posts.Repository     { return s.posts }
func (s *Store) Users() users.UserRepository { return s.users }

// InTx runs fn inside a READ COMMITTED transaction.
// Single row reads inside fn take row locks, so concurrent toggles on the same
// post or by the same user serialize instead of losing updates.
func (s *Store) InTx(ctx context.Context, fn func(tx interactions.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.Error("failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(&txRepos{
		posts: &postgresPostRepo{db: tx, forUpdate: true},
		users: &postgresUserRepo{db: tx, forUpdate: true},
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type txRepos struct {
	posts *postgresPostRepo
	users *postgresUserRepo
}

func (t *txRepos) Posts() posts.Repository     { return t.posts }
func (t *txRepos) Users() users.UserRepository { return t.users }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
