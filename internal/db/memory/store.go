// Package memory is an in-process Store used for local runs and tests.
// Transactions are serialized by one writer lock and applied copy-on-commit.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// state is the full data set. Slices keep insertion order; maps index into them.
type state struct {
	posts     []*posts.Post
	postIndex map[string]int
	users     []*users.User
	userIndex map[string]int
}

func newState() *state {
	return &state{
		postIndex: make(map[string]int),
		userIndex: make(map[string]int),
	}
}

// clone copies the containers; records are replaced, never mutated in place, so sharing them is safe
func (s *state) clone() *state {
	c := &state{
		posts:     make([]*posts.Post, len(s.posts)),
		postIndex: make(map[string]int, len(s.postIndex)),
		users:     make([]*users.User, len(s.users)),
		userIndex: make(map[string]int, len(s.userIndex)),
	}
	copy(c.posts, s.posts)
	copy(c.users, s.users)
	for k, v := range s.postIndex {
		c.postIndex[k] = v
	}
	for k, v := range s.userIndex {
		c.userIndex[k] = v
	}
	return c
}

// Store holds posts and users in memory
type Store struct {
	mu    sync.RWMutex // guards data
	txMu  sync.Mutex   // one transaction at a time
	data  *state
	posts *postRepo
	users *userRepo
}

// NewStore creates an empty Store
func NewStore() *Store {
	s := &Store{data: newState()}
	s.posts = &postRepo{store: s}
	s.users = &userRepo{store: s}
	return s
}

func (s *Store) Posts() posts.Repository     { return s.posts }
func (s *Store) Users() users.UserRepository { return s.users }

// InTx runs fn against a private copy of the data and swaps it in only if fn succeeds.
// A panic in fn leaves the committed data untouched.
func (s *Store) InTx(ctx context.Context, fn func(tx interactions.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.data.clone()
	s.mu.RUnlock()

	tx := &txStore{data: working}
	tx.posts = &postRepo{tx: tx}
	tx.users = &userRepo{tx: tx}

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

// txStore is the view of a Store inside InTx
type txStore struct {
	data  *state
	posts *postRepo
	users *userRepo
}

func (t *txStore) Posts() posts.Repository     { return t.posts }
func (t *txStore) Users() users.UserRepository { return t.users }

// access runs fn with the right state and lock for a repository.
// Outside a transaction, writes serialize with transactions through txMu.
type access struct {
	store *Store
	tx    *txStore
}

func (a access) read(fn func(d *state) error) error {
	if a.tx != nil {
		return fn(a.tx.data)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.data)
}

func (a access) write(fn func(d *state) error) error {
	if a.tx != nil {
		return fn(a.tx.data)
	}
	a.store.txMu.Lock()
	defer a.store.txMu.Unlock()
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.data)
}

type postRepo struct {
	store *Store
	tx    *txStore
}

func (r *postRepo) access() access { return access{store: r.store, tx: r.tx} }

func (r *postRepo) Create(ctx context.Context, post *posts.Post) error {
	return r.access().write(func(d *state) error {
		if _, ok := d.postIndex[post.ID]; ok {
			return fmt.Errorf("post with id %s already exists", post.ID)
		}
		d.postIndex[post.ID] = len(d.posts)
		d.posts = append(d.posts, post.Clone())
		return nil
	})
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	var out *posts.Post
	err := r.access().read(func(d *state) error {
		i, ok := d.postIndex[id]
		if !ok {
			return posts.ErrNotFound
		}
		out = d.posts[i].Clone()
		return nil
	})
	return out, err
}

func (r *postRepo) GetByIDs(ctx context.Context, ids []string) ([]*posts.Post, error) {
	out := make([]*posts.Post, 0, len(ids))
	err := r.access().read(func(d *state) error {
		for _, id := range ids {
			if i, ok := d.postIndex[id]; ok {
				out = append(out, d.posts[i].Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *postRepo) ListRoots(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	out := []*posts.Post{}
	err := r.access().read(func(d *state) error {
		for _, p := range d.posts {
			if !p.IsRoot() {
				continue
			}
			expired := !p.Created.After(q.Horizon)
			if expired != q.Expired {
				continue
			}
			if q.Topic != nil && !p.HasTopic(*q.Topic) {
				continue
			}
			out = append(out, p.Clone())
		}
		return nil
	})
	return out, err
}

func (r *postRepo) ListByOwner(ctx context.Context, ownerID string) ([]*posts.Post, error) {
	out := []*posts.Post{}
	err := r.access().read(func(d *state) error {
		for _, p := range d.posts {
			if p.OwnerID == ownerID {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	return out, err
}

// Update replaces the stored record's mutable fields with a fresh copy
func (r *postRepo) Update(ctx context.Context, post *posts.Post) error {
	return r.access().write(func(d *state) error {
		i, ok := d.postIndex[post.ID]
		if !ok {
			return posts.ErrNotFound
		}
		next := d.posts[i].Clone()
		next.ChildIDs = post.Clone().ChildIDs
		next.Likes = max(0, post.Likes)
		next.Dislikes = max(0, post.Dislikes)
		next.Activity = max(0, post.Activity)
		d.posts[i] = next
		return nil
	})
}

type userRepo struct {
	store *Store
	tx    *txStore
}

func (r *userRepo) access() access { return access{store: r.store, tx: r.tx} }

func (r *userRepo) Create(ctx context.Context, user *users.User) error {
	return r.access().write(func(d *state) error {
		if _, ok := d.userIndex[user.ID]; ok {
			return fmt.Errorf("user with id %s already exists", user.ID)
		}
		for _, u := range d.users {
			if strings.EqualFold(u.Email, user.Email) {
				return users.ErrEmailTaken
			}
			if u.UserName == user.UserName {
				return users.ErrUserNameTaken
			}
		}
		d.userIndex[user.ID] = len(d.users)
		d.users = append(d.users, user.Clone())
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.ID == id }, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.Email == email }, "")
}

func (r *userRepo) GetByUserName(ctx context.Context, userName string) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.UserName == userName }, "")
}

// find uses the id index when id is set and scans otherwise
func (r *userRepo) find(match func(u *users.User) bool, id string) (*users.User, error) {
	var out *users.User
	err := r.access().read(func(d *state) error {
		if id != "" {
			if i, ok := d.userIndex[id]; ok {
				out = d.users[i].Clone()
				return nil
			}
			return users.ErrUserNotFound
		}
		for _, u := range d.users {
			if match(u) {
				out = u.Clone()
				return nil
			}
		}
		return users.ErrUserNotFound
	})
	return out, err
}

func (r *userRepo) Update(ctx context.Context, user *users.User) error {
	return r.access().write(func(d *state) error {
		i, ok := d.userIndex[user.ID]
		if !ok {
			return users.ErrUserNotFound
		}
		next := d.users[i].Clone()
		fresh := user.Clone()
		next.LikedPostIDs = fresh.LikedPostIDs
		next.DislikedPostIDs = fresh.DislikedPostIDs
		d.users[i] = next
		return nil
	})
}
