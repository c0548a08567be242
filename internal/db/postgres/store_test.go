package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
	"Piazza/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL and runs migrations; the test is skipped without it
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, migrations.Up(context.Background(), db), "Failed to run migrations")

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM posts")
		_, _ = db.Exec("DELETE FROM users")
		_ = db.Close()
	})
	return db
}

func createTestUser(t *testing.T, store *Store, name string) *users.User {
	t.Helper()
	u := &users.User{
		ID:              uuid.NewString(),
		UserName:        name,
		Email:           name + "@example.com",
		PasswordHash:    "hash",
		LikedPostIDs:    users.ReactionSet{},
		DislikedPostIDs: users.ReactionSet{},
		Created:         time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func createTestPost(t *testing.T, store *Store, owner *users.User, created time.Time, topics ...posts.Topic) *posts.Post {
	t.Helper()
	p := &posts.Post{
		ID:       posts.NewID(),
		OwnerID:  owner.ID,
		Title:    "title",
		UserName: owner.UserName,
		Content:  "content",
		Topics:   topics,
		ChildIDs: []string{},
		Created:  created.UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Posts().Create(context.Background(), p))
	return p
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")

	byID, err := store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, byID.Email)
	assert.Empty(t, byID.LikedPostIDs)
	assert.NotNil(t, byID.LikedPostIDs)

	byEmail, err := store.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byName, err := store.Users().GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = store.Users().GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestUserRepo_Create_Duplicates(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")

	dupEmail := &users.User{ID: uuid.NewString(), UserName: "other", Email: alice.Email, PasswordHash: "x", Created: time.Now()}
	assert.ErrorIs(t, store.Users().Create(ctx, dupEmail), users.ErrEmailTaken)

	dupName := &users.User{ID: uuid.NewString(), UserName: "alice", Email: "other@example.com", PasswordHash: "x", Created: time.Now()}
	assert.ErrorIs(t, store.Users().Create(ctx, dupName), users.ErrUserNameTaken)
}

func TestPostRepo_ListRoots_Partition(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	now := time.Now().UTC()
	horizon := now.Add(-48 * time.Hour)

	old := createTestPost(t, store, alice, now.Add(-72*time.Hour), posts.TopicTech)
	fresh := createTestPost(t, store, alice, now.Add(-time.Hour), posts.TopicTech, posts.TopicHealth)
	sports := createTestPost(t, store, alice, now.Add(-2*time.Hour), posts.TopicSports)

	active, err := store.Posts().ListRoots(ctx, posts.ListQuery{Horizon: horizon})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, fresh.ID, active[0].ID, "insertion order")
	assert.Equal(t, sports.ID, active[1].ID)

	expired, err := store.Posts().ListRoots(ctx, posts.ListQuery{Horizon: horizon, Expired: true})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)

	health := posts.TopicHealth
	byTopic, err := store.Posts().ListRoots(ctx, posts.ListQuery{Horizon: horizon, Topic: &health})
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	assert.Equal(t, []posts.Topic{posts.TopicTech, posts.TopicHealth}, byTopic[0].Topics)
}

func TestPostRepo_GetByIDs_KeepsRequestOrder(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	a := createTestPost(t, store, alice, time.Now(), posts.TopicTech)
	b := createTestPost(t, store, alice, time.Now(), posts.TopicTech)

	got, err := store.Posts().GetByIDs(ctx, []string{b.ID, uuid.NewString(), a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestStore_InTx_CommitAndRollback(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	post := createTestPost(t, store, alice, time.Now(), posts.TopicTech)

	err := store.InTx(ctx, func(tx interactions.Repositories) error {
		p, err := tx.Posts().GetByID(ctx, post.ID)
		if err != nil {
			return err
		}
		p.Likes, p.Activity = 1, 1
		if err := tx.Posts().Update(ctx, p); err != nil {
			return err
		}
		u, err := tx.Users().GetByID(ctx, bob.ID)
		if err != nil {
			return err
		}
		u.LikedPostIDs = u.LikedPostIDs.Add(post.ID)
		return tx.Users().Update(ctx, u)
	})
	require.NoError(t, err)

	saved, err := store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Likes)

	savedBob, err := store.Users().GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, savedBob.LikedPostIDs.Has(post.ID))

	boom := errors.New("boom")
	err = store.InTx(ctx, func(tx interactions.Repositories) error {
		p, err := tx.Posts().GetByID(ctx, post.ID)
		if err != nil {
			return err
		}
		p.Likes = 5
		if err := tx.Posts().Update(ctx, p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Likes, "rolled back update must not be visible")
}

func TestPostRepo_Update_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t), nil)

	err := store.Posts().Update(context.Background(), &posts.Post{ID: uuid.NewString()})
	assert.ErrorIs(t, err, posts.ErrNotFound)
}
