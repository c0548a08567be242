package interactions_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
	"Piazza/internal/db/memory"
)

const window = 48 * time.Hour

// clock is a settable time source
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	store *memory.Store
	clock *clock
	svc   interactions.Service
	posts posts.Service
	alice interactions.Actor
	bob   interactions.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	policy := posts.NewExpiryPolicy(window)

	f := &fixture{
		store: store,
		clock: c,
		svc:   interactions.NewService(store, policy, c.Now),
		posts: posts.NewPostService(store.Posts(), policy, c.Now),
	}
	f.alice = f.addUser(t, "alice")
	f.bob = f.addUser(t, "bob")
	return f
}

func (f *fixture) addUser(t *testing.T, name string) interactions.Actor {
	t.Helper()
	u := &users.User{
		ID:              uuid.NewString(),
		UserName:        name,
		Email:           name + "@example.com",
		LikedPostIDs:    users.ReactionSet{},
		DislikedPostIDs: users.ReactionSet{},
		Created:         f.clock.t,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return interactions.Actor{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

func (f *fixture) post(t *testing.T, actor interactions.Actor, topics ...string) *posts.Post {
	t.Helper()
	if len(topics) == 0 {
		topics = []string{"Tech"}
	}
	p, err := f.svc.CreatePost(context.Background(), actor, posts.CreatePostRequest{
		Title:   "Hello",
		Content: "First post",
		Topics:  topics,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id string) (*posts.Post, []*posts.Post) {
	t.Helper()
	p, comments, err := f.posts.GetPost(context.Background(), id)
	require.NoError(t, err)
	return p, comments
}

func (f *fixture) user(t *testing.T, a interactions.Actor) *users.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	return u
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)

	p := f.post(t, f.alice, "Tech", "Health", "Tech")

	assert.True(t, p.IsRoot())
	assert.Equal(t, f.alice.ID, p.OwnerID)
	assert.Equal(t, "alice", p.UserName)
	assert.Equal(t, []posts.Topic{posts.TopicTech, posts.TopicHealth}, p.Topics, "duplicates dropped")
	assert.Equal(t, f.clock.t, p.Created)
	assert.Zero(t, p.Likes)
	assert.Zero(t, p.Dislikes)
	assert.Zero(t, p.Activity)
	assert.NotNil(t, p.ChildIDs)
	assert.Empty(t, p.ChildIDs)
}

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t)
	long := func(n int) string {
		b := make([]rune, n)
		for i := range b {
			b[i] = 'é'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		req   posts.CreatePostRequest
		field string
	}{
		{"empty title", posts.CreatePostRequest{Title: "", Content: "c", Topics: []string{"Tech"}}, "title"},
		{"blank title", posts.CreatePostRequest{Title: "   ", Content: "c", Topics: []string{"Tech"}}, "title"},
		{"title too long", posts.CreatePostRequest{Title: long(65), Content: "c", Topics: []string{"Tech"}}, "title"},
		{"empty content", posts.CreatePostRequest{Title: "t", Content: "", Topics: []string{"Tech"}}, "content"},
		{"content too long", posts.CreatePostRequest{Title: "t", Content: long(513), Topics: []string{"Tech"}}, "content"},
		{"no topics", posts.CreatePostRequest{Title: "t", Content: "c"}, "topics"},
		{"unknown topic", posts.CreatePostRequest{Title: "t", Content: "c", Topics: []string{"Tech", "Cooking"}}, "topics"},
		{"topic case matters", posts.CreatePostRequest{Title: "t", Content: "c", Topics: []string{"tech"}}, "topics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreatePost(context.Background(), f.alice, tt.req)
			var valErr *posts.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}

	t.Run("limits are inclusive", func(t *testing.T) {
		_, err := f.svc.CreatePost(context.Background(), f.alice, posts.CreatePostRequest{
			Title: long(64), Content: long(512), Topics: []string{"Sports"},
		})
		assert.NoError(t, err)
	})
}

func TestCreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.post(t, f.alice, "Politics", "Sports")

	c1, err := f.svc.CreateComment(ctx, f.bob, root.ID, posts.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)
	c2, err := f.svc.CreateComment(ctx, f.alice, root.ID, posts.CreateCommentRequest{Content: "second"})
	require.NoError(t, err)

	require.NotNil(t, c1.ParentID)
	assert.Equal(t, root.ID, *c1.ParentID)
	assert.Empty(t, c1.Title)
	assert.Equal(t, root.Topics, c1.Topics, "comments inherit topics")
	assert.Equal(t, "bob", c1.UserName)

	got, comments := f.reload(t, root.ID)
	assert.Equal(t, []string{c1.ID, c2.ID}, got.ChildIDs)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	t.Run("comment on a comment", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, f.alice, c1.ID, posts.CreateCommentRequest{Content: "nested"})
		assert.ErrorIs(t, err, posts.ErrNotCommentable)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, f.alice, uuid.NewString(), posts.CreateCommentRequest{Content: "x"})
		assert.ErrorIs(t, err, posts.ErrNotFound)
	})

	t.Run("malformed parent id", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, f.alice, "not-an-id", posts.CreateCommentRequest{Content: "x"})
		assert.True(t, posts.IsValidationError(err))
	})

	t.Run("blank content", func(t *testing.T) {
		_, err := f.svc.CreateComment(ctx, f.alice, root.ID, posts.CreateCommentRequest{Content: " \n"})
		assert.True(t, posts.IsValidationError(err))
	})
}

func TestCreateComment_ExpiredParent(t *testing.T) {
	f := newFixture(t)
	root := f.post(t, f.alice)

	f.clock.t = f.clock.t.Add(window)

	_, err := f.svc.CreateComment(context.Background(), f.bob, root.ID, posts.CreateCommentRequest{Content: "late"})
	assert.ErrorIs(t, err, posts.ErrInactive)

	got, _ := f.reload(t, root.ID)
	assert.Empty(t, got.ChildIDs)

	roots, comments, err := f.posts.ListByOwner(context.Background(), f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, roots)
	assert.Empty(t, comments, "no orphan comment is stored")
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice)

	got, err := f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, 1, got.Activity)
	assert.True(t, f.user(t, f.bob).LikedPostIDs.Has(p.ID))

	got, err = f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 0, got.Activity)
	assert.False(t, f.user(t, f.bob).LikedPostIDs.Has(p.ID))
}

func TestToggle_OppositeOnlyClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice)

	_, err := f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)

	got, err := f.svc.ToggleDislike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 0, got.Dislikes)
	assert.Equal(t, 0, got.Activity)

	bob := f.user(t, f.bob)
	assert.False(t, bob.LikedPostIDs.Has(p.ID))
	assert.False(t, bob.DislikedPostIDs.Has(p.ID))

	got, err = f.svc.ToggleDislike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Dislikes)
	assert.True(t, f.user(t, f.bob).DislikedPostIDs.Has(p.ID))
}

func TestToggle_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("own post", func(t *testing.T) {
		f := newFixture(t)
		p := f.post(t, f.alice)

		_, err := f.svc.ToggleLike(ctx, f.alice, p.ID)
		assert.ErrorIs(t, err, interactions.ErrSelfInteraction)
		_, err = f.svc.ToggleDislike(ctx, f.alice, p.ID)
		assert.ErrorIs(t, err, interactions.ErrSelfInteraction)

		got, _ := f.reload(t, p.ID)
		assert.Zero(t, got.Likes)
		assert.Zero(t, got.Dislikes)
		assert.Empty(t, f.user(t, f.alice).LikedPostIDs)
	})

	t.Run("expired post", func(t *testing.T) {
		f := newFixture(t)
		p := f.post(t, f.alice)
		_, err := f.svc.ToggleLike(ctx, f.bob, p.ID)
		require.NoError(t, err)

		f.clock.t = f.clock.t.Add(window + time.Second)
		_, err = f.svc.ToggleLike(ctx, f.bob, p.ID)
		assert.ErrorIs(t, err, posts.ErrInactive)

		got, _ := f.reload(t, p.ID)
		assert.Equal(t, 1, got.Likes, "counters unchanged")
		assert.True(t, f.user(t, f.bob).LikedPostIDs.Has(p.ID))
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ToggleDislike(ctx, f.bob, uuid.NewString())
		assert.ErrorIs(t, err, posts.ErrNotFound)
	})

	t.Run("unknown actor", func(t *testing.T) {
		f := newFixture(t)
		p := f.post(t, f.alice)
		ghost := interactions.Actor{ID: uuid.NewString(), UserName: "ghost"}

		_, err := f.svc.ToggleLike(ctx, ghost, p.ID)
		assert.ErrorIs(t, err, interactions.ErrActorNotFound)
	})

	t.Run("ids compare canonically", func(t *testing.T) {
		f := newFixture(t)
		p := f.post(t, f.alice)
		upper := interactions.Actor{ID: strings.ToUpper(f.alice.ID), UserName: "alice"}

		_, err := f.svc.ToggleLike(ctx, upper, strings.ToUpper(p.ID))
		assert.ErrorIs(t, err, interactions.ErrSelfInteraction)
	})
}

func TestToggle_CommentsAreReactable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.post(t, f.alice)
	c, err := f.svc.CreateComment(ctx, f.bob, root.ID, posts.CreateCommentRequest{Content: "hi"})
	require.NoError(t, err)

	got, err := f.svc.ToggleLike(ctx, f.alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
}

func TestListPosts_OrderByActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.addUser(t, "carol")

	quiet := f.post(t, f.alice)
	busy := f.post(t, f.alice)

	_, err := f.svc.ToggleLike(ctx, f.bob, busy.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleDislike(ctx, carol, busy.ID)
	require.NoError(t, err)

	list, err := f.posts.ListPosts(ctx, posts.ListRequest{OrderBy: "Activity"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, busy.ID, list[0].ID)
	assert.Equal(t, 2, list[0].Activity)
	assert.Equal(t, quiet.ID, list[1].ID)
}

func TestConcurrentToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice)

	const n = 20
	actors := make([]interactions.Actor, n)
	for i := range actors {
		actors[i] = f.addUser(t, uuid.NewString()[:8])
	}

	errs := make(chan error, n)
	for _, a := range actors {
		go func(a interactions.Actor) {
			_, err := f.svc.ToggleLike(ctx, a, p.ID)
			errs <- err
		}(a)
	}
	for range actors {
		require.NoError(t, <-errs)
	}

	got, _ := f.reload(t, p.ID)
	assert.Equal(t, n, got.Likes, "no lost updates")
	assert.Equal(t, n, got.Activity)
}

// failingStore fails every transaction after fn has run, to prove nothing leaks
type failingStore struct {
	*memory.Store
}

func (s failingStore) InTx(ctx context.Context, fn func(tx interactions.Repositories) error) error {
	return s.Store.InTx(ctx, func(tx interactions.Repositories) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errors.New("commit failed")
	})
}

func TestToggle_FailedCommitLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice)

	svc := interactions.NewService(failingStore{f.store}, posts.NewExpiryPolicy(window), f.clock.Now)

	_, err := svc.ToggleLike(ctx, f.bob, p.ID)
	require.Error(t, err)

	got, _ := f.reload(t, p.ID)
	assert.Zero(t, got.Likes)
	assert.False(t, f.user(t, f.bob).LikedPostIDs.Has(p.ID))

	_, err = svc.CreateComment(ctx, f.bob, p.ID, posts.CreateCommentRequest{Content: "x"})
	require.Error(t, err)
	got, _ = f.reload(t, p.ID)
	assert.Empty(t, got.ChildIDs)
}
