package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// plainHasher stores passwords with a prefix so tests can read them back
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type staticIssuer struct {
	token string
}

func (s staticIssuer) IssueToken(userID, userName, email string) (string, error) {
	return s.token + ":" + userID, nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo UserRepository) UserService {
	return NewUserService(repo, plainHasher{}, staticIssuer{token: "tok"}, func() time.Time { return fixedNow })
}

const strongPassword = "@1T_secret"

func TestUserService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "olga@example.com").Return(nil, ErrUserNotFound)
		repo.On("GetByUserName", ctx, "olga").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(nil)

		user, err := newTestService(repo).Signup(ctx, SignupRequest{
			Email:    "  Olga@Example.com ",
			UserName: "olga",
			Password: strongPassword,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "olga@example.com", user.Email)
		assert.Equal(t, "hashed:"+strongPassword, user.PasswordHash)
		assert.Equal(t, fixedNow, user.Created)
		assert.Empty(t, user.LikedPostIDs)
		assert.Empty(t, user.DislikedPostIDs)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict and nothing is written", func(t *testing.T) {
		repo := new(MockUserRepository)
		existing := &User{ID: "existing", Email: "olga@example.com", UserName: "olga"}
		repo.On("GetByEmail", ctx, "olga@example.com").Return(existing, nil)

		_, err := newTestService(repo).Signup(ctx, SignupRequest{
			Email:    "olga@example.com",
			UserName: "someone-else",
			Password: strongPassword,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.True(t, IsConflict(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "nick@example.com").Return(nil, ErrUserNotFound)
		repo.On("GetByUserName", ctx, "olga").Return(&User{ID: "existing"}, nil)

		_, err := newTestService(repo).Signup(ctx, SignupRequest{
			Email:    "nick@example.com",
			UserName: "olga",
			Password: strongPassword,
		})
		assert.ErrorIs(t, err, ErrUserNameTaken)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository errors are wrapped", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "nick@example.com").Return(nil, errors.New("connection refused"))

		_, err := newTestService(repo).Signup(ctx, SignupRequest{
			Email:    "nick@example.com",
			UserName: "nick",
			Password: strongPassword,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.False(t, IsConflict(err))
	})
}

func TestUserService_Signup_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"invalid email", SignupRequest{Email: "not-an-email", UserName: "nick", Password: strongPassword}},
		{"display name email", SignupRequest{Email: "Nick <nick@example.com>", UserName: "nick", Password: strongPassword}},
		{"missing username", SignupRequest{Email: "nick@example.com", UserName: "   ", Password: strongPassword}},
		{"weak password", SignupRequest{Email: "nick@example.com", UserName: "nick", Password: "password"}},
		{"password too long to hash", SignupRequest{Email: "nick@example.com", UserName: "nick", Password: "Aa1!" + strings.Repeat("x", 80)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			_, err := newTestService(repo).Signup(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"@1T_secret", true},
		{"Aa1!aaaa", true},
		{"Aa1!", false},
		{"aa1!aaaa", false},
		{"AA1!AAAA", false},
		{"Aab!aaaa", false},
		{"Aa1aaaaa", false},
		{"Aa1!" + strings.Repeat("x", 68), true},
		{"Aa1!" + strings.Repeat("x", 69), false},
		{"Aa1!" + strings.Repeat("x", 80), false},
	}

	for _, tt := range tests {
		err := CheckPasswordStrength(tt.password)
		if tt.valid {
			assert.NoError(t, err, tt.password)
		} else {
			var weak *WeakPasswordError
			assert.ErrorAs(t, err, &weak, tt.password)
		}
	}
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	user := &User{ID: "u-1", Email: "olga@example.com", UserName: "olga", PasswordHash: "hashed:" + strongPassword}

	t.Run("valid credentials issue a token", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "olga@example.com").Return(user, nil)

		resp, err := newTestService(repo).Login(ctx, LoginRequest{Email: "olga@example.com", Password: strongPassword})
		require.NoError(t, err)
		assert.Equal(t, "auth succeeded", resp.Message)
		assert.Equal(t, "tok:u-1", resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "olga@example.com").Return(user, nil)

		_, err := newTestService(repo).Login(ctx, LoginRequest{Email: "olga@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, err := newTestService(repo).Login(ctx, LoginRequest{Email: "ghost@example.com", Password: strongPassword})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_GetUser_InvalidID(t *testing.T) {
	repo := new(MockUserRepository)
	_, err := newTestService(repo).GetUser(context.Background(), "not-a-uuid")
	require.Error(t, err)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReactionSet(t *testing.T) {
	var s ReactionSet
	s = s.Add("a").Add("b").Add("a")
	assert.Equal(t, ReactionSet{"a", "b"}, s)
	assert.True(t, s.Has("b"))

	removed := s.Remove("a")
	assert.Equal(t, ReactionSet{"b"}, removed)
	assert.Equal(t, ReactionSet{"a", "b"}, s, "Remove must not alias the receiver")
	assert.False(t, removed.Has("a"))
}
