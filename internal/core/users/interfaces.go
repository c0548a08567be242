package users

import "context"

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// Create inserts a user; returns ErrEmailTaken or ErrUserNameTaken on duplicates
	Create(ctx context.Context, user *User) error

	// GetByID returns ErrUserNotFound if absent.
	// Inside a transaction the row is locked until commit.
	GetByID(ctx context.Context, id string) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)

	// Update persists the reaction sets of a user
	Update(ctx context.Context, user *User) error
}

// UserService defines the interface for user business logic
type UserService interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

// PasswordHasher hashes and checks passwords; implemented by the auth package
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs identity tokens; implemented by the auth package
type TokenIssuer interface {
	IssueToken(userID, userName, email string) (string, error)
}
