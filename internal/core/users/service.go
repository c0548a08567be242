package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"Piazza/internal/core/posts"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes  = 72
	maxUserNameLength = 64
)

type userService struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	now      func() time.Time
}

// NewUserService creates a new user service; nil now means time.Now
func NewUserService(userRepo UserRepository, hasher PasswordHasher, tokens TokenIssuer, now func() time.Time) UserService {
	if now == nil {
		now = time.Now
	}
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		now:      now,
	}
}

// Signup registers a new account.
// Email and username must both be unused; the repository enforces the same rule for races.
func (s *userService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	email, userName, err := s.validateSignup(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.GetByUserName(ctx, userName); err == nil {
		return nil, ErrUserNameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:              uuid.NewString(),
		UserName:        userName,
		Email:           email,
		PasswordHash:    hash,
		LikedPostIDs:    ReactionSet{},
		DislikedPostIDs: ReactionSet{},
		Created:         s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a bearer token
func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID, user.UserName, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResponse{
		Message: "auth succeeded",
		Token:   token,
	}, nil
}

// GetUser retrieves a user by id
func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	id, err := posts.CanonicalID(id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) validateSignup(req SignupRequest) (string, string, error) {
	email := normalizeEmail(req.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", &InvalidEmailError{Email: req.Email}
	}

	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		return "", "", &InvalidUserNameError{UserName: req.UserName, Reason: "username needs to be supplied"}
	}
	if utf8.RuneCountInString(userName) > maxUserNameLength {
		return "", "", &InvalidUserNameError{UserName: req.UserName, Reason: "username is too long"}
	}

	if err := CheckPasswordStrength(req.Password); err != nil {
		return "", "", err
	}

	return email, userName, nil
}

// CheckPasswordStrength requires at least 8 characters and at most 72 bytes, with a
// lowercase letter, an uppercase letter, a digit and a symbol.
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return &WeakPasswordError{Reason: "passwords need to be at least 8 characters long"}
	}
	if len(password) > maxPasswordBytes {
		return &WeakPasswordError{Reason: "passwords can be at most 72 bytes long"}
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	switch {
	case !lower:
		return &WeakPasswordError{Reason: "at least one lowercase letter is required"}
	case !upper:
		return &WeakPasswordError{Reason: "at least one uppercase letter is required"}
	case !digit:
		return &WeakPasswordError{Reason: "at least one number is required"}
	case !symbol:
		return &WeakPasswordError{Reason: "at least one symbol is required"}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
