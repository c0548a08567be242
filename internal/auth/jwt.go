// Package auth issues and verifies bearer tokens and hashes passwords
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails parsing, signature or claim checks
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified principal carried by a token
type Identity struct {
	ID       string
	UserName string
	Email    string
}

// Claims is the token payload
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// Provider signs and verifies HS256 tokens with a shared key
type Provider struct {
	now    func() time.Time
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewProvider creates a token provider. ttl of zero disables expiry.
func NewProvider(key []byte, issuer string, ttl time.Duration) (*Provider, error) {
	if len(key) == 0 {
		return nil, errors.New("jwt signing key must not be empty")
	}
	return &Provider{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken signs a token for the given user
func (p *Provider) IssueToken(userID, userName, email string) (string, error) {
	now := p.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   p.issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
		UserName: userName,
		Email:    email,
	}
	if p.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(p.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and claims of tokenString and returns its identity
func (p *Provider) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Identity{
		ID:       claims.Subject,
		UserName: claims.UserName,
		Email:    claims.Email,
	}, nil
}
