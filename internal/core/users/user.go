package users

import (
	"slices"
	"time"

	"Piazza/internal/core/posts"
)

// User is a registered account together with its current reaction state.
// A post id never appears in both LikedPostIDs and DislikedPostIDs.
type User struct {
	Created         time.Time   `json:"created" db:"created"`
	ID              string      `json:"id" db:"id"`
	UserName        string      `json:"userName" db:"user_name"`
	Email           string      `json:"email" db:"email"`
	PasswordHash    string      `json:"-" db:"password_hash"`
	LikedPostIDs    ReactionSet `json:"likedPostIds" db:"liked_post_ids"`
	DislikedPostIDs ReactionSet `json:"dislikedPostIds" db:"disliked_post_ids"`
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (u *User) Clone() *User {
	c := *u
	c.LikedPostIDs = slices.Clone(u.LikedPostIDs)
	c.DislikedPostIDs = slices.Clone(u.DislikedPostIDs)
	return &c
}

// ReactionSet is an insertion ordered set of canonical post ids.
// Ids are canonicalised by posts.CanonicalID before they reach a set, so plain
// string equality here is the single definition of "same post".
type ReactionSet []string

// Has reports whether id is in the set
func (s ReactionSet) Has(id string) bool {
	return slices.Contains(s, id)
}

// Add returns the set with id appended, unchanged if already present
func (s ReactionSet) Add(id string) ReactionSet {
	if s.Has(id) {
		return s
	}
	return append(s, id)
}

// Remove returns the set without id
func (s ReactionSet) Remove(id string) ReactionSet {
	return slices.DeleteFunc(slices.Clone(s), func(v string) bool { return v == id })
}

// SignupRequest is the input for creating an account
type SignupRequest struct {
	Email    string `json:"email" validate:"required"`
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the input for exchanging credentials for a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued on a successful login
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UserView is the client facing representation of a user; the password hash
// and internal id are never exposed.
type UserView struct {
	Created       time.Time `json:"created"`
	Link          string    `json:"link"`
	UserName      string    `json:"userName"`
	Email         string    `json:"email"`
	LikedPosts    []string  `json:"liked_posts"`
	DislikedPosts []string  `json:"disliked_posts"`
}

// NewUserView shapes u for clients
func NewUserView(u *User) *UserView {
	v := &UserView{
		Created:       u.Created,
		Link:          posts.UserLink(u.ID),
		UserName:      u.UserName,
		Email:         u.Email,
		LikedPosts:    make([]string, 0, len(u.LikedPostIDs)),
		DislikedPosts: make([]string, 0, len(u.DislikedPostIDs)),
	}
	for _, id := range u.LikedPostIDs {
		v.LikedPosts = append(v.LikedPosts, posts.PostLink(id))
	}
	for _, id := range u.DislikedPostIDs {
		v.DislikedPosts = append(v.DislikedPosts, posts.PostLink(id))
	}
	return v
}
