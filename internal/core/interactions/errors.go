package interactions

import "errors"

var (
	// ErrSelfInteraction indicates an owner tried to like or dislike their own post
	ErrSelfInteraction = errors.New("you cannot react to your own post")

	// ErrActorNotFound indicates the token refers to a user that no longer exists
	ErrActorNotFound = errors.New("user not found")
)
