package interactions

import (
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// Reaction is a like or a dislike
type Reaction int

const (
	Like Reaction = iota + 1
	Dislike
)

func (r Reaction) String() string {
	switch r {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	}
	return "unknown"
}

// Outcome records what a toggle did
type Outcome int

const (
	// Applied means the reaction was added
	Applied Outcome = iota + 1
	// Retracted means the same reaction was present and has been removed
	Retracted
	// ClearedOpposite means the opposite reaction was present and has been removed.
	// The requested reaction is not added in the same call.
	ClearedOpposite
)

// toggle applies reaction r by user u to post p, mutating both.
//
//   - u already has r on p: retract it
//   - u has the opposite reaction on p: retract the opposite, nothing else
//   - otherwise: apply r
//
// Every retraction decrements activity and every application increments it.
// Counters never go below zero.
func toggle(p *posts.Post, u *users.User, r Reaction) Outcome {
	sameCount, oppositeCount := &p.Likes, &p.Dislikes
	sameSet, oppositeSet := &u.LikedPostIDs, &u.DislikedPostIDs
	if r == Dislike {
		sameCount, oppositeCount = oppositeCount, sameCount
		sameSet, oppositeSet = oppositeSet, sameSet
	}

	switch {
	case sameSet.Has(p.ID):
		*sameCount = decrement(*sameCount)
		p.Activity = decrement(p.Activity)
		*sameSet = sameSet.Remove(p.ID)
		return Retracted
	case oppositeSet.Has(p.ID):
		*oppositeCount = decrement(*oppositeCount)
		p.Activity = decrement(p.Activity)
		*oppositeSet = oppositeSet.Remove(p.ID)
		return ClearedOpposite
	default:
		*sameCount++
		p.Activity++
		*sameSet = sameSet.Add(p.ID)
		return Applied
	}
}

func decrement(n int) int {
	return max(0, n-1)
}
