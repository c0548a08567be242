package posts

import (
	"fmt"
	"math"
	"time"
)

// Status values shown to clients
const (
	StatusLive    = "Live"
	StatusExpired = "Expired"
)

// ExpiryPolicy decides whether a post still accepts comments and reactions.
// The window is process wide; posts carry no expiry of their own.
type ExpiryPolicy struct {
	Window time.Duration
}

// NewExpiryPolicy creates a policy with the given trailing window
func NewExpiryPolicy(window time.Duration) ExpiryPolicy {
	return ExpiryPolicy{Window: window}
}

// Horizon is the instant before which posts are expired, evaluated at now
func (e ExpiryPolicy) Horizon(now time.Time) time.Time {
	return now.Add(-e.Window)
}

// IsActive reports whether a post created at created is still interactive at now.
// A post is active iff created is strictly after now - window.
func (e ExpiryPolicy) IsActive(created, now time.Time) bool {
	return created.After(e.Horizon(now))
}

// Status returns StatusLive or StatusExpired for p at now
func (e ExpiryPolicy) Status(p *Post, now time.Time) string {
	if e.IsActive(p.Created, now) {
		return StatusLive
	}
	return StatusExpired
}

// TimeLeft is the remaining interactive time for a post, zero once expired
func (e ExpiryPolicy) TimeLeft(created, now time.Time) time.Duration {
	left := created.Sub(e.Horizon(now))
	if left < 0 {
		return 0
	}
	return left
}

// ExpiresIn renders TimeLeft as "N hours left" while more than an hour remains,
// otherwise "N minutes left".
func (e ExpiryPolicy) ExpiresIn(created, now time.Time) string {
	hours := e.TimeLeft(created, now).Hours()
	if hours > 1 {
		return fmt.Sprintf("%d hours left", int(math.Floor(hours)))
	}
	return fmt.Sprintf("%d minutes left", int(math.Floor(hours*60)))
}
