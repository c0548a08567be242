package posts

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Topic is one of the fixed discussion categories a root post is filed under.
type Topic string

const (
	TopicPolitics Topic = "Politics"
	TopicHealth   Topic = "Health"
	TopicSports   Topic = "Sports"
	TopicTech     Topic = "Tech"
)

// AllTopics lists the valid topics in display order
var AllTopics = []Topic{TopicPolitics, TopicHealth, TopicSports, TopicTech}

// ParseTopic returns the Topic named by s, or a ValidationError
func ParseTopic(s string) (Topic, error) {
	for _, t := range AllTopics {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewValidationError("topic", "invalid topic provided")
}

// Limits on user supplied text, counted in characters (runes)
const (
	MaxTitleLength   = 64
	MaxContentLength = 512
)

// Post is a root post or a comment.
// A root post has no ParentID and carries a Title; a comment has a ParentID and no Title.
// Comments inherit Topics from their parent and never gain children of their own.
type Post struct {
	Created  time.Time `json:"created" db:"created"`
	ParentID *string   `json:"parentId,omitempty" db:"parent_id"`
	ID       string    `json:"id" db:"id"`
	OwnerID  string    `json:"ownerId" db:"owner_id"`
	Title    string    `json:"title,omitempty" db:"title"`
	UserName string    `json:"userName" db:"user_name"`
	Content  string    `json:"content" db:"content"`
	Topics   []Topic   `json:"topics" db:"topics"`
	ChildIDs []string  `json:"childIds" db:"child_ids"`
	Likes    int       `json:"likes" db:"likes"`
	Dislikes int       `json:"dislikes" db:"dislikes"`
	Activity int       `json:"activity" db:"activity"`
}

// IsRoot reports whether p is a top level post rather than a comment
func (p *Post) IsRoot() bool {
	return p.ParentID == nil
}

// HasTopic reports whether p is filed under t
func (p *Post) HasTopic(t Topic) bool {
	return slices.Contains(p.Topics, t)
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (p *Post) Clone() *Post {
	c := *p
	if p.ParentID != nil {
		parent := *p.ParentID
		c.ParentID = &parent
	}
	c.Topics = slices.Clone(p.Topics)
	c.ChildIDs = slices.Clone(p.ChildIDs)
	if c.ChildIDs == nil {
		c.ChildIDs = []string{}
	}
	return &c
}

// NewID generates a fresh post identifier
func NewID() string {
	return uuid.NewString()
}

// CanonicalID validates an identifier and returns it in canonical (lowercase, hyphenated) form.
// All id comparisons in the system go through this so that equality is defined in one place.
func CanonicalID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", NewValidationError("id", "invalid id provided")
	}
	return id.String(), nil
}

// CreatePostRequest is the input for a new root post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Topics  []string `json:"topics" validate:"required,min=1"`
}

// CreateCommentRequest is the input for a comment under an existing post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
