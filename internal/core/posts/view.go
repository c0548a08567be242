package posts

import "time"

// Post types shown to clients
const (
	TypePost    = "Post"
	TypeComment = "comment"
)

// PostView is the client facing representation of a post.
// Internal ids, the owner id and child ids are replaced by links and a comment count.
type PostView struct {
	Created    time.Time `json:"created"`
	Title      string    `json:"title,omitempty"`
	Link       string    `json:"link"`
	UserLink   string    `json:"user_link"`
	ParentLink string    `json:"parent_link,omitempty"`
	UserName   string    `json:"userName"`
	Content    string    `json:"content"`
	PostType   string    `json:"post_type"`
	Status     string    `json:"status"`
	ExpiresIn  string    `json:"expires_in"`
	Topics     []Topic   `json:"topics"`
	Likes      int       `json:"likes"`
	Dislikes   int       `json:"dislikes"`
	Activity   int       `json:"activity"`
	Comments   int       `json:"comments"`
}

// PostLink is the canonical URL path of a post
func PostLink(id string) string {
	return "/posts/" + id
}

// UserLink is the canonical URL path of a user profile
func UserLink(id string) string {
	return "/user/" + id
}

// NewPostView shapes p for clients, deriving status and time left at now
func NewPostView(p *Post, policy ExpiryPolicy, now time.Time) *PostView {
	v := &PostView{
		Created:   p.Created,
		Title:     p.Title,
		Link:      PostLink(p.ID),
		UserLink:  UserLink(p.OwnerID),
		UserName:  p.UserName,
		Content:   p.Content,
		PostType:  TypePost,
		Status:    policy.Status(p, now),
		ExpiresIn: policy.ExpiresIn(p.Created, now),
		Topics:    p.Topics,
		Likes:     p.Likes,
		Dislikes:  p.Dislikes,
		Activity:  p.Activity,
		Comments:  len(p.ChildIDs),
	}
	if !p.IsRoot() {
		v.PostType = TypeComment
		v.Title = ""
		v.ParentLink = PostLink(*p.ParentID)
	}
	if v.Topics == nil {
		v.Topics = []Topic{}
	}
	return v
}

// NewPostViews shapes a list of posts with a single evaluation instant
func NewPostViews(list []*Post, policy ExpiryPolicy, now time.Time) []*PostView {
	views := make([]*PostView, 0, len(list))
	for _, p := range list {
		views = append(views, NewPostView(p, policy, now))
	}
	return views
}

// Presenter evaluates every view it builds against one clock and one expiry policy
type Presenter struct {
	Now    func() time.Time
	Policy ExpiryPolicy
}

// NewPresenter creates a presenter; nil now means time.Now
func NewPresenter(policy ExpiryPolicy, now func() time.Time) *Presenter {
	if now == nil {
		now = time.Now
	}
	return &Presenter{Policy: policy, Now: now}
}

// View shapes a single post
func (pr *Presenter) View(p *Post) *PostView {
	return NewPostView(p, pr.Policy, pr.Now())
}

// Views shapes a list of posts
func (pr *Presenter) Views(list []*Post) []*PostView {
	return NewPostViews(list, pr.Policy, pr.Now())
}
