// Package seed fills a store with demo users, posts, comments and reactions
// through the regular services so that every invariant holds for the result.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"Piazza/internal/core/interactions"
	"Piazza/internal/core/posts"
	"Piazza/internal/core/users"
)

// DemoPassword satisfies the signup password rules
const DemoPassword = "Piazza!2024"

var userNames = []string{
	"sarah_jenkins", "michael_chen", "jessica_rodriguez", "david_nguyen",
	"emily_williams", "james_patel", "ashley_garcia", "robert_kim",
	"jennifer_lee", "william_martinez", "amanda_johnson", "daniel_brown",
}

var titles = map[posts.Topic][]string{
	posts.TopicPolitics: {"Council votes on the housing bill", "Turnout numbers are in", "Debate night recap"},
	posts.TopicHealth:   {"New clinic opening downtown", "Flu season tips", "Sleep and productivity"},
	posts.TopicSports:   {"Season opener tonight", "Trade deadline rumours", "Marathon results"},
	posts.TopicTech:     {"Go 1.24 is out", "Self hosting a mail server", "Keyboard recommendations?"},
}

var bodies = []string{
	"Curious what everyone here thinks about this.",
	"Long time reader, first post. Thoughts welcome.",
	"Sharing this because it came up at work today.",
	"Not sure how I feel about it yet.",
}

var replies = []string{
	"Absolutely agree!",
	"Couldn't have said it better myself.",
	"I see it differently, but fair point.",
	"Do you have a source for that?",
	"This is the first I've heard of it.",
	"Thanks for posting.",
}

// Options controls how much data is generated
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// Seed makes runs reproducible
	Seed int64
}

// Summary counts what was created
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Reactions int
}

// Seeder writes demo data through the user service and the interaction engine
type Seeder struct {
	users   users.UserService
	engine  interactions.Service
	options Options
	rng     *rand.Rand
}

func NewSeeder(userService users.UserService, engine interactions.Service, opts Options) *Seeder {
	if opts.Users < 2 {
		opts.Users = 2
	}
	return &Seeder{
		users:   userService,
		engine:  engine,
		options: opts,
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}
}

// Run creates the users first, then posts with comments, then reactions from
// everyone except each post's owner.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	actors := make([]interactions.Actor, 0, s.options.Users)
	for i := 0; i < s.options.Users; i++ {
		name := userNames[i%len(userNames)]
		if i >= len(userNames) {
			name = fmt.Sprintf("%s_%d", name, i/len(userNames))
		}
		user, err := s.users.Signup(ctx, users.SignupRequest{
			Email:    name + "@piazza.local",
			UserName: name,
			Password: DemoPassword,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to create user %s: %w", name, err)
		}
		actors = append(actors, interactions.Actor{ID: user.ID, UserName: user.UserName, Email: user.Email})
		summary.Users++
	}

	for i := 0; i < s.options.Posts; i++ {
		owner := actors[s.rng.Intn(len(actors))]
		topic := posts.AllTopics[s.rng.Intn(len(posts.AllTopics))]
		candidates := titles[topic]

		post, err := s.engine.CreatePost(ctx, owner, posts.CreatePostRequest{
			Title:   candidates[s.rng.Intn(len(candidates))],
			Content: bodies[s.rng.Intn(len(bodies))],
			Topics:  []string{string(topic)},
		})
		if err != nil {
			return summary, fmt.Errorf("failed to create post: %w", err)
		}
		summary.Posts++

		for j := 0; j < s.options.CommentsPerPost; j++ {
			author := actors[s.rng.Intn(len(actors))]
			if _, err := s.engine.CreateComment(ctx, author, post.ID, posts.CreateCommentRequest{
				Content: replies[s.rng.Intn(len(replies))],
			}); err != nil {
				return summary, fmt.Errorf("failed to create comment: %w", err)
			}
			summary.Comments++
		}

		for _, actor := range actors {
			if actor.ID == owner.ID {
				continue
			}
			var err error
			switch s.rng.Intn(3) {
			case 0:
				_, err = s.engine.ToggleLike(ctx, actor, post.ID)
			case 1:
				_, err = s.engine.ToggleDislike(ctx, actor, post.ID)
			default:
				continue
			}
			if err != nil {
				return summary, fmt.Errorf("failed to react to post: %w", err)
			}
			summary.Reactions++
		}
	}

	return summary, nil
}
