package posts

import (
	"sort"
	"strings"
)

// OrderBy selects the ranking of a listing
type OrderBy string

const (
	// OrderByCreated is the default: newest first
	OrderByCreated  OrderBy = ""
	OrderByLikes    OrderBy = "Likes"
	OrderByDislikes OrderBy = "Dislikes"
	OrderByActivity OrderBy = "Activity"
)

// ParseOrderBy accepts "", "Likes", "Dislikes" or "Activity"
func ParseOrderBy(s string) (OrderBy, error) {
	switch OrderBy(strings.TrimSpace(s)) {
	case OrderByCreated:
		return OrderByCreated, nil
	case OrderByLikes:
		return OrderByLikes, nil
	case OrderByDislikes:
		return OrderByDislikes, nil
	case OrderByActivity:
		return OrderByActivity, nil
	}
	return "", NewValidationError("orderBy", "invalid order by value, allowed values are Likes, Dislikes, Activity")
}

// Sort orders list in place, descending by the selected key.
// The sort is stable, so ties keep the order the store returned them in (insertion order).
func Sort(list []*Post, order OrderBy) {
	var key func(p *Post) int64
	switch order {
	case OrderByLikes:
		key = func(p *Post) int64 { return int64(p.Likes) }
	case OrderByDislikes:
		key = func(p *Post) int64 { return int64(p.Dislikes) }
	case OrderByActivity:
		key = func(p *Post) int64 { return int64(p.Activity) }
	default:
		key = func(p *Post) int64 { return p.Created.UnixNano() }
	}
	sort.SliceStable(list, func(i, j int) bool {
		return key(list[i]) > key(list[j])
	})
}
