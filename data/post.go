package data

import "time"

// Post is one forum submission as captured at fetch time.
type Post struct {
	ID          string
	Title       string
	Score       int
	URL         string
	NumComments int
	CreatedUTC  time.Time
}

// DedupeByID keeps the first occurrence of every post ID, preserving order.
func DedupeByID(posts []Post) []Post {
	seen := make(map[string]bool, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
