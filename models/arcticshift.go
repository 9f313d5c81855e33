package models

type ArcticShiftSearchResponse[T any] struct {
	Data  []T    `json:"data"`
	Error string `json:"error"`
}

type ArcticShiftPost struct {
	ID          string `json:"id"`
	Subreddit   string `json:"subreddit"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	URL         string `json:"url"`
	NumComments int    `json:"num_comments"`
	CreatedUTC  int64  `json:"created_utc"`
}
