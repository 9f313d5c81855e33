package models

type RedditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data RedditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type RedditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Score       int     `json:"score"`
	URL         string  `json:"url"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
}
