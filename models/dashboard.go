package models

import "time"

type GetFilesResponse struct {
	Files []string `json:"files"`
}

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Score       int       `json:"score"`
	URL         string    `json:"url"`
	NumComments int       `json:"numComments"`
	CreatedUTC  time.Time `json:"createdUtc"`
	PlayerTag   string    `json:"playerTag,omitempty"`
	Sentiment   string    `json:"sentiment"`
	Language    string    `json:"language,omitempty"`
}

type GetPostsResponse struct {
	File        string         `json:"file"`
	Players     []string       `json:"players"`
	Total       int            `json:"total"`
	AvgComments float64        `json:"avgComments"`
	AvgScore    float64        `json:"avgScore"`
	Sentiments  map[string]int `json:"sentiments"`
	Posts       []Post         `json:"posts"`
	Top         []Post         `json:"top"`
}
