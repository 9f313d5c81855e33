package data

import "time"

// DerivedRow is the cached per-post output of the viewer transforms.
type DerivedRow struct {
	BatchKey    string    `db:"batch_key"`
	ContentHash string    `db:"content_hash"`
	PostID      string    `db:"post_id"`
	Sentiment   string    `db:"sentiment"`
	Language    string    `db:"language"`
	CreatedAt   time.Time `db:"created_at"`
}
