package handlers

import (
	"net/http"

	"github.com/kova98/nbainsights/dashboard"
	"github.com/kova98/nbainsights/models"
	"github.com/pkg/errors"
)

type APIHandler struct {
	loader *BatchLoader
}

func NewAPIHandler(loader *BatchLoader) *APIHandler {
	return &APIHandler{loader}
}

func (h *APIHandler) GetFiles(w http.ResponseWriter, r *http.Request) Result {
	files, err := h.loader.Files(r.Context())
	if err != nil {
		return InternalError(err, "list batch files: ")
	}
	if files == nil {
		files = []string{}
	}

	return Ok(models.GetFilesResponse{Files: files})
}

func (h *APIHandler) GetPosts(w http.ResponseWriter, r *http.Request) Result {
	files, err := h.loader.Files(r.Context())
	if err != nil {
		return InternalError(err, "list batch files: ")
	}
	if len(files) == 0 {
		return NotFound(NoFilesWarning)
	}

	filter, msg := parseFilter(r.URL.Query())
	if msg != "" {
		return BadRequest(msg)
	}

	key, err := resolveFile(files, r.URL.Query().Get("file"))
	if err != nil {
		return InternalError(err, "resolve batch file: ")
	}

	batch, err := h.loader.Load(r.Context(), key)
	if err != nil {
		return InternalError(err, "load batch: ")
	}

	res := models.GetPostsResponse{
		File:       key,
		Players:    batch.Players,
		Sentiments: map[string]int{},
		Posts:      []models.Post{},
		Top:        []models.Post{},
	}
	if res.Players == nil {
		res.Players = []string{}
	}

	view, err := h.loader.Analyze(batch, filter)
	if errors.Is(err, dashboard.ErrNoPosts) {
		return Ok(res)
	}
	if err != nil {
		return InternalError(err, "analyze batch: ")
	}

	res.Total = view.Total
	res.AvgComments = view.AvgComments
	res.AvgScore = view.AvgScore
	for _, c := range view.Sentiments {
		res.Sentiments[string(c.Sentiment)] = c.Count
	}
	res.Posts = toModelPosts(view.Rows)
	res.Top = toModelPosts(view.Top)

	return Ok(res)
}

func toModelPosts(rows []dashboard.Row) []models.Post {
	posts := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, models.Post{
			ID:          r.ID,
			Title:       r.Title,
			Score:       r.Score,
			URL:         r.URL,
			NumComments: r.NumComments,
			CreatedUTC:  r.CreatedUTC,
			PlayerTag:   r.PlayerTag,
			Sentiment:   string(r.Sentiment),
			Language:    r.Language,
		})
	}
	return posts
}
