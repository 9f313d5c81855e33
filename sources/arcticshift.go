package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/models"
)

const (
	ArcticShiftBaseURL     = "https://arctic-shift.photon-reddit.com/api"
	arcticShiftPostsFields = "id,subreddit,title,score,url,num_comments,created_utc"
	arcticShiftPageSize    = 100
)

// ArcticShiftSource reads posts from the ArcticShift reddit archive. Scores
// and comment counts there lag behind reddit itself.
type ArcticShiftSource struct {
	logger    *slog.Logger
	pool      *ProxyPool
	baseURL   string
	userAgent string
}

func NewArcticShiftSource(logger *slog.Logger, pool *ProxyPool, baseURL, userAgent string) *ArcticShiftSource {
	if baseURL == "" {
		baseURL = ArcticShiftBaseURL
	}
	return &ArcticShiftSource{
		logger:    logger,
		pool:      pool,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// FetchNewest walks backwards in time using the oldest created_utc of each
// page as the next "before" bound.
func (h *ArcticShiftSource) FetchNewest(ctx context.Context, subreddit string, limit int) ([]data.Post, error) {
	posts := make([]data.Post, 0, limit)
	seen := make(map[string]bool, limit)
	var before int64

	for page := 0; len(posts) < limit; page++ {
		q := url.Values{}
		q.Set("subreddit", subreddit)
		q.Set("limit", strconv.Itoa(arcticShiftPageSize))
		q.Set("sort", "desc")
		q.Set("fields", arcticShiftPostsFields)
		if before > 0 {
			q.Set("before", strconv.FormatInt(before, 10))
		}
		pageURL := fmt.Sprintf("%s/posts/search?%s", h.baseURL, q.Encode())

		var resp models.ArcticShiftSearchResponse[models.ArcticShiftPost]
		requestMs, err := h.fetchArcticShift(ctx, pageURL, &resp)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, truncateError(err))
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("fetch page %d: arcticshift error: %s", page, resp.Error)
		}

		added := 0
		for _, p := range resp.Data {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			if before == 0 || p.CreatedUTC < before {
				before = p.CreatedUTC
			}
			posts = append(posts, data.Post{
				ID:          p.ID,
				Title:       p.Title,
				Score:       p.Score,
				URL:         p.URL,
				NumComments: p.NumComments,
				CreatedUTC:  time.Unix(p.CreatedUTC, 0).UTC(),
			})
			added++
			if len(posts) >= limit {
				break
			}
		}
		h.logger.Debug("fetched arcticshift page", "page", page, "items", len(resp.Data), "added", added, "request_ms", requestMs)

		if added == 0 {
			break
		}
	}

	return posts, nil
}

func (h *ArcticShiftSource) fetchArcticShift(ctx context.Context, pageURL string, dest any) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", h.userAgent)
	client, host := h.pool.Next()
	start := time.Now()
	resp, err := client.Do(req)
	requestMs := time.Since(start).Milliseconds()
	if err != nil {
		return requestMs, fmt.Errorf("(%dms via %s) %w", requestMs, host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return requestMs, fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return requestMs, err
	}

	return requestMs, nil
}
