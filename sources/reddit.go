package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	RedditPublicBaseURL = "https://www.reddit.com"
	RedditOAuthBaseURL  = "https://oauth.reddit.com"
	RedditTokenURL      = "https://www.reddit.com/api/v1/access_token"

	// Reddit caps a listing page at 100 items.
	redditPageSize = 100
)

// Source fetches the newest posts of a community.
type Source interface {
	FetchNewest(ctx context.Context, subreddit string, limit int) ([]data.Post, error)
}

type RedditOptions struct {
	UserAgent    string
	ClientID     string
	ClientSecret string
	// BaseURL and TokenURL override the defaults; empty means reddit.com.
	BaseURL   string
	TokenURL  string
	PageDelay time.Duration
}

type RedditSource struct {
	logger    *slog.Logger
	pool      *ProxyPool
	opts      RedditOptions
	baseURL   string
	userAgent string
}

func NewRedditSource(logger *slog.Logger, pool *ProxyPool, opts RedditOptions) *RedditSource {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = RedditPublicBaseURL
		if opts.ClientID != "" && opts.ClientSecret != "" {
			baseURL = RedditOAuthBaseURL
		}
	}
	if opts.TokenURL == "" {
		opts.TokenURL = RedditTokenURL
	}

	return &RedditSource{
		logger:    logger,
		pool:      pool,
		opts:      opts,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: opts.UserAgent,
	}
}

func (h *RedditSource) usesOAuth() bool {
	return h.opts.ClientID != "" && h.opts.ClientSecret != ""
}

// FetchNewest pages through /r/<subreddit>/new until limit posts are
// collected or the listing runs out. Any failed page aborts the fetch.
func (h *RedditSource) FetchNewest(ctx context.Context, subreddit string, limit int) ([]data.Post, error) {
	var tokens oauth2.TokenSource
	if h.usesOAuth() {
		client, _ := h.pool.Next()
		cc := clientcredentials.Config{
			ClientID:     h.opts.ClientID,
			ClientSecret: h.opts.ClientSecret,
			TokenURL:     h.opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, withUserAgent(client, h.userAgent))
		tokens = cc.TokenSource(tokenCtx)
	}

	posts := make([]data.Post, 0, limit)
	after := ""
	for page := 0; len(posts) < limit; page++ {
		if page > 0 && h.opts.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.opts.PageDelay):
			}
		}

		q := url.Values{}
		q.Set("limit", strconv.Itoa(min(redditPageSize, limit-len(posts))))
		q.Set("raw_json", "1")
		if after != "" {
			q.Set("after", after)
		}
		pageURL := fmt.Sprintf("%s/r/%s/new.json?%s", h.baseURL, url.PathEscape(subreddit), q.Encode())

		listing, err := h.fetchReddit(ctx, pageURL, tokens)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, truncateError(err))
		}

		for _, child := range listing.Data.Children {
			posts = append(posts, toPost(child.Data))
			if len(posts) >= limit {
				break
			}
		}
		h.logger.Debug("fetched reddit page", "page", page, "items", len(listing.Data.Children), "total", len(posts))

		if listing.Data.After == "" || len(listing.Data.Children) == 0 {
			break
		}
		after = listing.Data.After
	}

	return posts, nil
}

func (h *RedditSource) fetchReddit(ctx context.Context, pageURL string, tokens oauth2.TokenSource) (*models.RedditListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json")
	if tokens != nil {
		token, err := tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("reddit token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	client, host := h.pool.Next()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("via %s: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit returned status %d: %s", resp.StatusCode, string(body))
	}

	var listing models.RedditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

func toPost(p models.RedditPost) data.Post {
	link := p.URL
	if link == "" && p.Permalink != "" {
		link = RedditPublicBaseURL + p.Permalink
	}
	return data.Post{
		ID:          p.ID,
		Title:       p.Title,
		Score:       p.Score,
		URL:         link,
		NumComments: p.NumComments,
		CreatedUTC:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// withUserAgent copies client so that every request it sends carries ua.
// Reddit rejects token requests without one.
func withUserAgent(client *http.Client, ua string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp := *client
	cp.Transport = &userAgentTransport{base: base, userAgent: ua}
	return &cp
}

func truncateError(err error) error {
	msg := err.Error()
	if len(msg) > 300 {
		return fmt.Errorf("%s...", msg[:300])
	}
	return err
}
