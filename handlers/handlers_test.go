package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kova98/nbainsights/dashboard"
	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/metrics"
	"github.com/kova98/nbainsights/models"
	"github.com/kova98/nbainsights/sentiment"
	"github.com/kova98/nbainsights/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keywordScorer struct{}

func (keywordScorer) Compound(text string) float64 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "win"):
		return 0.9
	case strings.Contains(lower, "lose"):
		return -0.9
	}
	return 0
}

type fakeCache struct {
	rows  []data.DerivedRow
	saved []data.DerivedRow
}

func (c *fakeCache) GetDerivedRows(batchKey, _ string) ([]data.DerivedRow, error) {
	var out []data.DerivedRow
	for _, r := range c.rows {
		if r.BatchKey == batchKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *fakeCache) SaveDerivedRows(rows []data.DerivedRow) error {
	c.saved = append(c.saved, rows...)
	return nil
}

const (
	olderKey = "nba_data/nba_posts_20250703_120000.csv"
	newerKey = "nba_data/nba_posts_20250704_120000.csv"
)

var created = time.Date(2025, 7, 4, 9, 30, 0, 0, time.UTC)

func batchBytes(t *testing.T, posts []data.Post) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, data.WriteBatch(&buf, posts))
	return buf.Bytes()
}

func newerPosts() []data.Post {
	return []data.Post{
		{ID: "a1", Title: "LeBron James wins it at the buzzer", Score: 1200, URL: "https://reddit.com/a1", NumComments: 400, CreatedUTC: created},
		{ID: "a2", Title: "LeBron James postgame interview", Score: 300, URL: "https://reddit.com/a2", NumComments: 90, CreatedUTC: created.Add(time.Hour)},
		{ID: "a3", Title: "Celtics lose at home", Score: 40, URL: "https://reddit.com/a3", NumComments: 12, CreatedUTC: created.Add(2 * time.Hour)},
	}
}

type testServer struct {
	handler http.Handler
	store   *storage.Memory
	metrics *metrics.ViewerMetrics
}

func newTestServer(t *testing.T, cache DerivedStore) *testServer {
	t.Helper()
	store := storage.NewMemory()
	reg := prometheus.NewRegistry()
	m := metrics.NewViewerMetrics(reg)
	pipeline := dashboard.NewPipeline(sentiment.NewClassifier(keywordScorer{}), nil)
	loader := NewBatchLoader(slog.New(slog.NewTextHandler(io.Discard, nil)), store, "nba_data", pipeline, cache, m)

	return &testServer{
		handler: NewRouter(NewDashboardHandler(loader, m), NewAPIHandler(loader), m, reg),
		store:   store,
		metrics: m,
	}
}

func (s *testServer) seed(t *testing.T) {
	s.store.Put(olderKey, batchBytes(t, []data.Post{
		{ID: "o1", Title: "Old news", Score: 5, URL: "https://reddit.com/o1", CreatedUTC: created.Add(-24 * time.Hour)},
	}))
	s.store.Put(newerKey, batchBytes(t, newerPosts()))
	s.store.Put("nba_data/notes.txt", []byte("ignored"))
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard_NoFiles(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, NoFilesWarning)
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "Top 10 Posts")
}

func TestDashboard_DefaultsToNewestFile(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="`+newerKey+`" selected>`)
	assert.Contains(t, body, "LeBron James wins it at the buzzer")
	assert.NotContains(t, body, "Old news")
	assert.Contains(t, body, `<option value="LeBron James">LeBron James</option>`)
	assert.Contains(t, body, `<option value="All Players" selected>`)
	assert.Contains(t, body, "2025-07-04 09:30")
	// averages render as whole numbers: 502/3 comments, 1540/3 upvotes
	assert.Contains(t, body, `<div class="value">167</div><div class="label">Avg Comments</div>`)
	assert.Contains(t, body, `<div class="value">513</div><div class="label">Avg Upvotes</div>`)
	assert.Contains(t, body, `class="sentiment-positive"`)
	assert.Contains(t, body, `class="sentiment-negative"`)
	assert.Equal(t, 4, strings.Count(body, "<svg"))
	assert.NotContains(t, body, "<?xml")
	assert.NotContains(t, body, NoMatchesWarning)
}

func TestDashboard_SelectsFile(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/?file="+olderKey)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Old news")
}

func TestDashboard_FilterMatchesNothing(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/?min_upvotes=1000&player=Jayson+Tatum")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No posts match your filter. Try different player or lower upvote filter.")
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "Top 10 Posts")
}

func TestDashboard_InvalidMinUpvotes(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	for _, v := range []string{"abc", "-10", "1001"} {
		rec := s.get(t, "/?min_upvotes="+v)
		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
	}
}

func TestDashboard_UnknownFile(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/?file=nba_data/missing.csv")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboard_MalformedBatch(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.Put(newerKey, []byte("title,score\nhello,1\n"))

	rec := s.get(t, "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.BatchLoads.WithLabelValues("error")))
}

func TestAPI_GetFiles(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/api/files")

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.GetFilesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{newerKey, olderKey}, res.Files)
}

func TestAPI_GetFilesEmpty(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/api/files")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
}

func TestAPI_GetPostsPlayerFilter(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/api/posts?player=lebron+james&min_upvotes=0")

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.GetPostsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, newerKey, res.File)
	assert.Equal(t, []string{"LeBron James"}, res.Players)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, "a2", res.Posts[0].ID)
	assert.Equal(t, "LeBron James", res.Posts[0].PlayerTag)
	assert.Equal(t, "a1", res.Top[0].ID)
	assert.Equal(t, "Positive", res.Top[0].Sentiment)
	assert.Equal(t, map[string]int{"Positive": 1, "Neutral": 1, "Negative": 0}, res.Sentiments)
	assert.InDelta(t, 750.0, res.AvgScore, 1e-9)
}

func TestAPI_GetPostsEmptyFilter(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	rec := s.get(t, "/api/posts?min_upvotes=1000&player=Jayson+Tatum")

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.GetPostsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Posts)
}

func TestAPI_GetPostsNoFiles(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/api/posts")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No data files found in bucket!"}`, rec.Body.String())
}

func TestDerivedCache(t *testing.T) {
	cache := &fakeCache{rows: []data.DerivedRow{
		{BatchKey: newerKey, PostID: "a3", Sentiment: "Positive"},
	}}
	s := newTestServer(t, cache)
	s.seed(t)

	rec := s.get(t, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.GetPostsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, map[string]int{"Positive": 2, "Neutral": 1, "Negative": 0}, res.Sentiments)

	sum := sha256.Sum256(batchBytes(t, newerPosts()))
	require.Len(t, cache.saved, 2)
	for _, row := range cache.saved {
		assert.Equal(t, newerKey, row.BatchKey)
		assert.Equal(t, hex.EncodeToString(sum[:]), row.ContentHash)
		assert.NotEqual(t, "a3", row.PostID)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CacheHits))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t)

	assert.Equal(t, "ok", s.get(t, "/healthz").Body.String())

	s.get(t, "/api/files")
	s.get(t, "/?min_upvotes=x")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("files", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("dashboard", "400")))

	rec := s.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nba_viewer_requests_total")
}

func TestParseFilter(t *testing.T) {
	f, msg := parseFilter(map[string][]string{"player": {"  "}, "lang": {" ES "}, "min_upvotes": {"250"}})

	assert.Empty(t, msg)
	assert.Equal(t, dashboard.Filter{MinUpvotes: 250, Player: "All Players", Language: "es"}, f)
}

func TestResolveFile(t *testing.T) {
	files := []string{newerKey, olderKey}

	key, err := resolveFile(files, "")
	assert.NoError(t, err)
	assert.Equal(t, newerKey, key)

	key, err = resolveFile(files, olderKey)
	assert.NoError(t, err)
	assert.Equal(t, olderKey, key)

	_, err = resolveFile(files, "nba_data/other.csv")
	assert.Error(t, err)
}
