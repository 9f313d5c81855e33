package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kova98/nbainsights/dashboard"
	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/enums"
	"github.com/kova98/nbainsights/matchers"
	"github.com/kova98/nbainsights/metrics"
	"github.com/kova98/nbainsights/storage"
	"github.com/pkg/errors"
)

const MaxMinUpvotes = 1000

// DerivedStore persists derived columns between requests.
type DerivedStore interface {
	GetDerivedRows(batchKey, contentHash string) ([]data.DerivedRow, error)
	SaveDerivedRows(rows []data.DerivedRow) error
}

type Batch struct {
	Key     string
	Hash    string
	Posts   []data.Post
	Players []string
	known   map[string]dashboard.Derived
}

// BatchLoader downloads batch files and runs the dashboard pipeline on
// them. cache may be nil.
type BatchLoader struct {
	logger   *slog.Logger
	store    storage.ObjectStore
	dir      string
	pipeline *dashboard.Pipeline
	cache    DerivedStore
	metrics  *metrics.ViewerMetrics
}

func NewBatchLoader(logger *slog.Logger, store storage.ObjectStore, dir string, pipeline *dashboard.Pipeline, cache DerivedStore, m *metrics.ViewerMetrics) *BatchLoader {
	return &BatchLoader{
		logger:   logger,
		store:    store,
		dir:      strings.TrimSuffix(dir, "/"),
		pipeline: pipeline,
		cache:    cache,
		metrics:  m,
	}
}

func (l *BatchLoader) Pipeline() *dashboard.Pipeline {
	return l.pipeline
}

// Files lists batch keys, newest first.
func (l *BatchLoader) Files(ctx context.Context) ([]string, error) {
	return l.store.ListBatches(ctx, l.dir+"/")
}

func (l *BatchLoader) Load(ctx context.Context, key string) (*Batch, error) {
	body, err := l.store.Download(ctx, key)
	if err != nil {
		l.countLoad("error")
		return nil, errors.Wrapf(err, "download %s", key)
	}

	posts, err := data.ReadBatch(bytes.NewReader(body))
	if err != nil {
		l.countLoad("error")
		return nil, errors.Wrapf(err, "parse %s", key)
	}
	l.countLoad("ok")

	sum := sha256.Sum256(body)
	b := &Batch{
		Key:     key,
		Hash:    hex.EncodeToString(sum[:]),
		Posts:   posts,
		Players: dashboard.Players(posts),
	}
	b.known = l.cached(b)

	l.logger.Debug("loaded batch", "key", key, "posts", len(posts), "players", len(b.Players), "cached", len(b.known))
	return b, nil
}

// Analyze runs the pipeline and stores any newly derived columns.
func (l *BatchLoader) Analyze(b *Batch, f dashboard.Filter) (*dashboard.View, error) {
	view, err := l.pipeline.Run(b.Posts, b.Players, f, b.known)
	if l.metrics != nil {
		rows := 0
		if view != nil {
			rows = view.Total
		}
		l.metrics.FilteredRows.Observe(float64(rows))
	}
	if err != nil {
		return nil, err
	}

	l.save(b, view.Computed)
	return view, nil
}

func (l *BatchLoader) cached(b *Batch) map[string]dashboard.Derived {
	if l.cache == nil {
		return nil
	}

	rows, err := l.cache.GetDerivedRows(b.Key, b.Hash)
	if err != nil {
		l.logger.Warn("failed to read derived cache", "key", b.Key, "error", err)
		return nil
	}

	known := make(map[string]dashboard.Derived, len(rows))
	for _, row := range rows {
		s, ok := enums.ParseSentiment(row.Sentiment)
		if !ok {
			continue
		}
		known[row.PostID] = dashboard.Derived{Sentiment: s, Language: row.Language}
	}

	if l.metrics != nil {
		if len(known) > 0 {
			l.metrics.CacheHits.Inc()
		} else {
			l.metrics.CacheMisses.Inc()
		}
	}
	return known
}

func (l *BatchLoader) save(b *Batch, computed map[string]dashboard.Derived) {
	if l.cache == nil || len(computed) == 0 {
		return
	}

	rows := make([]data.DerivedRow, 0, len(computed))
	for id, d := range computed {
		rows = append(rows, data.DerivedRow{
			BatchKey:    b.Key,
			ContentHash: b.Hash,
			PostID:      id,
			Sentiment:   string(d.Sentiment),
			Language:    d.Language,
		})
	}
	if err := l.cache.SaveDerivedRows(rows); err != nil {
		l.logger.Warn("failed to save derived cache", "key", b.Key, "error", err)
		return
	}

	if b.known == nil {
		b.known = make(map[string]dashboard.Derived, len(computed))
	}
	for id, d := range computed {
		b.known[id] = d
	}
}

func (l *BatchLoader) countLoad(result string) {
	if l.metrics != nil {
		l.metrics.BatchLoads.WithLabelValues(result).Inc()
	}
}

// resolveFile picks the requested batch, or the newest when none is named.
func resolveFile(files []string, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return files[0], nil
	}
	for _, f := range files {
		if f == requested {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown batch file %q", requested)
}

// parseFilter reads the filter query parameters. The returned message is
// non-empty when the request is invalid.
func parseFilter(q map[string][]string) (dashboard.Filter, string) {
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	f := dashboard.Filter{
		Player:   get("player"),
		Language: strings.ToLower(get("lang")),
	}
	if f.Player == "" {
		f.Player = matchers.AllPlayers
	}

	if raw := get("min_upvotes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > MaxMinUpvotes {
			return f, "min_upvotes must be a number between 0 and 1000."
		}
		f.MinUpvotes = n
	}

	return f, ""
}
