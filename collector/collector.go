package collector

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/metrics"
	"github.com/kova98/nbainsights/sources"
	"github.com/kova98/nbainsights/storage"
	"github.com/pkg/errors"
)

type Options struct {
	Subreddit   string
	Limit       int
	BatchDir    string
	BatchPrefix string
}

// Collector takes one snapshot of a subreddit and stores it as a batch file.
type Collector struct {
	logger  *slog.Logger
	source  sources.Source
	store   storage.ObjectStore
	metrics *metrics.CollectorMetrics
	opts    Options
	now     func() time.Time
}

func New(logger *slog.Logger, source sources.Source, store storage.ObjectStore, m *metrics.CollectorMetrics, opts Options) *Collector {
	return &Collector{
		logger:  logger,
		source:  source,
		store:   store,
		metrics: m,
		opts:    opts,
		now:     time.Now,
	}
}

// Run fetches, writes and uploads one batch and returns its object key.
// Any failure aborts the run; nothing is retried.
func (c *Collector) Run(ctx context.Context) (string, error) {
	key, err := c.run(ctx)
	if err != nil {
		c.metrics.RunsFailedTotal.Inc()
		return "", err
	}
	return key, nil
}

func (c *Collector) run(ctx context.Context) (string, error) {
	runID := uuid.New()
	logger := c.logger.With("run_id", runID.String(), "subreddit", c.opts.Subreddit)
	startedAt := c.now()

	fetchStart := time.Now()
	posts, err := c.source.FetchNewest(ctx, c.opts.Subreddit, c.opts.Limit)
	if err != nil {
		return "", errors.Wrap(err, "collect: fetch posts")
	}
	c.metrics.FetchDuration.Set(time.Since(fetchStart).Seconds())

	fetched := len(posts)
	posts = data.DedupeByID(posts)
	if dropped := fetched - len(posts); dropped > 0 {
		logger.Warn("dropped duplicate posts", "count", dropped)
	}
	logger.Info("fetched posts", "count", len(posts))

	name := data.BatchName(c.opts.BatchPrefix, startedAt)
	dir, err := os.MkdirTemp("", "nba-batch-")
	if err != nil {
		return "", errors.Wrap(err, "collect: create work dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	size, err := writeBatchFile(path, posts)
	if err != nil {
		return "", errors.Wrap(err, "collect: write batch file")
	}

	key := data.ObjectKey(c.opts.BatchDir, name)
	uploadStart := time.Now()
	if err := c.store.UploadFile(ctx, key, path); err != nil {
		return "", errors.Wrapf(err, "collect: upload %s", key)
	}
	c.metrics.UploadDuration.Set(time.Since(uploadStart).Seconds())

	c.metrics.PostsFetched.Set(float64(len(posts)))
	c.metrics.BatchBytes.Set(float64(size))
	c.metrics.LastSuccess.Set(float64(c.now().Unix()))
	logger.Info("uploaded batch", "key", key, "count", len(posts), "bytes", size)

	return key, nil
}

func writeBatchFile(path string, posts []data.Post) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := data.WriteBatch(f, posts); err != nil {
		f.Close()
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	return info.Size(), f.Close()
}
