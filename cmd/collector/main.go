package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/kova98/nbainsights/collector"
	"github.com/kova98/nbainsights/config"
	"github.com/kova98/nbainsights/enums"
	"github.com/kova98/nbainsights/metrics"
	"github.com/kova98/nbainsights/sources"
	"github.com/kova98/nbainsights/storage"
)

const pushJob = "nba_collector"

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	pool, err := sources.NewProxyPool(config.Config.ProxyURLs)
	if err != nil {
		slog.Error("failed to create http clients", "error", err)
		os.Exit(1)
	}

	var source sources.Source
	switch config.Config.Source {
	case enums.SourceReddit:
		source = sources.NewRedditSource(logger, pool, sources.RedditOptions{
			UserAgent:    config.Config.RedditUserAgent,
			ClientID:     config.Config.RedditClientID,
			ClientSecret: config.Config.RedditClientSecret,
		})
	case enums.SourceArcticShift:
		source = sources.NewArcticShiftSource(logger, pool, "", config.Config.RedditUserAgent)
	default:
		slog.Error("unknown SOURCE", "source", config.Config.Source)
		os.Exit(1)
	}

	bucket, err := storage.New(storage.Config{
		Endpoint:  config.Config.S3Endpoint,
		AccessKey: config.Config.S3AccessKey,
		SecretKey: config.Config.S3SecretKey,
		UseSSL:    config.Config.S3UseSSL,
		Bucket:    config.Config.S3Bucket,
	})
	if err != nil {
		slog.Error("failed to create storage client", "error", err)
		os.Exit(1)
	}
	if err := bucket.EnsureBucket(ctx); err != nil {
		slog.Error("failed to ensure bucket", "bucket", bucket.Name(), "error", err)
		os.Exit(1)
	}

	m := metrics.NewCollectorMetrics()
	c := collector.New(logger, source, bucket, m, collector.Options{
		Subreddit:   config.Config.Subreddit,
		Limit:       config.Config.FetchLimit,
		BatchDir:    config.Config.BatchDir,
		BatchPrefix: config.Config.BatchPrefix,
	})

	slog.Info("starting collection",
		"subreddit", config.Config.Subreddit,
		"source", config.Config.Source,
		"limit", config.Config.FetchLimit,
		"proxies", pool.Size(),
		"oauth", config.Config.UsesRedditOAuth())

	_, runErr := c.Run(ctx)

	if config.Config.PushgatewayURL != "" {
		if err := m.Push(config.Config.PushgatewayURL, pushJob); err != nil {
			slog.Error("failed to push metrics", "error", err)
		}
	}

	if runErr != nil {
		slog.Error("collection failed", "error", runErr)
		os.Exit(1)
	}
}
