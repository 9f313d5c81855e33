package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kova98/nbainsights/config"
	"github.com/kova98/nbainsights/dashboard"
	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/data/repos"
	"github.com/kova98/nbainsights/handlers"
	"github.com/kova98/nbainsights/metrics"
	"github.com/kova98/nbainsights/sentiment"
	"github.com/kova98/nbainsights/storage"
)

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

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

	var db *sqlx.DB
	var cache handlers.DerivedStore
	if config.Config.PostgresURL != "" {
		db, err = sqlx.Connect("postgres", config.Config.PostgresURL)
		if err != nil {
			slog.Error("failed to connect to db", "error", err)
			os.Exit(1)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(1 * time.Minute)

		if err := data.RunMigrations(db.DB); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		cache = repos.NewDerivedRepo(db)
		slog.Info("derived column cache enabled")
	}

	var detector *sentiment.LanguageDetector
	if config.Config.DetectLanguage {
		detector = sentiment.NewLanguageDetector()
	}
	pipeline := dashboard.NewPipeline(sentiment.NewClassifier(sentiment.NewVaderScorer()), detector)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewViewerMetrics(reg)

	loader := handlers.NewBatchLoader(logger, bucket, config.Config.BatchDir, pipeline, cache, m)
	router := handlers.NewRouter(handlers.NewDashboardHandler(loader, m), handlers.NewAPIHandler(loader), m, reg)

	server := &http.Server{
		Addr:              config.Config.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
		if db != nil {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database connection", "error", err)
			}
		}
	}()

	slog.Info("Starting viewer", "addr", config.Config.ListenAddr, "bucket", bucket.Name(), "dir", config.Config.BatchDir)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
