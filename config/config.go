package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kova98/nbainsights/enums"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

type AppConfig struct {
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	BatchDir    string
	BatchPrefix string

	Subreddit          string
	FetchLimit         int
	Source             enums.Source
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	ProxyURLs          []string
	PushgatewayURL     string

	ListenAddr     string
	PostgresURL    string
	DetectLanguage bool

	AppEnv   string // EnvDevelopment or EnvProduction
	LogLevel slog.Level
}

var Config AppConfig

// LoadConfig reads the settings shared by the collector and the viewer.
// Missing storage credentials terminate the process.
func LoadConfig() {
	cfg := AppConfig{}

	cfg.AppEnv = loadOptional("APP_ENV", EnvDevelopment)
	cfg.S3Endpoint = loadRequired("S3_ENDPOINT")
	cfg.S3AccessKey = loadRequired("S3_ACCESS_KEY")
	cfg.S3SecretKey = loadRequired("S3_SECRET_KEY")
	cfg.S3Bucket = loadRequired("S3_BUCKET")
	cfg.S3UseSSL = loadBool("S3_USE_SSL", true)
	cfg.BatchDir = loadOptional("BATCH_DIR", "nba_data")
	cfg.BatchPrefix = loadOptional("BATCH_PREFIX", "nba_posts")

	cfg.Subreddit = loadOptional("SUBREDDIT", "nba")
	cfg.FetchLimit = loadInt("FETCH_LIMIT", 500)
	cfg.Source = enums.Source(strings.ToLower(loadOptional("SOURCE", string(enums.SourceReddit))))
	cfg.RedditClientID = os.Getenv("REDDIT_CLIENT_ID")
	cfg.RedditClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	cfg.RedditUserAgent = loadOptional("REDDIT_USER_AGENT", "nba-insights-collector/1.0")
	cfg.ProxyURLs = splitList(os.Getenv("PROXY_URLS"))
	cfg.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")

	cfg.ListenAddr = loadOptional("LISTEN_ADDR", ":8080")
	cfg.PostgresURL = os.Getenv("POSTGRES_URL")
	cfg.DetectLanguage = loadBool("DETECT_LANGUAGE", false)

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	Config = cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func loadInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Error("Invalid integer env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func loadBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Error("Invalid boolean env var, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func (c AppConfig) UsesRedditOAuth() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}
