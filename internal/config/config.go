package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration

	SessionStore  string
	DBPath        string
	RedisAddr     string
	RedisPassword string

	PollInterval         time.Duration
	RescrapePollInterval time.Duration

	// ChartRescrapeDate selects the job timestamp used to bucket rescrape
	// jobs in the activity chart: "updated_at" or "created_at".
	ChartRescrapeDate string

	Port     string
	LogLevel slog.Level
}

func Load() Config {
	return Config{
		APIURL:               strings.TrimRight(getEnv("API_URL", "http://localhost:8000"), "/"),
		HTTPTimeout:          getEnvSeconds("HTTP_TIMEOUT_SECONDS", 30),
		SessionStore:         strings.ToLower(getEnv("SESSION_STORE", SessionStoreSQLite)),
		DBPath:               getEnv("DB_PATH", "dashboard.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		PollInterval:         getEnvSeconds("POLL_INTERVAL_SECONDS", 5),
		RescrapePollInterval: getEnvSeconds("RESCRAPE_POLL_INTERVAL_SECONDS", 30),
		ChartRescrapeDate:    strings.ToLower(getEnv("CHART_RESCRAPE_DATE", "updated_at")),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
