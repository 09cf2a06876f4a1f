package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	Location *time.Location

	LogMode string
	LogFile string

	AuthEnabled bool
	JWTSecret   string

	RedisAddr    string
	RedisChannel string

	WorkerEnabled bool
	WorkerPoll    time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	dbURL := getenv("DATABASE_URL", "")
	if dbURL == "" {
		return Config{}, fmt.Errorf("missing env: DATABASE_URL")
	}

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          dbURL,
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LogMode:              getenv("LOG_MODE", "dev"),
		LogFile:              getenv("LOG_FILE", ""),
		AuthEnabled:          getenv("AUTH_ENABLED", "false") == "true",
		RedisAddr:            getenv("REDIS_ADDR", ""),
		RedisChannel:         getenv("REDIS_CHANNEL", "flowtrack.events"),
		WorkerEnabled:        getenv("WORKER_ENABLED", "true") == "true",
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	loc, err := time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	pollMS, err := strconv.Atoi(getenv("WORKER_POLL_MS", "800"))
	if err != nil || pollMS <= 0 {
		return Config{}, fmt.Errorf("invalid WORKER_POLL_MS: %q", os.Getenv("WORKER_POLL_MS"))
	}
	cfg.WorkerPoll = time.Duration(pollMS) * time.Millisecond

	if cfg.AuthEnabled {
		cfg.JWTSecret = getenv("JWT_SECRET", "")
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("missing env: JWT_SECRET (required when AUTH_ENABLED=true)")
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
