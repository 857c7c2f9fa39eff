package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting. Values come from the environment,
// with a .env file loaded first when present.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AlertRecipients []string
	AlertHour       int
}

func Load() (*Config, error) {
	// Missing .env is fine in production, the environment is set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "alerts@stockmed.local"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.AlertHour, err = getEnvInt("ALERT_HOUR", 8); err != nil {
		return nil, err
	}
	if cfg.AlertHour < 0 || cfg.AlertHour > 23 {
		return nil, fmt.Errorf("ALERT_HOUR must be between 0 and 23")
	}

	ttlHours, err := getEnvInt("TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = time.Duration(ttlHours) * time.Hour

	cfg.MinioUseSSL = strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true")

	for _, addr := range strings.Split(os.Getenv("ALERT_RECIPIENTS"), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			cfg.AlertRecipients = append(cfg.AlertRecipients, addr)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %v", key, err)
	}
	return n, nil
}
