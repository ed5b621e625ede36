package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration, read once at startup and
// passed by reference into each component at construction.
type Config struct {
	DatabaseURL string
	Port        string
	Production  bool

	JWTSecret   string
	TokenExpiry time.Duration
	ClientURL   string

	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080",
		TokenExpiry: 24 * time.Hour,
		S3Region:    "us-east-1",
		SMTPPort:    587,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	cfg.Production = os.Getenv("APP_ENV") == "production"

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if expiry := os.Getenv("JWT_EXPIRY"); expiry != "" {
		d, err := time.ParseDuration(expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
		}
		cfg.TokenExpiry = d
	}
	cfg.ClientURL = os.Getenv("CLIENT_URL")

	cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY environment variables are required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required")
	}
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT environment variable is required")
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3Region = region
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST environment variable is required")
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.MailFrom = os.Getenv("MAIL_FROM")
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}
