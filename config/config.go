package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bounty-board/models"
)

// Config holds all service configuration.
type Config struct {
	Port           string
	DatabaseURL    string
	ServiceToken   string
	AllowedOrigins []string

	AuthServiceURL   string
	PayoutServiceURL string
	PayoutInterval   time.Duration

	OverdueInterval  time.Duration
	EditableStatuses []models.BountyStatus

	R2 struct {
		AccountID       string
		AccessKeyID     string
		AccessKeySecret string
		Bucket          string
	}
}

// Load reads an optional .env file, then the environment, then fills defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:             getenv("PORT"),
		DatabaseURL:      getenv("DATABASE_URL"),
		ServiceToken:     getenv("BOUNTY_SERVICE_TOKEN"),
		AuthServiceURL:   strings.TrimRight(getenv("AUTH_SERVICE_URL"), "/"),
		PayoutServiceURL: strings.TrimRight(getenv("PAYOUT_SERVICE_URL"), "/"),
	}
	cfg.R2.AccountID = getenv("CLOUDFLARE_ACCOUNT_ID")
	cfg.R2.AccessKeyID = getenv("R2_ACCESS_KEY_ID")
	cfg.R2.AccessKeySecret = getenv("R2_ACCESS_KEY_SECRET")
	cfg.R2.Bucket = getenv("R2_BUCKET_NAME")

	cfg.AllowedOrigins = splitList(getenv("ALLOWED_ORIGINS"))

	var err error
	if cfg.OverdueInterval, err = durationOr(getenv("OVERDUE_INTERVAL"), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("OVERDUE_INTERVAL: %w", err)
	}
	if cfg.PayoutInterval, err = durationOr(getenv("PAYOUT_INTERVAL"), time.Minute); err != nil {
		return nil, fmt.Errorf("PAYOUT_INTERVAL: %w", err)
	}

	for _, s := range splitList(getenv("EDITABLE_STATUSES")) {
		status := models.BountyStatus(s)
		if !status.Valid() {
			return nil, fmt.Errorf("EDITABLE_STATUSES: unknown status %q", s)
		}
		cfg.EditableStatuses = append(cfg.EditableStatuses, status)
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = "5200"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ServiceToken == "" {
		return fmt.Errorf("BOUNTY_SERVICE_TOKEN is required")
	}
	if c.OverdueInterval <= 0 || c.PayoutInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}
	return nil
}

// ArchiveEnabled reports whether terminal bounties should be copied to R2.
func (c *Config) ArchiveEnabled() bool {
	return c.R2.AccountID != "" && c.R2.Bucket != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationOr(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
