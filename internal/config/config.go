package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the agent
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Scan configuration
	Keywords       []string
	MinIntentScore int
	ScanInterval   time.Duration
	RequestDelay   time.Duration
	SearchLimit    int
	DryRun         bool

	// Persistence configuration
	DataDir     string
	ControlFile string

	// API keys and credentials
	TwitterBearerToken string
	RedditClientID     string
	RedditClientSecret string

	// Notification configuration
	WhatsAppPhone     string
	WhatsAppAPIKey    string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		Keywords: getSliceEnv("KEYWORDS", []string{
			"need a website",
			"looking for a developer",
			"need a logo",
		}),
		MinIntentScore: getIntEnv("MIN_INTENT_SCORE", 7),
		ScanInterval:   time.Duration(getIntEnv("SCAN_INTERVAL_MINUTES", 15)) * time.Minute,
		RequestDelay:   time.Duration(getIntEnv("REQUEST_DELAY_SECONDS", 5)) * time.Second,
		SearchLimit:    getIntEnv("SEARCH_LIMIT", 10),
		DryRun:         getBoolEnv("DRY_RUN", false),

		DataDir:     getEnv("DATA_DIR", "data"),
		ControlFile: getEnv("CONTROL_FILE", "data/control.json"),

		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),

		WhatsAppPhone:     getEnv("WHATSAPP_PHONE", ""),
		WhatsAppAPIKey:    getEnv("WHATSAPP_KEY", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("KEYWORDS must contain at least one search term")
	}

	if c.MinIntentScore < 0 || c.MinIntentScore > 10 {
		return fmt.Errorf("MIN_INTENT_SCORE must be between 0 and 10")
	}

	if c.ScanInterval < time.Minute {
		return fmt.Errorf("SCAN_INTERVAL_MINUTES must be at least 1")
	}

	if c.SearchLimit < 1 {
		return fmt.Errorf("SEARCH_LIMIT must be at least 1")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var out []string
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
