package app

import "time"

// Config holds the orchestrator's own settings.
type Config struct {
	// BaseURL is the public origin confirmation links are built on, without
	// a trailing slash.
	BaseURL string

	// TokenTTL bounds how long a confirmation link stays valid.
	TokenTTL time.Duration
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "http://localhost:4000",
		TokenTTL: 24 * time.Hour,
	}
}
