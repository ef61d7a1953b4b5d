// Package config loads the process configuration once at startup. The
// resulting Config is passed by value into constructors and never mutated.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config is read from the environment (and an optional .env file).
type Config struct {
	Host          string `env:"HOST,default=0.0.0.0"`
	Port          int    `env:"PORT,default=4000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT,default=587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTLS      string        `env:"SMTP_TLS,default=mandatory"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT,default=10s"`
	EmailFrom    string        `env:"EMAIL_FROM,default=noreply@localhost"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	WebhookURL    string `env:"SCAN_WEBHOOK_URL,default=http://scan-workflow-eventsource-svc.argo-events.svc.cluster.local:8082/"`
	ArgoURL       string `env:"ARGO_WORKFLOW_URL,default=https://argo-server.argo.svc.cluster.local:2746/"`
	ArgoToken     string `env:"ARGO_WORKFLOW_TOKEN"`
	ArgoNamespace string `env:"ARGO_NAMESPACE,default=argo"`

	HTTPTimeout          time.Duration `env:"HTTP_TIMEOUT,default=10s"`
	CORSAllowedOrigin    string        `env:"CORS_ALLOWED_ORIGIN,default=*"`
	ProgressPollInterval time.Duration `env:"PROGRESS_POLL_INTERVAL,default=5s"`

	ReplayGuard string `env:"REPLAY_GUARD,default=none"`
	ReplayDSN   string `env:"REPLAY_DSN"`
}

// DefaultConfig returns a Config populated with the same defaults Load applies.
func DefaultConfig() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 4000,
		LogLevel:             "INFO",
		SMTPPort:             587,
		SMTPTLS:              "mandatory",
		SMTPTimeout:          10 * time.Second,
		EmailFrom:            "noreply@localhost",
		TokenTTL:             24 * time.Hour,
		WebhookURL:           "http://scan-workflow-eventsource-svc.argo-events.svc.cluster.local:8082/",
		ArgoURL:              "https://argo-server.argo.svc.cluster.local:2746/",
		ArgoNamespace:        "argo",
		HTTPTimeout:          10 * time.Second,
		CORSAllowedOrigin:    "*",
		ProgressPollInterval: 5 * time.Second,
		ReplayGuard:          "none",
	}
}

// Load reads files (default ".env") if present, then the environment. Values
// already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL is where confirmation links point. Without PUBLIC_BASE_URL it is
// derived from the listen address.
func (c Config) BaseURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP_HOST is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.ProgressPollInterval <= 0 {
		errs = append(errs, errors.New("PROGRESS_POLL_INTERVAL must be positive"))
	}
	urls := []struct {
		name, raw string
		optional  bool
	}{
		{name: "SCAN_WEBHOOK_URL", raw: c.WebhookURL},
		{name: "ARGO_WORKFLOW_URL", raw: c.ArgoURL},
		{name: "PUBLIC_BASE_URL", raw: c.PublicBaseURL, optional: true},
	}
	for _, u := range urls {
		if u.raw == "" && u.optional {
			continue
		}
		if err := checkURL(u.raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}
	return errors.Join(errs...)
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) url", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
