package webclient

import "time"

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 4 << 20
	DefaultUserAgent    = "scanconfirm/1"
)

// Config tunes the net/http backed client. Zero values fall back to the
// defaults above.
type Config struct {
	// Timeout bounds every request, including reading the body.
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64

	// UserAgent is sent when the request does not set one.
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
