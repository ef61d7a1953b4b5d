package model

import (
	"net/url"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/net/idna"
)

// Target names a single scanner configuration. The URI is opaque here: it
// is carried in the token and handed to the scanner byte for byte.
type Target struct {
	// URI is whatever the scanner takes as its target: a URL, a host or an IP.
	URI string `json:"uri" validate:"notblank"`
}

// DisplayHost returns the target's host with punycode labels decoded, for
// operator output only. Bare hosts and IPs come back unchanged.
func (t Target) DisplayHost() string {
	host := t.URI
	if u, err := url.Parse(t.URI); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	if h, err := idna.Display.ToUnicode(host); err == nil {
		return h
	}
	return host
}

// ScanRequest is what a client submits to POST /scans.
type ScanRequest struct {
	// Email receives the confirmation link and must be a valid address.
	Email string `json:"email" validate:"required,email"`

	// Rustscan configures a port scan of the target host.
	Rustscan *Target `json:"rustscan,omitempty"`

	// Zap configures an OWASP ZAP scan of the target URL.
	Zap *Target `json:"zap,omitempty"`
}

// Targets returns the configured scanners keyed by name, skipping the unset ones.
func (r ScanRequest) Targets() map[string]*Target {
	return lo.OmitByValues(map[string]*Target{
		"rustscan": r.Rustscan,
		"zap":      r.Zap,
	}, []*Target{nil})
}

// TargetNames lists the configured scanners in a stable order.
func (r ScanRequest) TargetNames() []string {
	names := lo.Keys(r.Targets())
	slices.Sort(names)
	return names
}

// Job is a ScanRequest together with its assigned id. It is both the
// confirmation token payload and the body posted to the workflow webhook;
// the request fields sit next to "id" in JSON.
type Job struct {
	ID string `json:"id"`
	ScanRequest
}

// TokenID puts the job id in the token's jti claim.
func (j Job) TokenID() string {
	return j.ID
}
