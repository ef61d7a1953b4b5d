package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/webclient"
)

// NamePrefix is prepended to the job id to form the Argo workflow name.
const NamePrefix = "scan-"

// Argo workflow phases.
const (
	PhasePending   = "Pending"
	PhaseRunning   = "Running"
	PhaseSucceeded = "Succeeded"
	PhaseFailed    = "Failed"
	PhaseError     = "Error"
)

// StatusError is a non-2xx answer from the webhook or the Argo server.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type StatusConfig struct {
	BaseURL   string
	Token     string
	Namespace string
}

// StatusClient reads workflow documents from the Argo server API.
type StatusClient struct {
	cfg    StatusConfig
	client webclient.WebClient
	logger logging.Logger
}

func NewStatusClient(cfg StatusConfig, client webclient.WebClient, logger logging.Logger) (*StatusClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("argo base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("argo base url: %w", err)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "argo"
	}
	return &StatusClient{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "argo"}),
	}, nil
}

// URL returns the status endpoint for a job.
func (s *StatusClient) URL(jobID string) (string, error) {
	return url.JoinPath(s.cfg.BaseURL, "api/v1/workflows", s.cfg.Namespace, NamePrefix+jobID)
}

// Fetch returns the workflow document verbatim. The body is not inspected.
func (s *StatusClient) Fetch(ctx context.Context, jobID string) ([]byte, error) {
	target, err := s.URL(jobID)
	if err != nil {
		return nil, fmt.Errorf("build status url: %w", err)
	}

	headers := http.Header{"Accept": []string{"application/json"}}
	if s.cfg.Token != "" {
		headers.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: target, Headers: headers})
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", NamePrefix+jobID, err)
	}
	if !resp.OK() {
		s.logger.Debug("argo returned non-2xx",
			logging.Field{Key: "job_id", Value: jobID},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}

// Phase extracts status.phase from a workflow document. It returns "" when
// the document has no phase yet or is not a workflow.
func Phase(doc []byte) string {
	var wf struct {
		Status struct {
			Phase string `json:"phase"`
		} `json:"status"`
	}
	if err := json.Unmarshal(doc, &wf); err != nil {
		return ""
	}
	return wf.Status.Phase
}

// IsTerminal reports whether a workflow in this phase will not change again.
func IsTerminal(phase string) bool {
	switch phase {
	case PhaseSucceeded, PhaseFailed, PhaseError:
		return true
	}
	return false
}
