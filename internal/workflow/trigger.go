// Package workflow talks to the external scan workflow: the event-source
// webhook that starts a run and the Argo server that reports on it.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/webclient"
)

// TriggerResult describes an accepted webhook call.
type TriggerResult struct {
	JobID      string
	StatusCode int
	Body       []byte
}

// Trigger posts confirmed jobs to the workflow webhook.
type Trigger struct {
	url    string
	client webclient.WebClient
	logger logging.Logger
}

func NewTrigger(webhookURL string, client webclient.WebClient, logger logging.Logger) (*Trigger, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &Trigger{
		url:    webhookURL,
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "trigger"}),
	}, nil
}

// Fire issues exactly one POST carrying the job as JSON. Only a 2xx answer
// counts as accepted; anything else is returned as a *StatusError.
func (t *Trigger) Fire(ctx context.Context, job model.Job) (*TriggerResult, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	resp, err := t.client.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     t.url,
		Headers: http.Header{"Content-Type": []string{"application/json"}},
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("post job %s: %w", job.ID, err)
	}
	if !resp.OK() {
		t.logger.Warn("webhook rejected job",
			logging.Field{Key: "job_id", Value: job.ID},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	t.logger.Info("workflow triggered",
		logging.Field{Key: "job_id", Value: job.ID},
		logging.Field{Key: "status", Value: resp.StatusCode})

	return &TriggerResult{JobID: job.ID, StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
