// Package app holds the confirmation protocol: issuing signed links for new
// scan requests, redeeming them against the workflow webhook and relaying
// workflow status.
package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raysh454/scanconfirm/internal/apperr"
	"github.com/raysh454/scanconfirm/internal/identity"
	"github.com/raysh454/scanconfirm/internal/interfaces"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/token"
	"github.com/raysh454/scanconfirm/internal/workflow"
)

// ConfirmPath is the route prefix confirmation links point at.
const ConfirmPath = "/scans/confirm/"

var errTokenReused = errors.New("confirmation token already used")

// Deps are the collaborators an Orchestrator needs. Guard and IDs are
// optional.
type Deps struct {
	Codec    *token.Codec[model.Job]
	Notifier interfaces.ConfirmationNotifier
	Trigger  interfaces.JobTrigger
	Status   interfaces.StatusFetcher
	Guard    interfaces.ReplayGuard
	IDs      identity.Generator
}

// Issued is a freshly minted confirmation link.
type Issued struct {
	Job       model.Job
	Token     string
	Link      string
	ExpiresAt time.Time
}

// Orchestrator keeps no per-request state; it is safe for concurrent use.
type Orchestrator struct {
	cfg    *Config
	deps   Deps
	logger logging.Logger
}

// NewOrchestrator ties together config, collaborators and logger.
func NewOrchestrator(cfg *Config, deps Deps, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.IDs == nil {
		deps.IDs = identity.NewRandomGenerator()
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}
}

// Issue validates req, assigns it an id and signs it into a confirmation
// link. Nothing is sent.
func (o *Orchestrator) Issue(_ context.Context, req model.ScanRequest) (*Issued, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	job := model.Job{ID: o.deps.IDs.Generate(), ScanRequest: req}
	raw, err := o.deps.Codec.Encode(job, o.cfg.TokenTTL)
	if err != nil {
		return nil, apperr.Internal(err, "encode confirmation token")
	}

	issued := &Issued{Job: job, Token: raw, Link: o.ConfirmLink(raw)}
	if claims, err := o.deps.Codec.Inspect(raw); err == nil && claims.ExpiresAt != nil {
		issued.ExpiresAt = claims.ExpiresAt.Time
	}
	return issued, nil
}

// Submit issues a confirmation link for req and mails it to req.Email. The
// id is returned only once the mail transport accepted the message.
func (o *Orchestrator) Submit(ctx context.Context, req model.ScanRequest) (string, error) {
	issued, err := o.Issue(ctx, req)
	if err != nil {
		return "", err
	}

	if err := o.deps.Notifier.NotifyConfirmation(ctx, issued.Job.Email, issued.Job.ID, issued.Link); err != nil {
		return "", apperr.Internal(err, "send confirmation email")
	}

	o.logger.Info("scan request awaiting confirmation",
		logging.Field{Key: "job_id", Value: issued.Job.ID},
		logging.Field{Key: "targets", Value: issued.Job.TargetNames()})
	return issued.Job.ID, nil
}

// Confirm redeems a confirmation token: it verifies it, optionally burns it
// in the replay guard, and posts the embedded job to the workflow webhook
// exactly once.
func (o *Orchestrator) Confirm(ctx context.Context, raw string) (*workflow.TriggerResult, error) {
	claims, err := o.deps.Codec.DecodeClaims(raw)
	if err != nil {
		o.logger.Info("confirmation token rejected", logging.Err(err))
		return nil, apperr.InvalidToken(err)
	}

	job := claims.Payload
	if !identity.Valid(job.ID) {
		return nil, apperr.InvalidToken(errors.New("token carries a malformed job id"))
	}
	if err := model.Validate(job.ScanRequest); err != nil {
		return nil, apperr.InvalidToken(err)
	}

	if o.deps.Guard != nil {
		first, err := o.deps.Guard.Claim(ctx, job.ID, claims.ExpiresAt.Time)
		if err != nil {
			return nil, apperr.Internal(err, "record token use")
		}
		if !first {
			o.logger.Warn("confirmation token replayed", logging.Field{Key: "job_id", Value: job.ID})
			return nil, apperr.InvalidToken(errTokenReused)
		}
	}

	res, err := o.deps.Trigger.Fire(ctx, job)
	if err != nil {
		return nil, apperr.Downstream(err, "workflow trigger failed", 0)
	}
	return res, nil
}

// Progress returns the orchestrator's status document for id verbatim.
// An unknown workflow stays a 404; any other failure, including the Argo
// server rejecting our credentials, is a 502.
func (o *Orchestrator) Progress(ctx context.Context, id string) ([]byte, error) {
	if !identity.Valid(id) {
		return nil, apperr.Validation(apperr.FieldError{Field: "id", Message: "malformed job id"})
	}

	doc, err := o.deps.Status.Fetch(ctx, id)
	if err != nil {
		var se *workflow.StatusError
		if errors.As(err, &se) {
			o.logger.Warn("workflow status request failed",
				logging.Field{Key: "job_id", Value: id},
				logging.Field{Key: "upstream_status", Value: se.StatusCode})
			if se.StatusCode == http.StatusNotFound {
				return nil, apperr.Downstream(err, "workflow not found", http.StatusNotFound)
			}
		}
		return nil, apperr.Downstream(err, "workflow status unavailable", http.StatusBadGateway)
	}
	return doc, nil
}

// ConfirmLink builds the public URL for a token.
func (o *Orchestrator) ConfirmLink(raw string) string {
	return strings.TrimRight(o.cfg.BaseURL, "/") + ConfirmPath + url.PathEscape(raw)
}
