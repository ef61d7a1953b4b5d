package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/scanconfirm/internal/config"
	"github.com/raysh454/scanconfirm/internal/ledger"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/notify"
	"github.com/raysh454/scanconfirm/internal/token"
	"github.com/raysh454/scanconfirm/internal/webclient"
	"github.com/raysh454/scanconfirm/internal/workflow"
)

// Application is the runtime state container built once at startup from a
// config.Config. Pass it to the HTTP server rather than using package-level
// variables.
type Application struct {
	Config config.Config
	Logger logging.Logger
	Orch   *Orchestrator

	webClient webclient.WebClient
	ledger    ledger.Ledger
}

// NewJobCodec builds the token codec for scan jobs.
func NewJobCodec(secret string) (*token.Codec[model.Job], error) {
	return token.NewCodec[model.Job]([]byte(secret))
}

// NewApplication constructs every component from cfg. cfg must already be
// valid.
func NewApplication(cfg config.Config, logger logging.Logger) (*Application, error) {
	codec, err := NewJobCodec(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	wc, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: cfg.HTTPTimeout}, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("webclient: %w", err)
	}

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		TLS:      cfg.SMTPTLS,
		Timeout:  cfg.SMTPTimeout,
	}, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	trigger, err := workflow.NewTrigger(cfg.WebhookURL, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, err
	}
	status, err := workflow.NewStatusClient(workflow.StatusConfig{
		BaseURL:   cfg.ArgoURL,
		Token:     cfg.ArgoToken,
		Namespace: cfg.ArgoNamespace,
	}, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, err
	}

	guard, err := ledger.Open(cfg.ReplayGuard, cfg.ReplayDSN, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("replay guard: %w", err)
	}

	orch := NewOrchestrator(&Config{BaseURL: cfg.BaseURL(), TokenTTL: cfg.TokenTTL}, Deps{
		Codec:    codec,
		Notifier: notify.NewNotifier(mailer, notify.Options{}, logger),
		Trigger:  trigger,
		Status:   status,
		Guard:    guard,
	}, logger)

	logger.Info("application configured",
		logging.Field{Key: "base_url", Value: cfg.BaseURL()},
		logging.Field{Key: "replay_guard", Value: cfg.ReplayGuard})

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Orch:      orch,
		webClient: wc,
		ledger:    guard,
	}, nil
}

// Shutdown releases outbound connections and the replay ledger.
func (a *Application) Shutdown(_ context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")
	return errors.Join(a.webClient.Close(), a.ledger.Close())
}
