package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/raysh454/scanconfirm/internal/logging"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// TLS modes accepted by SMTPConfig.TLS.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// SMTPConfig describes the relay used for confirmation mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      string
	Timeout  time.Duration
}

// SMTPMailer sends through an authenticated SMTP relay. A fresh connection
// is dialed per message, so no connection state is shared between requests.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger logging.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger logging.Logger) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if _, err := tlsPolicy(cfg.TLS); err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		cfg.Port = mail.DefaultPortTLS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "smtp"}),
	}, nil
}

// Send builds a text message (with an HTML alternative when present) and
// hands it to the relay. It does not retry.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.ReplyTo(m.cfg.From); err != nil {
		return fmt.Errorf("invalid reply-to address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Warn("smtp send failed",
			logging.Field{Key: "host", Value: m.cfg.Host},
			logging.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	m.logger.Debug("smtp message sent", logging.Field{Key: "host", Value: m.cfg.Host})
	return nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	policy, err := tlsPolicy(m.cfg.TLS)
	if err != nil {
		return nil, err
	}
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func tlsPolicy(mode string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", TLSMandatory:
		return mail.TLSMandatory, nil
	case TLSOpportunistic:
		return mail.TLSOpportunistic, nil
	case TLSNone:
		return mail.NoTLS, nil
	}
	return mail.NoTLS, fmt.Errorf("unknown smtp tls mode %q", mode)
}
