// Package notify renders and sends the confirmation email that carries a
// scan's confirmation link.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/raysh454/scanconfirm/internal/logging"
)

// DefaultSubject is used when Options.Subject is empty.
const DefaultSubject = "Confirm Scan Request"

const textBody = `Hello,

A scan was requested for this address (job {{.JobID}}).
Follow the link below to start it:

{{.Link}}

The link expires on its own. If you did not request a scan, ignore this message.
`

const htmlBody = `<!DOCTYPE html>
<html>
<body>
<p>Hello,</p>
<p>A scan was requested for this address (job <code id="job-id">{{.JobID}}</code>).</p>
<p><a id="confirm-link" href="{{.Link}}">Confirm scan</a></p>
<p>The link expires on its own. If you did not request a scan, ignore this message.</p>
</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("confirm.txt").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("confirm.html").Parse(htmlBody))
)

type Options struct {
	Subject string
}

// Notifier turns a confirmation link into a Message and hands it to a Mailer.
type Notifier struct {
	mailer  Mailer
	subject string
	logger  logging.Logger
}

func NewNotifier(mailer Mailer, opts Options, logger logging.Logger) *Notifier {
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{
		mailer:  mailer,
		subject: subject,
		logger:  logger.With(logging.Field{Key: "component", Value: "notifier"}),
	}
}

type confirmData struct {
	JobID string
	Link  string
}

// Render builds the message without sending it.
func (n *Notifier) Render(to, jobID, link string) (Message, error) {
	data := confirmData{JobID: jobID, Link: link}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	return Message{
		To:      to,
		Subject: n.subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// NotifyConfirmation sends exactly one message to `to`. Delivery failures are
// returned as-is; nothing is retried.
func (n *Notifier) NotifyConfirmation(ctx context.Context, to, jobID, link string) error {
	msg, err := n.Render(to, jobID, link)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation for job %s: %w", jobID, err)
	}
	n.logger.Info("confirmation mail sent", logging.Field{Key: "job_id", Value: jobID})
	return nil
}
