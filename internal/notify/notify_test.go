package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/scanconfirm/internal/notify"
	"github.com/raysh454/scanconfirm/internal/testutil"
)

const link = "https://scans.example.com/scans/confirm/eyJhbGciOiJIUzI1NiJ9.eyJpZCI6ImFiYyJ9.c2ln-_x"

func TestNotifier_NotifyConfirmation_SendsOneMessage(t *testing.T) {
	req := require.New(t)
	mailer := &testutil.DummyMailer{}
	n := notify.NewNotifier(mailer, notify.Options{}, &testutil.DummyLogger{})

	err := n.NotifyConfirmation(context.Background(), "a@b.com", "abcde12345", link)
	req.NoError(err)

	sent := mailer.Messages()
	req.Len(sent, 1)
	msg := sent[0]
	req.Equal("a@b.com", msg.To)
	req.Equal(notify.DefaultSubject, msg.Subject)
	req.Contains(msg.Text, link)
	req.Contains(msg.Text, "abcde12345")
}

func TestNotifier_HTMLBodyCarriesLink(t *testing.T) {
	req := require.New(t)
	n := notify.NewNotifier(&testutil.DummyMailer{}, notify.Options{Subject: "Please confirm"}, &testutil.DummyLogger{})

	msg, err := n.Render("a@b.com", "abcde12345", link)
	req.NoError(err)
	req.Equal("Please confirm", msg.Subject)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.HTML))
	req.NoError(err)

	href, ok := doc.Find("a#confirm-link").Attr("href")
	req.True(ok)
	req.Equal(link, href)
	req.Equal("abcde12345", doc.Find("#job-id").Text())
}

func TestNotifier_HTMLEscapesHostileLink(t *testing.T) {
	req := require.New(t)
	n := notify.NewNotifier(&testutil.DummyMailer{}, notify.Options{}, &testutil.DummyLogger{})

	msg, err := n.Render("a@b.com", "abcde12345", `javascript:alert("x")`)
	req.NoError(err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.HTML))
	req.NoError(err)
	href, _ := doc.Find("a#confirm-link").Attr("href")
	req.False(strings.HasPrefix(href, "javascript:"))
}

func TestNotifier_MailerFailure_IsReturned(t *testing.T) {
	req := require.New(t)
	boom := errors.New("relay refused")
	n := notify.NewNotifier(&testutil.DummyMailer{Err: boom}, notify.Options{}, &testutil.DummyLogger{})

	err := n.NotifyConfirmation(context.Background(), "a@b.com", "abcde12345", link)
	req.Error(err)
	req.ErrorIs(err, boom)
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	logger := &testutil.DummyLogger{}

	tests := []struct {
		name    string
		cfg     notify.SMTPConfig
		wantErr bool
	}{
		{name: "ok", cfg: notify.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}},
		{name: "opportunistic tls", cfg: notify.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com", TLS: "Opportunistic"}},
		{name: "no tls", cfg: notify.SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@localhost", TLS: notify.TLSNone}},
		{name: "missing host", cfg: notify.SMTPConfig{From: "noreply@example.com"}, wantErr: true},
		{name: "missing from", cfg: notify.SMTPConfig{Host: "smtp.example.com"}, wantErr: true},
		{name: "bad tls mode", cfg: notify.SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com", TLS: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := notify.NewSMTPMailer(tt.cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, m)
		})
	}
}

func TestSMTPMailer_Send_RejectsBadRecipientBeforeDialing(t *testing.T) {
	req := require.New(t)
	m, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host: "127.0.0.1",
		Port: 1,
		From: "noreply@localhost",
		TLS:  notify.TLSNone,
	}, &testutil.DummyLogger{})
	req.NoError(err)

	err = m.Send(context.Background(), notify.Message{To: "not an address", Subject: "x", Text: "y"})
	req.Error(err)
	req.Contains(err.Error(), "invalid recipient address")
}
