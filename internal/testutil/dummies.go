// Package testutil holds in-memory doubles for the logger, the outbound web
// client and the mailer.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/notify"
	"github.com/raysh454/scanconfirm/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// LogEntry is one recorded log call.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []logging.Field
}

// DummyLogger implements logging.Logger by recording every call. Loggers
// derived with With record into their root.
type DummyLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	root    *DummyLogger
	base    []logging.Field
}

func (l *DummyLogger) record(level, msg string, fields []logging.Field) {
	all := append(append([]logging.Field(nil), l.base...), fields...)
	r := l.rootLogger()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, LogEntry{Level: level, Msg: msg, Fields: all})
}

func (l *DummyLogger) rootLogger() *DummyLogger {
	if l.root != nil {
		return l.root
	}
	return l
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) { l.record("DEBUG", msg, fields) }
func (l *DummyLogger) Info(msg string, fields ...logging.Field)  { l.record("INFO", msg, fields) }
func (l *DummyLogger) Warn(msg string, fields ...logging.Field)  { l.record("WARN", msg, fields) }
func (l *DummyLogger) Error(msg string, fields ...logging.Field) { l.record("ERROR", msg, fields) }

func (l *DummyLogger) With(fields ...logging.Field) logging.Logger {
	return &DummyLogger{
		root: l.rootLogger(),
		base: append(append([]logging.Field(nil), l.base...), fields...),
	}
}

// Entries returns a copy of everything logged so far.
func (l *DummyLogger) Entries() []LogEntry {
	r := l.rootLogger()
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), r.entries...)
}

// ErrorCount returns how many Error entries were recorded.
func (l *DummyLogger) ErrorCount() int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == "ERROR" {
			n++
		}
	}
	return n
}

// Contains reports whether s appears in any message or field value.
func (l *DummyLogger) Contains(s string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Msg, s) {
			return true
		}
		for _, f := range e.Fields {
			if strings.Contains(fmt.Sprint(f.Value), s) {
				return true
			}
		}
	}
	return false
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error for a specific URL, or
// StatusCode/Body to override the canned response.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	StatusCode    int
	Body          []byte
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy request fail for " + req.URL)
	}

	status := d.StatusCode
	if status == 0 {
		status = 200
	}
	body := d.Body
	if body == nil {
		body = []byte("ok:" + req.URL)
	}

	return &webclient.Response{
		Request:    req,
		Body:       body,
		StatusCode: status,
		ReceivedAt: time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// Calls returns a copy of the recorded requests.
func (d *DummyWebClient) Calls() []*webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*webclient.Request(nil), d.Requests...)
}

// ─── Mailer ────────────────────────────────────────────────────────────

// DummyMailer implements notify.Mailer and keeps every message it was asked
// to send. Err, when set, is returned instead of recording.
type DummyMailer struct {
	Err  error
	mu   sync.Mutex
	Sent []notify.Message
}

func (m *DummyMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages returns a copy of the sent messages.
func (m *DummyMailer) Messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.Sent...)
}
