package server_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/scanconfirm/internal/app"
	"github.com/raysh454/scanconfirm/internal/identity"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/notify"
	"github.com/raysh454/scanconfirm/internal/server"
	"github.com/raysh454/scanconfirm/internal/testutil"
	"github.com/raysh454/scanconfirm/internal/token"
	"github.com/raysh454/scanconfirm/internal/webclient"
	"github.com/raysh454/scanconfirm/internal/workflow"
)

const testSecret = "server-test-secret"

// webhookStub records every POST it receives.
type webhookStub struct {
	mu     sync.Mutex
	bodies []string
	status int
}

func (h *webhookStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.bodies = append(h.bodies, string(b))
	status := h.status
	h.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (h *webhookStub) setStatus(code int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = code
}

func (h *webhookStub) calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bodies...)
}

// argoStub serves workflow documents keyed by workflow name.
type argoStub struct {
	mu     sync.Mutex
	docs   map[string][]string
	auth   []string
	reject int
}

func (a *argoStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/workflows/argo/"
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auth = append(a.auth, r.Header.Get("Authorization"))
	if a.reject != 0 {
		http.Error(w, `{"code":16,"message":"token not valid"}`, a.reject)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, prefix)
	queue := a.docs[name]
	if !strings.HasPrefix(r.URL.Path, prefix) || len(queue) == 0 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":5,"message":"workflows.argoproj.io \"` + name + `\" not found"}`))
		return
	}
	doc := queue[0]
	if len(queue) > 1 {
		a.docs[name] = queue[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

func (a *argoStub) serve(name string, docs ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[name] = docs
}

func (a *argoStub) rejectWith(code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reject = code
}

func (a *argoStub) authHeaders() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.auth...)
}

type fixture struct {
	handler http.Handler
	mailer  *testutil.DummyMailer
	webhook *webhookStub
	argo    *argoStub
	logger  *testutil.DummyLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		mailer:  &testutil.DummyMailer{},
		webhook: &webhookStub{},
		argo:    &argoStub{docs: map[string][]string{}},
		logger:  &testutil.DummyLogger{},
	}
	hook := httptest.NewServer(f.webhook)
	t.Cleanup(hook.Close)
	argo := httptest.NewServer(f.argo)
	t.Cleanup(argo.Close)

	wc, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: 5 * time.Second}, f.logger, nil)
	if err != nil {
		t.Fatalf("webclient: %v", err)
	}
	t.Cleanup(func() { _ = wc.Close() })

	trigger, err := workflow.NewTrigger(hook.URL+"/", wc, f.logger)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	status, err := workflow.NewStatusClient(workflow.StatusConfig{BaseURL: argo.URL, Token: "argo-token"}, wc, f.logger)
	if err != nil {
		t.Fatalf("status client: %v", err)
	}
	codec, err := app.NewJobCodec(testSecret)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	orch := app.NewOrchestrator(&app.Config{BaseURL: "https://scans.example.com", TokenTTL: 24 * time.Hour}, app.Deps{
		Codec:    codec,
		Notifier: notify.NewNotifier(f.mailer, notify.Options{}, f.logger),
		Trigger:  trigger,
		Status:   status,
	}, f.logger)

	f.handler = server.NewServer(server.Config{
		ListenAddr:   ":0",
		PollInterval: 10 * time.Millisecond,
		Logger:       f.logger,
	}, orch)
	return f
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// confirmPath pulls the confirm route out of the mailed link.
func confirmPath(t *testing.T, msg notify.Message) string {
	t.Helper()
	i := strings.Index(msg.Text, app.ConfirmPath)
	if i < 0 {
		t.Fatalf("no confirmation link in mail body: %q", msg.Text)
	}
	rest := msg.Text[i:]
	if j := strings.IndexAny(rest, " \r\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func assertErrorShape(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantMessage string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("expected %d, got %d: %s", wantStatus, rec.Code, rec.Body.String())
	}
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.ErrorID == "" {
		t.Errorf("expected error_id in body")
	}
	if wantMessage != "" && body.Message != wantMessage {
		t.Errorf("expected message %q, got %q", wantMessage, body.Message)
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "GET", "/healthz", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "OPTIONS", "/scans", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if m := rec.Header().Get("Access-Control-Allow-Methods"); m != "POST" {
		t.Errorf("expected allowed methods POST, got %q", m)
	}
}

func TestServer_CORS_ConfiguredOrigin(t *testing.T) {
	t.Parallel()
	s := server.NewServer(server.Config{AllowedOrigin: "https://app.example.com", Logger: &testutil.DummyLogger{}}, nil)

	rec := doJSON(t, s, "GET", "/healthz", "")
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "https://app.example.com" {
		t.Errorf("expected configured origin, got %q", origin)
	}
}

// ─── Health ────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "GET", "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body server.HealthResponse
	decodeJSON(t, rec, &body)
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
}

// ─── Submit ────────────────────────────────────────────────────────────

func TestServer_SubmitScan_MailsConfirmationLink(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com","rustscan":{"uri":"http://x"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body server.SubmitScanResponse
	decodeJSON(t, rec, &body)
	if !identity.Valid(body.ID) {
		t.Fatalf("expected 10-char lowercase alnum id, got %q", body.ID)
	}

	sent := f.mailer.Messages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one mail, got %d", len(sent))
	}
	if sent[0].To != "a@b.com" {
		t.Errorf("expected mail to a@b.com, got %q", sent[0].To)
	}
	if !strings.Contains(sent[0].Text, "https://scans.example.com/scans/confirm/") {
		t.Errorf("expected confirm link in mail, got %q", sent[0].Text)
	}
	if len(f.webhook.calls()) != 0 {
		t.Errorf("submit must not trigger the workflow")
	}
}

func TestServer_SubmitScan_InvalidJSON(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "POST", "/scans", `{invalid}`)

	assertErrorShape(t, rec, http.StatusBadRequest, "")
	if len(f.mailer.Messages()) != 0 {
		t.Errorf("no mail expected")
	}
}

func TestServer_SubmitScan_StreamedBodyReachesHandler(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	body := `{"email":"a@b.com","rustscan":{"uri":"10.0.0.5"}}`
	req := httptest.NewRequest("POST", "/scans", iotest.OneByteReader(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.mailer.Messages()) != 1 {
		t.Fatalf("expected one mail")
	}

	var logged bool
	for _, e := range f.logger.Entries() {
		if e.Msg != "http_request" {
			continue
		}
		for _, fld := range e.Fields {
			if fld.Key == "content_length" && fld.Value == int64(-1) {
				logged = true
			}
		}
	}
	if !logged {
		t.Errorf("expected request log with unknown content_length")
	}
}

func TestServer_SubmitScan_BrokenBodyIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	broken := io.MultiReader(strings.NewReader(`{"email":"a@b.com",`), iotest.ErrReader(errors.New("connection reset")))
	req := httptest.NewRequest("POST", "/scans", broken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assertErrorShape(t, rec, http.StatusBadRequest, "")
	if len(f.mailer.Messages()) != 0 {
		t.Errorf("no mail expected")
	}
}

func TestServer_SubmitScan_ValidationError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "POST", "/scans", `{"email":"not-an-address","zap":{"uri":"http://x"}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	if !strings.Contains(body.Message, "email") {
		t.Errorf("expected message to name the email field, got %q", body.Message)
	}
}

func TestServer_SubmitScan_MailFailure_IsOpaque(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.mailer.Err = io.ErrUnexpectedEOF

	rec := doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com","zap":{"uri":"http://x"}}`)

	assertErrorShape(t, rec, http.StatusInternalServerError, "Internal Server Error")
	if f.logger.ErrorCount() == 0 {
		t.Errorf("expected the cause to be logged")
	}
}

// ─── Confirm ───────────────────────────────────────────────────────────

func TestServer_ConfirmScan_TriggersWebhookOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com","rustscan":{"uri":"http://x"}}`)
	var submitted server.SubmitScanResponse
	decodeJSON(t, rec, &submitted)

	rec = doJSON(t, f.handler, "GET", confirmPath(t, f.mailer.Messages()[0]), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirmed server.ConfirmScanResponse
	decodeJSON(t, rec, &confirmed)
	if confirmed.Status != "ok" || confirmed.ID != submitted.ID {
		t.Errorf("unexpected confirm body: %+v", confirmed)
	}

	calls := f.webhook.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one webhook call, got %d", len(calls))
	}
	var posted map[string]any
	if err := json.Unmarshal([]byte(calls[0]), &posted); err != nil {
		t.Fatalf("webhook body is not JSON: %v", err)
	}
	if posted["id"] != submitted.ID || posted["email"] != "a@b.com" {
		t.Errorf("unexpected webhook body: %s", calls[0])
	}
	if rs, _ := posted["rustscan"].(map[string]any); rs["uri"] != "http://x" {
		t.Errorf("expected rustscan target in webhook body: %s", calls[0])
	}
}

func TestServer_ConfirmScan_WebhookGetsTargetsUntouched(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		targets string
	}{
		{name: "mixed case url", targets: `"zap":{"uri":"http://Example.COM/Path"}`},
		{name: "bare ip", targets: `"rustscan":{"uri":"10.0.0.5"}`},
		{name: "host with underscore", targets: `"rustscan":{"uri":"dev_box.internal:8443"},"zap":{"uri":"https://dev_box.internal:8443/App?x=%2F"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rec := doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com",`+tt.targets+`}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var submitted server.SubmitScanResponse
			decodeJSON(t, rec, &submitted)

			rec = doJSON(t, f.handler, "GET", confirmPath(t, f.mailer.Messages()[0]), "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			calls := f.webhook.calls()
			if len(calls) != 1 {
				t.Fatalf("expected exactly one webhook call, got %d", len(calls))
			}
			want := `{"id":"` + submitted.ID + `","email":"a@b.com",` + tt.targets + `}`
			if calls[0] != want {
				t.Errorf("webhook body\n got: %s\nwant: %s", calls[0], want)
			}
		})
	}
}

func TestServer_ConfirmScan_ExpiredToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	past := func() time.Time { return time.Now().Add(-48 * time.Hour) }
	codec, err := token.NewCodec[model.Job]([]byte(testSecret), token.WithClock(past))
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	raw, err := codec.Encode(model.Job{
		ID:          "abcde12345",
		ScanRequest: model.ScanRequest{Email: "a@b.com", Rustscan: &model.Target{URI: "http://x"}},
	}, 24*time.Hour)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	rec := doJSON(t, f.handler, "GET", app.ConfirmPath+raw, "")

	assertErrorShape(t, rec, http.StatusBadRequest, "invalid or expired confirmation link")
	if n := len(f.webhook.calls()); n != 0 {
		t.Errorf("expected no webhook call, got %d", n)
	}
}

func TestServer_ConfirmScan_TamperedToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com","rustscan":{"uri":"http://x"}}`)
	path := confirmPath(t, f.mailer.Messages()[0])

	last := path[len(path)-1]
	repl := "A"
	if last == 'A' {
		repl = "B"
	}
	rec := doJSON(t, f.handler, "GET", path[:len(path)-1]+repl, "")

	assertErrorShape(t, rec, http.StatusBadRequest, "invalid or expired confirmation link")
	if n := len(f.webhook.calls()); n != 0 {
		t.Errorf("expected no webhook call, got %d", n)
	}
}

func TestServer_ConfirmScan_WebhookDown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.webhook.setStatus(http.StatusServiceUnavailable)

	doJSON(t, f.handler, "POST", "/scans", `{"email":"a@b.com","zap":{"uri":"http://x"}}`)
	rec := doJSON(t, f.handler, "GET", confirmPath(t, f.mailer.Messages()[0]), "")

	assertErrorShape(t, rec, http.StatusBadGateway, "Internal Server Error")
}

func TestServer_ConfirmScan_TokenNotLogged(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	s := server.NewServer(server.Config{Logger: logger}, nil)

	req := httptest.NewRequest("OPTIONS", "/scans/confirm/secret-token-value", nil)
	s.ServeHTTP(httptest.NewRecorder(), req)

	if len(logger.Entries()) == 0 {
		t.Fatal("request was not logged")
	}
	if logger.Contains("secret-token-value") {
		t.Fatal("token leaked into logs")
	}
}

// ─── Progress ──────────────────────────────────────────────────────────

func TestServer_ScanProgress_RelaysDocument(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	doc := `{"metadata":{"name":"scan-abcde12345"},"status":{"phase":"Running"}}`
	f.argo.serve("scan-abcde12345", doc)

	rec := doJSON(t, f.handler, "GET", "/scans/progress/abcde12345", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != doc {
		t.Errorf("expected verbatim document, got %s", rec.Body.String())
	}
	if got := f.argo.authHeaders(); len(got) != 1 || got[0] != "Bearer argo-token" {
		t.Errorf("expected bearer token, got %q", got)
	}
}

func TestServer_ScanProgress_UnknownID_RelaysUpstreamStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "GET", "/scans/progress/zzzzzzzzzz", "")

	assertErrorShape(t, rec, http.StatusNotFound, "")
}

func TestServer_ScanProgress_ArgoRejectsCredentials_IsBadGateway(t *testing.T) {
	t.Parallel()
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.argo.rejectWith(code)

			rec := doJSON(t, f.handler, "GET", "/scans/progress/abcde12345", "")

			assertErrorShape(t, rec, http.StatusBadGateway, "Internal Server Error")
		})
	}
}

func TestServer_ScanProgress_MalformedID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "GET", "/scans/progress/NOPE", "")

	assertErrorShape(t, rec, http.StatusBadRequest, "")
	if len(f.argo.authHeaders()) != 0 {
		t.Errorf("malformed id must not reach the orchestrator")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_ProgressWS_StreamsUntilTerminal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.argo.serve("scan-abcde12345",
		`{"status":{"phase":"Pending"}}`,
		`{"status":{"phase":"Running"}}`,
		`{"status":{"phase":"Succeeded"}}`,
	)

	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scans/progress/abcde12345"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var phases []string
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("expected normal closure, got %v", err)
			}
			break
		}
		phases = append(phases, workflow.Phase(msg))
	}

	want := []string{"Pending", "Running", "Succeeded"}
	if strings.Join(phases, ",") != strings.Join(want, ",") {
		t.Errorf("expected phases %v, got %v", want, phases)
	}
}

func TestServer_ProgressWS_ClosesOnRelayError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scans/progress/zzzzzzzzzz"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Fatalf("expected internal error close, got %v", err)
	}
}

func TestServer_ProgressWS_MalformedID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := doJSON(t, f.handler, "GET", "/ws/scans/progress/NOPE", "")
	assertErrorShape(t, rec, http.StatusBadRequest, "")
}
