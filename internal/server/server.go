package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/scanconfirm/internal/app"
	"github.com/raysh454/scanconfirm/internal/apperr"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/workflow"

	_ "github.com/raysh454/scanconfirm/internal/server/docs" // swagger spec
)

// Orchestrator is what the HTTP surface needs from the confirmation protocol.
type Orchestrator interface {
	Submit(ctx context.Context, req model.ScanRequest) (string, error)
	Confirm(ctx context.Context, token string) (*workflow.TriggerResult, error)
	Progress(ctx context.Context, id string) ([]byte, error)
}

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AllowedOrigin is sent as Access-Control-Allow-Origin and checked on
	// websocket upgrades. "*" allows any origin.
	AllowedOrigin string

	// PollInterval paces the progress websocket.
	PollInterval time.Duration

	Logger logging.Logger
}

const maxBodyBytes = 64 << 10

// Server is the HTTP + WebSocket API surface for scan confirmation.
type Server struct {
	cfg          Config
	orchestrator Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer wires routes around an already constructed orchestrator.
func NewServer(cfg Config, orch Orchestrator) *Server {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("INFO", "server")
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       chi.NewRouter(),
		logger:       logger,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/scans", s.optionsHandler("POST"))
	r.Options("/scans/confirm/{token}", s.optionsHandler("GET"))
	r.Options("/scans/progress/{id}", s.optionsHandler("GET"))

	r.Post("/scans", s.handleSubmitScan)
	r.Get("/scans/confirm/{token}", s.handleConfirmScan)
	r.Get("/scans/progress/{id}", s.handleScanProgress)

	// WebSocket for workflow progress
	r.Get("/ws/scans/progress/{id}", s.handleProgressWS)

	r.Get("/healthz", s.handleHealth)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")
		if s.cfg.AllowedOrigin != "*" {
			w.Header().Add("Vary", "Origin")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.AllowedOrigin
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: redactPath(r.URL.Path)},
	}

	if r.Method == http.MethodPost {
		fields = append(fields, logging.Field{Key: "content_length", Value: r.ContentLength})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

// Confirmation tokens are bearer credentials; keep them out of logs.
func redactPath(p string) string {
	if strings.HasPrefix(p, app.ConfirmPath) {
		return app.ConfirmPath + "[redacted]"
	}
	return p
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeError renders err in the single public error shape. The cause only
// reaches the log, tagged with the same error_id the caller sees.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	rich := apperr.Resolve(err)
	errorID := uuid.NewString()

	fields := []logging.Field{
		{Key: "error_id", Value: errorID},
		{Key: "status", Value: rich.Code},
		{Key: "text_code", Value: rich.TextCode},
		{Key: "path", Value: redactPath(r.URL.Path)},
		logging.Err(err),
	}
	if rich.Code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}

	writeJSON(w, r, rich.Code, ErrorResponse{ErrorID: errorID, Message: apperr.PublicMessage(rich)})
}
