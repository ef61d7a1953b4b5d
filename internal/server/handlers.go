package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	"github.com/raysh454/scanconfirm/internal/apperr"
	"github.com/raysh454/scanconfirm/internal/identity"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/workflow"
)

// handleSubmitScan godoc
// @Summary Request a scan
// @Description Validates the request and mails a confirmation link to the given address. The scan starts only once the link is followed.
// @Tags scans
// @Accept json
// @Produce json
// @Param request body model.ScanRequest true "Scan request"
// @Success 200 {object} SubmitScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scans [post]
func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var body model.ScanRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &body); err != nil {
		s.writeError(w, r, apperr.Validation(apperr.FieldError{Field: "body", Message: "invalid JSON"}))
		return
	}

	id, err := s.orchestrator.Submit(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("scan submitted", logging.Field{Key: "job_id", Value: id})
	writeJSON(w, r, http.StatusOK, SubmitScanResponse{ID: id})
}

// handleConfirmScan godoc
// @Summary Confirm a scan
// @Description Verifies the mailed token and hands the scan to the workflow webhook.
// @Tags scans
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} ConfirmScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /scans/confirm/{token} [get]
func (s *Server) handleConfirmScan(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")

	res, err := s.orchestrator.Confirm(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("scan confirmed",
		logging.Field{Key: "job_id", Value: res.JobID},
		logging.Field{Key: "webhook_status", Value: res.StatusCode})
	writeJSON(w, r, http.StatusOK, ConfirmScanResponse{Status: "ok", ID: res.JobID})
}

// handleScanProgress godoc
// @Summary Scan progress
// @Description Returns the workflow document from the orchestrator as-is. An unknown workflow is a 404; any other upstream failure is a 502.
// @Tags scans
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} object
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /scans/progress/{id} [get]
func (s *Server) handleScanProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.orchestrator.Progress(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handleHealth godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// WebSockets

// handleProgressWS godoc
// @Summary Stream scan progress
// @Description Upgrades to a websocket and pushes the workflow document on every poll until the workflow finishes or the relay fails.
// @Tags scans
// @Param id path string true "Job id"
// @Router /ws/scans/progress/{id} [get]
func (s *Server) handleProgressWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !identity.Valid(id) {
		s.writeError(w, r, apperr.Validation(apperr.FieldError{Field: "id", Message: "malformed job id"}))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so close and ping are handled; any read error
	// means the peer is gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		doc, err := s.orchestrator.Progress(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			rich := apperr.Resolve(err)
			s.logger.Warn("progress stream ended by relay error",
				logging.Field{Key: "job_id", Value: id},
				logging.Field{Key: "status", Value: rich.Code},
				logging.Err(err))
			closeWS(conn, websocket.CloseInternalServerErr, apperr.PublicMessage(rich))
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, doc); err != nil {
			return
		}

		if phase := workflow.Phase(doc); workflow.IsTerminal(phase) {
			s.logger.Info("workflow finished", logging.Field{Key: "job_id", Value: id}, logging.Field{Key: "phase", Value: phase})
			closeWS(conn, websocket.CloseNormalClosure, phase)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func closeWS(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
