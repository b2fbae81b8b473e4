package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger    Pinger
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(pinger Pinger, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{pinger: pinger, responder: newResponder(base, nil), logger: base}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.responder.writeText(r.Context(), w, http.StatusOK, "ok")
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		h.responder.writeText(r.Context(), w, http.StatusOK, "ok")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		handlerLogger(r.Context(), h.logger, "HealthHandler", "Ready").WarnContext(r.Context(), "database not reachable", "error", err)
		h.responder.writeText(r.Context(), w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	h.responder.writeText(r.Context(), w, http.StatusOK, "ok")
}
