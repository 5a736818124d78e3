package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler reports whether every named dependency answers within Timeout.
type ReadyHandler struct {
	Checks  map[string]func(ctx context.Context) error
	Timeout time.Duration
	Logger  *zap.Logger
}

func (h *ReadyHandler) Ready(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	res := map[string]string{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			h.Logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			res[name] = "unavailable"
			res["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res[name] = "ok"
	}

	writeJSON(w, r, status, res)
}
