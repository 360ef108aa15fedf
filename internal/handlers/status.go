package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	deps    map[string]Pinger
	sockets func() int
}

// NewStatusHandler builds the status endpoints. sockets reports open
// WebSocket connections for /health and may be nil.
func NewStatusHandler(deps map[string]Pinger, sockets func() int) *StatusHandler {
	return &StatusHandler{deps: deps, sockets: sockets}
}

func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "ISL API is running",
	})
}

// Health reports "ok" when every dependency answers within two seconds.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	status, code := "ok", http.StatusOK
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{
		"status": status,
		"checks": checks,
	}
	if h.sockets != nil {
		body["websocket_connections"] = h.sockets()
	}
	writeJSON(w, code, body)
}
