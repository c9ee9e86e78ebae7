package observability

import (
	"log/slog"
	"net"
	"net/http"
)

// Audit emits one structured record per session-lifecycle event (register,
// login, logout). Records carry the client host and request id so they can
// be correlated with the request log, and never any token material.
func Audit(r *http.Request, event string, attrs ...any) {
	client := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		client = host
	}
	fields := make([]any, 0, 8+len(attrs))
	fields = append(fields,
		"event", event,
		"path", r.URL.Path,
		"client", client,
		"request_id", r.Header.Get("X-Request-Id"),
	)
	fields = append(fields, attrs...)
	slog.InfoContext(r.Context(), "audit", fields...)
}
