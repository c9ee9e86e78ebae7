package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwellhq/inkwell/internal/security"
)

// RefreshOrchestrator performs the fallback when the Session Reader comes
// up empty: a single same-origin POST to the refresh endpoint with the
// caller's cookies forwarded and no body. One attempt, no retry, no
// backoff; the transport's defaults govern timeouts.
type RefreshOrchestrator struct {
	refreshURL string
	client     *http.Client
}

func NewRefreshOrchestrator(baseURL string) *RefreshOrchestrator {
	return &RefreshOrchestrator{
		refreshURL: strings.TrimRight(baseURL, "/") + "/auth/refresh",
		client:     &http.Client{},
	}
}

// Refresh forwards the request's cookies to the refresh endpoint. On a 200
// it relays the endpoint's Set-Cookie headers onto the in-flight response
// and returns the fresh access-token value; the caller re-reads the session
// from it. Any non-200 is reported as failure with nothing written.
func (o *RefreshOrchestrator) Refresh(w http.ResponseWriter, r *http.Request) (string, bool) {
	// The call runs to completion even if the client goes away mid-flight,
	// so it is deliberately not bound to the request context.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, o.refreshURL, nil)
	if err != nil {
		return "", false
	}
	if cookies := r.Header.Get("Cookie"); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		slog.WarnContext(r.Context(), "refresh call failed", "error", err)
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	for _, sc := range resp.Header.Values("Set-Cookie") {
		w.Header().Add("Set-Cookie", sc)
	}
	for _, c := range resp.Cookies() {
		if c.Name == security.AccessTokenCookie {
			return c.Value, true
		}
	}
	return "", false
}
