package middleware

import (
	"context"
	"net/http"

	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/observability"
	"github.com/inkwellhq/inkwell/internal/security"
	"github.com/inkwellhq/inkwell/internal/service"
)

type contextKey string

const SessionContextKey contextKey = "session"

// RequireSession is the protected-route guard. Per request it moves from
// UNVERIFIED to VERIFIED on a reader hit, or tries exactly one refresh and
// re-reads before giving up. What DENIED looks like is the caller's choice:
// APIAuth answers 401, PageAuth redirects to the sign-in page.
func RequireSession(reader *service.SessionReader, refresher *service.RefreshOrchestrator, surface string, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := reader.Read(r)
			if ok {
				observability.RecordSessionRead(r.Context(), "hit", surface)
			} else {
				access, refreshed := refresher.Refresh(w, r)
				if refreshed {
					sess, ok = reader.ReadValue(access)
				}
				if ok {
					observability.RecordSessionRead(r.Context(), "refreshed", surface)
				}
			}
			if !ok {
				observability.RecordSessionRead(r.Context(), "denied", surface)
				deny(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func APIAuth(reader *service.SessionReader, refresher *service.RefreshOrchestrator) func(http.Handler) http.Handler {
	return RequireSession(reader, refresher, "api", func(w http.ResponseWriter, _ *http.Request) {
		response.NotAuthenticated(w)
	})
}

func PageAuth(reader *service.SessionReader, refresher *service.RefreshOrchestrator, signInPath string) func(http.Handler) http.Handler {
	return RequireSession(reader, refresher, "page", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, signInPath, http.StatusFound)
	})
}

func SessionFromContext(ctx context.Context) (*security.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*security.Session)
	return s, ok
}
