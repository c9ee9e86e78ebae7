package middleware

import (
	"net/http"

	"github.com/inkwellhq/inkwell/internal/service"
)

// LookupMemo installs a fresh per-request user-lookup memo. It dies with
// the request context, so nothing memoized here outlives the request.
func LookupMemo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithLookupMemo(r.Context(), service.NewLookupMemo())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
