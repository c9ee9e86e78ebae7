package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inkwellhq/inkwell/internal/security"
	"github.com/inkwellhq/inkwell/internal/service"
)

type guardFixture struct {
	codec        *security.TokenCodec
	reader       *service.SessionReader
	refresher    *service.RefreshOrchestrator
	refreshCalls *atomic.Int32
}

// newGuardFixture wires the guard against a live refresh endpoint that
// behaves like the real one: it reissues both cookies for a valid refresh
// token and answers 401 otherwise.
func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	codec := security.NewTokenCodec("inkwell-test", "test-access-secret-0123456789abcd", "test-refresh-secret-0123456789abc", time.Hour, 7*24*time.Hour)
	var calls atomic.Int32

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		raw := security.GetCookie(r, security.RefreshTokenCookie)
		sess, err := codec.DecodeRefresh(raw)
		if raw == "" || err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		pair, err := codec.Issue(sess.Subject, time.Now())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		security.CookiePolicy{}.SetSessionCookies(w, pair)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	return &guardFixture{
		codec:        codec,
		reader:       service.NewSessionReader(codec),
		refresher:    service.NewRefreshOrchestrator(upstream.URL),
		refreshCalls: &calls,
	}
}

func (f *guardFixture) protected(t *testing.T, guard func(http.Handler) http.Handler) (http.Handler, *atomic.Int32) {
	t.Helper()
	var served atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess == nil {
			t.Error("handler ran without a session in context")
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return guard(next), &served
}

func TestGuardAllowsValidAccessCookie(t *testing.T) {
	f := newGuardFixture(t)
	h, served := f.protected(t, APIAuth(f.reader, f.refresher))

	pair, err := f.codec.Issue(11, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: pair.Access})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
	if served.Load() != 1 {
		t.Fatal("handler did not run")
	}
	if f.refreshCalls.Load() != 0 {
		t.Fatalf("refresh called %d times on a reader hit", f.refreshCalls.Load())
	}
}

func TestGuardRefreshesExpiredAccessOnce(t *testing.T) {
	f := newGuardFixture(t)
	h, served := f.protected(t, APIAuth(f.reader, f.refresher))

	// Access expired an hour ago; refresh is still good for days.
	pair, err := f.codec.Issue(11, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: pair.Access})
	req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: pair.Refresh})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	if served.Load() != 1 {
		t.Fatal("handler did not run after refresh")
	}
	if f.refreshCalls.Load() != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", f.refreshCalls.Load())
	}

	// The reissued cookies ride on the protected response itself.
	var access, refresh bool
	for _, c := range rr.Result().Cookies() {
		switch c.Name {
		case security.AccessTokenCookie:
			access = c.Value != "" && c.Value != pair.Access
		case security.RefreshTokenCookie:
			refresh = c.Value != ""
		}
	}
	if !access || !refresh {
		t.Fatalf("fresh cookies missing: access=%v refresh=%v", access, refresh)
	}
}

func TestGuardDeniesAPIWithoutCookies(t *testing.T) {
	f := newGuardFixture(t)
	h, served := f.protected(t, APIAuth(f.reader, f.refresher))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Not authenticated" {
		t.Fatalf("message %q, want %q", body["message"], "Not authenticated")
	}
	if served.Load() != 0 {
		t.Fatal("handler ran for a denied request")
	}
	if f.refreshCalls.Load() != 1 {
		t.Fatalf("expected the single fallback attempt, got %d", f.refreshCalls.Load())
	}
}

func TestGuardRedirectsPagesWithoutCookies(t *testing.T) {
	f := newGuardFixture(t)
	h, served := f.protected(t, PageAuth(f.reader, f.refresher, "/sign-in"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("status %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/sign-in" {
		t.Fatalf("redirect to %q, want /sign-in", loc)
	}
	if served.Load() != 0 {
		t.Fatal("handler ran for a denied request")
	}
}

func TestGuardDeniesWhenRefreshTokenInvalid(t *testing.T) {
	f := newGuardFixture(t)
	h, served := f.protected(t, APIAuth(f.reader, f.refresher))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "garbage"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
	if served.Load() != 0 {
		t.Fatal("handler ran for a denied request")
	}
	if f.refreshCalls.Load() != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", f.refreshCalls.Load())
	}
	if got := rr.Result().Cookies(); len(got) != 0 {
		t.Fatalf("denied response must not carry cookies, got %d", len(got))
	}
}
