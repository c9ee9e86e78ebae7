package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inkwellhq/inkwell/internal/security"
)

func TestRefreshRelaysCookiesOnSuccess(t *testing.T) {
	codec := security.NewTokenCodec("inkwell-test", "test-access-secret-0123456789abcd", "test-refresh-secret-0123456789abc", time.Hour, 7*24*time.Hour)
	pair, err := codec.Issue(5, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var calls atomic.Int32
	var sawCookie atomic.Value
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/auth/refresh" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		sawCookie.Store(r.Header.Get("Cookie"))
		security.CookiePolicy{}.SetSessionCookies(w, pair)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	o := NewRefreshOrchestrator(upstream.URL)
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: pair.Refresh})
	rr := httptest.NewRecorder()

	access, ok := o.Refresh(rr, req)
	if !ok {
		t.Fatal("expected refresh success")
	}
	if access != pair.Access {
		t.Fatalf("returned access %q, want %q", access, pair.Access)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", calls.Load())
	}
	if forwarded, _ := sawCookie.Load().(string); forwarded == "" {
		t.Fatal("inbound cookies were not forwarded")
	}

	// Both Set-Cookie headers must land on the in-flight response.
	var names []string
	for _, c := range rr.Result().Cookies() {
		names = append(names, c.Name)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 relayed cookies, got %v", names)
	}
}

func TestRefreshFailureWritesNothing(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	o := NewRefreshOrchestrator(upstream.URL)
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rr := httptest.NewRecorder()

	if _, ok := o.Refresh(rr, req); ok {
		t.Fatal("expected refresh failure on 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one attempt, no retries; got %d", calls.Load())
	}
	if got := rr.Result().Cookies(); len(got) != 0 {
		t.Fatalf("failure must not write cookies, got %d", len(got))
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("failure must not write a body, got %q", rr.Body.String())
	}
}

func TestRefreshUnreachableEndpointFails(t *testing.T) {
	// A closed port: the single attempt errors out and that is the answer.
	o := NewRefreshOrchestrator("http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rr := httptest.NewRecorder()
	if _, ok := o.Refresh(rr, req); ok {
		t.Fatal("expected failure against unreachable endpoint")
	}
}

func TestRefreshSuccessWithoutAccessCookieFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	o := NewRefreshOrchestrator(upstream.URL)
	rr := httptest.NewRecorder()
	if _, ok := o.Refresh(rr, httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("a 200 without a fresh access cookie is not a usable refresh")
	}
}
