package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/http/middleware"
	"github.com/inkwellhq/inkwell/internal/security"
	"github.com/inkwellhq/inkwell/internal/service"
)

func meRequest(sess *security.Session) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if sess != nil {
		ctx := context.WithValue(req.Context(), middleware.SessionContextKey, sess)
		req = req.WithContext(ctx)
	}
	return req
}

func TestMeReturnsPublicProjection(t *testing.T) {
	users := newFakeUsers()
	user := &domain.User{Username: "gopher", Email: "gopher@example.com", FullName: "Go Gopher", PasswordHash: "h"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewUserHandler(service.NewUserService(users))

	rr := httptest.NewRecorder()
	h.Me(rr, meRequest(&security.Session{Subject: user.ID}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["username"] != "gopher" || body["fullName"] != "Go Gopher" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(body) != 3 {
		t.Fatalf("projection must be exactly id, username, fullName; got %v", body)
	}
}

func TestMeWithoutSessionIs401(t *testing.T) {
	h := NewUserHandler(service.NewUserService(newFakeUsers()))
	rr := httptest.NewRecorder()
	h.Me(rr, meRequest(nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
}

func userRouter(h *UserHandler, sess *security.Session) http.Handler {
	withSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess != nil {
				ctx := context.WithValue(r.Context(), middleware.SessionContextKey, sess)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	r.With(withSession).Get("/api/users/{username}", h.ByUsername)
	return r
}

func TestByUsernameReturnsProjection(t *testing.T) {
	users := newFakeUsers()
	user := &domain.User{Username: "gopher", Email: "gopher@example.com", FullName: "Go Gopher", PasswordHash: "h"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewUserHandler(service.NewUserService(users))
	r := userRouter(h, &security.Session{Subject: 99})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/gopher", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["username"] != "gopher" || body["fullName"] != "Go Gopher" {
		t.Fatalf("unexpected body: %v", body)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/stranger", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d, want 404", rr.Code)
	}
}

func TestByUsernameWithoutSessionIs401(t *testing.T) {
	h := NewUserHandler(service.NewUserService(newFakeUsers()))
	r := userRouter(h, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/gopher", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
	if got := decodeMessage(t, rr); got != "Not authenticated" {
		t.Fatalf("message %q, want %q", got, "Not authenticated")
	}
}

func TestMeForDeletedUserIs401(t *testing.T) {
	users := newFakeUsers()
	user := &domain.User{Username: "gopher", Email: "g@example.com", PasswordHash: "h"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := NewUserHandler(service.NewUserService(users))
	users.remove(user.ID)

	rr := httptest.NewRecorder()
	h.Me(rr, meRequest(&security.Session{Subject: user.ID}))

	// A valid token whose user row is gone reads as not authenticated,
	// never as a server fault.
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
	if got := decodeMessage(t, rr); got != "Not authenticated" {
		t.Fatalf("message %q, want %q", got, "Not authenticated")
	}
}
