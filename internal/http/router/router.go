package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkwellhq/inkwell/internal/health"
	"github.com/inkwellhq/inkwell/internal/http/handler"
	"github.com/inkwellhq/inkwell/internal/http/middleware"
	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/service"
)

type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	PostHandler     *handler.PostHandler
	PageHandler     *handler.PageHandler
	SessionReader   *service.SessionReader
	Refresher       *service.RefreshOrchestrator
	APIRateLimitRPM int
	Readiness       *health.ProbeRunner
	EnableOTelHTTP  bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.LookupMemo)

	apiLimiter := middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware()
	apiAuth := middleware.APIAuth(dep.SessionReader, dep.Refresher)
	pageAuth := middleware.PageAuth(dep.SessionReader, dep.Refresher, "/sign-in")

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unready", "checks": results})
	})

	// Pages.
	r.Get("/", dep.PageHandler.Home)
	r.Get("/sign-in", dep.PageHandler.SignIn)
	r.Get("/sign-up", dep.PageHandler.SignUp)
	r.Group(func(r chi.Router) {
		r.Use(pageAuth)
		r.Get("/profile", dep.PageHandler.Profile)
		r.Get("/write", dep.PageHandler.Write)
	})

	// Auth endpoints run unthrottled.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", dep.AuthHandler.Register)
		r.Post("/login", dep.AuthHandler.Login)
		r.Post("/refresh", dep.AuthHandler.Refresh)
		r.Post("/logout", dep.AuthHandler.Logout)
		r.Post("/is-user", dep.AuthHandler.IsUser)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLimiter)
		r.With(apiAuth).Get("/auth/me", dep.UserHandler.Me)
		r.With(apiAuth).Get("/users/{username}", dep.UserHandler.ByUsername)
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", dep.PostHandler.List)
			r.Get("/{id}", dep.PostHandler.Get)
			r.With(apiAuth).Post("/", dep.PostHandler.Create)
			r.With(apiAuth).Delete("/{id}", dep.PostHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
