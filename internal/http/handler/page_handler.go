package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/http/middleware"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/web"
)

// PageHandler serves the server-rendered pages. Protected pages sit behind
// the page-mode guard; the home page renders for everyone but picks up the
// viewer when a session happens to be present.
type PageHandler struct {
	renderer *web.Renderer
	reader   *service.SessionReader
	users    *service.UserService
	posts    *service.PostService
}

func NewPageHandler(renderer *web.Renderer, reader *service.SessionReader, users *service.UserService, posts *service.PostService) *PageHandler {
	return &PageHandler{renderer: renderer, reader: reader, users: users, posts: posts}
}

type pageData struct {
	Title  string
	Viewer *domain.UserPublicView
	Posts  []domain.Post
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Home"}
	if sess, ok := h.reader.Read(r); ok {
		// Best effort: an unresolvable viewer renders the signed-out header.
		if view, err := h.users.Lookup(r.Context(), sess.Subject); err == nil {
			data.Viewer = view
		}
	}
	posts, err := h.posts.ListRecent(r.Context(), 20)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	data.Posts = posts
	h.render(w, r, "home", data)
}

func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "sign_in", pageData{Title: "Sign in"})
}

func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "sign_up", pageData{Title: "Sign up"})
}

func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusFound)
		return
	}
	view, err := h.users.Lookup(r.Context(), sess.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			http.Redirect(w, r, "/sign-in", http.StatusFound)
			return
		}
		h.renderError(w, r, err)
		return
	}
	posts, err := h.posts.ListByAuthor(r.Context(), sess.Subject)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "profile", pageData{Title: view.Username, Viewer: view, Posts: posts})
}

func (h *PageHandler) Write(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/sign-in", http.StatusFound)
		return
	}
	view, err := h.users.Lookup(r.Context(), sess.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			http.Redirect(w, r, "/sign-in", http.StatusFound)
			return
		}
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "write", pageData{Title: "Write", Viewer: view})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render page failed", "page", name, "error", err)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "page handler failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
