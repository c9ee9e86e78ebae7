package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/internal/http/middleware"
	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the public projection of the verified session's subject. A
// session whose user row no longer exists answers 401, not 500.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.NotAuthenticated(w)
		return
	}
	view, err := h.users.Lookup(r.Context(), sess.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotAuthenticated(w)
			return
		}
		slog.ErrorContext(r.Context(), "user lookup failed", "subject", sess.Subject, "error", err)
		response.InternalServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// ByUsername resolves another user's public projection. The lookup itself
// refuses to run without the caller's session.
func (h *UserHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	username := chi.URLParam(r, "username")
	view, err := h.users.LookupByUsername(r.Context(), sess, username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.NotAuthenticated(w)
		case errors.Is(err, repository.ErrUserNotFound):
			response.Message(w, http.StatusNotFound, "User not found")
		default:
			slog.ErrorContext(r.Context(), "user lookup by username failed", "username", username, "error", err)
			response.InternalServerError(w)
		}
		return
	}
	response.JSON(w, http.StatusOK, view)
}
