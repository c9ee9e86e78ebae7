package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/observability"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/security"
	"github.com/inkwellhq/inkwell/internal/service"
)

type AuthHandler struct {
	auth    *service.AuthService
	cookies security.CookiePolicy
}

func NewAuthHandler(auth *service.AuthService, cookies security.CookiePolicy) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "register: decode body", "error", err)
		response.InternalServerError(w)
		return
	}
	user, pair, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			observability.RecordAuthRegister("invalid_input")
			response.Message(w, http.StatusBadRequest, "Invalid registration data")
		case errors.Is(err, repository.ErrDuplicateUser):
			observability.RecordAuthRegister("duplicate")
			response.Message(w, http.StatusConflict, "Username or email already taken")
		default:
			observability.RecordAuthRegister("error")
			slog.ErrorContext(r.Context(), "register failed", "error", err)
			response.InternalServerError(w)
		}
		return
	}
	observability.RecordAuthRegister("success")
	observability.Audit(r, "auth.register", "user_id", user.ID)
	// Cookies ride only on the success response.
	h.cookies.SetSessionCookies(w, pair)
	response.JSON(w, http.StatusOK, user.PublicView())
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "login: decode body", "error", err)
		response.InternalServerError(w)
		return
	}
	user, pair, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.RecordAuthLogin("denied")
			response.NotAuthenticated(w)
			return
		}
		observability.RecordAuthLogin("error")
		slog.ErrorContext(r.Context(), "login failed", "error", err)
		response.InternalServerError(w)
		return
	}
	observability.RecordAuthLogin("success")
	observability.Audit(r, "auth.login", "user_id", user.ID)
	h.cookies.SetSessionCookies(w, pair)
	response.JSON(w, http.StatusOK, user.PublicView())
}

// Refresh reads the refresh-token cookie and, when it is valid and its
// subject still exists, reissues both cookies on a 200. Every failure is a
// non-200 with no cookies set.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	if raw == "" {
		observability.RecordAuthRefresh("missing")
		response.NotAuthenticated(w)
		return
	}
	pair, err := h.auth.Refresh(r.Context(), raw)
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			observability.RecordAuthRefresh("denied")
			response.NotAuthenticated(w)
			return
		}
		observability.RecordAuthRefresh("error")
		slog.ErrorContext(r.Context(), "refresh failed", "error", err)
		response.InternalServerError(w)
		return
	}
	observability.RecordAuthRefresh("success")
	h.cookies.SetSessionCookies(w, pair)
	response.Message(w, http.StatusOK, "Token refreshed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	observability.RecordAuthLogout("success")
	observability.Audit(r, "auth.logout")
	h.cookies.ClearSessionCookies(w)
	response.Message(w, http.StatusOK, "Logged out")
}

type isUserRequest struct {
	Identifier string `json:"identifier"`
}

type isUserResponse struct {
	Exists bool `json:"exists"`
}

func (h *AuthHandler) IsUser(w http.ResponseWriter, r *http.Request) {
	var req isUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "is-user: decode body", "error", err)
		response.InternalServerError(w)
		return
	}
	exists, err := h.auth.IsUser(r.Context(), req.Identifier)
	if err != nil {
		slog.ErrorContext(r.Context(), "is-user query failed", "error", err)
		response.InternalServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, isUserResponse{Exists: exists})
}
