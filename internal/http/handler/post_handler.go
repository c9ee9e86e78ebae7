package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/inkwellhq/inkwell/internal/http/middleware"
	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/service"

	"github.com/go-chi/chi/v5"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.NotAuthenticated(w)
		return
	}
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "create post: decode body", "error", err)
		response.InternalServerError(w)
		return
	}
	post, err := h.posts.Create(r.Context(), sess.Subject, service.CreatePostInput{Title: req.Title, Body: req.Body})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			response.Message(w, http.StatusBadRequest, "Title and body are required")
			return
		}
		slog.ErrorContext(r.Context(), "create post failed", "error", err)
		response.InternalServerError(w)
		return
	}
	response.JSON(w, http.StatusCreated, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	posts, err := h.posts.ListRecent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "list posts failed", "error", err)
		response.InternalServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.Message(w, http.StatusNotFound, "Post not found")
			return
		}
		slog.ErrorContext(r.Context(), "get post failed", "id", id, "error", err)
		response.InternalServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.NotAuthenticated(w)
		return
	}
	id := chi.URLParam(r, "id")
	err := h.posts.Delete(r.Context(), sess.Subject, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			response.Message(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, service.ErrNotPostAuthor):
			response.Message(w, http.StatusForbidden, "Not the post author")
		default:
			slog.ErrorContext(r.Context(), "delete post failed", "id", id, "error", err)
			response.InternalServerError(w)
		}
		return
	}
	response.Message(w, http.StatusOK, "Post deleted")
}
