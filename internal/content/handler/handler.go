package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"atelier/internal/content/models"
	"atelier/internal/content/service"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/clientip"
	"atelier/pkg/platform/httputil"
)

// Handler exposes the content endpoints. Public routes serve published posts
// and accept comments; admin routes cover the full CRUD and moderation
// surface.
type Handler struct {
	posts    *service.Posts
	comments *service.Comments
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(posts *service.Posts, comments *service.Comments, logger *slog.Logger) *Handler {
	return &Handler{
		posts:    posts,
		comments: comments,
		validate: validator.New(),
		logger:   logger,
	}
}

// PublicRoutes mounts the unauthenticated reader surface.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/posts", h.listPublished)
	r.Get("/posts/{slug}", h.getBySlug)
	r.Get("/posts/{slug}/comments", h.listApprovedComments)
	r.Post("/posts/{slug}/comments", h.submitComment)
}

// AdminRoutes mounts the authoring and moderation surface. The caller wraps
// these in the session and role middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/posts", h.listAll)
	r.Post("/posts", h.createPost)
	r.Get("/posts/{id}", h.getByID)
	r.Put("/posts/{id}", h.updatePost)
	r.Delete("/posts/{id}", h.deletePost)

	r.Get("/posts/{id}/comments", h.listPostComments)
	r.Get("/comments/pending", h.listPendingComments)
	r.Post("/comments/{id}/approve", h.approveComment)
	r.Delete("/comments/{id}", h.deleteComment)
}

func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.posts.List(r.Context(), true, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) listApprovedComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.ListApproved(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) submitComment(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "author and body are required"))
		return
	}

	c, err := h.comments.Submit(r.Context(), chi.URLParam(r, "slug"), clientip.FromRequest(r), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.posts.List(r.Context(), false, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "title and body are required"))
		return
	}

	p, err := h.posts.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "post created via admin api", "post_id", p.ID)
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "title and body are required"))
		return
	}

	p, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPostComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.ListForPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) listPendingComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) approveComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
