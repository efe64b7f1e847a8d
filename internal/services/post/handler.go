package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inkpress/inkpress/internal/api"
	"github.com/inkpress/inkpress/internal/domain/post"
	"github.com/inkpress/inkpress/internal/obs"
	authsvc "github.com/inkpress/inkpress/internal/services/auth"
)

type Handler struct {
	uc   *Usecase
	auth *authsvc.Middleware
	log  *zap.Logger
}

func NewHandler(uc *Usecase, auth *authsvc.Middleware, log *zap.Logger) *Handler {
	return &Handler{uc: uc, auth: auth, log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticate)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toView(p *post.Post) postView {
	return postView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.uc.List(r.Context())
	if err != nil {
		obs.WithTrace(r.Context(), h.log).Error("post.list", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, toView(p))
	}
	api.JSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid post ID")
	if !ok {
		return
	}
	p, err := h.uc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "Post not found")
			return
		}
		obs.WithTrace(r.Context(), h.log).Error("post.get", zap.Error(err), zap.Int64("post_id", id))
		api.Fail(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	api.JSON(w, http.StatusOK, toView(p))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requester, ok := authsvc.PrincipalFromCtx(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
		return
	}
	req, ok := decodePostBody(w, r)
	if !ok {
		return
	}

	p, err := h.uc.Create(r.Context(), requester, req.Title, req.Content)
	if err != nil {
		obs.WithTrace(r.Context(), h.log).Error("post.create", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Failed to create post")
		return
	}
	h.log.Info("post.create", zap.Int64("post_id", p.ID), zap.Int64("user_id", requester.ID))
	api.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Post created successfully",
		"post":    toView(p),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	requester, ok := authsvc.PrincipalFromCtx(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
		return
	}
	id, ok := pathID(w, r, "id", "Invalid post ID")
	if !ok {
		return
	}
	req, ok := decodePostBody(w, r)
	if !ok {
		return
	}

	p, err := h.uc.Update(r.Context(), requester, id, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Fail(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, ErrForbidden):
			api.Fail(w, http.StatusForbidden, "Forbidden: You can only edit your own posts")
		default:
			obs.WithTrace(r.Context(), h.log).Error("post.update", zap.Error(err), zap.Int64("post_id", id))
			api.Fail(w, http.StatusInternalServerError, "Failed to update post")
		}
		return
	}
	h.log.Info("post.update", zap.Int64("post_id", id), zap.Int64("user_id", requester.ID))
	api.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Post updated successfully",
		"post":    toView(p),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := authsvc.PrincipalFromCtx(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
		return
	}
	id, ok := pathID(w, r, "id", "Invalid post ID")
	if !ok {
		return
	}

	if err := h.uc.Delete(r.Context(), requester, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Fail(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, ErrForbidden):
			api.Fail(w, http.StatusForbidden, "Forbidden: You can only delete your own posts")
		default:
			obs.WithTrace(r.Context(), h.log).Error("post.delete", zap.Error(err), zap.Int64("post_id", id))
			api.Fail(w, http.StatusInternalServerError, "Failed to delete post")
		}
		return
	}
	h.log.Info("post.delete", zap.Int64("post_id", id), zap.Int64("user_id", requester.ID))
	api.Success(w, http.StatusOK, "Post deleted successfully")
}

func decodePostBody(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		api.Fail(w, http.StatusBadRequest, "Title and content are required")
		return req, false
	}
	if len(title) < 3 || len(title) > 200 {
		api.Fail(w, http.StatusBadRequest, "Title must be 3-200 characters")
		return req, false
	}
	if len(content) < 10 || len(content) > 50000 {
		api.Fail(w, http.StatusBadRequest, "Content must be 10-50,000 characters")
		return req, false
	}
	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request, name, msg string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}
