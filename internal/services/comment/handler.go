package comment

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
	"github.com/inkpress/inkpress/internal/domain/comment"
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
	// Both routes share the {id} slot: GET reads it as a post id,
	// DELETE as a comment id. chi rejects mixed param names per segment.
	r.Get("/{id}", h.listByPost)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticate)
		r.Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
}

type createRequest struct {
	PostID  int64  `json:"postId"`
	Content string `json:"content"`
}

type commentView struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toView(c *comment.Comment) commentView {
	return commentView{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Author:    c.Author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requester, ok := authsvc.PrincipalFromCtx(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if req.PostID <= 0 || content == "" {
		api.Fail(w, http.StatusBadRequest, "Post ID and comment content are required")
		return
	}
	if len(content) > 2000 {
		api.Fail(w, http.StatusBadRequest, "Comment must be 1-2000 characters")
		return
	}

	c, err := h.uc.Create(r.Context(), requester, req.PostID, content)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			api.Fail(w, http.StatusBadRequest, "Invalid post ID")
			return
		}
		obs.WithTrace(r.Context(), h.log).Error("comment.create", zap.Error(err), zap.Int64("post_id", req.PostID))
		api.Fail(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	h.log.Info("comment.create", zap.Int64("comment_id", c.ID), zap.Int64("post_id", c.PostID), zap.Int64("user_id", requester.ID))
	api.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Comment posted successfully",
		"comment": toView(c),
	})
}

func (h *Handler) listByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		api.Fail(w, http.StatusBadRequest, "Invalid post ID format")
		return
	}
	comments, err := h.uc.ListByPost(r.Context(), postID)
	if err != nil {
		obs.WithTrace(r.Context(), h.log).Error("comment.list", zap.Error(err), zap.Int64("post_id", postID))
		api.Fail(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, toView(c))
	}
	api.JSON(w, http.StatusOK, views)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := authsvc.PrincipalFromCtx(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.uc.Delete(r.Context(), requester, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Fail(w, http.StatusNotFound, "Comment not found")
		case errors.Is(err, ErrForbidden):
			api.Fail(w, http.StatusForbidden, "Forbidden: You can only delete your own comments")
		default:
			obs.WithTrace(r.Context(), h.log).Error("comment.delete", zap.Error(err), zap.Int64("comment_id", id))
			api.Fail(w, http.StatusInternalServerError, "Failed to delete comment")
		}
		return
	}
	h.log.Info("comment.delete", zap.Int64("comment_id", id), zap.Int64("user_id", requester.ID))
	api.Success(w, http.StatusOK, "Comment deleted successfully")
}
