// Package user exposes the admin-only principal listing.
package user

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inkpress/inkpress/internal/api"
	domain "github.com/inkpress/inkpress/internal/domain/user"
	"github.com/inkpress/inkpress/internal/obs"
	authsvc "github.com/inkpress/inkpress/internal/services/auth"
)

type Handler struct {
	users domain.Repo
	uc    *authsvc.Usecase
	auth  *authsvc.Middleware
	log   *zap.Logger
}

func NewHandler(users domain.Repo, uc *authsvc.Usecase, auth *authsvc.Middleware, log *zap.Logger) *Handler {
	return &Handler{users: users, uc: uc, auth: auth, log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticate)
		r.Use(authsvc.RequireRole(domain.RoleAdmin))
		r.Get("/", h.list)
	})
}

type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		obs.WithTrace(r.Context(), h.log).Error("user.list", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		email, err := h.uc.Email(u)
		if err != nil {
			obs.WithTrace(r.Context(), h.log).Error("user.list decrypt", zap.Error(err), zap.Int64("user_id", u.ID))
			api.Fail(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}
		views = append(views, userView{
			ID:        u.ID,
			Username:  u.Username,
			Email:     email,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
		})
	}
	api.JSON(w, http.StatusOK, views)
}
