package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inkpress/inkpress/internal/api"
	"github.com/inkpress/inkpress/internal/obs"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandler(uc *Usecase, log *zap.Logger) *Handler {
	return &Handler{uc: uc, log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *PublicUser `json:"user,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		api.Fail(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		api.Fail(w, http.StatusBadRequest, "Username must be 3-50 characters")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 128 {
		api.Fail(w, http.StatusBadRequest, "Password must be 6-128 characters")
		return
	}
	if !emailPattern.MatchString(strings.ToLower(strings.TrimSpace(req.Email))) {
		api.Fail(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	pub, pair, err := h.uc.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			api.Fail(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, ErrInvalidRole):
			api.Fail(w, http.StatusBadRequest, "Invalid role")
		default:
			obs.WithTrace(r.Context(), h.log).Error("auth.register", zap.Error(err))
			api.Fail(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.log.Info("auth.register", zap.Int64("user_id", pub.ID), zap.String("role", pub.Role))
	api.JSON(w, http.StatusCreated, authResponse{
		Success:      true,
		Message:      "User registered successfully as " + pub.Role,
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         pub,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		api.Fail(w, http.StatusBadRequest, "Email and password required")
		return
	}

	pub, pair, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		obs.WithTrace(r.Context(), h.log).Error("auth.login", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.log.Info("auth.login", zap.Int64("user_id", pub.ID))
	api.JSON(w, http.StatusOK, authResponse{
		Success:      true,
		Message:      "Login successful",
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         pub,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		api.Fail(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	pair, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		obs.WithTrace(r.Context(), h.log).Error("auth.refresh", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Refresh failed")
		return
	}

	api.JSON(w, http.StatusOK, authResponse{
		Success:      true,
		Message:      "Token refreshed",
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		api.Fail(w, http.StatusUnauthorized, "Unauthorized: No token")
		return
	}
	if err := h.uc.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}
		obs.WithTrace(r.Context(), h.log).Error("auth.logout", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	api.Success(w, http.StatusOK, "Logout successful")
}
