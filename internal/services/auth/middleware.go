package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/inkpress/inkpress/internal/api"
	"github.com/inkpress/inkpress/internal/domain/user"
	"github.com/inkpress/inkpress/internal/obs"
)

type ctxKey int

const principalKey ctxKey = 1

// PrincipalFromCtx returns the authenticated user attached by Authenticate.
func PrincipalFromCtx(ctx context.Context) (*user.User, bool) {
	p, ok := ctx.Value(principalKey).(*user.User)
	return p, ok
}

type Middleware struct {
	uc  *Usecase
	log *zap.Logger
}

func NewMiddleware(uc *Usecase, log *zap.Logger) *Middleware {
	return &Middleware{uc: uc, log: log}
}

// Authenticate guards a route: it requires a Bearer access token that is
// unrevoked, well-signed, unexpired and resolvable to a stored principal.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			api.Fail(w, http.StatusUnauthorized, "Unauthorized: No token")
			return
		}
		p, err := m.uc.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				api.Fail(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
				return
			}
			obs.WithTrace(r.Context(), m.log).Error("authenticate", zap.Error(err))
			api.Fail(w, http.StatusInternalServerError, "Authentication failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
	})
}

// RequireRole allows only principals holding one of the given roles.
// Must run after Authenticate.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromCtx(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "Unauthorized: No user attached")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			api.Fail(w, http.StatusForbidden, "Forbidden: insufficient role")
		})
	}
}

// IsOwnerOrAdmin is the ownership predicate for resources keyed by the
// author's display name (posts).
func IsOwnerOrAdmin(p *user.User, ownerName string) bool {
	return p.IsAdmin() || p.Username == ownerName
}

// IsOwnerIDOrAdmin is the ownership predicate for resources keyed by the
// owner's id (comments).
func IsOwnerIDOrAdmin(p *user.User, ownerID int64) bool {
	return p.IsAdmin() || p.ID == ownerID
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.Fields(h)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
