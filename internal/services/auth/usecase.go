package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/domain/user"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	// ErrUnknownRole marks a stored record whose role is outside the
	// closed set. Configuration error, not a caller error.
	ErrUnknownRole = errors.New("unknown role on record")
)

type TokenPair struct {
	Access  string
	Refresh string
}

// PublicUser is the principal view returned to clients: never the password
// hash, never the raw encrypted identifier.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Usecase implements the session protocol: register, login, refresh,
// logout, plus the authenticate step the guard middleware runs.
type Usecase struct {
	users  user.Repo
	ids    *auth.IdentityCodec
	tokens *auth.Issuer
	ledger *auth.RevocationLedger
	now    func() time.Time
}

func NewUsecase(users user.Repo, ids *auth.IdentityCodec, tokens *auth.Issuer, ledger *auth.RevocationLedger) *Usecase {
	return &Usecase{
		users:  users,
		ids:    ids,
		tokens: tokens,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the usecase time source. Test hook.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) Register(ctx context.Context, username, email, password, role string) (*PublicUser, TokenPair, error) {
	r, err := user.ParseRole(role)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRole
	}

	normalized := auth.NormalizeIdentifier(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	encrypted, err := u.ids.Encrypt(normalized)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("encrypt identifier: %w", err)
	}

	newUser := &user.User{
		Username:       username,
		EmailEncrypted: encrypted,
		EmailIndex:     u.ids.Index(normalized),
		PasswordHash:   string(hash),
		Role:           r,
	}
	if err := u.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, pg.ErrConflict) {
			return nil, TokenPair{}, ErrEmailExists
		}
		return nil, TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := u.issueTokens(ctx, newUser)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.publicUser(newUser, normalized), pair, nil
}

func (u *Usecase) Login(ctx context.Context, email, password string) (*PublicUser, TokenPair, error) {
	normalized := auth.NormalizeIdentifier(email)
	rec, err := u.users.GetByEmailIndex(ctx, u.ids.Index(normalized))
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := u.issueTokens(ctx, rec)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.publicUser(rec, normalized), pair, nil
}

// Refresh rotates a session: the supplied raw token is matched by digest,
// then replaced. The old token can never succeed again.
func (u *Usecase) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	rec, err := u.users.GetByRefreshTokenHash(ctx, auth.DigestToken(raw))
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("lookup refresh token: %w", err)
	}
	if rec.RefreshTokenExp == nil || rec.RefreshTokenExp.Before(u.now()) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return u.issueTokens(ctx, rec)
}

// Logout revokes the access token and cuts the refresh path. An expired
// token is accepted: it still identifies whose session to clear.
func (u *Usecase) Logout(ctx context.Context, rawAccess string) error {
	claims, err := u.tokens.ParseSignedClaims(rawAccess)
	if err != nil {
		return ErrInvalidCredentials
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	u.ledger.Revoke(rawAccess, expiresAt)

	if err := u.users.SetRefreshToken(ctx, claims.UserID, nil, nil); err != nil && !errors.Is(err, pg.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Authenticate resolves a raw access token to a stored principal. Revoked,
// unsigned, expired and orphaned tokens all fail the same way.
func (u *Usecase) Authenticate(ctx context.Context, rawAccess string) (*user.User, error) {
	if u.ledger.IsRevoked(rawAccess) {
		return nil, ErrInvalidCredentials
	}
	claims, err := u.tokens.VerifyAccessToken(rawAccess)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	rec, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !rec.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, rec.Role)
	}
	return rec, nil
}

// Email decrypts a stored identifier for admin views.
func (u *Usecase) Email(rec *user.User) (string, error) {
	return u.ids.Decrypt(rec.EmailEncrypted)
}

// issueTokens mints a fresh access/refresh pair and overwrites the stored
// refresh digest. Every auth event rotates.
func (u *Usecase) issueTokens(ctx context.Context, rec *user.User) (TokenPair, error) {
	access, err := u.tokens.AccessToken(rec.ID, string(rec.Role))
	if err != nil {
		return TokenPair{}, err
	}
	raw, digest, err := auth.NewRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}
	exp := u.now().Add(u.tokens.RefreshTTL())
	if err := u.users.SetRefreshToken(ctx, rec.ID, &digest, &exp); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: raw}, nil
}

func (u *Usecase) publicUser(rec *user.User, email string) *PublicUser {
	return &PublicUser{
		ID:       rec.ID,
		Username: rec.Username,
		Email:    email,
		Role:     string(rec.Role),
	}
}
