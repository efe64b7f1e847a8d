//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func register(t *testing.T, cfg Cfg, username, email, password, role string) AuthResp {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q,"role":%q}`, username, email, password, role)
	b := HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/register", "", []byte(body), http.StatusCreated)
	var resp AuthResp
	if err := json.Unmarshal(b, &resp); err != nil {
		t.Fatalf("[it] register resp: %v", err)
	}
	if !resp.Success || resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("[it] register resp incomplete: %s", string(b))
	}
	return resp
}

func TestRegisterLoginRotation(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	email := RandEmail("alice")
	reg := register(t, cfg, "alice-it", email, "pw123456", "")

	loginBody := fmt.Sprintf(`{"email":%q,"password":"pw123456"}`, email)
	b := HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/login", "", []byte(loginBody), http.StatusOK)
	var login AuthResp
	if err := json.Unmarshal(b, &login); err != nil {
		t.Fatalf("[it] login resp: %v", err)
	}
	if login.RefreshToken == reg.RefreshToken {
		t.Fatalf("[it] login did not rotate refresh token")
	}

	// The register-time refresh token was rotated out by login.
	staleBody := fmt.Sprintf(`{"refreshToken":%q}`, reg.RefreshToken)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/refresh", "", []byte(staleBody), http.StatusUnauthorized)

	// The login-time one works exactly once.
	liveBody := fmt.Sprintf(`{"refreshToken":%q}`, login.RefreshToken)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/refresh", "", []byte(liveBody), http.StatusOK)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/refresh", "", []byte(liveBody), http.StatusUnauthorized)
}

func TestDuplicateRegistration(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	email := RandEmail("dup")
	register(t, cfg, "dup-it", email, "pw123456", "")

	body := fmt.Sprintf(`{"username":"dup-it-2","email":%q,"password":"pw654321"}`, email)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/register", "", []byte(body), http.StatusConflict)
}

func TestLogoutCutsSession(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	reg := register(t, cfg, "logout-it", RandEmail("logout"), "pw123456", "")

	postBody := []byte(`{"title":"Before logout","content":"written while the session was live"}`)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.BlogPath, reg.AccessToken, postBody, http.StatusCreated)

	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/logout", reg.AccessToken, nil, http.StatusOK)

	// Revoked access token no longer opens protected routes.
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.BlogPath, reg.AccessToken, postBody, http.StatusUnauthorized)

	// And the refresh path is gone too.
	refreshBody := fmt.Sprintf(`{"refreshToken":%q}`, reg.RefreshToken)
	HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.AuthPath+"/refresh", "", []byte(refreshBody), http.StatusUnauthorized)
}

func TestPostAndCommentOwnership(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	author := register(t, cfg, "author-it", RandEmail("author"), "pw123456", "")
	other := register(t, cfg, "other-it", RandEmail("other"), "pw123456", "")

	b := HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.BlogPath, author.AccessToken,
		[]byte(`{"title":"Ownership","content":"only the author or an admin may touch this"}`), http.StatusCreated)
	var created PostResp
	if err := json.Unmarshal(b, &created); err != nil || created.Post == nil {
		t.Fatalf("[it] create post resp: %v body=%s", err, string(b))
	}
	postURL := fmt.Sprintf("%s%s/%d", cfg.BaseURL, cfg.BlogPath, created.Post.ID)

	// Anyone can read.
	HTTPDoJSON(t, http.MethodGet, postURL, "", nil, http.StatusOK)

	// A stranger cannot edit or delete.
	editBody := []byte(`{"title":"Hijack","content":"should never be written"}`)
	HTTPDoJSON(t, http.MethodPut, postURL, other.AccessToken, editBody, http.StatusForbidden)
	HTTPDoJSON(t, http.MethodDelete, postURL, other.AccessToken, nil, http.StatusForbidden)

	// Comments key ownership on the writer's id.
	cb := HTTPDoJSON(t, http.MethodPost, cfg.BaseURL+cfg.CommentsPath, other.AccessToken,
		[]byte(fmt.Sprintf(`{"postId":%d,"content":"drive-by comment"}`, created.Post.ID)), http.StatusCreated)
	var cresp CommentResp
	if err := json.Unmarshal(cb, &cresp); err != nil || cresp.Comment == nil {
		t.Fatalf("[it] create comment resp: %v body=%s", err, string(cb))
	}
	commentURL := fmt.Sprintf("%s%s/%d", cfg.BaseURL, cfg.CommentsPath, cresp.Comment.ID)
	HTTPDoJSON(t, http.MethodDelete, commentURL, author.AccessToken, nil, http.StatusForbidden)
	HTTPDoJSON(t, http.MethodDelete, commentURL, other.AccessToken, nil, http.StatusOK)

	// The author cleans up their own post.
	HTTPDoJSON(t, http.MethodDelete, postURL, author.AccessToken, nil, http.StatusOK)
	HTTPDoJSON(t, http.MethodGet, postURL, "", nil, http.StatusNotFound)
}

func TestUserListIsAdminOnly(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.HealthURL, 60*time.Second)

	plain := register(t, cfg, "plain-it", RandEmail("plain"), "pw123456", "")
	admin := register(t, cfg, "admin-it", RandEmail("admin"), "pw123456", "admin")

	HTTPDoJSON(t, http.MethodGet, cfg.BaseURL+cfg.UsersPath, "", nil, http.StatusUnauthorized)
	HTTPDoJSON(t, http.MethodGet, cfg.BaseURL+cfg.UsersPath, plain.AccessToken, nil, http.StatusForbidden)
	HTTPDoJSON(t, http.MethodGet, cfg.BaseURL+cfg.UsersPath, admin.AccessToken, nil, http.StatusOK)
}
