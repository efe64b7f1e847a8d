//go:build integration

package integration

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

/********** ENV CONFIG **********/

type Cfg struct {
	BaseURL      string
	AuthPath     string
	BlogPath     string
	CommentsPath string
	UsersPath    string
	HealthURL    string
}

func LoadCfg() Cfg {
	base := getenv("IT_BASE_URL", "http://127.0.0.1:8080")
	return Cfg{
		BaseURL:      base,
		AuthPath:     getenv("IT_AUTH_PATH", "/api/auth"),
		BlogPath:     getenv("IT_BLOG_PATH", "/api/blog"),
		CommentsPath: getenv("IT_COMMENTS_PATH", "/api/comments"),
		UsersPath:    getenv("IT_USERS_PATH", "/api/users"),
		HealthURL:    getenv("IT_HEALTH", base+"/healthz"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func TCPReachable(addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = c.Close()
	return nil
}

func WaitHealthz(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			t.Logf("[it] healthz OK: %s", url)
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("[it] healthz failed: %s", url)
}

// HTTPDoJSON sends a JSON request, asserts the status code, returns the body.
// An empty bearer sends the request unauthenticated.
func HTTPDoJSON(t *testing.T, method, url, bearer string, body []byte, want int) []byte {
	t.Helper()
	req, _ := http.NewRequest(method, url, bytesReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("[http] %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("[http] %s %s: got %d want %d, body=%s", method, url, resp.StatusCode, want, string(b))
	}
	return b
}

func bytesReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return strings.NewReader(string(b))
}

// RandEmail returns a unique address so runs don't collide on the
// identifier uniqueness constraint.
func RandEmail(prefix string) string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s-%s@it.local", prefix, hex.EncodeToString(b[:]))
}

/********** WIRE SHAPES **********/

type AuthResp struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

type PostResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Post    *struct {
		ID      int64  `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Author  string `json:"author"`
	} `json:"post"`
}

type CommentResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Comment *struct {
		ID     int64 `json:"id"`
		PostID int64 `json:"postId"`
		UserID int64 `json:"userId"`
	} `json:"comment"`
}
