package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog-api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
auth:
  token_secret: a-real-secret
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.ThrottleLimit)
	assert.Equal(t, "a-real-secret", cfg.Auth.TokenSecret)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
app:
  name: blog-api
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_secret")
}

func TestLoadInsecureFallback(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
auth:
  allow_insecure_fallback: true
`))
	require.NoError(t, err)
	assert.Equal(t, InsecureFallbackSecret, cfg.Auth.TokenSecret)
}

func TestLoadEncryptionKeyValidation(t *testing.T) {
	_, err := Load(writeConfig(t, `
auth:
  token_secret: a-real-secret
  encryption_key: not-hex
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
auth:
  token_secret: a-real-secret
  encryption_key: abcd
`))
	assert.Error(t, err)

	cfg, err := Load(writeConfig(t, `
auth:
  token_secret: a-real-secret
  encryption_key: `+strings.Repeat("ab", 32)+`
`))
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.EncryptionKey, 64)
}
