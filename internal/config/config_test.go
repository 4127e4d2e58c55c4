// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers env expansion, duration parsing, defaults, and required fields

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
server:
  http_addr: ":8080"
  base_url: "https://example.org"
database:
  path: "/tmp/portal.db"
auth:
  jwt_secret: "test-secret"
`

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/portal.db", cfg.Database.Path)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultProtectedPrefix, cfg.Auth.ProtectedPrefix)
	assert.Equal(t, DefaultLoginPath, cfg.Auth.LoginPath)
	assert.Equal(t, DefaultSessionTTL, cfg.Auth.SessionTTL)
	assert.Equal(t, DefaultCommandPrefix, cfg.Matrix.CommandPrefix)
	assert.Equal(t, "bg", cfg.Site.DefaultLang)
	assert.False(t, cfg.Auth.DisableGate)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PORTAL_TEST_SECRET", "from-env")

	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/portal.db"
auth:
  jwt_secret: "${PORTAL_TEST_SECRET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_EnvExpansion_Unset(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/portal.db"
auth:
  jwt_secret: "x${PORTAL_TEST_UNSET_VAR}y"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xy", cfg.Auth.JWTSecret, "unset vars expand to empty string")
}

func TestLoad_SessionTTL(t *testing.T) {
	path := writeConfig(t, validConfig+`
  session_ttl: "24h"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
}

func TestLoad_SessionTTL_Invalid(t *testing.T) {
	path := writeConfig(t, validConfig+`
  session_ttl: "one week"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_ttl")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_MissingHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/portal.db"
auth:
  jwt_secret: "s"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_addr")
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
database:
  path: "/tmp/portal.db"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestValidate_LoginUnderProtectedPrefix(t *testing.T) {
	path := writeConfig(t, validConfig+`
  login_path: "/admin/login"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login_path")
}

func TestValidate_MatrixRequiresHomeserver(t *testing.T) {
	path := writeConfig(t, validConfig+`
matrix:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "homeserver")
}

func TestValidate_BadDefaultLang(t *testing.T) {
	path := writeConfig(t, validConfig+`
site:
  default_lang: "de"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_lang")
}
