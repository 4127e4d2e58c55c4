// ABOUTME: Tests for JWT session issuing, verification, and rolling refresh
// ABOUTME: Covers expiry, tampering, and the refresh-at-half-TTL rule

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSessionManager_IssueAndVerify(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)

	token, err := m.Issue("user-123", "a@example.org")
	require.NoError(t, err)

	id, expiry, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	assert.Equal(t, "a@example.org", id.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
}

func TestSessionManager_Verify_WrongSecret(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)
	other := NewSessionManager([]byte("other-secret"), time.Hour)

	token, err := m.Issue("user-123", "a@example.org")
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestSessionManager_Verify_Expired(t *testing.T) {
	m := NewSessionManager(testSecret, -time.Minute)

	token, err := m.Issue("user-123", "a@example.org")
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.True(t, errors.Is(err, ErrExpiredToken))
}

func TestSessionManager_Verify_Garbage(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)

	_, _, err := m.Verify("not-a-jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestSessionManager_VerifyRequest_NoCookie(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	_, _, err := m.VerifyRequest(r)
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestSessionManager_VerifyRequest_Fresh(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)

	token, err := m.Issue("user-123", "a@example.org")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	id, refreshed, err := m.VerifyRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	assert.Empty(t, refreshed, "a fresh token should not be refreshed")
}

func TestSessionManager_VerifyRequest_Refresh(t *testing.T) {
	// Issue against a long TTL, verify against a much longer one so the
	// remaining lifetime falls under half.
	issuer := NewSessionManager(testSecret, time.Hour)
	verifier := NewSessionManager(testSecret, 10*time.Hour)

	token, err := issuer.Issue("user-123", "a@example.org")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	id, refreshed, err := verifier.VerifyRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	require.NotEmpty(t, refreshed, "a token past half its TTL should be refreshed")

	// The refreshed token must verify on its own
	refreshedID, _, err := verifier.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshedID.UserID)
}

func TestSessionManager_Cookies(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour)

	c := m.Cookie("tok", true)
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)

	cleared := m.ClearCookie()
	assert.Equal(t, SessionCookieName, cleared.Name)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "anything"))
}
