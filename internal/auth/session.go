// ABOUTME: JWT session management for the admin panel
// ABOUTME: HS256 cookies with rolling refresh when half the TTL has elapsed

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "savet_session"

// Session errors
var (
	ErrNoSession    = errors.New("no session")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// SessionManager issues and verifies session tokens for admin users
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager creates a session manager with the given HS256 secret
// and session lifetime.
func NewSessionManager(secret []byte, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: secret, ttl: ttl}
}

// Issue creates a new session token for the given account
func (m *SessionManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates the token and extracts the identity and expiry
func (m *SessionManager) Verify(tokenString string) (*Identity, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, time.Time{}, ErrExpiredToken
		}
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, time.Time{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	email, _ := claims["email"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, time.Time{}, fmt.Errorf("%w: exp", ErrMissingClaim)
	}

	return &Identity{UserID: sub, Email: email}, exp.Time, nil
}

// VerifyRequest extracts and verifies the session cookie from a request.
// When more than half of the session TTL has elapsed, a refreshed token is
// returned alongside the identity; callers must set it on the response so
// the rolling refresh is not lost, even when the request is denied.
func (m *SessionManager) VerifyRequest(r *http.Request) (id *Identity, refreshed string, err error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, "", ErrNoSession
	}

	id, expiry, err := m.Verify(cookie.Value)
	if err != nil {
		return nil, "", err
	}

	if time.Until(expiry) < m.ttl/2 {
		token, err := m.Issue(id.UserID, id.Email)
		if err == nil {
			refreshed = token
		}
		// Refresh failure is not fatal; the current token is still valid
	}

	return id, refreshed, nil
}

// Cookie builds the session cookie carrying the given token
func (m *SessionManager) Cookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds an expired session cookie for logout
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
