// ABOUTME: Access gate middleware protecting the admin path prefix
// ABOUTME: Verifies the session, resolves a role, and allows or redirects

package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Roles with access to the protected prefix
var allowedRoles = map[string]bool{
	"admin":     true,
	"editor":    true,
	"moderator": true,
}

// securityHeaders are attached to every response the gate touches,
// protected path or not, unless the handler chain already set them.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":     "nosniff",
	"Referrer-Policy":            "strict-origin-when-cross-origin",
	"X-Frame-Options":            "DENY",
	"Permissions-Policy":         "camera=(), microphone=(), geolocation=()",
	"Cross-Origin-Opener-Policy": "same-origin",
}

// GateConfig holds the access gate settings
type GateConfig struct {
	// ProtectedPrefix is the path namespace requiring authorization
	ProtectedPrefix string

	// LoginPath is the redirect target for unauthenticated requests.
	// Must live outside ProtectedPrefix.
	LoginPath string

	// Disabled lets every protected request through unconditionally.
	// Headers are still attached. Local development only.
	Disabled bool
}

// Gate decides, per request to the protected prefix, whether to let it
// through. Denials are only ever visible to the browser as a redirect.
type Gate struct {
	cfg      GateConfig
	sessions *SessionManager
	resolver *Resolver
	logger   *slog.Logger
}

// NewGate creates an access gate
func NewGate(cfg GateConfig, sessions *SessionManager, resolver *Resolver) *Gate {
	return &Gate{
		cfg:      cfg,
		sessions: sessions,
		resolver: resolver,
		logger:   slog.Default().With("component", "gate"),
	}
}

// Middleware wraps a handler with the access gate. Requests outside the
// protected prefix pass through unmodified apart from the security headers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.applyHeaders(w)

		if !g.isProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if g.cfg.Disabled {
			g.logger.Debug("gate disabled, allowing", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		id, refreshed, err := g.sessions.VerifyRequest(r)
		if err != nil {
			g.logger.Info("denied: no valid session", "path", r.URL.Path, "error", err)
			target := g.cfg.LoginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		// The refreshed cookie is written whatever the decision below, so a
		// denied request never loses its session refresh.
		if refreshed != "" {
			http.SetCookie(w, g.sessions.Cookie(refreshed, r.TLS != nil))
		}

		role, err := g.resolver.Resolve(r.Context(), id)
		if err != nil {
			// Session is valid but system state is indeterminate: fail closed
			// to the site root, not to login.
			g.logger.Error("denied: role resolution failed", "path", r.URL.Path, "user_id", id.UserID, "error", err)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if !allowedRoles[role] {
			g.logger.Info("denied: insufficient role", "path", r.URL.Path, "user_id", id.UserID, "role", role)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		id.Role = role
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// isProtected reports whether the path falls under the protected prefix.
// "/admin" matches "/admin" and "/admin/..." but not "/administration".
func (g *Gate) isProtected(path string) bool {
	prefix := g.cfg.ProtectedPrefix
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// applyHeaders sets the baseline security headers if absent. They are set
// before the handler runs, so a handler that sets its own value wins.
func (g *Gate) applyHeaders(w http.ResponseWriter) {
	h := w.Header()
	for name, value := range securityHeaders {
		if h.Get(name) == "" {
			h.Set(name, value)
		}
	}
}
