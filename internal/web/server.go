// ABOUTME: HTTP server wiring for the council site
// ABOUTME: Registers public and admin routes and wraps them with the access gate

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/bot"
	"github.com/uchsavet/savet-portal/internal/config"
	"github.com/uchsavet/savet-portal/internal/content"
	"github.com/uchsavet/savet-portal/internal/store"
)

// Server handles all site routes
type Server struct {
	cfg      *config.Config
	store    store.Store
	sessions *auth.SessionManager
	gate     *auth.Gate
	team     *content.Team
	bot      *bot.Supervisor
	logger   *slog.Logger
}

// NewServer creates the site server. The supervisor may be nil when the
// chat integration is disabled.
func NewServer(cfg *config.Config, st store.Store, sessions *auth.SessionManager, gate *auth.Gate, team *content.Team, supervisor *bot.Supervisor) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		gate:     gate,
		team:     team,
		bot:      supervisor,
		logger:   slog.Default().With("component", "web"),
	}
}

// Handler builds the full route table wrapped with the access gate
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /news", s.handleNewsList)
	mux.HandleFunc("GET /news/{slug}", s.handleNewsPost)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /team", s.handleTeam)
	mux.HandleFunc("GET /contact", s.handleContactPage)
	mux.HandleFunc("POST /contact", s.handleContactSubmit)

	// Machine-readable feeds
	mux.HandleFunc("GET /feed.xml", s.handleFeed)
	mux.HandleFunc("GET /calendar.ics", s.handleCalendar)

	// Session endpoints live outside the protected prefix
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Admin panel
	mux.HandleFunc("GET /admin", s.handleAdminDashboard)
	mux.HandleFunc("GET /admin/{$}", s.handleAdminDashboard)
	mux.HandleFunc("GET /admin/posts", s.handleAdminPosts)
	mux.HandleFunc("GET /admin/posts/new", s.handleAdminPostNew)
	mux.HandleFunc("POST /admin/posts", s.handleAdminPostCreate)
	mux.HandleFunc("GET /admin/posts/{id}/edit", s.handleAdminPostEdit)
	mux.HandleFunc("POST /admin/posts/{id}", s.handleAdminPostUpdate)
	mux.HandleFunc("POST /admin/posts/{id}/publish", s.handleAdminPostPublish)
	mux.HandleFunc("POST /admin/posts/{id}/unpublish", s.handleAdminPostUnpublish)
	mux.HandleFunc("POST /admin/posts/{id}/delete", s.handleAdminPostDelete)
	mux.HandleFunc("GET /admin/events", s.handleAdminEvents)
	mux.HandleFunc("GET /admin/events/new", s.handleAdminEventNew)
	mux.HandleFunc("POST /admin/events", s.handleAdminEventCreate)
	mux.HandleFunc("POST /admin/events/{id}/delete", s.handleAdminEventDelete)
	mux.HandleFunc("GET /admin/messages", s.handleAdminMessages)
	mux.HandleFunc("POST /admin/messages/{id}/read", s.handleAdminMessageRead)

	s.logger.Info("routes registered")

	return s.gate.Middleware(mux)
}

// handleHealth reports process liveness and bot connection state
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"bot_connected": s.bot.Connected(),
	})
}
