// ABOUTME: Shared test fixtures for the web package
// ABOUTME: Builds a Server on a MockStore with a real gate and sessions

package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/config"
	"github.com/uchsavet/savet-portal/internal/content"
	"github.com/uchsavet/savet-portal/internal/store"
)

type testServer struct {
	srv      *Server
	store    *store.MockStore
	sessions *auth.SessionManager
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			HTTPAddr: ":0",
			BaseURL:  "http://example.org",
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			ProtectedPrefix: "/admin",
			LoginPath:       "/login",
			SessionTTL:      time.Hour,
		},
		Site: config.SiteConfig{
			NameBG:      "Ученически съвет",
			NameEN:      "Student Council",
			DefaultLang: "bg",
		},
	}

	sessions := auth.NewSessionManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.SessionTTL)
	mock := store.NewMockStore()
	gate := auth.NewGate(auth.GateConfig{
		ProtectedPrefix: cfg.Auth.ProtectedPrefix,
		LoginPath:       cfg.Auth.LoginPath,
	}, sessions, auth.NewResolver(mock))

	srv := NewServer(cfg, mock, sessions, gate, &content.Team{}, nil)

	return &testServer{
		srv:      srv,
		store:    mock,
		sessions: sessions,
		handler:  srv.Handler(),
	}
}

// editorCookie seeds an editor role and returns a valid session cookie
func (ts *testServer) editorCookie(t *testing.T) *http.Cookie {
	t.Helper()

	require.NoError(t, ts.store.UpsertAdminRole(context.Background(), "editor-1", "editor@uchsavet.bg", store.RoleEditor))

	token, err := ts.sessions.Issue("editor-1", "editor@uchsavet.bg")
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func (ts *testServer) seedPublishedPost(t *testing.T, id, slug, titleBG, bodyBG string) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, ts.store.CreatePost(context.Background(), &store.Post{
		ID:          id,
		Slug:        slug,
		TitleBG:     titleBG,
		BodyBG:      bodyBG,
		Published:   true,
		PublishedAt: &now,
	}))
}
