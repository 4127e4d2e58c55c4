// ABOUTME: Template rendering functions for public and admin pages
// ABOUTME: Loads templates from embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"
	"time"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/content"
	"github.com/uchsavet/savet-portal/internal/store"
)

// pageData is the shared head of every template data struct
type pageData struct {
	Title    string
	SiteName string
	Lang     string
	Path     string
}

// newsItem is a post prepared for display
type newsItem struct {
	Slug        string
	Title       string
	Body        template.HTML
	PublishedAt *time.Time
}

// eventItem is an event prepared for display
type eventItem struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
}

type homeData struct {
	pageData
	News   []newsItem
	Events []eventItem
}

type newsListData struct {
	pageData
	News []newsItem
}

type newsPostData struct {
	pageData
	Post newsItem
}

type eventsData struct {
	pageData
	Events []eventItem
}

type teamData struct {
	pageData
	Members []content.TeamMember
}

type contactData struct {
	pageData
	Sent  bool
	Error string
}

type loginData struct {
	pageData
	Redirect string
	Error    string
}

type adminDashboardData struct {
	pageData
	User        *auth.Identity
	PostCount   int
	EventCount  int
	UnreadCount int
}

type adminPostsData struct {
	pageData
	User  *auth.Identity
	Posts []*store.Post
}

type adminPostFormData struct {
	pageData
	User  *auth.Identity
	Post  *store.Post
	Error string
}

type adminEventsData struct {
	pageData
	User   *auth.Identity
	Events []*store.Event
}

type adminEventFormData struct {
	pageData
	User  *auth.Identity
	Error string
}

type adminMessagesData struct {
	pageData
	User     *auth.Identity
	Messages []*store.ContactMessage
}

// page builds the shared template data head for a request
func (s *Server) page(title, lang, path string) pageData {
	name := s.cfg.Site.NameBG
	if lang == "en" && s.cfg.Site.NameEN != "" {
		name = s.cfg.Site.NameEN
	}
	return pageData{
		Title:    title,
		SiteName: name,
		Lang:     lang,
		Path:     path,
	}
}

// render executes a page template inside the base layout
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
	}
}

// renderAdmin executes an admin page template inside the admin layout
func (s *Server) renderAdmin(w http.ResponseWriter, name string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/admin/base.html", "templates/admin/"+name))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render admin page", "template", name, "error", err)
	}
}
