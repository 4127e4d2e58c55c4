// ABOUTME: Public page handlers for the council site
// ABOUTME: Home, news, events, team, contact form, and session endpoints

package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/store"
)

const (
	homeNewsLimit   = 5
	homeEventsLimit = 5
	newsPageLimit   = 50
	eventsPageLimit = 100
)

func (s *Server) toNewsItem(lang string, p *store.Post) newsItem {
	return newsItem{
		Slug:        p.Slug,
		Title:       pick(lang, p.TitleBG, p.TitleEN),
		Body:        renderMarkdown(pick(lang, p.BodyBG, p.BodyEN)),
		PublishedAt: p.PublishedAt,
	}
}

func (s *Server) toEventItem(lang string, e *store.Event) eventItem {
	return eventItem{
		Title:       pick(lang, e.TitleBG, e.TitleEN),
		Description: pick(lang, e.DescriptionBG, e.DescriptionEN),
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	posts, err := s.store.ListPosts(r.Context(), true, homeNewsLimit)
	if err != nil {
		s.logger.Error("failed to list posts for home", "error", err)
	}
	events, err := s.store.ListUpcomingEvents(r.Context(), time.Now(), homeEventsLimit)
	if err != nil {
		s.logger.Error("failed to list events for home", "error", err)
	}

	data := homeData{pageData: s.page(pick(lang, "Начало", "Home"), lang, r.URL.Path)}
	for _, p := range posts {
		data.News = append(data.News, s.toNewsItem(lang, p))
	}
	for _, e := range events {
		data.Events = append(data.Events, s.toEventItem(lang, e))
	}

	s.render(w, "home.html", data)
}

func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	posts, err := s.store.ListPosts(r.Context(), true, newsPageLimit)
	if err != nil {
		s.logger.Error("failed to list posts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := newsListData{pageData: s.page(pick(lang, "Новини", "News"), lang, r.URL.Path)}
	for _, p := range posts {
		data.News = append(data.News, s.toNewsItem(lang, p))
	}

	s.render(w, "news.html", data)
}

func (s *Server) handleNewsPost(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	post, err := s.store.GetPostBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to load post", "slug", r.PathValue("slug"), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Drafts are only reachable through the admin panel
	if !post.Published {
		http.NotFound(w, r)
		return
	}

	item := s.toNewsItem(lang, post)
	data := newsPostData{
		pageData: s.page(item.Title, lang, r.URL.Path),
		Post:     item,
	}

	s.render(w, "news_post.html", data)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	events, err := s.store.ListUpcomingEvents(r.Context(), time.Now(), eventsPageLimit)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := eventsData{pageData: s.page(pick(lang, "Събития", "Events"), lang, r.URL.Path)}
	for _, e := range events {
		data.Events = append(data.Events, s.toEventItem(lang, e))
	}

	s.render(w, "events.html", data)
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	data := teamData{
		pageData: s.page(pick(lang, "Екип", "Team"), lang, r.URL.Path),
		Members:  s.team.Members,
	}

	s.render(w, "team.html", data)
}

func (s *Server) handleContactPage(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	data := contactData{
		pageData: s.page(pick(lang, "Контакти", "Contact"), lang, r.URL.Path),
		Sent:     r.URL.Query().Get("sent") == "1",
	}

	s.render(w, "contact.html", data)
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	body := strings.TrimSpace(r.FormValue("body"))

	if name == "" || email == "" || body == "" {
		data := contactData{
			pageData: s.page(pick(lang, "Контакти", "Contact"), lang, r.URL.Path),
			Error:    pick(lang, "Моля, попълнете всички задължителни полета.", "Please fill in all required fields."),
		}
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, "contact.html", data)
		return
	}

	msg := &store.ContactMessage{
		ID:      uuid.New().String(),
		Name:    name,
		Email:   email,
		Subject: subject,
		Body:    body,
	}
	if err := s.store.CreateContactMessage(r.Context(), msg); err != nil {
		s.logger.Error("failed to save contact message", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info("contact message received", "id", msg.ID)
	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	data := loginData{
		pageData: s.page(pick(lang, "Вход", "Sign in"), lang, r.URL.Path),
		Redirect: r.URL.Query().Get("redirect"),
	}

	s.render(w, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := s.resolveLang(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	redirect := r.FormValue("redirect")

	account, err := s.store.GetAccountByEmail(r.Context(), email)
	if err != nil || !auth.CheckPassword(account.PasswordHash, password) {
		s.logger.Info("login rejected", "email", email)
		data := loginData{
			pageData: s.page(pick(lang, "Вход", "Sign in"), lang, r.URL.Path),
			Redirect: redirect,
			Error:    pick(lang, "Грешен имейл или парола.", "Wrong email or password."),
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login.html", data)
		return
	}

	token, err := s.sessions.Issue(account.ID, account.Email)
	if err != nil {
		s.logger.Error("failed to issue session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, s.sessions.Cookie(token, r.TLS != nil))

	s.logger.Info("login succeeded", "user_id", account.ID)
	http.Redirect(w, r, safeRedirect(redirect), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.ClearCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect keeps post-login redirects on this site. Anything that is not
// a local absolute path falls back to the root.
func safeRedirect(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	return "/"
}
