// ABOUTME: Admin panel handlers for posts, events, and the contact inbox
// ABOUTME: All routes here sit behind the access gate middleware

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/store"
)

const adminListLimit = 200

// eventTimeLayout matches the value format of datetime-local inputs
const eventTimeLayout = "2006-01-02T15:04"

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	posts, err := s.store.ListPosts(r.Context(), false, adminListLimit)
	if err != nil {
		s.logger.Error("failed to list posts for dashboard", "error", err)
	}
	events, err := s.store.ListEvents(r.Context(), adminListLimit)
	if err != nil {
		s.logger.Error("failed to list events for dashboard", "error", err)
	}
	unread, err := s.store.ListContactMessages(r.Context(), true, adminListLimit)
	if err != nil {
		s.logger.Error("failed to list messages for dashboard", "error", err)
	}

	data := adminDashboardData{
		pageData:    s.page("Администрация", "bg", r.URL.Path),
		User:        user,
		PostCount:   len(posts),
		EventCount:  len(events),
		UnreadCount: len(unread),
	}

	s.renderAdmin(w, "dashboard.html", data)
}

func (s *Server) handleAdminPosts(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	posts, err := s.store.ListPosts(r.Context(), false, adminListLimit)
	if err != nil {
		s.logger.Error("failed to list posts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := adminPostsData{
		pageData: s.page("Публикации", "bg", r.URL.Path),
		User:     user,
		Posts:    posts,
	}

	s.renderAdmin(w, "posts.html", data)
}

func (s *Server) handleAdminPostNew(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	data := adminPostFormData{
		pageData: s.page("Нова публикация", "bg", r.URL.Path),
		User:     user,
		Post:     &store.Post{},
	}

	s.renderAdmin(w, "post_form.html", data)
}

func (s *Server) handleAdminPostCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	post := &store.Post{
		ID:      uuid.New().String(),
		Slug:    strings.TrimSpace(r.FormValue("slug")),
		TitleBG: strings.TrimSpace(r.FormValue("title_bg")),
		TitleEN: strings.TrimSpace(r.FormValue("title_en")),
		BodyBG:  r.FormValue("body_bg"),
		BodyEN:  r.FormValue("body_en"),
	}
	if post.Slug == "" {
		post.Slug = slugify(post.TitleBG)
	}
	if post.Slug == "" {
		post.Slug = post.ID[:8]
	}

	if post.TitleBG == "" && post.TitleEN == "" {
		s.renderPostFormError(w, r, post, "Заглавието е задължително.")
		return
	}

	if err := s.store.CreatePost(r.Context(), post); err != nil {
		s.logger.Error("failed to create post", "error", err)
		s.renderPostFormError(w, r, post, "Публикацията не можа да бъде записана.")
		return
	}

	s.logger.Info("post created", "post_id", post.ID, "slug", post.Slug)
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) renderPostFormError(w http.ResponseWriter, r *http.Request, post *store.Post, msg string) {
	user := auth.FromContext(r.Context())

	data := adminPostFormData{
		pageData: s.page("Публикация", "bg", r.URL.Path),
		User:     user,
		Post:     post,
		Error:    msg,
	}
	w.WriteHeader(http.StatusBadRequest)
	s.renderAdmin(w, "post_form.html", data)
}

func (s *Server) handleAdminPostEdit(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	post, err := s.store.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to load post", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := adminPostFormData{
		pageData: s.page("Редакция", "bg", r.URL.Path),
		User:     user,
		Post:     post,
	}

	s.renderAdmin(w, "post_form.html", data)
}

func (s *Server) handleAdminPostUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	post, err := s.store.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	post.Slug = strings.TrimSpace(r.FormValue("slug"))
	post.TitleBG = strings.TrimSpace(r.FormValue("title_bg"))
	post.TitleEN = strings.TrimSpace(r.FormValue("title_en"))
	post.BodyBG = r.FormValue("body_bg")
	post.BodyEN = r.FormValue("body_en")
	if post.Slug == "" {
		post.Slug = slugify(post.TitleBG)
	}

	if err := s.store.UpdatePost(r.Context(), post); err != nil {
		s.logger.Error("failed to update post", "post_id", post.ID, "error", err)
		s.renderPostFormError(w, r, post, "Публикацията не можа да бъде записана.")
		return
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) handleAdminPostPublish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.SetPostPublished(r.Context(), id, true); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to publish post", "post_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info("post published", "post_id", id)

	if post, err := s.store.GetPost(r.Context(), id); err == nil {
		s.announcePost(post)
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) handleAdminPostUnpublish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.SetPostPublished(r.Context(), id, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to unpublish post", "post_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (s *Server) handleAdminPostDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to delete post", "post_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info("post deleted", "post_id", id)
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// announcePost sends a publish announcement through the chat connection.
// The handshake can take seconds, so this runs off the request path; a
// missing or failed connection only costs the announcement.
func (s *Server) announcePost(post *store.Post) {
	if s.bot == nil {
		return
	}

	text := fmt.Sprintf("Нова публикация: %s\n%s/news/%s", post.TitleBG, strings.TrimRight(s.cfg.Server.BaseURL, "/"), post.Slug)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		handle := s.bot.Acquire(ctx)
		if handle == nil {
			s.logger.Warn("no chat connection for announcement", "post_id", post.ID)
			return
		}
		if err := handle.Announce(ctx, text); err != nil {
			s.logger.Error("failed to announce post", "post_id", post.ID, "error", err)
		}
	}()
}

func (s *Server) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	events, err := s.store.ListEvents(r.Context(), adminListLimit)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := adminEventsData{
		pageData: s.page("Събития", "bg", r.URL.Path),
		User:     user,
		Events:   events,
	}

	s.renderAdmin(w, "events.html", data)
}

func (s *Server) handleAdminEventNew(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	data := adminEventFormData{
		pageData: s.page("Ново събитие", "bg", r.URL.Path),
		User:     user,
	}

	s.renderAdmin(w, "event_form.html", data)
}

func (s *Server) handleAdminEventCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	startsAt, err := time.ParseInLocation(eventTimeLayout, r.FormValue("starts_at"), time.Local)
	if err != nil {
		data := adminEventFormData{
			pageData: s.page("Ново събитие", "bg", r.URL.Path),
			User:     user,
			Error:    "Невалидна начална дата.",
		}
		w.WriteHeader(http.StatusBadRequest)
		s.renderAdmin(w, "event_form.html", data)
		return
	}

	event := &store.Event{
		ID:            uuid.New().String(),
		TitleBG:       strings.TrimSpace(r.FormValue("title_bg")),
		TitleEN:       strings.TrimSpace(r.FormValue("title_en")),
		Location:      strings.TrimSpace(r.FormValue("location")),
		StartsAt:      startsAt,
		DescriptionBG: r.FormValue("description_bg"),
		DescriptionEN: r.FormValue("description_en"),
	}

	if raw := r.FormValue("ends_at"); raw != "" {
		endsAt, err := time.ParseInLocation(eventTimeLayout, raw, time.Local)
		if err == nil {
			event.EndsAt = &endsAt
		}
	}

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		s.logger.Error("failed to create event", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info("event created", "event_id", event.ID)
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

func (s *Server) handleAdminEventDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to delete event", "event_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

func (s *Server) handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())

	messages, err := s.store.ListContactMessages(r.Context(), r.URL.Query().Get("unread") == "1", adminListLimit)
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := adminMessagesData{
		pageData: s.page("Съобщения", "bg", r.URL.Path),
		User:     user,
		Messages: messages,
	}

	s.renderAdmin(w, "messages.html", data)
}

func (s *Server) handleAdminMessageRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.MarkContactMessageRead(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to mark message read", "message_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}
