// ABOUTME: Tests for the public site handlers
// ABOUTME: Covers pages, language selection, contact form, and login flow

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uchsavet/savet-portal/internal/auth"
	"github.com/uchsavet/savet-portal/internal/store"
)

func TestHome_RendersNewsAndEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPublishedPost(t, "p1", "nova-godina", "Нова учебна година", "Добре дошли!")
	require.NoError(t, ts.store.CreateEvent(context.Background(), &store.Event{
		ID:       "e1",
		TitleBG:  "Общо събрание",
		StartsAt: time.Now().Add(24 * time.Hour),
	}))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Нова учебна година")
	assert.Contains(t, rec.Body.String(), "Общо събрание")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestNewsPost_RendersMarkdown(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPublishedPost(t, "p1", "post", "Заглавие", "Текст с **акцент**.")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/post", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>акцент</strong>")
}

func TestNewsPost_DraftIsHidden(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.CreatePost(context.Background(), &store.Post{
		ID:      "p1",
		Slug:    "draft",
		TitleBG: "Чернова",
	}))

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/draft", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsPost_UnknownSlug(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/absent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLang_QueryParamWinsAndSetsCookie(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Latest news")

	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == LangCookieName {
			langCookie = c
		}
	}
	require.NotNil(t, langCookie)
	assert.Equal(t, "en", langCookie.Value)
}

func TestLang_CookieApplies(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "en"})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Latest news")
}

func TestLang_DefaultIsBulgarian(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Последни новини")
}

func TestContact_Submit(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"name":    {"Иван"},
		"email":   {"ivan@example.com"},
		"subject": {"Въпрос"},
		"body":    {"Здравейте!"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact?sent=1", rec.Header().Get("Location"))

	msgs, err := ts.store.ListContactMessages(context.Background(), true, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Иван", msgs[0].Name)
	assert.False(t, msgs[0].Read)
}

func TestContact_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{"name": {"Иван"}}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	msgs, err := ts.store.ListContactMessages(context.Background(), false, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func seedAccount(t *testing.T, ts *testServer, email, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, ts.store.CreateAccount(context.Background(), &store.Account{
		ID:           "acc-1",
		Email:        email,
		PasswordHash: hash,
	}))
}

func postLogin(ts *testServer, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "chair@uchsavet.bg", "correct horse")

	rec := postLogin(ts, url.Values{
		"email":    {"chair@uchsavet.bg"},
		"password": {"correct horse"},
		"redirect": {"/admin/posts"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/posts", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	id, _, err := ts.sessions.Verify(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", id.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "chair@uchsavet.bg", "correct horse")

	rec := postLogin(ts, url.Values{
		"email":    {"chair@uchsavet.bg"},
		"password": {"wrong"},
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no session cookie on failed login")
}

func TestLogin_UnknownAccount(t *testing.T) {
	ts := newTestServer(t)

	rec := postLogin(ts, url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RedirectSanitized(t *testing.T) {
	ts := newTestServer(t)
	seedAccount(t, ts, "chair@uchsavet.bg", "correct horse")

	rec := postLogin(ts, url.Values{
		"email":    {"chair@uchsavet.bg"},
		"password": {"correct horse"},
		"redirect": {"https://evil.example.com/"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout_ClearsSession(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","bot_connected":false}`, rec.Body.String())
}
