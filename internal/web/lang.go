// ABOUTME: Language selection for the bilingual public site
// ABOUTME: Resolves bg/en from query parameter, cookie, or the configured default

package web

import "net/http"

// LangCookieName is the cookie remembering the visitor's language choice
const LangCookieName = "savet_lang"

func validLang(lang string) bool {
	return lang == "bg" || lang == "en"
}

// resolveLang picks the request language. A ?lang= parameter wins and is
// persisted in a cookie; otherwise the cookie applies; otherwise the site
// default.
func (s *Server) resolveLang(w http.ResponseWriter, r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); validLang(lang) {
		http.SetCookie(w, &http.Cookie{
			Name:     LangCookieName,
			Value:    lang,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			SameSite: http.SameSiteLaxMode,
		})
		return lang
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil && validLang(cookie.Value) {
		return cookie.Value
	}

	return s.cfg.Site.DefaultLang
}

// pick selects the Bulgarian or English variant of a bilingual field,
// falling back to the other when the requested one is empty.
func pick(lang, bg, en string) string {
	if lang == "en" {
		if en != "" {
			return en
		}
		return bg
	}
	if bg != "" {
		return bg
	}
	return en
}
