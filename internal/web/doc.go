// Package web serves the council site: the bilingual public pages, the
// RSS and iCalendar feeds, and the admin panel behind the access gate.
//
// Handlers resolve the request language from a ?lang= parameter or the
// language cookie and fall back to the configured site default. Post
// bodies are stored as markdown and rendered with goldmark on the way
// out; raw HTML in a body never reaches the page.
package web
