// ABOUTME: Machine-readable feeds for news and events
// ABOUTME: RSS 2.0 at /feed.xml and an iCalendar export at /calendar.ics

package web

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	feedItemLimit     = 20
	calendarItemLimit = 100
)

// rssFeed is an RSS 2.0 document
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	GUID    string `xml:"guid"`
	PubDate string `xml:"pubDate"`
}

func (s *Server) baseURL() string {
	return strings.TrimRight(s.cfg.Server.BaseURL, "/")
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context(), true, feedItemLimit)
	if err != nil {
		s.logger.Error("failed to list posts for feed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	base := s.baseURL()
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       s.cfg.Site.NameBG,
			Link:        base,
			Description: s.cfg.Site.NameBG,
			Language:    "bg",
		},
	}

	for _, p := range posts {
		item := rssItem{
			Title: p.TitleBG,
			Link:  fmt.Sprintf("%s/news/%s", base, p.Slug),
			GUID:  p.ID,
		}
		if p.PublishedAt != nil {
			item.PubDate = p.PublishedAt.Format(time.RFC1123Z)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(feed); err != nil {
		s.logger.Error("failed to encode feed", "error", err)
	}
}

// icsTimestamp is the iCalendar UTC timestamp format
const icsTimestamp = "20060102T150405Z"

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListUpcomingEvents(r.Context(), time.Now(), calendarItemLimit)
	if err != nil {
		s.logger.Error("failed to list events for calendar", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//savet-portal//calendar//BG\r\n")

	for _, e := range events {
		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:%s\r\n", e.ID)
		fmt.Fprintf(&b, "DTSTAMP:%s\r\n", e.CreatedAt.UTC().Format(icsTimestamp))
		fmt.Fprintf(&b, "DTSTART:%s\r\n", e.StartsAt.UTC().Format(icsTimestamp))
		if e.EndsAt != nil {
			fmt.Fprintf(&b, "DTEND:%s\r\n", e.EndsAt.UTC().Format(icsTimestamp))
		}
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", icsEscape(e.TitleBG))
		if e.Location != "" {
			fmt.Fprintf(&b, "LOCATION:%s\r\n", icsEscape(e.Location))
		}
		if e.DescriptionBG != "" {
			fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", icsEscape(e.DescriptionBG))
		}
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write([]byte(b.String()))
}

// icsEscape escapes text per RFC 5545 section 3.3.11
func icsEscape(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
