// ABOUTME: Markdown rendering for post bodies
// ABOUTME: Converts stored markdown to HTML with goldmark

package web

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// renderMarkdown converts markdown to HTML. Raw HTML in the source is
// dropped by the renderer, so editor input cannot inject script.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
