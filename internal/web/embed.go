// ABOUTME: Embeds HTML templates into the binary using go:embed
// ABOUTME: Provides templateFS for loading templates at runtime

package web

import "embed"

//go:embed templates/*.html templates/admin/*.html
var templateFS embed.FS
