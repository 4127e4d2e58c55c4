// ABOUTME: Tests for slug derivation
// ABOUTME: Covers transliteration, collapsing, and edge cases

package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Нова учебна година", "nova-uchebna-godina"},
		{"Среща: 15 септември!", "sreshta-15-septemvri"},
		{"  --  ", ""},
		{"Щастие и ъгъл", "shtastie-i-agal"},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.title), "slugify(%q)", tt.title)
	}
}
