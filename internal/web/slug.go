// ABOUTME: URL slug derivation for news posts
// ABOUTME: Transliterates Bulgarian Cyrillic per the official romanization

package web

import "strings"

// cyrillicToLatin follows the Bulgarian streamlined romanization system
var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l",
	'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s",
	'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y", 'ю': "yu", 'я': "ya",
}

// slugify derives a URL slug from a title. Cyrillic is transliterated,
// everything outside [a-z0-9] becomes a hyphen, and runs collapse.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		var chunk string
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			chunk = string(r)
		case cyrillicToLatin[r] != "":
			chunk = cyrillicToLatin[r]
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
			continue
		}
		b.WriteString(chunk)
		lastHyphen = false
	}

	return strings.TrimRight(b.String(), "-")
}
