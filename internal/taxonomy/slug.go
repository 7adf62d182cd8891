package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 100

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya",
	// Ukrainian and Belarusian letters.
	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g", 'ў': "u",
}

// Slugify derives a URL-safe identifier: lowercase ASCII letters and digits
// separated by single hyphens. Cyrillic is transliterated and diacritics are
// dropped. It returns "" when nothing usable remains.
func Slugify(s string) string {
	s = norm.NFC.String(strings.ToLower(NormalizeWhitespace(s)))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false

	write := func(part string) {
		if part == "" {
			return
		}
		if pendingHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingHyphen = false
		b.WriteString(part)
	}

	for _, r := range s {
		if t, ok := cyrillic[r]; ok {
			write(t)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			switch {
			case unicode.Is(unicode.Mn, d):
			case d >= 'a' && d <= 'z', d >= '0' && d <= '9':
				write(string(d))
			default:
				pendingHyphen = true
			}
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
