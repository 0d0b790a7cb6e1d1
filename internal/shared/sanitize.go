package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiOnly = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

var deviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SecureFilename reduces name to a single path segment made of ASCII letters, digits, "_", "." and "-".
//
// Accented characters are decomposed and their marks dropped ("Café" -> "Cafe"), whitespace runs become
// a single "_", path separators are treated as whitespace, and leading or trailing "." and "_" are
// trimmed so the result is never "." or "..". Windows device names gain a "_" prefix.
// The result may be empty; callers substitute a [GenerateToken] value in that case.
func SecureFilename(name string) string {
	ascii, _, err := transform.String(asciiOnly, name)
	if err != nil {
		return ""
	}

	ascii = strings.NewReplacer("/", " ", `\`, " ").Replace(ascii)
	joined := strings.Join(strings.Fields(ascii), "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if isFilenameRune(r) {
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return ""
	}

	stem, _, _ := strings.Cut(out, ".")
	if deviceNames[strings.ToUpper(stem)] {
		out = "_" + out
	}
	return out
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}
