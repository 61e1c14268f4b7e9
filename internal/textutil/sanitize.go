package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameBytes bounds sanitized file name stems. Most filesystems cap a
// name at 255 bytes, which leaves room for an ordinal prefix and extension.
const MaxFileNameBytes = 180

// SanitizeFileName makes a title safe to use as a file name stem. Reserved
// characters and control characters become underscores, leading and trailing
// dots are dropped, whitespace runs collapse to a single underscore, and the
// result is truncated to at most MaxFileNameBytes bytes on a rune boundary.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
		inSpace = false
	}
	out := strings.Trim(b.String(), ".")
	return truncateBytes(out, MaxFileNameBytes)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
