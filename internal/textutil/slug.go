package textutil

import "strings"

// MaxSlugLength bounds the storage namespace derived from a playlist title.
const MaxSlugLength = 50

// Slugify lower-cases value, collapses every run of characters outside
// [a-z0-9] into one hyphen, trims hyphens at both ends, and truncates to
// MaxSlugLength. The same title always yields the same slug.
func Slugify(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	pendingHyphen := false
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
