// Package valueobjects holds small immutable values of the catalog domain.
package valueobjects

import "strings"

// Slugify derives the canonical slug for an entity name: lowercase, every
// run of non-alphanumeric characters collapsed into a single hyphen.
// Slugs back the uniqueness constraint and the name filter, so two names
// differing only in case or punctuation map to the same slug.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
