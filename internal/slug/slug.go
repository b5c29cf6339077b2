// Package slug turns free text into lowercase, hyphenated identifiers used for
// heading anchors and post slugs.
package slug

import "strings"

// Make lowercases text and replaces every run of characters outside
// [a-z0-9] with a single hyphen. Leading and trailing hyphens are stripped.
// The result may be empty.
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	dash := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Unique returns base, or base with the smallest numeric suffix ("-2", "-3",
// ...) for which taken reports false.
func Unique(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

func itoa(n int) string {
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
