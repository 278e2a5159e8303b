package channelname

import (
	"regexp"
	"strings"
)

const maxLength = 32

var separatorPattern = regexp.MustCompile("[^a-z0-9]+")

// Channelify converts free-form text into an acceptable voice channel
// name: at most 32 characters of the input, kebab-lower-case, with every
// character outside [a-z0-9] treated as a word separator.
//
// Truncation happens on raw bytes before any folding, so a multi-byte
// character cut in half is simply stripped with the rest of the
// non-alphanumeric input. The result may be empty.
func Channelify(text string) string {
	if len(text) > maxLength {
		text = text[:maxLength]
	}
	text = asciiLower(text)
	text = separatorPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return strings.ReplaceAll(text, " ", "-")
}

// asciiLower folds only A-Z. Non-ASCII letters are left alone on purpose:
// they don't match [a-z0-9] and get stripped by the separator pass, which
// is what the folding step must not interfere with.
func asciiLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
