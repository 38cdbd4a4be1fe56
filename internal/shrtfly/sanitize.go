package shrtfly

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptStyleRe   = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	tagRe           = regexp.MustCompile(`<[^>]*>`)
	loneLessThanRe  = regexp.MustCompile(`<([^a-zA-Z/!?]|$)`)
	lineBreaksRe    = regexp.MustCompile(`[\r\n\t ]+`)
	octetRe         = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	repeatedSpaceRe = regexp.MustCompile(` +`)
)

// SanitizeText cleans a single-line text field: invalid UTF-8 yields "",
// tags are stripped, line breaks and tabs collapse to one space,
// percent-encoded octets are removed and the result is trimmed.
func SanitizeText(s string) string {
	return sanitizeText(s, false)
}

// SanitizeTextarea is SanitizeText that keeps line breaks.
func SanitizeTextarea(s string) string {
	return sanitizeText(s, true)
}

func sanitizeText(s string, keepNewlines bool) string {
	if !utf8.ValidString(s) {
		return ""
	}

	if strings.Contains(s, "<") {
		// A "<" that cannot open a tag is text, not markup.
		s = loneLessThanRe.ReplaceAllString(s, "&lt;$1")
		s = scriptStyleRe.ReplaceAllString(s, "")
		s = tagRe.ReplaceAllString(s, "")
	}

	if !keepNewlines {
		s = lineBreaksRe.ReplaceAllString(s, " ")
	}
	s = strings.TrimSpace(s)

	found := false
	for octetRe.MatchString(s) {
		s = octetRe.ReplaceAllString(s, "")
		found = true
	}
	if found {
		s = strings.TrimSpace(repeatedSpaceRe.ReplaceAllString(s, " "))
	}

	return s
}
