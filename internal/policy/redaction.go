package policy

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern   = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	bearerPattern = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`)
)

// MaxLogTextRunes bounds message text written to logs.
const MaxLogTextRunes = 120

// RedactPII masks common high-risk PII patterns.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	// Run card redaction before phone to avoid card numbers being classified as phone.
	next = cardPattern.ReplaceAllString(out, "[REDACTED_CARD]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}

// RedactForLog prepares user-supplied chat text for a log line: PII and bearer
// tokens are masked and the result is cut to MaxLogTextRunes.
func RedactForLog(text string) string {
	out, _ := RedactPII(text)
	out = bearerPattern.ReplaceAllString(out, "Bearer [REDACTED_TOKEN]")
	if utf8.RuneCountInString(out) <= MaxLogTextRunes {
		return out
	}
	runes := []rune(out)
	return string(runes[:MaxLogTextRunes]) + "…"
}
