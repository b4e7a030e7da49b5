package querylog

import (
	"regexp"
	"strings"
)

// piiRule replaces one kind of personal data. check, when set, confirms a
// regexp match before it is replaced.
type piiRule struct {
	pattern     *regexp.Regexp
	replacement string
	check       func(match string) bool
}

// Rules run in order; card numbers go before phones so a long digit run is
// not half-matched as a phone number.
var piiRules = []piiRule{
	{
		pattern:     regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		replacement: "[EMAIL_REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
		replacement: "[CC_REDACTED]",
		check:       luhnValid,
	},
	{
		pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		replacement: "[SSN_REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`),
		replacement: "[IP_REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`(?:\+?1[-. ]?)?\(?\b\d{3}\)?[-. ]\d{3}[-. ]\d{4}\b`),
		replacement: "[PHONE_REDACTED]",
	},
}

// Redact masks email addresses, card numbers, SSNs, IPv4 addresses and
// phone numbers in text before it is persisted.
func Redact(text string) string {
	for _, rule := range piiRules {
		if rule.check == nil {
			text = rule.pattern.ReplaceAllLiteralString(text, rule.replacement)
			continue
		}
		text = rule.pattern.ReplaceAllStringFunc(text, func(match string) string {
			if rule.check(match) {
				return rule.replacement
			}
			return match
		})
	}
	return text
}

// luhnValid reports whether the digits of s pass the Luhn checksum.
func luhnValid(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
