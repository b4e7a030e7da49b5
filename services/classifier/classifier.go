package classifier

import (
	"regexp"
	"strings"
)

// namePattern matches one or more capitalized words.
const namePattern = `([A-Z][a-z]+(?: [A-Z][a-z]+)*)`

var guestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:what (?:did|does)) ` + namePattern + ` (?i:say|think|mention|discuss)`),
	regexp.MustCompile(namePattern + `'s (?i:approach|view|perspective|thoughts?)`),
	regexp.MustCompile(`(?i:according to) ` + namePattern),
}

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)say about (.+?)[\?]?$`),
	regexp.MustCompile(`(?i)think about (.+?)[\?]?$`),
	regexp.MustCompile(`(?i)mention about (.+?)[\?]?$`),
	regexp.MustCompile(`(?i)discuss (.+?)[\?]?$`),
	regexp.MustCompile(`(?i)on (.+?)[\?]?$`),
	regexp.MustCompile(`(?i)regarding (.+?)[\?]?$`),
}

var trailingPunct = regexp.MustCompile(`[?.!]+$`)

var (
	guestIndicators  = []string{"what did", "what does", "'s approach", "'s view"}
	comparisonWords  = []string{"compare", "vs", "versus", "difference", "contrast"}
	howToPrefixes    = []string{"how to", "how do", "how can"}
	definitionPrefix = []string{"what is", "what are"}
)

// rule pairs a predicate over the query with the intent it selects.
// lower is the lower-cased query.
type rule struct {
	intent Intent
	match  func(raw, lower string) bool
}

// rules are evaluated in order and the first match wins. Guest detection
// precedes the comparison check, so "Lenny's approach to compare X"
// is guest-specific.
var rules = []rule{
	{IntentGuestSpecific, func(raw, lower string) bool {
		return containsAny(lower, guestIndicators) && ExtractGuest(raw) != ""
	}},
	{IntentComparison, func(_, lower string) bool { return containsAny(lower, comparisonWords) }},
	{IntentHowTo, func(_, lower string) bool { return hasAnyPrefix(lower, howToPrefixes) }},
	{IntentDefinition, func(_, lower string) bool { return hasAnyPrefix(lower, definitionPrefix) }},
}

// Classify returns the intent of query along with the guest and topic for
// guest-specific questions. It has no state.
func Classify(query string) QueryIntent {
	lower := strings.ToLower(query)
	for _, r := range rules {
		if !r.match(query, lower) {
			continue
		}
		qi := QueryIntent{Intent: r.intent}
		if r.intent == IntentGuestSpecific {
			qi.Guest = ExtractGuest(query)
			qi.Topic = ExtractTopic(query)
		}
		return qi
	}
	return QueryIntent{Intent: IntentGeneral}
}

// ExtractGuest returns the guest named by the first matching guest
// pattern, or "" when none match.
func ExtractGuest(query string) string {
	for _, p := range guestPatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractTopic returns the trailing subject of a guest question such as
// "trust" in "What did Brian Chesky say about trust?".
func ExtractTopic(query string) string {
	for _, p := range topicPatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			topic := strings.TrimSpace(m[1])
			return trailingPunct.ReplaceAllString(topic, "")
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
