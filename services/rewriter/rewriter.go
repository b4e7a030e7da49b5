// Package rewriter turns a classified query and the conversation so far
// into the search the retrieval engine should run.
package rewriter

import (
	"fmt"
	"strings"

	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services/classifier"
)

const (
	// DefaultLimit is the result limit for general searches.
	DefaultLimit = 5
	// GuestLimit is the widened result limit for guest-filtered searches.
	GuestLimit = 10

	followupMaxWords  = 5
	contextTurns      = 2
	contextAnswerRune = 250
)

// Plan describes one search plus the conversation context for synthesis.
type Plan struct {
	EffectiveQuery string
	Limit          int
	GuestFilter    string
	Context        string
	IsCarryForward bool
}

// Rewrite derives the search plan for rawQuery. turns are the client's
// prior turns, oldest first.
func Rewrite(rawQuery string, intent classifier.QueryIntent, turns []models.Turn) Plan {
	plan := Plan{EffectiveQuery: rawQuery, Limit: DefaultLimit}

	if len(turns) > 0 {
		plan.Context = BuildContext(turns)
		if len(strings.Fields(rawQuery)) < followupMaxWords {
			prev := turns[len(turns)-1].Query
			plan.EffectiveQuery = prev + " " + rawQuery
			plan.IsCarryForward = true
		}
	}

	if intent.Intent == classifier.IntentGuestSpecific {
		plan.Limit = GuestLimit
		plan.GuestFilter = intent.Guest
		if intent.HasTopic() {
			plan.EffectiveQuery = intent.Topic
		}
	}

	return plan
}

// BuildContext formats the last two turns as Q/A pairs with each answer
// cut to 250 characters.
func BuildContext(turns []models.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	start := len(turns) - contextTurns
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, contextTurns)
	for _, t := range turns[start:] {
		parts = append(parts, fmt.Sprintf("Q: %s\nA: %s...", t.Query, truncate(t.Answer, contextAnswerRune)))
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
