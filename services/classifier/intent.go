// Package classifier derives the query intent and the guest and topic
// entities from a raw question.
package classifier

// Intent is the kind of question being asked
type Intent int

const (
	IntentGeneral Intent = iota
	IntentHowTo
	IntentDefinition
	IntentComparison
	IntentGuestSpecific
)

var intentNames = [...]string{
	IntentGeneral:       "general",
	IntentHowTo:         "how_to",
	IntentDefinition:    "definition",
	IntentComparison:    "comparison",
	IntentGuestSpecific: "guest_specific",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[i]
}

// ParseIntent returns the intent with the given name.
func ParseIntent(name string) (Intent, bool) {
	for i, n := range intentNames {
		if n == name {
			return Intent(i), true
		}
	}
	return IntentGeneral, false
}

// QueryIntent is the classification of one query. Guest and Topic are
// empty when nothing was extracted.
type QueryIntent struct {
	Intent Intent
	Guest  string
	Topic  string
}

// HasGuest reports whether a guest name was extracted.
func (q QueryIntent) HasGuest() bool { return q.Guest != "" }

// HasTopic reports whether a topic was extracted.
func (q QueryIntent) HasTopic() bool { return q.Topic != "" }
