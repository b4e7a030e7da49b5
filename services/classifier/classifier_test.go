package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		intent Intent
		guest  string
		topic  string
	}{
		{
			name:   "guest with topic",
			query:  "What did Brian Chesky say about trust?",
			intent: IntentGuestSpecific,
			guest:  "Brian Chesky",
			topic:  "trust",
		},
		{
			name:   "guest approach beats comparison keyword",
			query:  "What is Lenny's approach to compare frameworks?",
			intent: IntentGuestSpecific,
			guest:  "Lenny",
		},
		{
			name:   "guest view with topic on",
			query:  "What is Shreyas Doshi's view on prioritization?",
			intent: IntentGuestSpecific,
			guest:  "Shreyas Doshi",
			topic:  "prioritization",
		},
		{
			name:   "indicator without capitalized name",
			query:  "what did they say about pricing?",
			intent: IntentGeneral,
		},
		{
			name:   "comparison",
			query:  "Compare OKRs and North Star metrics",
			intent: IntentComparison,
		},
		{
			name:   "comparison by vs substring",
			query:  "PLG vs sales-led growth",
			intent: IntentComparison,
		},
		{
			name:   "how to",
			query:  "How do I run a pricing experiment?",
			intent: IntentHowTo,
		},
		{
			name:   "definition",
			query:  "What is product-market fit?",
			intent: IntentDefinition,
		},
		{
			name:   "general",
			query:  "Tips for hiring your first PM",
			intent: IntentGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.query)
			assert.Equal(t, tt.intent, got.Intent, "intent was %s", got.Intent)
			assert.Equal(t, tt.guest, got.Guest)
			assert.Equal(t, tt.topic, got.Topic)
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	queries := []string{
		"What did Brian Chesky say about trust?",
		"Compare OKRs and KPIs",
		"how can I grow faster",
		"and Airbnb?",
	}
	for _, q := range queries {
		assert.Equal(t, Classify(q), Classify(q), q)
	}
}

func TestExtractGuest(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What did Brian Chesky say about trust?", "Brian Chesky"},
		{"what does Julie Zhuo think about feedback", "Julie Zhuo"},
		{"Tell me Marty Cagan's perspective on discovery", "Marty Cagan"},
		{"Elena's thoughts on growth loops", "Elena"},
		{"According to Lenny Rachitsky, what matters most?", "Lenny Rachitsky"},
		{"ACCORDING TO Casey Winters retention is key", "Casey Winters"},
		{"what did you say", ""},
		{"no guest here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractGuest(tt.query))
		})
	}
}

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What did Brian Chesky say about trust?", "trust"},
		{"What does Julie Zhuo think about management!!", "management"},
		{"What did April Dunford mention about positioning?", "positioning"},
		{"What did Gibson Biddle discuss pricing strategy.", "pricing strategy"},
		{"Marty Cagan's view on discovery?", "discovery"},
		{"Lenny's thoughts regarding hiring", "hiring"},
		{"What did Brian Chesky say", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopic(tt.query))
		})
	}
}

func TestGuestTopicRoundTrip(t *testing.T) {
	q := "What did Brian Chesky say about trust?"
	assert.Equal(t, "Brian Chesky", ExtractGuest(q))
	assert.Equal(t, "trust", ExtractTopic(q))
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "general", IntentGeneral.String())
	assert.Equal(t, "how_to", IntentHowTo.String())
	assert.Equal(t, "definition", IntentDefinition.String())
	assert.Equal(t, "comparison", IntentComparison.String())
	assert.Equal(t, "guest_specific", IntentGuestSpecific.String())
	assert.Equal(t, "unknown", Intent(42).String())

	got, ok := ParseIntent("comparison")
	assert.True(t, ok)
	assert.Equal(t, IntentComparison, got)

	_, ok = ParseIntent("nope")
	assert.False(t, ok)
}
