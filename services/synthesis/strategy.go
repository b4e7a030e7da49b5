// Package synthesis selects the prompt strategy for a query and turns the
// gated chunks into a cited answer.
package synthesis

import (
	"fmt"
	"strings"

	"github.com/upb/lenny-lens/models"
	"github.com/upb/lenny-lens/services/classifier"
)

// DefaultMaxContextChunks is how many ranked chunks a prompt includes.
const DefaultMaxContextChunks = 7

// Strategy is one of the closed set of prompt templates.
type Strategy int

const (
	StrategyGeneral Strategy = iota
	StrategyGuest
	StrategyComparison
)

func (s Strategy) String() string {
	switch s {
	case StrategyGuest:
		return "guest"
	case StrategyComparison:
		return "comparison"
	default:
		return "general"
	}
}

// PromptInput is everything a strategy needs to build its prompt.
type PromptInput struct {
	Query   string
	Guest   string
	Chunks  []models.RetrievedChunk
	Context string
}

type builder func(in PromptInput, sources string) string

var builders = map[Strategy]builder{
	StrategyGeneral:    generalPrompt,
	StrategyGuest:      guestPrompt,
	StrategyComparison: comparisonPrompt,
}

// Select maps an intent to its strategy. how_to and definition questions
// use the general template.
func Select(intent classifier.Intent) Strategy {
	switch intent {
	case classifier.IntentGuestSpecific:
		return StrategyGuest
	case classifier.IntentComparison:
		return StrategyComparison
	default:
		return StrategyGeneral
	}
}

// Build renders the prompt for the strategy using at most maxChunks chunks.
func (s Strategy) Build(in PromptInput, maxChunks int) string {
	b, ok := builders[s]
	if !ok {
		b = generalPrompt
	}
	return b(in, FormatSources(in.Chunks, maxChunks))
}

// BuildPrompt selects the strategy for intent and renders its prompt.
func BuildPrompt(query string, intent classifier.QueryIntent, chunks []models.RetrievedChunk, context string) string {
	in := PromptInput{Query: query, Guest: intent.Guest, Chunks: chunks, Context: context}
	return Select(intent.Intent).Build(in, DefaultMaxContextChunks)
}

// FormatSources labels each of the first maxChunks chunks with its guest
// and episode title.
func FormatSources(chunks []models.RetrievedChunk, maxChunks int) string {
	if maxChunks <= 0 || maxChunks > len(chunks) {
		maxChunks = len(chunks)
	}
	parts := make([]string, 0, maxChunks)
	for _, c := range chunks[:maxChunks] {
		parts = append(parts, fmt.Sprintf("[%s - %s]\n%s", c.EpisodeGuest, c.EpisodeTitle, c.Text))
	}
	return strings.Join(parts, "\n\n")
}

func contextSection(ctx string) string {
	if ctx == "" {
		return ""
	}
	return "Previous conversation:\n" + ctx + "\n\nThis is a follow-up question.\n"
}

func generalPrompt(in PromptInput, sources string) string {
	return contextSection(in.Context) + `
You are The Lenny Lens - an AI advisor that helps PMs make decisions, not just learn information.

Question: ` + in.Query + `

Sources:
` + sources + `

Provide a structured answer that ADAPTS based on the content:

**ALWAYS INCLUDE:**
1. Main synthesized answer (2-3 paragraphs)

**INCLUDE IF RELEVANT:**
2. **Different Perspectives:** (only if multiple valid approaches exist)
   • Use bullet points to show distinct approaches
   • Include who recommends each and their context
   
3. **Contradictions to Consider:** (only if guests disagree or warn against something)
   • Show the tension clearly
   • Explain when each perspective applies
   
4. **Credibility Context:** (only if claims need backing or user is making decisions)
   • Who said this + their relevant experience
   • What companies/results validate this
   
5. **Actionable Playbook:** (only if query needs practical steps)
   • Concrete steps with timeline
   • Specific metrics or checkpoints
   • Based on what guests actually did

**FORMATTING RULES:**
- Cite every claim: [Guest Name, Episode: Full title]
- Use bullet points for clarity
- Be specific: include numbers, company names, timeframes
- Don't add sections that aren't relevant to this query

Answer:`
}

func guestPrompt(in PromptInput, sources string) string {
	g := in.Guest
	return contextSection(in.Context) + `
Focus on ` + g + `'s SPECIFIC insights.

Question: ` + in.Query + `

Sources (from ` + g + `):
` + sources + `

Structure:

**` + g + `'s Perspective:**
[2-3 sentences on their specific approach]

**Key Insights:**
• **[Specific method/framework]:** [How they use it with concrete example, 2-3 sentences]
• **[Another insight]:** [Details with numbers/names]

**Actionable Takeaway:** [One thing to do Monday based on their advice]

Cite: [` + g + `, Episode: Full title]

Be SPECIFIC: Include company names, metrics, frameworks by name, real stories.`
}

func comparisonPrompt(in PromptInput, sources string) string {
	return contextSection(in.Context) + `
Compare perspectives with concrete examples.

Question: ` + in.Query + `

Sources:
` + sources + `

Structure:

[Overview - core similarity and key difference]

**Compare and Contrast:**
• **[Dimension 1]:**
   • **[Person A]:** [Specific approach with example, 2-3 sentences]
   • **[Person B]:** [Contrasting approach with example]
• **[Dimension 2]:**
   • **[Person A]:** [Their method]
   • **[Person B]:** [Different method]

**When to Use Each:** [Practical scenarios]

Cite: [Guest, Episode: Full title]`
}
