package dispatch

import "strings"

// fallbackRule maps message keywords to a canned response. Rules are
// evaluated in declared order; the first rule with any matching keyword
// wins, so the output is a pure function of the message text.
type fallbackRule struct {
	keywords []string
	response string
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"center of excellence", "coe"},
		response: "An AI Center of Excellence is a dedicated team that sets standards, " +
			"shares best practices, and coordinates AI initiatives across your " +
			"organization. Start small: a few practitioners, a clear charter, and " +
			"one or two visible pilot projects.",
	},
	{
		keywords: []string{"maturity", "assessment", "readiness"},
		response: "AI maturity typically progresses through four stages: exploring " +
			"(ad-hoc experiments), adopting (first production use cases), scaling " +
			"(shared platforms and governance), and transforming (AI embedded in " +
			"core processes). Knowing your stage tells you which investments pay " +
			"off next.",
	},
	{
		keywords: []string{"getting started", "where do i start", "how do i begin"},
		response: "The best way to start is with one concrete, low-risk use case that " +
			"matters to your team. Pick something measurable, run a short pilot, " +
			"and use what you learn to decide where to invest next.",
	},
}

const fallbackDefault = "Thanks for your message. I'm having trouble reaching my AI " +
	"backend right now, but I'd still love to help — could you try again in a " +
	"moment, or rephrase your question?"

// fallbackResponse returns the canned reply for a message. Same input,
// same output: the degraded path must be deterministic.
func fallbackResponse(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.response
			}
		}
	}
	return fallbackDefault
}
