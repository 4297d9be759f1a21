package engine

import (
	"math/rand"
	"strings"
)

// empathyPhrases are prepended to replies when sentiment is firmly negative.
var empathyPhrases = []string{
	"I completely understand your frustration.",
	"I'm really sorry you're dealing with this.",
	"I hear you, and I want to make this right.",
	"That sounds really frustrating, and I apologize.",
}

const urgencyAck = "I can see this is urgent, so I'm prioritizing it right away."

// suggestionsByIntent are the follow-up prompts offered after a reply.
var suggestionsByIntent = map[string][]string{
	IntentGreeting: {
		"Track an order",
		"Browse products",
		"Talk about billing",
	},
	IntentQuestion: {
		"See our FAQ",
		"Talk to an agent",
		"Ask something else",
	},
	IntentComplaint: {
		"Request a refund",
		"Speak with an agent",
		"Check order status",
	},
	IntentOrderInquiry: {
		"Track my package",
		"Change delivery address",
		"Cancel my order",
	},
	IntentTechnicalIssue: {
		"Reset my password",
		"Report a bug",
		"Check service status",
	},
	IntentSupport: {
		"Browse help articles",
		"Talk to an agent",
	},
	IntentEscalation: {
		"Wait for an agent",
		"Leave a callback number",
	},
	IntentGeneral: {
		"Track an order",
		"Get product help",
		"Talk to an agent",
	},
}

// Enhancer post-processes a generated reply: empathy phrasing for negative
// sentiment, urgency acknowledgment, name personalization and follow-up
// suggestions. Augmentation only — it never rewrites the base reply.
type Enhancer struct {
	empathyThreshold float64
	maxSuggestions   int
	randFunc         func(n int) int
}

// NewEnhancer creates an enhancer. The empathy threshold is the minimum
// negative-sentiment confidence before an empathy phrase is prepended.
func NewEnhancer(empathyThreshold float64, maxSuggestions int) *Enhancer {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &Enhancer{
		empathyThreshold: empathyThreshold,
		maxSuggestions:   maxSuggestions,
		randFunc:         rand.Intn,
	}
}

// Enhance returns the augmented response.
func (e *Enhancer) Enhance(resp *Response, a *Analysis, convCtx *Context) *Response {
	out := *resp

	if a.Sentiment.Label == SentimentNegative && a.Sentiment.Confidence > e.empathyThreshold {
		phrase := empathyPhrases[e.randFunc(len(empathyPhrases))]
		out.Text = phrase + " " + out.Text
		out.Tone = "empathetic"
	}

	if a.Urgency.Level == LevelHigh {
		out.Text = urgencyAck + " " + out.Text
		out.Priority = LevelHigh
	}

	if convCtx != nil && convCtx.CustomerName != "" {
		out.Text = personalize(out.Text, convCtx.CustomerName)
	}

	intent := a.Intent.Label
	suggestions, ok := suggestionsByIntent[intent]
	if !ok {
		suggestions = suggestionsByIntent[IntentGeneral]
	}
	if len(suggestions) > e.maxSuggestions {
		suggestions = suggestions[:e.maxSuggestions]
	}
	out.Suggestions = append([]string(nil), suggestions...)

	return &out
}

// personalize splices the customer name into a leading "Hi"/"Hello" when the
// name isn't already present.
func personalize(text, name string) string {
	if strings.Contains(text, name) {
		return text
	}
	for _, greet := range []string{"Hi", "Hello"} {
		if strings.HasPrefix(text, greet) {
			rest := text[len(greet):]
			// "Hi there!..." → "Hi John, there!..." reads badly; only splice
			// when the greeting is followed by punctuation or whitespace+!
			if strings.HasPrefix(rest, "!") || strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, ".") {
				return greet + " " + name + rest
			}
		}
	}
	return text
}
