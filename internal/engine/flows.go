package engine

import (
	"context"
	"strings"
)

// FlowAction is a declared side effect replayed when a flow fires.
type FlowAction string

const (
	ActionTagConversation  FlowAction = "tag_conversation"
	ActionSetPriority      FlowAction = "set_priority"
	ActionNotifyAgent      FlowAction = "notify_agent"
	ActionCreateTicket     FlowAction = "create_ticket"
	ActionSendEmail        FlowAction = "send_email"
	ActionScheduleFollowup FlowAction = "schedule_followup"
)

// SideEffects is the port flow actions are replayed through. Implementations
// wire actions to real collaborators (ticketing, notifications); the engine
// only reports failures, it never blocks the response on them.
type SideEffects interface {
	Apply(ctx context.Context, conversationID, flowName string, action FlowAction) error
}

// NopSideEffects discards all actions. Used when no collaborator is wired.
type NopSideEffects struct{}

func (NopSideEffects) Apply(context.Context, string, string, FlowAction) error { return nil }

// FlowTrigger is a single predicate: every set condition must hold (AND).
// Keywords is a contains-any check over the lower-cased message.
type FlowTrigger struct {
	Intent    string   `yaml:"intent" json:"intent,omitempty"`
	Sentiment string   `yaml:"sentiment" json:"sentiment,omitempty"`
	Urgency   string   `yaml:"urgency" json:"urgency,omitempty"`
	Keywords  []string `yaml:"keywords" json:"keywords,omitempty"`
}

// Flow pairs trigger predicates (OR'd) with a canned response and optional
// side-effect actions. Flows are evaluated in declaration order and the first
// match short-circuits response generation.
type Flow struct {
	Name     string        `yaml:"name" json:"name"`
	Triggers []FlowTrigger `yaml:"triggers" json:"triggers"`
	Response string        `yaml:"response" json:"response"`
	Actions  []FlowAction  `yaml:"actions" json:"actions,omitempty"`
	Escalate bool          `yaml:"escalate" json:"escalate,omitempty"`
}

func (t FlowTrigger) matches(lowerMessage string, a *Analysis) bool {
	if t.Intent != "" && t.Intent != a.Intent.Label {
		return false
	}
	if t.Sentiment != "" && t.Sentiment != a.Sentiment.Label {
		return false
	}
	if t.Urgency != "" && t.Urgency != a.Urgency.Level {
		return false
	}
	if len(t.Keywords) > 0 {
		hit := false
		for _, kw := range t.Keywords {
			if strings.Contains(lowerMessage, kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// matchFlow returns the first flow with at least one satisfied trigger.
func matchFlow(message string, a *Analysis, flows []Flow) *Flow {
	lower := strings.ToLower(message)
	for i := range flows {
		for _, trigger := range flows[i].Triggers {
			if trigger.matches(lower, a) {
				return &flows[i]
			}
		}
	}
	return nil
}

// DefaultFlows returns the built-in flow table. Order matters: escalation
// outranks the greeting so "hi, get me a human" escalates.
func DefaultFlows() []Flow {
	return []Flow{
		{
			Name: "escalation_request",
			Triggers: []FlowTrigger{
				{Intent: IntentEscalation},
			},
			Response: "I understand you'd like to speak with a member of our team. I'm connecting you with a human agent now — they'll have the full context of our conversation.",
			Actions:  []FlowAction{ActionNotifyAgent, ActionTagConversation},
			Escalate: true,
		},
		{
			Name: "angry_customer",
			Triggers: []FlowTrigger{
				{Sentiment: SentimentNegative, Urgency: LevelHigh},
			},
			Response: "I'm truly sorry about this experience. This clearly isn't acceptable, and I'm flagging your conversation for priority handling right away.",
			Actions:  []FlowAction{ActionSetPriority, ActionNotifyAgent, ActionCreateTicket},
			Escalate: true,
		},
		{
			Name: "greeting",
			Triggers: []FlowTrigger{
				{Intent: IntentGreeting},
			},
			Response: "Hi there! Welcome — I'm here to help with orders, products, billing, or anything else. What can I do for you today?",
			Actions:  []FlowAction{ActionTagConversation},
		},
		{
			Name: "refund_request",
			Triggers: []FlowTrigger{
				{Keywords: []string{"refund", "money back", "chargeback"}, Sentiment: SentimentNegative},
			},
			Response: "I'm sorry things didn't work out. I've started a refund review for you — a confirmation email is on its way, and most refunds complete within 3-5 business days.",
			Actions:  []FlowAction{ActionCreateTicket, ActionSendEmail, ActionScheduleFollowup},
		},
	}
}
