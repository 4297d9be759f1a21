// Package engine implements the rule-based conversational response engine:
// intent/sentiment classification, entity extraction, auxiliary heuristics,
// scripted flows, proactive re-engagement and templated response generation.
//
// The engine is deterministic and in-process. It holds no durable state of
// its own: per-conversation session data lives behind an injected
// SessionStore, and message persistence belongs to the caller.
package engine

import "time"

// Response source tags.
const (
	SourceContextual = "contextual_ai"
	SourceFlow       = "automated_flow"
	SourceProactive  = "proactive_engagement"
	SourceFallback   = "intelligent_fallback"
)

// Intent labels produced by the classifier.
const (
	IntentGreeting       = "greeting"
	IntentQuestion       = "question"
	IntentComplaint      = "complaint"
	IntentRequest        = "request"
	IntentEscalation     = "escalation"
	IntentSupport        = "support"
	IntentOrderInquiry   = "order_inquiry"
	IntentTechnicalIssue = "technical_issue"
	IntentGeneral        = "general"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Urgency and complexity levels.
const (
	LevelLow     = "low"
	LevelMedium  = "medium"
	LevelHigh    = "high"
	LevelSimple  = "simple"
	LevelComplex = "complex"
)

// Intent is a classified message purpose with a confidence score.
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SentimentScores holds the raw word-list hit counts behind a sentiment call.
type SentimentScores struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Sentiment is a message polarity classification.
type Sentiment struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Scores     SentimentScores `json:"scores"`
}

// Entities holds structured tokens extracted from free text.
// Each field is present only when at least one match was found.
type Entities struct {
	Emails       []string `json:"emails,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	OrderNumbers []string `json:"order_numbers,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	Amounts      []string `json:"amounts,omitempty"`
}

// Urgency is the urgency level of a message plus the indicators that drove it.
type Urgency struct {
	Level      string   `json:"level"`
	Indicators []string `json:"indicators,omitempty"`
}

// Topic is a detected topic category with match confidence.
type Topic struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// Complexity describes structural complexity of a message.
type Complexity struct {
	Level               string  `json:"level"`
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	LongWordRatio       float64 `json:"long_word_ratio"`
}

// Language is a best-effort language guess.
type Language struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the ephemeral per-message record the classifiers produce.
type Analysis struct {
	Intent     Intent     `json:"intent"`
	Sentiment  Sentiment  `json:"sentiment"`
	Entities   Entities   `json:"entities"`
	Urgency    Urgency    `json:"urgency"`
	Topics     []Topic    `json:"topics,omitempty"`
	Language   Language   `json:"language"`
	Complexity Complexity `json:"complexity"`
	Stage      string     `json:"stage"`

	// Carried over from prior session state, when present.
	PreviousIntent     string `json:"previous_intent,omitempty"`
	ConversationLength int    `json:"conversation_length"`
	EscalationAttempts int    `json:"escalation_attempts"`
}

// Context carries the recognized optional caller-supplied fields.
type Context struct {
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Stage         string `json:"stage,omitempty"`
}

// Response is the payload returned to the caller. The caller persists and
// displays it; the engine does not.
type Response struct {
	Text           string   `json:"text"`
	Confidence     float64  `json:"confidence"`
	Source         string   `json:"source"`
	Intent         string   `json:"intent,omitempty"`
	ShouldEscalate bool     `json:"should_escalate,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
	Tone           string   `json:"tone,omitempty"`
	Priority       string   `json:"priority,omitempty"`
}

// ResponseRecord tracks one bot response issued on a conversation.
type ResponseRecord struct {
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the mutable per-conversation state. MessageCount only increases;
// ProactiveEngaged is set at most once for the life of the session.
type Session struct {
	ConversationID     string           `json:"conversation_id"`
	MessageCount       int              `json:"message_count"`
	StartedAt          time.Time        `json:"started_at"`
	LastActivity       time.Time        `json:"last_activity"`
	Intents            []string         `json:"intents,omitempty"`
	Topics             []string         `json:"topics,omitempty"`
	LastIntent         string           `json:"last_intent,omitempty"`
	EscalationAttempts int              `json:"escalation_attempts"`
	ProactiveEngaged   bool             `json:"proactive_engaged"`
	AIResponses        []ResponseRecord `json:"ai_responses,omitempty"`
}

// hasTopic reports whether the session has already seen the topic.
func (s *Session) hasTopic(topic string) bool {
	for _, t := range s.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
