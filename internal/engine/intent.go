package engine

import (
	"regexp"
	"strings"

	"github.com/ignite/supportbot/internal/config"
)

// intentRule scores one intent label. Keywords add KeywordWeight per
// case-insensitive substring hit, patterns add PatternWeight per match, and
// the accumulated score is capped at MaxConfidence.
type intentRule struct {
	Label         string
	Keywords      []string
	Patterns      []*regexp.Regexp
	MaxConfidence float64
}

// IntentClassifier maps raw message text to a best-guess intent label.
// Rules are held in a slice, not a map, so tie-breaks are stable: the first
// rule in enumeration order to reach the maximum score wins.
type IntentClassifier struct {
	rules             []intentRule
	keywordWeight     float64
	patternWeight     float64
	defaultConfidence float64
}

// NewIntentClassifier builds a classifier with the default rule table and
// the configured scoring weights.
func NewIntentClassifier(cfg config.EngineConfig) *IntentClassifier {
	return &IntentClassifier{
		rules:             defaultIntentRules(),
		keywordWeight:     cfg.KeywordWeight,
		patternWeight:     cfg.PatternWeight,
		defaultConfidence: cfg.DefaultConfidence,
	}
}

// Classify scores the message against every intent rule and returns the
// highest-scoring intent. Messages that clear no rule's floor come back as
// "general" at the default confidence.
func (c *IntentClassifier) Classify(message string) Intent {
	lower := strings.ToLower(message)

	best := Intent{Label: IntentGeneral, Confidence: c.defaultConfidence}
	bestScore := 0.0

	for _, rule := range c.rules {
		score := 0.0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				score += c.keywordWeight
			}
		}
		for _, p := range rule.Patterns {
			if p.MatchString(message) {
				score += c.patternWeight
			}
		}
		if score > rule.MaxConfidence {
			score = rule.MaxConfidence
		}
		if score > bestScore {
			bestScore = score
			best = Intent{Label: rule.Label, Confidence: score}
		}
	}

	if bestScore <= c.defaultConfidence {
		return Intent{Label: IntentGeneral, Confidence: c.defaultConfidence}
	}
	return best
}

func defaultIntentRules() []intentRule {
	return []intentRule{
		{
			Label: IntentGreeting,
			Keywords: []string{
				"hello", "hi ", "hey", "good morning", "good afternoon",
				"good evening", "greetings", "howdy",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^\s*(hi|hello|hey)\b`),
				regexp.MustCompile(`(?i)^\s*(hi|hello|hey|howdy|greetings)[\s!.,]*$`),
				regexp.MustCompile(`(?i)\b(good\s+(morning|afternoon|evening)|greetings|howdy|hello)\b`),
			},
			MaxConfidence: 0.95,
		},
		{
			Label: IntentEscalation,
			Keywords: []string{
				"human", "agent", "representative", "manager", "supervisor",
				"speak", "speak to", "talk to", "escalate", "transfer",
				"real person",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(speak|talk)\s+(to|with)\s+(a\s+|an\s+)?(human|person|agent|representative|manager|someone)`),
				regexp.MustCompile(`(?i)\b(let\s+me|i\s+(want|need|demand)\s+to)\s+(speak|talk)\b`),
				regexp.MustCompile(`(?i)\b(escalate|transfer\s+me)\b`),
				regexp.MustCompile(`(?i)\breal\s+(human|person)\b`),
			},
			MaxConfidence: 0.95,
		},
		{
			Label: IntentComplaint,
			Keywords: []string{
				"broken", "not working", "terrible", "awful", "furious",
				"disappointed", "unacceptable", "worst", "angry", "frustrated",
				"ridiculous", "useless",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(doesn'?t|does\s+not|won'?t|will\s+not|can'?t)\s+work`),
				regexp.MustCompile(`(?i)\b(this|it|everything)\s+is\s+(broken|terrible|awful|ridiculous|useless)`),
				regexp.MustCompile(`(?i)\bi'?m\s+(furious|angry|upset|disappointed|frustrated)\b`),
			},
			MaxConfidence: 0.9,
		},
		{
			Label: IntentOrderInquiry,
			Keywords: []string{
				"order", "purchase", "shipment", "delivery", "tracking",
				"package", "shipped", "refund",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(where|status|track)\b.*\b(order|package|shipment|delivery)\b`),
				regexp.MustCompile(`(?i)\b(order|purchase|transaction)\s*(#|number|id|no\.?)?\s*(is\s*)?:?\s*[A-Za-z0-9-]{6,}`),
				regexp.MustCompile(`(?i)\bmy\s+(order|package|purchase|delivery)\b`),
			},
			MaxConfidence: 0.9,
		},
		{
			Label: IntentTechnicalIssue,
			Keywords: []string{
				"error", "bug", "crash", "glitch", "login", "password",
				"website", "loading", "stuck", "frozen",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(error|exception)\s*(code|message)?\s*[:#]?\s*\w+`),
				regexp.MustCompile(`(?i)\bcan'?t\s+(log\s?in|sign\s?in|access|connect|load)\b`),
				regexp.MustCompile(`(?i)\b(app|site|website|page)\s+(crashed|crashes|froze|is\s+down|won'?t\s+load)`),
			},
			MaxConfidence: 0.9,
		},
		{
			Label: IntentSupport,
			Keywords: []string{
				"help", "assist", "support", "guidance", "stuck", "confused",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(can|could)\s+you\s+help\b`),
				regexp.MustCompile(`(?i)\bi\s+need\s+(help|assistance|support)\b`),
			},
			MaxConfidence: 0.85,
		},
		{
			Label: IntentRequest,
			Keywords: []string{
				"please", "i need", "i want", "would like", "can you",
				"could you", "requesting",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(can|could|would)\s+you\s+(please\s+)?\w+`),
				regexp.MustCompile(`(?i)\bi('?d| would)\s+like\s+to\b`),
			},
			MaxConfidence: 0.8,
		},
		{
			Label: IntentQuestion,
			Keywords: []string{
				"what", "how", "when", "where", "why", "which", "who",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\?\s*$`),
				regexp.MustCompile(`(?i)^\s*(what|how|when|where|why|which|who|is|are|do|does|can)\b.*\?`),
			},
			MaxConfidence: 0.8,
		},
	}
}
