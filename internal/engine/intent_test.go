package engine

import (
	"testing"

	"github.com/ignite/supportbot/internal/config"
)

func newTestClassifier() *IntentClassifier {
	return NewIntentClassifier(config.DefaultEngineConfig())
}

// =============================================================================
// INTENT CLASSIFICATION TESTS
// =============================================================================

func TestClassify_Greeting(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		message string
		wantMin float64
	}{
		{"Hello", 0.9}, // bare greeting hits every greeting pattern
		{"Hello!", 0.9},
		{"hi there", 0.35},
		{"Good morning", 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			intent := c.Classify(tt.message)
			if intent.Label != IntentGreeting {
				t.Errorf("Classify(%q) label = %s, want %s", tt.message, intent.Label, IntentGreeting)
			}
			if intent.Confidence < tt.wantMin {
				t.Errorf("Classify(%q) confidence = %.2f, want >= %.2f", tt.message, intent.Confidence, tt.wantMin)
			}
		})
	}
}

func TestClassify_Escalation(t *testing.T) {
	c := newTestClassifier()

	intent := c.Classify("let me speak to a human")
	if intent.Label != IntentEscalation {
		t.Fatalf("label = %s, want %s", intent.Label, IntentEscalation)
	}
	if intent.Confidence < 0.9 {
		t.Errorf("confidence = %.2f, want >= 0.9", intent.Confidence)
	}
}

func TestClassify_Complaint(t *testing.T) {
	c := newTestClassifier()

	intent := c.Classify("I'm furious, this is broken!!!")
	if intent.Label != IntentComplaint {
		t.Fatalf("label = %s, want %s", intent.Label, IntentComplaint)
	}
	if intent.Confidence != 0.8 {
		t.Errorf("confidence = %.2f, want 0.80", intent.Confidence)
	}
}

func TestClassify_Table(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"question", "What are your business hours?", IntentQuestion},
		{"order inquiry", "Where is my order? I need tracking info", IntentOrderInquiry},
		{"technical issue", "I can't log in, the website crashed", IntentTechnicalIssue},
		{"support", "I need help setting this up", IntentSupport},
		{"request", "Could you please send me a copy of my invoice", IntentRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(tt.message)
			if intent.Label != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.message, intent.Label, tt.want)
			}
		})
	}
}

// Messages that clear no rule's floor come back as general at exactly the
// default confidence.
func TestClassify_GeneralFloor(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		message string
	}{
		{"gibberish", "asdf qwerty zxcv"},
		{"single weak keyword", "thanks for the package"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(tt.message)
			if intent.Label != IntentGeneral {
				t.Errorf("label = %s, want %s", intent.Label, IntentGeneral)
			}
			if intent.Confidence != 0.3 {
				t.Errorf("confidence = %.2f, want exactly 0.30", intent.Confidence)
			}
		})
	}
}

// Scores accumulate per hit but never exceed the rule's cap.
func TestClassify_ConfidenceCap(t *testing.T) {
	c := newTestClassifier()

	// Stacks greeting keywords and all three greeting patterns.
	intent := c.Classify("Hello hey good morning greetings")
	if intent.Label != IntentGreeting {
		t.Fatalf("label = %s, want %s", intent.Label, IntentGreeting)
	}
	if intent.Confidence > 0.95 {
		t.Errorf("confidence = %.2f, want <= 0.95 (cap)", intent.Confidence)
	}
}

// Classification is deterministic: same input, same output.
func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier()

	first := c.Classify("where is my order ORD123456?")
	for i := 0; i < 10; i++ {
		got := c.Classify("where is my order ORD123456?")
		if got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}
