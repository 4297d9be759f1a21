package engine

import "testing"

// =============================================================================
// URGENCY TESTS
// =============================================================================

func TestAnalyzeUrgency(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantLevel string
	}{
		{"calm", "could you check my order when you have a moment", LevelLow},
		{"one keyword", "this is urgent.", LevelMedium},
		{"exclamations only", "it broke again!! twice!!", LevelMedium},
		{"keyword plus shouting", "URGENT!! NEED HELP NOW", LevelHigh},
		{"keyword plus exclamations", "fix this immediately!!!", LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeUrgency(tt.message)
			if got.Level != tt.wantLevel {
				t.Errorf("AnalyzeUrgency(%q) = %s (indicators %v), want %s",
					tt.message, got.Level, got.Indicators, tt.wantLevel)
			}
		})
	}
}

func TestAnalyzeUrgency_Indicators(t *testing.T) {
	got := AnalyzeUrgency("URGENT!! NEED HELP NOW")
	if len(got.Indicators) != 3 {
		t.Errorf("indicators = %v, want keyword + exclamations + all_caps", got.Indicators)
	}
}

// =============================================================================
// COMPLEXITY TESTS
// =============================================================================

func TestAnalyzeComplexity(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantLevel string
	}{
		{"short", "Hi there.", LevelSimple},
		{
			"medium length",
			"I ordered a blue jacket last week. It arrived in the wrong size. Can you help me exchange it for a larger one please?",
			LevelMedium,
		},
		{
			"long rambling",
			"I have been trying to resolve this issue for several weeks now and every single time I contact your support team I get transferred between departments without anyone actually taking ownership of the problem which is why I am writing this very long message hoping someone finally reads the whole thing and helps me",
			LevelComplex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeComplexity(tt.message)
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s (words=%d avg=%.1f ratio=%.2f), want %s",
					got.Level, got.WordCount, got.AvgWordsPerSentence, got.LongWordRatio, tt.wantLevel)
			}
		})
	}
}

func TestAnalyzeComplexity_Counts(t *testing.T) {
	got := AnalyzeComplexity("First sentence here. Second one!")
	if got.WordCount != 5 {
		t.Errorf("word count = %d, want 5", got.WordCount)
	}
	if got.SentenceCount != 2 {
		t.Errorf("sentence count = %d, want 2", got.SentenceCount)
	}
}

// =============================================================================
// TOPIC EXTRACTION TESTS
// =============================================================================

func TestExtractTopics(t *testing.T) {
	topics := ExtractTopics("Where is my order? The delivery is late")

	if len(topics) != 2 {
		t.Fatalf("topics = %+v, want orders + shipping", topics)
	}
	if topics[0].Topic != "orders" {
		t.Errorf("topics[0] = %s, want orders (highest confidence first)", topics[0].Topic)
	}
	if topics[1].Topic != "shipping" {
		t.Errorf("topics[1] = %s, want shipping", topics[1].Topic)
	}
}

func TestExtractTopics_NoMatch(t *testing.T) {
	if topics := ExtractTopics("just saying hi"); len(topics) != 0 {
		t.Errorf("topics = %+v, want none", topics)
	}
}

// =============================================================================
// LANGUAGE DETECTION TESTS
// =============================================================================

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"english", "what is the status of my order, can you check this for me", "english"},
		{"spanish", "donde esta mi pedido para el envio", "spanish"},
		{"french", "bonjour, comment est mon colis pour la livraison", "french"},
		{"no signal defaults english", "zzz qqq", "english"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage(tt.message)
			if got.Language != tt.want {
				t.Errorf("DetectLanguage(%q) = %s (%.2f), want %s",
					tt.message, got.Language, got.Confidence, tt.want)
			}
		})
	}
}

// =============================================================================
// CONVERSATION STAGE TESTS
// =============================================================================

func TestConversationStage(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "opening"},
		{1, "opening"},
		{2, "information_gathering"},
		{4, "information_gathering"},
		{5, "resolution"},
		{8, "resolution"},
		{9, "extended"},
	}

	for _, tt := range tests {
		if got := conversationStage(tt.count); got != tt.want {
			t.Errorf("conversationStage(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}
