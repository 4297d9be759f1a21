package engine

import (
	"sort"
	"strings"
	"unicode"
)

var urgencyKeywords = []string{
	"urgent", "asap", "immediately", "right now", "emergency",
	"critical", "can't wait", "time sensitive",
}

// AnalyzeUrgency combines urgency keywords with secondary indicators
// (repeated exclamation marks, shouting in all caps) into a level.
// 0 indicators → low, 1 → medium, ≥2 → high.
func AnalyzeUrgency(message string) Urgency {
	lower := strings.ToLower(message)

	var indicators []string
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			indicators = append(indicators, "keyword:"+kw)
		}
	}
	if strings.Count(message, "!") > 1 {
		indicators = append(indicators, "multiple_exclamations")
	}
	if len(message) > 10 && isAllUpper(message) {
		indicators = append(indicators, "all_caps")
	}

	level := LevelLow
	switch {
	case len(indicators) >= 2:
		level = LevelHigh
	case len(indicators) == 1:
		level = LevelMedium
	}
	return Urgency{Level: level, Indicators: indicators}
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// AnalyzeComplexity derives a structural complexity level from word count,
// sentence count, average sentence length and long-word ratio.
func AnalyzeComplexity(message string) Complexity {
	words := strings.Fields(message)
	wordCount := len(words)

	sentenceCount := 0
	for _, s := range strings.FieldsFunc(message, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	if sentenceCount == 0 && wordCount > 0 {
		sentenceCount = 1
	}

	avg := 0.0
	if sentenceCount > 0 {
		avg = float64(wordCount) / float64(sentenceCount)
	}

	longWords := 0
	for _, w := range words {
		if len(strings.Trim(w, ".,!?;:")) > 6 {
			longWords++
		}
	}
	ratio := 0.0
	if wordCount > 0 {
		ratio = float64(longWords) / float64(wordCount)
	}

	level := LevelSimple
	switch {
	case wordCount > 40 || avg > 20 || ratio > 0.4:
		level = LevelComplex
	case wordCount > 15 || avg > 12 || ratio > 0.25:
		level = LevelMedium
	}

	return Complexity{
		Level:               level,
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		AvgWordsPerSentence: avg,
		LongWordRatio:       ratio,
	}
}

// topicCategories is the fixed topic taxonomy. Order fixes tie-breaks.
var topicCategories = []struct {
	Name     string
	Keywords []string
}{
	{"orders", []string{"order", "purchase", "buy", "checkout", "cart"}},
	{"shipping", []string{"shipping", "delivery", "tracking", "package", "shipped", "arrive"}},
	{"billing", []string{"billing", "payment", "charge", "invoice", "refund", "price"}},
	{"product", []string{"product", "item", "size", "color", "stock", "availability"}},
	{"account", []string{"account", "login", "password", "profile", "email", "settings"}},
	{"technical", []string{"error", "bug", "crash", "website", "app", "browser"}},
}

// ExtractTopics reports every topic category with at least one keyword hit,
// confidence = matched/total keywords, sorted descending by confidence.
func ExtractTopics(message string) []Topic {
	lower := strings.ToLower(message)

	var topics []Topic
	for _, cat := range topicCategories {
		matched := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if matched > 0 {
			topics = append(topics, Topic{
				Topic:      cat.Name,
				Confidence: float64(matched) / float64(len(cat.Keywords)),
			})
		}
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Confidence > topics[j].Confidence
	})
	return topics
}

// languageFingerprints holds a small set of high-frequency words per language.
var languageFingerprints = []struct {
	Name  string
	Words []string
}{
	{"english", []string{"the", "is", "and", "you", "my", "have", "with", "this", "can", "what"}},
	{"spanish", []string{"el", "la", "es", "que", "mi", "como", "por", "para", "con", "donde"}},
	{"french", []string{"le", "la", "est", "que", "mon", "comment", "pour", "avec", "vous", "bonjour"}},
}

// DetectLanguage guesses the message language by fingerprint-word overlap.
// Highest overlap ratio wins; no overlap defaults to english at 0.5.
func DetectLanguage(message string) Language {
	words := strings.Fields(strings.ToLower(message))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[strings.Trim(w, ".,!?;:¿¡")] = true
	}

	best := Language{Language: "english", Confidence: 0.5}
	bestRatio := 0.0
	for _, fp := range languageFingerprints {
		matched := 0
		for _, w := range fp.Words {
			if seen[w] {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(fp.Words))
		if ratio > bestRatio {
			bestRatio = ratio
			conf := 0.5 + ratio
			if conf > 0.95 {
				conf = 0.95
			}
			best = Language{Language: fp.Name, Confidence: conf}
		}
	}
	return best
}

// conversationStage labels where the conversation is based on its length.
func conversationStage(messageCount int) string {
	switch {
	case messageCount <= 1:
		return "opening"
	case messageCount <= 4:
		return "information_gathering"
	case messageCount <= 8:
		return "resolution"
	default:
		return "extended"
	}
}
