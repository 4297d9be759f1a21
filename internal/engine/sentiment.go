package engine

import (
	"container/list"
	"strings"
	"sync"
)

// Word lists for polarity counting. Matching is case-insensitive substring,
// so "broken!!!" still counts "broken".
var (
	positiveWords = []string{
		"great", "good", "excellent", "amazing", "awesome", "love",
		"perfect", "wonderful", "fantastic", "thank", "thanks", "happy",
		"pleased", "helpful", "appreciate",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "horrible", "hate", "broken",
		"furious", "angry", "upset", "disappointed", "frustrated", "worst",
		"useless", "unacceptable", "annoyed", "ridiculous",
	}
	neutralWords = []string{
		"okay", "fine", "alright", "average", "normal", "standard",
	}
)

// SentimentAnalyzer scores message polarity by word-list counting.
// Results are memoized per exact (lower-cased, trimmed) message string in a
// bounded LRU cache so repeated analyses of the same text are free and
// byte-identical.
type SentimentAnalyzer struct {
	mu       sync.Mutex
	capacity int
	order    *list.List               // front = most recently used
	entries  map[string]*list.Element // key -> element holding cacheEntry
}

type sentimentCacheEntry struct {
	key    string
	result Sentiment
}

// NewSentimentAnalyzer creates an analyzer with the given cache capacity.
// Capacity ≤ 0 falls back to 1024.
func NewSentimentAnalyzer(cacheSize int) *SentimentAnalyzer {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &SentimentAnalyzer{
		capacity: cacheSize,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Analyze classifies message polarity. The category with the strictly
// highest word count wins; ties default to neutral. Confidence is
// min(0.9, 0.6 + 0.1×winningCount), with a 0.5 floor when nothing matched.
func (a *SentimentAnalyzer) Analyze(message string) Sentiment {
	key := strings.ToLower(strings.TrimSpace(message))

	a.mu.Lock()
	if el, ok := a.entries[key]; ok {
		a.order.MoveToFront(el)
		result := el.Value.(*sentimentCacheEntry).result
		a.mu.Unlock()
		return result
	}
	a.mu.Unlock()

	result := scoreSentiment(key)

	a.mu.Lock()
	if el, ok := a.entries[key]; ok {
		// Raced with another caller; keep the existing entry.
		a.order.MoveToFront(el)
	} else {
		a.entries[key] = a.order.PushFront(&sentimentCacheEntry{key: key, result: result})
		for a.order.Len() > a.capacity {
			oldest := a.order.Back()
			a.order.Remove(oldest)
			delete(a.entries, oldest.Value.(*sentimentCacheEntry).key)
		}
	}
	a.mu.Unlock()

	return result
}

// CacheLen returns the number of memoized messages.
func (a *SentimentAnalyzer) CacheLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.order.Len()
}

func scoreSentiment(lower string) Sentiment {
	scores := SentimentScores{
		Positive: countHits(lower, positiveWords),
		Negative: countHits(lower, negativeWords),
		Neutral:  countHits(lower, neutralWords),
	}

	label := SentimentNeutral
	winning := scores.Neutral
	if scores.Positive > scores.Negative && scores.Positive > scores.Neutral {
		label = SentimentPositive
		winning = scores.Positive
	} else if scores.Negative > scores.Positive && scores.Negative > scores.Neutral {
		label = SentimentNegative
		winning = scores.Negative
	}

	if scores.Positive == 0 && scores.Negative == 0 && scores.Neutral == 0 {
		return Sentiment{Label: SentimentNeutral, Confidence: 0.5, Scores: scores}
	}

	confidence := 0.6 + 0.1*float64(winning)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return Sentiment{Label: label, Confidence: confidence, Scores: scores}
}

func countHits(lower string, words []string) int {
	count := 0
	for _, w := range words {
		count += strings.Count(lower, w)
	}
	return count
}
