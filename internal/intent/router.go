package intent

import (
	"strings"

	"PriceSentinel/internal/model"
)

// punctuation is the ASCII punctuation set stripped before tokenizing.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Default keyword lists, used when the configuration names none.
var (
	// DefaultTopicKeywords name the asset.
	DefaultTopicKeywords = []string{"bitcoin", "btc"}
	// DefaultActionKeywords ask for a price outlook.
	DefaultActionKeywords = []string{"price", "prediction", "forecast", "trend", "signal"}
)

// KeywordSet is a set of lower-case whole-word tokens.
type KeywordSet map[string]struct{}

// NewKeywordSet builds a set, lower-casing each word.
func NewKeywordSet(words ...string) KeywordSet {
	s := make(KeywordSet, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

func (s KeywordSet) any(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := s[t]; ok {
			return true
		}
	}
	return false
}

// Router classifies messages by keyword membership. A message is a forecast
// request only when it names both a topic and an action.
type Router struct {
	Topic  KeywordSet
	Action KeywordSet
}

// NewRouter builds a Router from two keyword lists.
func NewRouter(topic, action []string) *Router {
	return &Router{Topic: NewKeywordSet(topic...), Action: NewKeywordSet(action...)}
}

// DefaultRouter matches bitcoin price questions.
func DefaultRouter() *Router {
	return NewRouter(DefaultTopicKeywords, DefaultActionKeywords)
}

// Classify returns IntentForecast when msg holds at least one topic token and
// one action token, and IntentGeneral otherwise.
func (r *Router) Classify(msg string) model.Intent {
	tokens := Tokenize(msg)
	if r.Topic.any(tokens) && r.Action.any(tokens) {
		return model.IntentForecast
	}
	return model.IntentGeneral
}

// Tokenize drops ASCII punctuation, lower-cases and splits on whitespace.
func Tokenize(msg string) []string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, msg)
	return strings.Fields(strings.ToLower(clean))
}
