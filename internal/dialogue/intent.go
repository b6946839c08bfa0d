// Package dialogue implements the phone assistant's conversation state
// machine: a keyword intent classifier, a per-caller session store, and the
// order and reservation flows that collect slots turn by turn.
//
// Design principles:
//   - SRP: classifier, session store, flows and canned replies in separate files
//   - DIP: the Agent depends on backend contracts and a SessionStore, not on HTTP
//   - Every failure is conversational: the caller always gets a reply
package dialogue

import (
	"regexp"
	"strconv"
	"strings"
)

// --- Intent type enum ---

// IntentType is what the caller wants from one utterance.
type IntentType string

const (
	IntentNone         IntentType = ""
	IntentOrder        IntentType = "ORDER"
	IntentReservation  IntentType = "RESERVATION"
	IntentMenuQuestion IntentType = "MENU_QUESTION"
	IntentHours        IntentType = "HOURS"
	IntentFAQ          IntentType = "FAQ"
	IntentSmallTalk    IntentType = "SMALL_TALK"
	IntentUnknown      IntentType = "UNKNOWN"
)

// Label is the lowercase name reported to callers of HandleMessage.
func (t IntentType) Label() string {
	if t == IntentNone {
		return strings.ToLower(string(IntentUnknown))
	}
	return strings.ToLower(string(t))
}

// Intent is the classifier's verdict for a single utterance.
type Intent struct {
	Type       IntentType     `json:"type"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
}

// EntityPartySize is the entity key for "for 4"-style party sizes.
const EntityPartySize = "partySize"

// PartySize returns the extracted party size, if any.
func (i Intent) PartySize() (int, bool) {
	n, ok := i.Entities[EntityPartySize].(int)
	return n, ok
}

// --- Keyword tables ---

var (
	smallTalkKeywords = []string{"hi", "hello", "hey", "how are you", "what's up", "thank you", "thanks"}
	orderTypeKeywords = []string{"pickup", "pick up", "delivery", "deliver", "to go"}
	dateKeywords      = []string{"today", "tomorrow"}
)

// keywordRule maps a keyword bucket to an intent. Rules are checked in
// order and the first bucket with a hit wins.
type keywordRule struct {
	intent     IntentType
	confidence float64
	keywords   []string
	partySize  bool
}

var keywordRules = []keywordRule{
	{
		intent:     IntentOrder,
		confidence: 0.85,
		keywords:   []string{"order", "pickup", "pick up", "takeout", "take out", "delivery", "place an order", "to go"},
		partySize:  true,
	},
	{
		intent:     IntentReservation,
		confidence: 0.9,
		keywords:   []string{"reservation", "book a table", "book table", "reserve", "party of", "table for", "booking"},
		partySize:  true,
	},
	{
		intent:     IntentMenuQuestion,
		confidence: 0.8,
		keywords:   []string{"menu", "do you have", "what do you have", "specials", "special", "dish", "burger", "breakfast", "lunch", "dinner"},
	},
	{
		intent:     IntentHours,
		confidence: 0.85,
		keywords:   []string{"hours", "open", "close", "closing", "time do you", "when are you open", "when do you close"},
	},
	{
		intent:     IntentFAQ,
		confidence: 0.8,
		keywords:   []string{"where are you located", "address", "location", "parking", "do you have parking"},
	},
}

var (
	isoDatePattern   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	clockPattern     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemPattern  = regexp.MustCompile(`\b\d{1,2}\s*(am|pm)\b`)
	partySizePattern = regexp.MustCompile(`\bfor (\d+)\b`)
)

// --- Classifier ---

// Classify maps an utterance to an Intent. It is pure: the same text
// always yields the same Intent.
//
// Order matters. Greetings are detected first so they are never mistaken
// for anything else, then bare slot answers ("pickup", "tomorrow",
// "7:30") are biased toward the flow that asks for them, and only then are
// the generic keyword buckets consulted.
func Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Intent{Type: IntentUnknown, Confidence: 0, Entities: map[string]any{}}
	}

	if containsAny(t, smallTalkKeywords) {
		return Intent{Type: IntentSmallTalk, Confidence: 0.8, Entities: map[string]any{}}
	}
	if containsAny(t, orderTypeKeywords) {
		return Intent{Type: IntentOrder, Confidence: 0.7, Entities: extractPartySize(t)}
	}
	if LooksLikeDate(t) || LooksLikeTime(t) {
		return Intent{Type: IntentReservation, Confidence: 0.7, Entities: extractPartySize(t)}
	}

	for _, rule := range keywordRules {
		if !containsAny(t, rule.keywords) {
			continue
		}
		entities := map[string]any{}
		if rule.partySize {
			entities = extractPartySize(t)
		}
		return Intent{Type: rule.intent, Confidence: rule.confidence, Entities: entities}
	}

	return Intent{Type: IntentUnknown, Confidence: 0.3, Entities: map[string]any{}}
}

// LooksLikeDate reports whether lowercased text mentions a date.
func LooksLikeDate(t string) bool {
	return containsAny(t, dateKeywords) || isoDatePattern.MatchString(t)
}

// LooksLikeTime reports whether lowercased text mentions a clock time
// ("7:30", "19:00", "7pm", "7 pm").
func LooksLikeTime(t string) bool {
	return clockPattern.MatchString(t) || meridiemPattern.MatchString(t)
}

func extractPartySize(t string) map[string]any {
	entities := map[string]any{}
	if m := partySizePattern.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			entities[EntityPartySize] = n
		}
	}
	return entities
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
