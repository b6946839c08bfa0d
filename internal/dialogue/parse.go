package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
)

// numberWords are the spoken numbers understood for quantities, party
// sizes and hours. Index i holds the word for i+1.
var numberWords = []string{
	"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
	"eighteen", "nineteen", "twenty",
}

// minuteWords are the spoken minutes accepted after an hour word.
var minuteWords = []struct {
	word string
	n    int
}{
	{"thirty", 30}, {"forty", 40}, {"fifty", 50},
}

func wordNumber(tok string) (int, bool) {
	for i, w := range numberWords {
		if tok == w {
			return i + 1, true
		}
	}
	return 0, false
}

// tokenize lowercases text, splits on whitespace and trims punctuation.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func hasToken(tokens []string, word string) bool {
	for _, t := range tokens {
		if t == word {
			return true
		}
	}
	return false
}

// ─── Items ───────────────────────────────────────────────────────────────────

// itemRequest is an item as spoken, before menu matching.
type itemRequest struct {
	Name     string
	Quantity int
}

// quantity reads a digit or number-word token as a quantity of at least one.
func quantity(tok string) (int, bool) {
	if n, ok := wordNumber(tok); ok {
		return n, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parseItemRequests scans for "<quantity> <word>" pairs. With no pair at
// all, the whole phrase becomes a single item of quantity one.
func parseItemRequests(text string) []itemRequest {
	tokens := tokenize(text)
	var items []itemRequest

	for i := 0; i < len(tokens)-1; {
		q, ok := quantity(tokens[i])
		if _, nextIsQty := quantity(tokens[i+1]); ok && !nextIsQty {
			items = append(items, itemRequest{Name: tokens[i+1], Quantity: q})
			i += 2
			continue
		}
		i++
	}

	if len(items) == 0 && len(tokens) > 0 {
		items = append(items, itemRequest{Name: strings.Join(tokens, " "), Quantity: 1})
	}
	return items
}

// matchMenuItem finds the first menu item whose lowercased name equals,
// contains, or is contained in name.
func matchMenuItem(name string, menu []backend.MenuItem) (backend.MenuItem, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return backend.MenuItem{}, false
	}
	for _, item := range menu {
		itemName := strings.ToLower(item.Name)
		if name == itemName || strings.Contains(itemName, name) || strings.Contains(name, itemName) {
			return item, true
		}
	}
	return backend.MenuItem{}, false
}

// resolveItems maps spoken items onto the menu. Unmatched items are kept
// with a zero id and price.
func resolveItems(reqs []itemRequest, menu []backend.MenuItem) []backend.OrderItem {
	items := make([]backend.OrderItem, 0, len(reqs))
	for _, r := range reqs {
		if m, ok := matchMenuItem(r.Name, menu); ok {
			items = append(items, backend.OrderItem{MenuItemID: m.ID, Name: m.Name, Price: m.Price, Quantity: r.Quantity})
			continue
		}
		items = append(items, backend.OrderItem{Name: r.Name, Quantity: r.Quantity})
	}
	return items
}

func totalQuantity(items []backend.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// ─── Order type ──────────────────────────────────────────────────────────────

// parseOrderType detects how the caller wants the order fulfilled.
func parseOrderType(t string) (string, bool) {
	switch {
	case containsAny(t, []string{"pickup", "pick up", "to go"}):
		return backend.OrderTypePickup, true
	case containsAny(t, []string{"delivery", "deliver"}):
		return backend.OrderTypeDelivery, true
	case containsAny(t, []string{"dine in", "dine-in", "eat in", "for here"}):
		return backend.OrderTypeDineIn, true
	}
	return "", false
}

// ─── Names ───────────────────────────────────────────────────────────────────

var namePrefixes = []string{"my name is ", "name is ", "this is ", "it's ", "it is ", "i'm ", "i am ", "under "}

// parseName extracts a customer name, dropping lead-ins like "my name is".
func parseName(text string) string {
	name := strings.TrimSpace(text)
	lower := strings.ToLower(name)
	for _, p := range namePrefixes {
		if strings.HasPrefix(lower, p) {
			name = strings.TrimSpace(name[len(p):])
			break
		}
	}
	return strings.TrimRight(name, ".!?,")
}

// ─── Party size ──────────────────────────────────────────────────────────────

var digitsPattern = regexp.MustCompile(`\b(\d+)\b`)

// parsePartySize reads a head count, trying number words before digits.
func parsePartySize(text string) (int, bool) {
	tokens := tokenize(text)
	for i, w := range numberWords {
		if hasToken(tokens, w) {
			return i + 1, true
		}
	}
	if m := digitsPattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ─── Dates ───────────────────────────────────────────────────────────────────

const isoDate = "2006-01-02"

var monthDatePattern = regexp.MustCompile(
	`\b(january|february|march|april|may|june|july|august|september|october|november|december|` +
		`jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// parseSpokenDate resolves "today", "tomorrow", an ISO date, or a month
// name and day ("December 31st") into an ISO date. Month-name dates that
// already passed this year roll over to next year.
func parseSpokenDate(text string, now time.Time) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(t, "today"):
		return today.Format(isoDate), true
	case strings.Contains(t, "tomorrow"):
		return today.AddDate(0, 0, 1).Format(isoDate), true
	}

	if raw := isoDatePattern.FindString(t); raw != "" {
		if d, err := time.Parse(isoDate, raw); err == nil {
			return d.Format(isoDate), true
		}
		return "", false
	}

	if m := monthDatePattern.FindStringSubmatch(t); m != nil {
		month, ok := monthAbbrev[m[1]]
		if !ok {
			d, err := time.Parse("January", strings.ToUpper(m[1][:1])+m[1][1:])
			if err != nil {
				return "", false
			}
			month = d.Month()
		}
		day, _ := strconv.Atoi(m[2])
		d := time.Date(today.Year(), month, day, 0, 0, 0, 0, now.Location())
		if d.Month() != month || d.Day() != day {
			return "", false
		}
		if d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d.Format(isoDate), true
	}

	return "", false
}

// ─── Times ───────────────────────────────────────────────────────────────────

type timeParse int

const (
	timeMissing timeParse = iota
	timeInvalid
	timeOK
)

var (
	bareHourPattern = regexp.MustCompile(`\b(\d{1,2})\s*(?:pm|am|p|a)?\b`)
	pmPattern       = regexp.MustCompile(`(?:^|[\s\d])p\.?\s?m?\b`)
	amPattern       = regexp.MustCompile(`(?:^|[\s\d])a\.?\s?m?\b`)
)

// parseSpokenTime turns "7:30 pm", "8pm", "19:30" or "seven thirty pm" into
// a 24-hour "HH:MM". Attempts, in order: a clock pattern, a bare hour, then
// an hour word optionally followed by a minute word.
func parseSpokenTime(text string) (string, timeParse) {
	t := strings.ToLower(strings.TrimSpace(text))
	hour, minute := -1, 0

	if m := clockPattern.FindStringSubmatch(t); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else if m := bareHourPattern.FindStringSubmatch(t); m != nil {
		hour, _ = strconv.Atoi(m[1])
	} else {
		tokens := tokenize(t)
		for i, w := range numberWords[:12] {
			if hasToken(tokens, w) {
				hour = i + 1
				break
			}
		}
		if hour >= 0 {
			for _, mw := range minuteWords {
				if hasToken(tokens, mw.word) {
					minute = mw.n
					break
				}
			}
		}
	}

	if hour < 0 {
		return "", timeMissing
	}

	if pmPattern.MatchString(t) && hour < 12 {
		hour += 12
	}
	if amPattern.MatchString(t) && hour == 12 {
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return "", timeInvalid
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), timeOK
}
