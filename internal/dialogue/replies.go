package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
)

// Profile is the restaurant-specific wording used in replies.
type Profile struct {
	Name           string
	SpokenAddress  string
	SpokenHours    string
	ParkingInfo    string
	MenuCategories []string
}

// DefaultProfile describes White Palace Grill.
func DefaultProfile() Profile {
	return Profile{
		Name:          "White Palace Grill",
		SpokenAddress: "fourteen fifty five South Canal Street in Chicago",
		SpokenHours:   "twenty four hours a day, seven days a week",
		ParkingInfo: "White Palace Grill has street parking nearby and some paid lots in the area. " +
			"Parking availability can vary depending on the time of day.",
		MenuCategories: []string{
			"breakfast", "burgers", "sandwiches", "entrees", "salads", "soups", "sides", "desserts", "beverages",
		},
	}
}

// --- Fixed replies ---

const (
	replyCancelled = "Okay, I've cancelled this. I can help you place an order or make a reservation if you'd like."
	replyUnknown   = "Sorry, I'm not sure what you meant. " +
		"You can ask to place an order, make a reservation, or ask about the menu."
	replyNoCategories = "I can help with the menu, but I could not load the categories right now."

	// maxSpokenItems caps how many dishes are read out for one category.
	maxSpokenItems = 5
)

var cancelKeywords = []string{"never mind", "cancel", "stop", "i changed my mind"}

func isCancellation(t string) bool {
	return containsAny(t, cancelKeywords)
}

// --- Static handlers ---

func (a *Agent) replyHours() string {
	return fmt.Sprintf("%s is open %s, at %s.", a.profile.Name, a.profile.SpokenHours, a.profile.SpokenAddress)
}

func (a *Agent) replyFAQ(t string) string {
	if strings.Contains(t, "parking") {
		return a.profile.ParkingInfo
	}
	return fmt.Sprintf("%s is located at %s. We are open %s.", a.profile.Name, a.profile.SpokenAddress, a.profile.SpokenHours)
}

func (a *Agent) replySmallTalk() string {
	return fmt.Sprintf("Hello from %s. "+
		"I can help you place an order, make a reservation, or answer questions about the menu.", a.profile.Name)
}

func (a *Agent) replyMenuFallback() string {
	return fmt.Sprintf("I can help with the menu. We have %s.", joinSpoken(a.profile.MenuCategories, "and"))
}

// replyMenu lists the menu categories, or the dishes of one category when
// the caller names it.
func (a *Agent) replyMenu(ctx context.Context, t string) string {
	categories, err := a.menu.Categories(ctx)
	if err != nil {
		a.backendFailed("menu_categories", err)
		return a.replyMenuFallback()
	}
	if len(categories) == 0 {
		return replyNoCategories
	}

	if cat := mentionedCategory(t, categories); cat != "" {
		if reply, ok := a.describeCategory(ctx, cat); ok {
			return reply
		}
	}
	return fmt.Sprintf("Our menu has %s. Which category are you interested in?", joinSpoken(categories, "and"))
}

func (a *Agent) describeCategory(ctx context.Context, category string) (string, bool) {
	menu, err := a.menu.ListMenu(ctx)
	if err != nil {
		a.backendFailed("list_menu", err)
		return "", false
	}

	var phrases []string
	for _, item := range menu {
		if !strings.EqualFold(item.Category, category) || (item.Available != nil && !*item.Available) {
			continue
		}
		phrases = append(phrases, fmt.Sprintf("%s for %.2f dollars", item.Name, item.Price))
		if len(phrases) == maxSpokenItems {
			break
		}
	}
	if len(phrases) == 0 {
		return "", false
	}
	return fmt.Sprintf("Our %s include %s. Would you like to place an order?", category, joinSpoken(phrases, "and")), true
}

// mentionedCategory returns the first category named in t, accepting the
// singular form ("burger" for "burgers").
func mentionedCategory(t string, categories []string) string {
	tokens := tokenize(t)
	for _, c := range categories {
		lc := strings.ToLower(c)
		if hasToken(tokens, lc) || hasToken(tokens, strings.TrimSuffix(lc, "s")) {
			return c
		}
	}
	return ""
}

// --- Formatting helpers ---

// joinSpoken renders a list the way it is said aloud: "a", "a and b",
// "a, b, and c".
func joinSpoken(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", " + conj + " " + items[len(items)-1]
}

// summarizeItems renders "2 x Burger, 1 x Coffee".
func summarizeItems(items []backend.OrderItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%d x %s", it.Quantity, it.Name)
	}
	return strings.Join(parts, ", ")
}

var readyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// spokenReadyTime turns a backend timestamp into "6:45 PM". Anything that
// does not parse is spoken as given.
func spokenReadyTime(raw string) string {
	for _, layout := range readyTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return raw
}

// spokenClock trims seconds from "19:30:00".
func spokenClock(raw string) string {
	if m, err := backend.ParseClock(raw); err == nil {
		return backend.FormatClock(m)
	}
	return raw
}
