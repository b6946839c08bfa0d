package dialogue

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       IntentType
		confidence float64
	}{
		{"empty", "", IntentUnknown, 0},
		{"whitespace", "   ", IntentUnknown, 0},
		{"greeting", "hi there", IntentSmallTalk, 0.8},
		{"thanks", "Thanks a lot", IntentSmallTalk, 0.8},
		{"bare order type", "pickup", IntentOrder, 0.7},
		{"delivery please", "delivery please", IntentOrder, 0.7},
		{"bare date", "tomorrow", IntentReservation, 0.7},
		{"iso date", "2026-12-31", IntentReservation, 0.7},
		{"clock time", "7:30", IntentReservation, 0.7},
		{"meridiem time", "8 pm", IntentReservation, 0.7},
		{"order keyword", "I want to order", IntentOrder, 0.85},
		{"takeout", "can I get takeout", IntentOrder, 0.85},
		{"reservation keyword", "book a table", IntentReservation, 0.9},
		{"menu", "what's on the menu", IntentMenuQuestion, 0.8},
		{"dish", "do you have burgers", IntentMenuQuestion, 0.8},
		{"hours", "what are your hours", IntentHours, 0.85},
		{"closing", "when do you close", IntentHours, 0.85},
		{"address", "what's the address", IntentFAQ, 0.8},
		{"parking", "is there parking", IntentFAQ, 0.8},
		{"nothing", "blah blah", IntentUnknown, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Type != tt.want {
				t.Errorf("Classify(%q).Type = %s, want %s", tt.text, got.Type, tt.want)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Classify(%q).Confidence = %v, want %v", tt.text, got.Confidence, tt.confidence)
			}
			if got.Entities == nil {
				t.Errorf("Classify(%q).Entities is nil, want empty map", tt.text)
			}
		})
	}
}

func TestClassify_TableForFourTomorrow(t *testing.T) {
	got := Classify("table for 4 tomorrow")
	if got.Type != IntentReservation {
		t.Fatalf("Type = %s, want RESERVATION", got.Type)
	}
	n, ok := got.PartySize()
	if !ok || n != 4 {
		t.Errorf("PartySize = %d, %v, want 4, true", n, ok)
	}
}

func TestClassify_PartySizeOnReservationKeyword(t *testing.T) {
	got := Classify("I need a reservation for 6")
	if got.Type != IntentReservation || got.Confidence != 0.9 {
		t.Fatalf("got %s/%v, want RESERVATION/0.9", got.Type, got.Confidence)
	}
	if n, _ := got.PartySize(); n != 6 {
		t.Errorf("PartySize = %d, want 6", n)
	}
}

func TestClassify_NoPartySizeOnMenu(t *testing.T) {
	got := Classify("what's on the menu for 2")
	if _, ok := got.PartySize(); ok {
		t.Errorf("menu question should not carry a party size, got %v", got.Entities)
	}
}

func TestLooksLikeTime(t *testing.T) {
	tests := map[string]bool{
		"7:30":         true,
		"19:00":        true,
		"7pm":          true,
		"7 pm":         true,
		"four people":  false,
		"party of 4":   false,
		"seven thirty": false,
	}
	for in, want := range tests {
		if got := LooksLikeTime(in); got != want {
			t.Errorf("LooksLikeTime(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIntentType_Label(t *testing.T) {
	if got := IntentMenuQuestion.Label(); got != "menu_question" {
		t.Errorf("Label = %q, want menu_question", got)
	}
	if got := IntentNone.Label(); got != "unknown" {
		t.Errorf("IntentNone.Label = %q, want unknown", got)
	}
}
