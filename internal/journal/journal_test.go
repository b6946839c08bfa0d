package journal_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/HendryAvila/hostline/internal/journal"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *journal.Store {
	t.Helper()
	s, err := journal.New(journal.Config{DataDir: t.TempDir(), MaxHistory: 10})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func turnAt(caller, text, intent string, minute int) dialogue.TurnRecord {
	return dialogue.TurnRecord{
		CallerKey:  caller,
		Text:       text,
		Intent:     intent,
		Confidence: 0.85,
		Response:   "ok",
		At:         base.Add(time.Duration(minute) * time.Minute),
	}
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := journal.New(journal.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "journal.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := journal.New(journal.Config{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordTurn(ctx, turnAt("+1", "hello", "small_talk", 0)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = journal.New(journal.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalTurns != 1 {
		t.Errorf("TotalTurns = %d, want 1", stats.TotalTurns)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := journal.DefaultConfig()
	if filepath.Base(cfg.DataDir) != ".hostline" {
		t.Errorf("DataDir = %q, want ~/.hostline", cfg.DataDir)
	}
	if cfg.DatabaseName != "journal.db" || cfg.MaxHistory <= 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

// ─── Turns and history ──────────────────────────────────────────────────────

func TestHistory_NewestFirstPerCaller(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := turnAt("+1", "i want to order", "order", 0)
	rec.CurrentIntent = "ORDER"
	rec.Step = "ASK_ITEMS"
	for _, r := range []dialogue.TurnRecord{
		rec,
		turnAt("+1", "two burgers", "order", 1),
		turnAt("+2", "hello", "small_talk", 2),
	} {
		if err := s.RecordTurn(ctx, r); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}

	h, err := s.History(ctx, "+1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(h.Turns))
	}
	if h.Turns[0].Text != "two burgers" || h.Turns[1].Text != "i want to order" {
		t.Errorf("order = %q, %q", h.Turns[0].Text, h.Turns[1].Text)
	}
	if h.Turns[0].CurrentIntent != nil || h.Turns[0].Step != nil {
		t.Errorf("empty session fields should be null: %+v", h.Turns[0])
	}
	first := h.Turns[1]
	if first.CurrentIntent == nil || *first.CurrentIntent != "ORDER" || first.Step == nil || *first.Step != "ASK_ITEMS" {
		t.Errorf("session fields lost: %+v", first)
	}
	if first.ID == "" || first.CreatedAt != "2026-10-15 12:00:00" {
		t.Errorf("id=%q created_at=%q", first.ID, first.CreatedAt)
	}
	if h.Outcomes == nil || len(h.Outcomes) != 0 {
		t.Errorf("outcomes = %v, want empty slice", h.Outcomes)
	}
}

func TestHistory_LimitIsCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		if err := s.RecordTurn(ctx, turnAt("+1", "hi", "small_talk", i)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		limit int
		want  int
	}{
		{3, 3},
		{0, 10},
		{100, 10},
	}
	for _, tt := range tests {
		h, err := s.History(ctx, "+1", tt.limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(h.Turns) != tt.want {
			t.Errorf("History(limit=%d) = %d turns, want %d", tt.limit, len(h.Turns), tt.want)
		}
	}
}

// ─── Outcomes and caller lookup ─────────────────────────────────────────────

func TestLastCustomerName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name, err := s.LastCustomerName(ctx, "+1")
	if err != nil || name != "" {
		t.Fatalf("unknown caller: %q, %v", name, err)
	}

	outcomes := []dialogue.Outcome{
		{CallerKey: "+1", Kind: dialogue.OutcomeOrder, Reference: "ORD-1", CustomerName: "John", Summary: "a", At: base},
		{CallerKey: "+1", Kind: dialogue.OutcomeReservation, Reference: "RES-1", CustomerName: "Johnny", Summary: "b", At: base.Add(time.Hour)},
		{CallerKey: "+1", Kind: dialogue.OutcomeOrder, Reference: "ORD-2", CustomerName: "Guest", Summary: "c", At: base.Add(2 * time.Hour)},
		{CallerKey: "+2", Kind: dialogue.OutcomeOrder, Reference: "ORD-3", CustomerName: "Ana", Summary: "d", At: base.Add(3 * time.Hour)},
	}
	for _, o := range outcomes {
		if err := s.RecordOutcome(ctx, o); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	name, err = s.LastCustomerName(ctx, "+1")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Johnny" {
		t.Errorf("LastCustomerName = %q, want Johnny", name)
	}

	h, err := s.History(ctx, "+1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Outcomes) != 3 || h.Outcomes[0].Reference != "ORD-2" {
		t.Errorf("outcomes = %+v", h.Outcomes)
	}
}

// ─── Stats ───────────────────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, r := range []dialogue.TurnRecord{
		turnAt("+1", "i want to order", "order", 0),
		turnAt("+1", "John", "order", 1),
		turnAt("+2", "book a table", "reservation", 2),
		turnAt("+3", "hello", "small_talk", 3),
	} {
		if err := s.RecordTurn(ctx, r); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	_ = s.RecordOutcome(ctx, dialogue.Outcome{CallerKey: "+1", Kind: dialogue.OutcomeOrder, Reference: "ORD-1", Summary: "x", At: base})
	_ = s.RecordOutcome(ctx, dialogue.Outcome{CallerKey: "+2", Kind: dialogue.OutcomeReservation, Reference: "RES-1", Summary: "y", At: base})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalTurns != 4 || stats.TotalCallers != 3 || stats.Orders != 1 || stats.Reservations != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Intents["order"] != 2 || stats.Intents["reservation"] != 1 || stats.Intents["small_talk"] != 1 {
		t.Errorf("intents = %v", stats.Intents)
	}
}

// ─── Integration with the agent ─────────────────────────────────────────────

type stubBackend struct{}

func (stubBackend) ListMenu(context.Context) ([]backend.MenuItem, error) { return nil, nil }
func (stubBackend) Categories(context.Context) ([]string, error)         { return nil, nil }

func (stubBackend) CreateOrder(context.Context, backend.OrderRequest) (*backend.Order, error) {
	return &backend.Order{OrderNumber: "ORD-1"}, nil
}

func (stubBackend) CheckAvailability(context.Context, backend.AvailabilityRequest) (*backend.Availability, error) {
	return &backend.Availability{Available: true}, nil
}

func (stubBackend) CreateReservation(_ context.Context, req backend.ReservationRequest) (*backend.Reservation, error) {
	return &backend.Reservation{ReservationNumber: "RES-1", PartySize: req.PartySize}, nil
}

func TestAgent_ReturningCallerIsRemembered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	agent := dialogue.New(dialogue.NewMemoryStore(), stubBackend{},
		dialogue.WithRecorder(s), dialogue.WithCallerDirectory(s))

	for _, u := range []string{"book a table", "two", "tomorrow", "7:30 pm", "Maria"} {
		agent.HandleMessage(ctx, u, "+15550001")
	}

	name, err := s.LastCustomerName(ctx, "+15550001")
	if err != nil || name != "Maria" {
		t.Fatalf("LastCustomerName = %q, %v, want Maria", name, err)
	}

	var res dialogue.Result
	for _, u := range []string{"book a table for 3", "tomorrow", "8 pm"} {
		res = agent.HandleMessage(ctx, u, "+15550001")
	}
	if res.Session.Step != nil {
		t.Errorf("returning caller was asked for a name again: step=%s", *res.Session.Step)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalTurns != 8 || stats.Reservations != 2 {
		t.Errorf("stats = %+v, want 8 turns and 2 reservations", stats)
	}
}
