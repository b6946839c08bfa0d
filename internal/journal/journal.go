// Package journal keeps a persistent call log for the phone assistant.
//
// Every handled turn and every completed order or reservation is written to
// a SQLite database. The journal also answers "who is this caller?" so a
// returning caller is not asked for their name again.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeLayout is how timestamps are stored. It sorts lexically.
const timeLayout = "2006-01-02 15:04:05"

// ─── Types ───────────────────────────────────────────────────────────────────

// Turn is one journaled utterance and the reply it got.
type Turn struct {
	ID            string  `json:"id"`
	CallerKey     string  `json:"caller_key"`
	Text          string  `json:"text"`
	Intent        string  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	Response      string  `json:"response"`
	CurrentIntent *string `json:"current_intent,omitempty"`
	Step          *string `json:"step,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// Outcome is a journaled order or reservation.
type Outcome struct {
	ID           int64  `json:"id"`
	CallerKey    string `json:"caller_key"`
	Kind         string `json:"kind"`
	Reference    string `json:"reference"`
	CustomerName string `json:"customer_name,omitempty"`
	Summary      string `json:"summary"`
	CreatedAt    string `json:"created_at"`
}

// History is the recent activity of one caller.
type History struct {
	CallerKey string    `json:"caller_key"`
	Turns     []Turn    `json:"turns"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Stats holds aggregate journal statistics.
type Stats struct {
	TotalTurns   int            `json:"total_turns"`
	TotalCallers int            `json:"total_callers"`
	Orders       int            `json:"orders"`
	Reservations int            `json:"reservations"`
	Intents      map[string]int `json:"intents"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal configuration.
type Config struct {
	DataDir      string
	MaxHistory   int
	DatabaseName string
}

// DefaultConfig returns the default configuration for the journal.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".hostline"),
		MaxHistory:   50,
		DatabaseName: "journal.db",
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed call journal. It implements
// dialogue.Recorder and dialogue.CallerDirectory.
type Store struct {
	db  *sql.DB
	cfg Config
}

var (
	_ dialogue.Recorder        = (*Store)(nil)
	_ dialogue.CallerDirectory = (*Store)(nil)
)

// New creates a new journal Store.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "journal.db"
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 50
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.DatabaseName)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS turns (
			id             TEXT PRIMARY KEY,
			caller_key     TEXT NOT NULL,
			text           TEXT NOT NULL,
			intent         TEXT NOT NULL,
			confidence     REAL NOT NULL DEFAULT 0,
			response       TEXT NOT NULL,
			current_intent TEXT,
			step           TEXT,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_caller ON turns(caller_key, created_at);
		CREATE INDEX IF NOT EXISTS idx_turns_intent ON turns(intent);

		CREATE TABLE IF NOT EXISTS outcomes (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			caller_key    TEXT NOT NULL,
			kind          TEXT NOT NULL,
			reference     TEXT NOT NULL,
			customer_name TEXT,
			summary       TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_caller ON outcomes(caller_key, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// RecordTurn appends a turn to the journal.
func (s *Store) RecordTurn(ctx context.Context, t dialogue.TurnRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (id, caller_key, text, intent, confidence, response, current_intent, step, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), t.CallerKey, t.Text, t.Intent, t.Confidence, t.Response,
		nullableString(t.CurrentIntent), nullableString(t.Step), formatTime(t.At),
	)
	if err != nil {
		return fmt.Errorf("journal: record turn: %w", err)
	}
	return nil
}

// RecordOutcome appends a completed order or reservation.
func (s *Store) RecordOutcome(ctx context.Context, o dialogue.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (caller_key, kind, reference, customer_name, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.CallerKey, o.Kind, o.Reference, nullableString(o.CustomerName), o.Summary, formatTime(o.At),
	)
	if err != nil {
		return fmt.Errorf("journal: record outcome: %w", err)
	}
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// LastCustomerName returns the name on the caller's most recent order or
// reservation, or "" when the caller is new. The "Guest" placeholder is
// never returned.
func (s *Store) LastCustomerName(ctx context.Context, callerKey string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT customer_name FROM outcomes
		 WHERE caller_key = ? AND customer_name IS NOT NULL AND customer_name != '' AND customer_name != 'Guest'
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		callerKey,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("journal: last customer name: %w", err)
	}
	return name, nil
}

// History returns the caller's most recent turns and outcomes, newest
// first. limit is capped at the configured maximum.
func (s *Store) History(ctx context.Context, callerKey string, limit int) (*History, error) {
	if limit <= 0 || limit > s.cfg.MaxHistory {
		limit = s.cfg.MaxHistory
	}

	h := &History{CallerKey: callerKey, Turns: []Turn{}, Outcomes: []Outcome{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, caller_key, text, intent, confidence, response, current_intent, step, created_at
		 FROM turns WHERE caller_key = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		callerKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query turns: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.CallerKey, &t.Text, &t.Intent, &t.Confidence, &t.Response,
			&t.CurrentIntent, &t.Step, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan turn: %w", err)
		}
		h.Turns = append(h.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate turns: %w", err)
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT id, caller_key, kind, reference, COALESCE(customer_name, ''), summary, created_at
		 FROM outcomes WHERE caller_key = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		callerKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query outcomes: %w", err)
	}
	defer func() { _ = orows.Close() }()
	for orows.Next() {
		var o Outcome
		if err := orows.Scan(&o.ID, &o.CallerKey, &o.Kind, &o.Reference, &o.CustomerName, &o.Summary, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan outcome: %w", err)
		}
		h.Outcomes = append(h.Outcomes, o)
	}
	if err := orows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate outcomes: %w", err)
	}

	return h, nil
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate journal statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Intents: map[string]int{}}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM turns", &stats.TotalTurns},
		{"SELECT COUNT(DISTINCT caller_key) FROM turns", &stats.TotalCallers},
		{"SELECT COUNT(*) FROM outcomes WHERE kind = 'order'", &stats.Orders},
		{"SELECT COUNT(*) FROM outcomes WHERE kind = 'reservation'", &stats.Reservations},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("journal: stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT intent, COUNT(*) FROM turns GROUP BY intent")
	if err != nil {
		return nil, fmt.Errorf("journal: intent stats: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err == nil {
			stats.Intents[intent] = n
		}
	}
	return stats, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}
