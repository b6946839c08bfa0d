package dialogue

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/rs/zerolog"
)

// --- Flow step enum ---

// Step identifies a position inside the active flow.
type Step string

const (
	StepNone Step = ""

	// Order flow.
	StepAskItems    Step = "ASK_ITEMS"
	StepAskType     Step = "ASK_TYPE"
	StepAskName     Step = "ASK_NAME"
	StepCreateOrder Step = "CREATE_ORDER"

	// Reservation flow. ASK_NAME is shared with the order flow.
	StepAskParty  Step = "ASK_PARTY"
	StepAskDate   Step = "ASK_DATE"
	StepAskTime   Step = "ASK_TIME"
	StepCreateRes Step = "CREATE_RES"
)

// AnonymousCaller is the session key used when the caller id is unknown.
const AnonymousCaller = "anonymous"

// CallerKey normalizes a caller id into a session key.
func CallerKey(callerID string) string {
	if k := strings.TrimSpace(callerID); k != "" {
		return k
	}
	return AnonymousCaller
}

// --- Session ---

// Session is everything remembered about one caller between turns.
// CurrentIntent is set iff Step is set.
type Session struct {
	CurrentIntent        IntentType          `json:"currentIntent,omitempty"`
	Step                 Step                `json:"step,omitempty"`
	OrderItems           []backend.OrderItem `json:"orderItems"`
	OrderType            string              `json:"orderType,omitempty"`
	CustomerName         string              `json:"customerName,omitempty"`
	ReservationPartySize int                 `json:"reservationPartySize,omitempty"`
	ReservationDate      string              `json:"reservationDate,omitempty"`
	ReservationTime      string              `json:"reservationTime,omitempty"`
}

// Reset returns every field to its default.
func (s *Session) Reset() {
	*s = Session{OrderItems: []backend.OrderItem{}}
}

// begin enters a flow at its first step with all slots cleared.
func (s *Session) begin(intent IntentType, step Step) {
	s.Reset()
	s.CurrentIntent = intent
	s.Step = step
}

// Active reports whether a flow is in progress.
func (s Session) Active() bool {
	return s.CurrentIntent != IntentNone && s.Step != StepNone
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	c := s
	c.OrderItems = slices.Clone(s.OrderItems)
	if c.OrderItems == nil {
		c.OrderItems = []backend.OrderItem{}
	}
	return c
}

// Snapshot is the machine-readable part of a reply: which flow is active
// and where. Both fields are null when no flow is active.
type Snapshot struct {
	CurrentIntent *string `json:"currentIntent"`
	Step          *string `json:"step"`
}

// Snapshot summarizes the session for callers of HandleMessage.
func (s Session) Snapshot() Snapshot {
	var snap Snapshot
	if s.CurrentIntent != IntentNone {
		v := string(s.CurrentIntent)
		snap.CurrentIntent = &v
	}
	if s.Step != StepNone {
		v := string(s.Step)
		snap.Step = &v
	}
	return snap
}

// --- Store ---

// SessionStore holds sessions keyed by caller. Implementations must be
// safe for concurrent use; sessions are exchanged by value.
type SessionStore interface {
	// Load returns the caller's session, creating an empty one if needed.
	Load(key string) Session
	// Save replaces the caller's session.
	Save(key string, s Session)
	// Get returns the caller's session without creating one.
	Get(key string) (Session, bool)
	// Delete forgets the caller.
	Delete(key string)
}

type storedSession struct {
	session  Session
	lastSeen time.Time
}

// MemoryStore is a mutex-guarded in-process SessionStore. Sessions do not
// survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*storedSession)}
}

// Load returns a copy of the caller's session, creating it lazily.
func (m *MemoryStore) Load(key string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[key]
	if !ok {
		st = &storedSession{session: Session{OrderItems: []backend.OrderItem{}}}
		m.sessions[key] = st
	}
	st.lastSeen = timeNow()
	return st.session.Clone()
}

// Save stores a copy of s for the caller.
func (m *MemoryStore) Save(key string, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = &storedSession{session: s.Clone(), lastSeen: timeNow()}
}

// Get returns a copy of the caller's session if one exists.
func (m *MemoryStore) Get(key string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[key]
	if !ok {
		return Session{}, false
	}
	return st.session.Clone(), true
}

// Delete removes the caller's session.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Len returns the number of tracked callers.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Expire drops sessions idle for longer than idle and returns how many
// were dropped.
func (m *MemoryStore) Expire(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := timeNow().Add(-idle)
	n := 0
	for key, st := range m.sessions {
		if st.lastSeen.Before(cutoff) {
			delete(m.sessions, key)
			n++
		}
	}
	return n
}

// RunJanitor calls Expire every interval until ctx is done. It blocks, so
// run it on its own goroutine.
func (m *MemoryStore) RunJanitor(ctx context.Context, idle, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(idle); n > 0 {
				log.Debug().Int("expired", n).Int("remaining", m.Len()).Msg("idle sessions dropped")
			}
		}
	}
}
