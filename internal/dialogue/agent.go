package dialogue

import (
	"context"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/rs/zerolog"
)

// --- Collaborators ---

// TurnRecord is one handled utterance, as written to a call journal.
type TurnRecord struct {
	CallerKey     string
	Text          string
	Intent        string
	Confidence    float64
	Response      string
	CurrentIntent string
	Step          string
	At            time.Time
}

// Outcome kinds.
const (
	OutcomeOrder       = "order"
	OutcomeReservation = "reservation"
)

// Outcome is a completed order or reservation.
type Outcome struct {
	CallerKey    string
	Kind         string
	Reference    string
	CustomerName string
	Summary      string
	At           time.Time
}

// Recorder persists turns and outcomes. Failures are logged, never spoken.
type Recorder interface {
	RecordTurn(ctx context.Context, t TurnRecord) error
	RecordOutcome(ctx context.Context, o Outcome) error
}

// CallerDirectory remembers callers across sessions.
type CallerDirectory interface {
	LastCustomerName(ctx context.Context, callerKey string) (string, error)
}

// Observer receives counters about the conversation.
type Observer interface {
	TurnHandled(intent string)
	FlowCompleted(kind string)
	BackendFailed(op string)
}

type nopObserver struct{}

func (nopObserver) TurnHandled(string)   {}
func (nopObserver) FlowCompleted(string) {}
func (nopObserver) BackendFailed(string) {}

// --- Agent ---

// Result is the reply to one utterance.
type Result struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Response   string         `json:"response"`
	Entities   map[string]any `json:"entities"`
	Session    Snapshot       `json:"session"`
}

// Agent routes utterances to flows and keeps per-caller sessions.
// It is safe for concurrent use across callers.
type Agent struct {
	sessions     SessionStore
	menu         backend.MenuService
	orders       backend.OrderService
	reservations backend.ReservationService

	classify          func(string) Intent
	profile           Profile
	checkAvailability bool
	recorder          Recorder
	directory         CallerDirectory
	observer          Observer
	log               zerolog.Logger

	orderFlow       flow
	reservationFlow flow
}

// Option configures an Agent.
type Option func(*Agent)

// WithProfile sets the restaurant wording.
func WithProfile(p Profile) Option { return func(a *Agent) { a.profile = p } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(a *Agent) { a.log = l } }

// WithAvailabilityCheck makes the reservation flow check a slot before
// asking for a name.
func WithAvailabilityCheck(on bool) Option { return func(a *Agent) { a.checkAvailability = on } }

// WithRecorder sets where turns and outcomes are journaled.
func WithRecorder(r Recorder) Option { return func(a *Agent) { a.recorder = r } }

// WithCallerDirectory lets returning callers skip the name question.
func WithCallerDirectory(d CallerDirectory) Option { return func(a *Agent) { a.directory = d } }

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option { return func(a *Agent) { a.observer = o } }

// WithClassifier replaces the keyword classifier.
func WithClassifier(fn func(string) Intent) Option { return func(a *Agent) { a.classify = fn } }

// New creates an Agent over the given session store and backend.
func New(sessions SessionStore, svc backend.Service, opts ...Option) *Agent {
	a := &Agent{
		sessions:     sessions,
		menu:         svc,
		orders:       svc,
		reservations: svc,
		classify:     Classify,
		profile:      DefaultProfile(),
		observer:     nopObserver{},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With().Str("component", "dialogue").Logger()
	a.orderFlow = a.newOrderFlow()
	a.reservationFlow = a.newReservationFlow()
	return a
}

// Sessions exposes the store for inspection tools.
func (a *Agent) Sessions() SessionStore { return a.sessions }

// turn is the working state of one HandleMessage call.
type turn struct {
	text      string
	lower     string
	callerKey string
	phone     string
	intent    Intent
	session   *Session
	outcome   *Outcome
}

// HandleMessage classifies text, advances the caller's session and
// returns the reply. It never fails: backend trouble becomes an apology
// and a reset session.
func (a *Agent) HandleMessage(ctx context.Context, text, callerID string) Result {
	intent := a.classify(text)
	key := CallerKey(callerID)
	session := a.sessions.Load(key)

	tc := &turn{
		text:      text,
		lower:     strings.ToLower(strings.TrimSpace(text)),
		callerKey: key,
		phone:     strings.TrimSpace(callerID),
		intent:    intent,
		session:   &session,
	}

	if isCancellation(tc.lower) {
		session.Reset()
		a.sessions.Save(key, session)
		res := Result{
			Intent:     IntentUnknown.Label(),
			Confidence: 0,
			Response:   replyCancelled,
			Entities:   map[string]any{},
			Session:    session.Snapshot(),
		}
		a.finish(ctx, tc, res)
		return res
	}

	// A flow in progress owns every utterance until it completes or is
	// cancelled.
	if session.CurrentIntent == IntentOrder || session.CurrentIntent == IntentReservation {
		tc.intent.Type = session.CurrentIntent
	}

	var reply string
	switch tc.intent.Type {
	case IntentOrder:
		reply = a.run(ctx, a.orderFlow, tc)
	case IntentReservation:
		reply = a.run(ctx, a.reservationFlow, tc)
	case IntentMenuQuestion:
		reply = a.replyMenu(ctx, tc.lower)
	case IntentHours:
		reply = a.replyHours()
	case IntentFAQ:
		reply = a.replyFAQ(tc.lower)
	case IntentSmallTalk:
		reply = a.replySmallTalk()
	default:
		reply = replyUnknown
	}

	a.sessions.Save(key, session)

	entities := tc.intent.Entities
	if entities == nil {
		entities = map[string]any{}
	}
	res := Result{
		Intent:     tc.intent.Type.Label(),
		Confidence: tc.intent.Confidence,
		Response:   reply,
		Entities:   entities,
		Session:    session.Snapshot(),
	}
	a.finish(ctx, tc, res)
	return res
}

// finish logs, counts and journals a handled turn.
func (a *Agent) finish(ctx context.Context, tc *turn, res Result) {
	step := ""
	if res.Session.Step != nil {
		step = *res.Session.Step
	}
	a.log.Info().
		Str("caller", tc.callerKey).
		Str("intent", res.Intent).
		Float64("confidence", res.Confidence).
		Str("step", step).
		Msg("turn handled")
	a.observer.TurnHandled(res.Intent)

	if tc.outcome != nil {
		a.observer.FlowCompleted(tc.outcome.Kind)
	}
	if a.recorder == nil {
		return
	}

	now := timeNow()
	if tc.outcome != nil {
		tc.outcome.At = now
		if err := a.recorder.RecordOutcome(ctx, *tc.outcome); err != nil {
			a.log.Warn().Err(err).Str("caller", tc.callerKey).Msg("journal outcome failed")
		}
	}

	current := ""
	if res.Session.CurrentIntent != nil {
		current = *res.Session.CurrentIntent
	}
	rec := TurnRecord{
		CallerKey:     tc.callerKey,
		Text:          tc.text,
		Intent:        res.Intent,
		Confidence:    res.Confidence,
		Response:      res.Response,
		CurrentIntent: current,
		Step:          step,
		At:            now,
	}
	if err := a.recorder.RecordTurn(ctx, rec); err != nil {
		a.log.Warn().Err(err).Str("caller", tc.callerKey).Msg("journal turn failed")
	}
}

func (a *Agent) backendFailed(op string, err error) {
	a.log.Error().Err(err).Str("op", op).Int("status", backend.StatusOf(err)).Msg("backend call failed")
	a.observer.BackendFailed(op)
}
