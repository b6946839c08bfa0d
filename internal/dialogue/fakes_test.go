package dialogue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time {
		return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	}
}

// --- Helpers ---

func testMenu() []backend.MenuItem {
	return []backend.MenuItem{
		{ID: 1, Name: "burger", Price: 5.95, Category: "burgers"},
		{ID: 2, Name: "fries", Price: 2.50, Category: "sides"},
		{ID: 3, Name: "coffee", Price: 1.50, Category: "beverages"},
		{ID: 4, Name: "pancakes", Price: 6.25, Category: "breakfast"},
	}
}

// fakeBackend is an in-memory backend.Service.
type fakeBackend struct {
	mu sync.Mutex

	menu          []backend.MenuItem
	menuErr       error
	categories    []string
	categoriesErr error

	order    *backend.Order
	orderErr error
	orders   []backend.OrderRequest

	availability *backend.Availability
	availErr     error
	checks       []backend.AvailabilityRequest

	reservation  *backend.Reservation
	resErr       error
	reservations []backend.ReservationRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		menu:       testMenu(),
		categories: []string{"beverages", "breakfast", "burgers", "sides"},
	}
}

func (f *fakeBackend) ListMenu(context.Context) ([]backend.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return f.menu, nil
}

func (f *fakeBackend) Categories(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, req backend.OrderRequest) (*backend.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.order != nil {
		return f.order, nil
	}
	total := 0.0
	for _, it := range req.Items {
		total += it.Price * float64(it.Quantity)
	}
	return &backend.Order{
		OrderNumber: "ORD-1",
		OrderType:   req.OrderType,
		TotalPrice:  total,
		OrderItems:  req.Items,
	}, nil
}

func (f *fakeBackend) CheckAvailability(_ context.Context, req backend.AvailabilityRequest) (*backend.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, req)
	if f.availErr != nil {
		return nil, f.availErr
	}
	if f.availability != nil {
		return f.availability, nil
	}
	return &backend.Availability{Available: true, Message: "ok"}, nil
}

func (f *fakeBackend) CreateReservation(_ context.Context, req backend.ReservationRequest) (*backend.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations = append(f.reservations, req)
	if f.resErr != nil {
		return nil, f.resErr
	}
	if f.reservation != nil {
		return f.reservation, nil
	}
	return &backend.Reservation{
		ReservationNumber: "RES-1",
		PartySize:         req.PartySize,
		ReservationDate:   req.ReservationDate,
		ReservationTime:   req.ReservationTime,
	}, nil
}

// fakeJournal records turns and outcomes and answers name lookups.
type fakeJournal struct {
	mu       sync.Mutex
	turns    []TurnRecord
	outcomes []Outcome
	names    map[string]string
	turnErr  error
}

func (j *fakeJournal) RecordTurn(_ context.Context, t TurnRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.turns = append(j.turns, t)
	return j.turnErr
}

func (j *fakeJournal) RecordOutcome(_ context.Context, o Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes = append(j.outcomes, o)
	return nil
}

func (j *fakeJournal) LastCustomerName(_ context.Context, key string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.names[key], nil
}

// fakeObserver counts observer callbacks.
type fakeObserver struct {
	mu        sync.Mutex
	turns     map[string]int
	completed map[string]int
	failures  map[string]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{turns: map[string]int{}, completed: map[string]int{}, failures: map[string]int{}}
}

func (o *fakeObserver) TurnHandled(intent string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.turns[intent]++
}

func (o *fakeObserver) FlowCompleted(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed[kind]++
}

func (o *fakeObserver) BackendFailed(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[op]++
}

const testCaller = "+13125551234"

func newTestAgent(t *testing.T, fb *fakeBackend, opts ...Option) *Agent {
	t.Helper()
	return New(NewMemoryStore(), fb, opts...)
}

// say sends each utterance in order and returns the last result.
func say(t *testing.T, a *Agent, caller string, utterances ...string) Result {
	t.Helper()
	var res Result
	for _, u := range utterances {
		res = a.HandleMessage(context.Background(), u, caller)
	}
	return res
}

func stepOf(res Result) string {
	if res.Session.Step == nil {
		return ""
	}
	return *res.Session.Step
}

func intentOf(res Result) string {
	if res.Session.CurrentIntent == nil {
		return ""
	}
	return *res.Session.CurrentIntent
}
