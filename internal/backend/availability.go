package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Window is the part of the day reservations may start in, as minutes
// since midnight. Both ends are inclusive.
type Window struct {
	Open  int
	Close int
}

// DefaultWindow is 06:00 to 23:00.
var DefaultWindow = Window{Open: 6 * 60, Close: 23 * 60}

// ParseWindow builds a Window from two "HH:MM" strings.
func ParseWindow(open, close string) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, fmt.Errorf("opening time: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, fmt.Errorf("closing time: %w", err)
	}
	if o >= c {
		return Window{}, fmt.Errorf("opening time %s must be before closing time %s", open, close)
	}
	return Window{Open: o, Close: c}, nil
}

// Contains reports whether minute-of-day m falls inside the window.
func (w Window) Contains(m int) bool {
	return m >= w.Open && m <= w.Close
}

// ParseClock parses "HH:MM" (24-hour) into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	// Backends sometimes answer with seconds ("19:30:00").
	m, _, _ = strings.Cut(m, ":")
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// probeOffsets are tried in order, nearest first.
var probeOffsets = []int{-15, 15, -30, 30, -45, 45}

// MaxAlternatives caps how many alternative times are suggested.
const MaxAlternatives = 3

// SlotChecker reports whether a single slot is bookable.
type SlotChecker func(ctx context.Context, req AvailabilityRequest) (bool, error)

// ProbeAlternatives looks for up to MaxAlternatives bookable times near
// req.ReservationTime, skipping times outside w. A failing probe is
// skipped; only context cancellation aborts the search.
func ProbeAlternatives(ctx context.Context, req AvailabilityRequest, w Window, check SlotChecker) ([]string, error) {
	base, err := ParseClock(req.ReservationTime)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, off := range probeOffsets {
		if len(found) == MaxAlternatives {
			break
		}
		if err := ctx.Err(); err != nil {
			return found, err
		}
		m := base + off
		if !w.Contains(m) {
			continue
		}
		probe := req
		probe.ReservationTime = FormatClock(m)
		ok, err := check(ctx, probe)
		if err != nil || !ok {
			continue
		}
		found = append(found, probe.ReservationTime)
	}
	return found, nil
}
