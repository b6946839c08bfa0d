package dialogue

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/HendryAvila/hostline/internal/backend"
)

// Party size bounds for a reservation.
const (
	MinPartySize = 1
	MaxPartySize = 20
)

const (
	replyReservationStart = "You want to make a reservation. How many people is the reservation for?"
	replyAskDateHint      = "What date would you like? You can say something like, today, tomorrow, or December 31st."
	replyTimeFirst        = "I think you are telling me a time. First, how many people is the reservation for?"
	replyNoPartySize      = "I did not catch the party size. " +
		"Please tell me how many people, for example: four people."
	replyPartyRange = "We can book reservations between 1 and 20 guests. " +
		"How many people is your reservation for?"
	replyBadDate = "Please give the date in a format like 2025-12-31, or say today or tomorrow."
	replyNoTime  = "I did not catch the time. " +
		"Please say a time like 7:30 PM, eight PM, or seven thirty."
	replyBadTime = "That time does not look valid. " +
		"Please say a time like 7:30 PM or eight PM."
	replyNeedResName = "Please tell me the name for the reservation."

	replyResRejected = "The system could not accept that reservation, possibly due to time or availability. " +
		"Please try a different time or date."
	replyResUnavailable = "I am having trouble creating reservations right now. " +
		"Please try again later or call the restaurant directly."
	replyResTechnical = "I could not complete the reservation due to a technical issue. Please try again later."
	replyResFailed    = "Something went wrong while creating your reservation. " +
		"Please try again later or call the restaurant directly."
)

func (a *Agent) newReservationFlow() flow {
	return flow{
		intent: IntentReservation,
		start:  a.startReservation,
		steps: map[Step]stepHandler{
			StepAskParty:  a.askPartySize,
			StepAskDate:   a.askDate,
			StepAskTime:   a.askTime,
			StepAskName:   a.askReservationName,
			StepCreateRes: a.createReservation,
		},
	}
}

func (a *Agent) startReservation(ctx context.Context, tc *turn) string {
	s := tc.session
	s.begin(IntentReservation, StepAskParty)
	s.CustomerName = a.knownName(ctx, tc.callerKey)

	n, ok := tc.intent.PartySize()
	if !ok {
		return replyReservationStart
	}
	if n < MinPartySize || n > MaxPartySize {
		return replyPartyRange
	}
	s.ReservationPartySize = n
	s.Step = StepAskDate
	return fmt.Sprintf("You want a reservation for %d guests. %s", n, replyAskDateHint)
}

// knownName looks up a returning caller. The shared anonymous key never
// resolves to a name.
func (a *Agent) knownName(ctx context.Context, callerKey string) string {
	if a.directory == nil || callerKey == AnonymousCaller {
		return ""
	}
	name, err := a.directory.LastCustomerName(ctx, callerKey)
	if err != nil {
		a.log.Warn().Err(err).Str("caller", callerKey).Msg("caller lookup failed")
		return ""
	}
	return name
}

func (a *Agent) askPartySize(_ context.Context, tc *turn) (string, bool) {
	if LooksLikeTime(tc.lower) {
		return replyTimeFirst, false
	}
	n, ok := parsePartySize(tc.text)
	if !ok {
		return replyNoPartySize, false
	}
	if n < MinPartySize || n > MaxPartySize {
		return replyPartyRange, false
	}
	tc.session.ReservationPartySize = n
	tc.session.Step = StepAskDate
	return fmt.Sprintf("Great, a table for %d. %s", n, replyAskDateHint), false
}

func (a *Agent) askDate(_ context.Context, tc *turn) (string, bool) {
	date, ok := parseSpokenDate(tc.text, timeNow())
	if !ok {
		return replyBadDate, false
	}
	tc.session.ReservationDate = date
	tc.session.Step = StepAskTime
	return fmt.Sprintf("Got it, %s. What time would you like the reservation? Please say a time like 7:30 PM.", date), false
}

func (a *Agent) askTime(ctx context.Context, tc *turn) (string, bool) {
	s := tc.session
	clock, status := parseSpokenTime(tc.text)
	switch status {
	case timeMissing:
		return replyNoTime, false
	case timeInvalid:
		return replyBadTime, false
	}

	if a.checkAvailability {
		if reply, ok := a.slotAvailable(ctx, s, clock); !ok {
			return reply, false
		}
	}

	s.ReservationTime = clock
	if s.CustomerName == "" {
		s.Step = StepAskName
		return fmt.Sprintf("Okay, a reservation on %s at %s for %d guests. What name should I put on the reservation?",
			s.ReservationDate, clock, s.ReservationPartySize), false
	}
	s.Step = StepCreateRes
	return "", true
}

// slotAvailable asks the backend about the requested slot. An error is
// treated as available so the booking itself can decide.
func (a *Agent) slotAvailable(ctx context.Context, s *Session, clock string) (string, bool) {
	avail, err := a.reservations.CheckAvailability(ctx, backend.AvailabilityRequest{
		ReservationDate: s.ReservationDate,
		ReservationTime: clock,
		PartySize:       s.ReservationPartySize,
	})
	if err != nil {
		a.backendFailed("check_availability", err)
		return "", true
	}
	if avail.Available {
		return "", true
	}

	var b strings.Builder
	msg := strings.TrimSpace(avail.Message)
	if msg == "" {
		msg = fmt.Sprintf("Sorry, %s is not available.", clock)
	}
	b.WriteString(msg)
	if len(avail.Alternatives) > 0 {
		fmt.Fprintf(&b, " I do have openings at %s.", joinSpoken(avail.Alternatives, "or"))
	}
	b.WriteString(" What time would you like instead?")
	return b.String(), false
}

func (a *Agent) askReservationName(_ context.Context, tc *turn) (string, bool) {
	name := parseName(tc.text)
	if name == "" {
		return replyNeedResName, false
	}
	tc.session.CustomerName = name
	tc.session.Step = StepCreateRes
	return "", true
}

func (a *Agent) createReservation(ctx context.Context, tc *turn) (string, bool) {
	s := tc.session
	req := backend.ReservationRequest{
		ReservationDate: s.ReservationDate,
		ReservationTime: s.ReservationTime,
		PartySize:       s.ReservationPartySize,
		CustomerName:    valueOr(s.CustomerName, "Guest"),
		CustomerPhone:   tc.phone,
	}

	res, err := a.reservations.CreateReservation(ctx, req)
	s.Reset()
	if err != nil {
		a.backendFailed("create_reservation", err)
		return reservationFailure(err), false
	}

	party := res.PartySize
	if party == 0 {
		party = req.PartySize
	}
	date := valueOr(res.ReservationDate, req.ReservationDate)
	clock := spokenClock(valueOr(res.ReservationTime, req.ReservationTime))

	tc.outcome = &Outcome{
		CallerKey:    tc.callerKey,
		Kind:         OutcomeReservation,
		Reference:    res.ReservationNumber,
		CustomerName: req.CustomerName,
		Summary:      "table for " + strconv.Itoa(party) + " on " + date + " at " + clock,
	}
	return fmt.Sprintf("Your reservation has been created. "+
		"Your confirmation number is %s. "+
		"That is a table for %d on %s at %s. "+
		"We look forward to seeing you at %s.",
		res.ReservationNumber, party, date, clock, a.profile.Name), false
}

// reservationFailure explains a failed booking by status class.
func reservationFailure(err error) string {
	status := backend.StatusOf(err)
	switch {
	case status == 0:
		return replyResFailed
	case status == http.StatusBadRequest:
		return replyResRejected
	case status >= http.StatusInternalServerError:
		return replyResUnavailable
	default:
		return replyResTechnical
	}
}
