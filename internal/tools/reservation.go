package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Shared validation ───────────────────────────────────────────────────────

// slotArgs reads and validates the date, time and party size shared by
// both reservation tools.
func slotArgs(req mcp.CallToolRequest) (backend.AvailabilityRequest, *mcp.CallToolResult) {
	if res := missing(req, "reservationDate", "reservationTime"); res != nil {
		return backend.AvailabilityRequest{}, res
	}

	date := strings.TrimSpace(req.GetString("reservationDate", ""))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return backend.AvailabilityRequest{}, mcp.NewToolResultError(
			fmt.Sprintf("'reservationDate' must be YYYY-MM-DD, got %q", date))
	}

	clock := strings.TrimSpace(req.GetString("reservationTime", ""))
	m, err := backend.ParseClock(clock)
	if err != nil {
		return backend.AvailabilityRequest{}, mcp.NewToolResultError(
			fmt.Sprintf("'reservationTime' must be HH:MM (24-hour), got %q", clock))
	}

	party := intArg(req, "partySize", 0)
	if party < dialogue.MinPartySize || party > dialogue.MaxPartySize {
		return backend.AvailabilityRequest{}, mcp.NewToolResultError(
			fmt.Sprintf("'partySize' must be between %d and %d", dialogue.MinPartySize, dialogue.MaxPartySize))
	}

	return backend.AvailabilityRequest{
		ReservationDate: date,
		ReservationTime: backend.FormatClock(m),
		PartySize:       party,
	}, nil
}

func withSlotParams(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append([]mcp.ToolOption{
		mcp.WithString("reservationDate",
			mcp.Required(),
			mcp.Description("Date as YYYY-MM-DD"),
		),
		mcp.WithString("reservationTime",
			mcp.Required(),
			mcp.Description("Time as HH:MM, 24-hour"),
		),
		mcp.WithNumber("partySize",
			mcp.Required(),
			mcp.Min(dialogue.MinPartySize),
			mcp.Max(dialogue.MaxPartySize),
			mcp.Description("Number of guests"),
		),
	}, opts...)
}

// ─── check_reservation_availability ──────────────────────────────────────────

// AvailabilityTool handles the check_reservation_availability MCP tool.
type AvailabilityTool struct {
	reservations backend.ReservationService
}

// NewAvailabilityTool creates an AvailabilityTool.
func NewAvailabilityTool(svc backend.ReservationService) *AvailabilityTool {
	return &AvailabilityTool{reservations: svc}
}

// Definition returns the MCP tool definition for check_reservation_availability.
func (t *AvailabilityTool) Definition() mcp.Tool {
	opts := withSlotParams(mcp.WithDescription(
		"Check whether a reservation slot is available. Always call this before creating a reservation. " +
			"When the slot is taken, nearby alternative times are suggested.",
	))
	return mcp.NewTool("check_reservation_availability", opts...)
}

// availabilityResult always carries alternatives, even when empty.
type availabilityResult struct {
	Available    bool     `json:"available"`
	Message      string   `json:"message"`
	Alternatives []string `json:"alternatives"`
}

// Handle processes the check_reservation_availability tool call.
func (t *AvailabilityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, errRes := slotArgs(req)
	if errRes != nil {
		return errRes, nil
	}

	avail, err := t.reservations.CheckAvailability(ctx, slot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not check availability: %v", err)), nil
	}
	out := availabilityResult{Available: avail.Available, Message: avail.Message, Alternatives: avail.Alternatives}
	if out.Alternatives == nil {
		out.Alternatives = []string{}
	}
	return jsonResult(out)
}

// ─── create_reservation ──────────────────────────────────────────────────────

// CreateReservationTool handles the create_reservation MCP tool.
type CreateReservationTool struct {
	reservations backend.ReservationService
}

// NewCreateReservationTool creates a CreateReservationTool.
func NewCreateReservationTool(svc backend.ReservationService) *CreateReservationTool {
	return &CreateReservationTool{reservations: svc}
}

// Definition returns the MCP tool definition for create_reservation.
func (t *CreateReservationTool) Definition() mcp.Tool {
	opts := withSlotParams(
		mcp.WithDescription("Create a table reservation. Call check_reservation_availability first."),
		mcp.WithString("customerName",
			mcp.Required(),
			mcp.Description("Name for the reservation"),
		),
		mcp.WithString("customerPhone",
			mcp.Required(),
			mcp.Description("Caller's phone number"),
		),
		mcp.WithString("customerEmail",
			mcp.Description("Optional email for the confirmation"),
		),
		mcp.WithString("specialRequests",
			mcp.Description("Optional notes, e.g. high chair or booth"),
		),
	)
	return mcp.NewTool("create_reservation", opts...)
}

type reservationResult struct {
	Success           bool   `json:"success"`
	ReservationNumber string `json:"reservationNumber"`
	Message           string `json:"message"`
}

// Handle processes the create_reservation tool call.
func (t *CreateReservationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, errRes := slotArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	if res := missing(req, "customerName", "customerPhone"); res != nil {
		return res, nil
	}

	res, err := t.reservations.CreateReservation(ctx, backend.ReservationRequest{
		ReservationDate: slot.ReservationDate,
		ReservationTime: slot.ReservationTime,
		PartySize:       slot.PartySize,
		CustomerName:    strings.TrimSpace(req.GetString("customerName", "")),
		CustomerPhone:   strings.TrimSpace(req.GetString("customerPhone", "")),
		CustomerEmail:   optionalString(req, "customerEmail"),
		SpecialRequests: optionalString(req, "specialRequests"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create reservation: %v", err)), nil
	}

	return jsonResult(reservationResult{
		Success:           true,
		ReservationNumber: res.ReservationNumber,
		Message:           "Reservation confirmed",
	})
}
