// Package backend defines the restaurant backend contracts the dialogue
// engine depends on, and an HTTP JSON client that implements them.
//
// The backend owns menus, orders and reservations. This package only
// speaks its wire format:
//   - GET  /api/menu?limit=N            -> {"data": {"items": [...]}}
//   - GET  /api/menu/categories         -> {"categories": {"name": count}}
//   - POST /api/orders                  -> 201 {"data": {...}}
//   - POST /api/reservations/availability -> {"available": bool, "message": "..."}
//   - POST /api/reservations            -> 201 {"data": {...}}
package backend

import (
	"context"
	"fmt"
)

// --- Order types ---

// Order types accepted by the backend.
const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"
	OrderTypeDineIn   = "dine-in"
)

var validOrderTypes = map[string]bool{
	OrderTypePickup:   true,
	OrderTypeDelivery: true,
	OrderTypeDineIn:   true,
}

// ValidateOrderType returns an error if t is not a known order type.
func ValidateOrderType(t string) error {
	if !validOrderTypes[t] {
		return fmt.Errorf("invalid order type %q: must be one of: pickup, delivery, dine-in", t)
	}
	return nil
}

// --- Menu ---

// MenuItem is one sellable item as listed by the backend.
type MenuItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Available   *bool   `json:"available,omitempty"`
}

// --- Orders ---

// OrderItem is a line of an order. Items that could not be matched to the
// menu carry MenuItemID 0 and Price 0.
type OrderItem struct {
	MenuItemID int     `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// OrderRequest is the payload for POST /api/orders.
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	OrderType       string      `json:"orderType"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	DeliveryAddress *string     `json:"deliveryAddress,omitempty"`
	SpecialRequests *string     `json:"specialRequests"`
}

// Order is the backend's confirmation of a created order.
type Order struct {
	OrderNumber        string      `json:"orderNumber"`
	OrderType          string      `json:"orderType"`
	TotalPrice         float64     `json:"totalPrice"`
	EstimatedReadyTime string      `json:"estimatedReadyTime,omitempty"`
	OrderItems         []OrderItem `json:"orderItems"`
}

// --- Reservations ---

// AvailabilityRequest is the payload for POST /api/reservations/availability.
type AvailabilityRequest struct {
	ReservationDate string `json:"reservationDate"`
	ReservationTime string `json:"reservationTime"`
	PartySize       int    `json:"partySize"`
}

// Availability reports whether a slot can be booked. Alternatives is
// filled only when the slot is unavailable.
type Availability struct {
	Available    bool     `json:"available"`
	Message      string   `json:"message"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// ReservationRequest is the payload for POST /api/reservations.
type ReservationRequest struct {
	ReservationDate string  `json:"reservationDate"`
	ReservationTime string  `json:"reservationTime"`
	PartySize       int     `json:"partySize"`
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   *string `json:"customerEmail"`
	SpecialRequests *string `json:"specialRequests"`
}

// Reservation is the backend's confirmation of a created reservation.
type Reservation struct {
	ReservationNumber string `json:"reservationNumber"`
	PartySize         int    `json:"partySize"`
	ReservationDate   string `json:"reservationDate"`
	ReservationTime   string `json:"reservationTime"`
	Status            string `json:"status,omitempty"`
}

// --- Contracts ---

// MenuService lists the menu.
type MenuService interface {
	ListMenu(ctx context.Context) ([]MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
}

// OrderService places orders.
type OrderService interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// ReservationService checks slots and books tables.
type ReservationService interface {
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error)
	CreateReservation(ctx context.Context, req ReservationRequest) (*Reservation, error)
}

// Service is the full backend surface.
type Service interface {
	MenuService
	OrderService
	ReservationService
}
