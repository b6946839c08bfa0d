// Package resources implements MCP resource handlers for the phone
// assistant.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (hostline://...) following MCP conventions.
package resources

import (
	"context"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/mark3labs/mcp-go/mcp"
)

// URIs served by Handler.
const (
	ProfileURI = "hostline://restaurant/profile"
	MenuURI    = "hostline://restaurant/menu"
)

// Handler manages the restaurant resource endpoints.
type Handler struct {
	profile dialogue.Profile
	window  backend.Window
	menu    backend.MenuService
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(profile dialogue.Profile, window backend.Window, menu backend.MenuService) *Handler {
	return &Handler{profile: profile, window: window, menu: menu}
}

type profileView struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Hours          string   `json:"hours"`
	Parking        string   `json:"parking,omitempty"`
	MenuCategories []string `json:"menuCategories"`
	Opens          string   `json:"opens"`
	Closes         string   `json:"closes"`
}

// ProfileResource returns the MCP resource definition for the restaurant
// profile.
func (h *Handler) ProfileResource() mcp.Resource {
	return mcp.NewResource(
		ProfileURI,
		"Restaurant Profile",
		mcp.WithResourceDescription("Name, address, hours, parking and the reservation window"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProfile returns the restaurant profile as JSON.
func (h *Handler) HandleProfile(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	categories := h.profile.MenuCategories
	if categories == nil {
		categories = []string{}
	}
	return jsonResource(req.Params.URI, profileView{
		Name:           h.profile.Name,
		Address:        h.profile.SpokenAddress,
		Hours:          h.profile.SpokenHours,
		Parking:        h.profile.ParkingInfo,
		MenuCategories: categories,
		Opens:          backend.FormatClock(h.window.Open),
		Closes:         backend.FormatClock(h.window.Close),
	})
}

// MenuResource returns the MCP resource definition for the live menu.
func (h *Handler) MenuResource() mcp.Resource {
	return mcp.NewResource(
		MenuURI,
		"Menu",
		mcp.WithResourceDescription("Every menu item currently listed by the backend"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleMenu fetches the menu from the backend. A backend failure is
// reported inside the resource rather than as a protocol error.
func (h *Handler) HandleMenu(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	items, err := h.menu.ListMenu(ctx)
	if err != nil {
		return errorResource(req.Params.URI, "fetching menu: "+err.Error()), nil
	}
	if items == nil {
		items = []backend.MenuItem{}
	}
	return jsonResource(req.Params.URI, items)
}
