package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/mark3labs/mcp-go/mcp"
)

// maxMenuResults keeps menu answers small enough for an LLM context.
const maxMenuResults = 10

// MenuItemsTool handles the get_menu_items MCP tool.
type MenuItemsTool struct {
	menu backend.MenuService
}

// NewMenuItemsTool creates a MenuItemsTool.
func NewMenuItemsTool(menu backend.MenuService) *MenuItemsTool {
	return &MenuItemsTool{menu: menu}
}

// Definition returns the MCP tool definition for get_menu_items.
func (t *MenuItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_menu_items",
		mcp.WithDescription(
			"Get menu items by category or search term. Returns real menu items with ids and prices. "+
				"Use the returned id as menuItemId when creating an order.",
		),
		mcp.WithString("category",
			mcp.Description("Category filter, e.g. breakfast, burgers, sandwiches, entrees, salads, soups, sides, desserts, beverages"),
		),
		mcp.WithString("search",
			mcp.Description("Search term matched against item names and descriptions"),
		),
	)
}

type menuResult struct {
	Success bool               `json:"success"`
	Items   []backend.MenuItem `json:"items"`
	Count   int                `json:"count"`
}

// Handle processes the get_menu_items tool call.
func (t *MenuItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := strings.ToLower(strings.TrimSpace(req.GetString("category", "")))
	search := strings.ToLower(strings.TrimSpace(req.GetString("search", "")))

	items, err := t.menu.ListMenu(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch menu: %v", err)), nil
	}

	out := make([]backend.MenuItem, 0, maxMenuResults)
	for _, it := range items {
		if it.Available != nil && !*it.Available {
			continue
		}
		if category != "" && strings.ToLower(it.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		out = append(out, it)
		if len(out) == maxMenuResults {
			break
		}
	}

	return jsonResult(menuResult{Success: true, Items: out, Count: len(out)})
}
