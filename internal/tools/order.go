package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateOrderTool handles the create_order MCP tool.
type CreateOrderTool struct {
	backend backend.Service
}

// NewCreateOrderTool creates a CreateOrderTool.
func NewCreateOrderTool(svc backend.Service) *CreateOrderTool {
	return &CreateOrderTool{backend: svc}
}

// Definition returns the MCP tool definition for create_order.
func (t *CreateOrderTool) Definition() mcp.Tool {
	return mcp.NewTool("create_order",
		mcp.WithDescription(
			"Create a food order. Only call this once you have the items (menuItemId and quantity), "+
				"the order type and the customer's name. Names and prices are filled in from the menu when omitted.",
		),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Order lines"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"menuItemId": map[string]any{"type": "integer"},
					"name":       map[string]any{"type": "string"},
					"price":      map[string]any{"type": "number"},
					"quantity":   map[string]any{"type": "integer", "minimum": 1},
				},
				"required": []string{"menuItemId", "quantity"},
			}),
		),
		mcp.WithString("orderType",
			mcp.Required(),
			mcp.Enum(backend.OrderTypePickup, backend.OrderTypeDelivery, backend.OrderTypeDineIn),
			mcp.Description("How the order is fulfilled"),
		),
		mcp.WithString("customerName",
			mcp.Required(),
			mcp.Description("Name of the customer"),
		),
		mcp.WithString("customerPhone",
			mcp.Required(),
			mcp.Description("Caller's phone number"),
		),
		mcp.WithString("deliveryAddress",
			mcp.Description("Required when orderType is delivery"),
		),
		mcp.WithString("specialRequests",
			mcp.Description("Optional notes for the kitchen"),
		),
	)
}

type orderResult struct {
	Success            bool    `json:"success"`
	OrderNumber        string  `json:"orderNumber"`
	TotalPrice         float64 `json:"totalPrice"`
	EstimatedReadyTime string  `json:"estimatedReadyTime,omitempty"`
	Message            string  `json:"message"`
}

// Handle processes the create_order tool call.
func (t *CreateOrderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := missing(req, "orderType", "customerName", "customerPhone"); res != nil {
		return res, nil
	}

	orderType := strings.ToLower(strings.TrimSpace(req.GetString("orderType", "")))
	if err := backend.ValidateOrderType(orderType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	address := optionalString(req, "deliveryAddress")
	if orderType == backend.OrderTypeDelivery && address == nil {
		return mcp.NewToolResultError("'deliveryAddress' is required for delivery orders"), nil
	}

	items, err := parseOrderItems(req.GetArguments()["items"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.fillFromMenu(ctx, items); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	order, err := t.backend.CreateOrder(ctx, backend.OrderRequest{
		Items:           items,
		OrderType:       orderType,
		CustomerName:    strings.TrimSpace(req.GetString("customerName", "")),
		CustomerPhone:   strings.TrimSpace(req.GetString("customerPhone", "")),
		DeliveryAddress: address,
		SpecialRequests: optionalString(req, "specialRequests"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create order: %v", err)), nil
	}

	return jsonResult(orderResult{
		Success:            true,
		OrderNumber:        order.OrderNumber,
		TotalPrice:         order.TotalPrice,
		EstimatedReadyTime: order.EstimatedReadyTime,
		Message:            "Order created successfully",
	})
}

// parseOrderItems decodes the items argument. JSON numbers arrive as float64.
func parseOrderItems(raw any) ([]backend.OrderItem, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("'items' must be a non-empty list")
	}

	items := make([]backend.OrderItem, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("items[%d] must be an object", i)
		}
		id, _ := m["menuItemId"].(float64)
		qty, _ := m["quantity"].(float64)
		if id <= 0 {
			return nil, fmt.Errorf("items[%d].menuItemId must be a positive integer", i)
		}
		if qty < 1 || qty != float64(int(qty)) {
			return nil, fmt.Errorf("items[%d].quantity must be a whole number of at least 1", i)
		}
		name, _ := m["name"].(string)
		price, _ := m["price"].(float64)
		items = append(items, backend.OrderItem{MenuItemID: int(id), Name: name, Price: price, Quantity: int(qty)})
	}
	return items, nil
}

// fillFromMenu completes names and prices the caller left out. The menu
// is only fetched when something is missing.
func (t *CreateOrderTool) fillFromMenu(ctx context.Context, items []backend.OrderItem) error {
	need := false
	for _, it := range items {
		if it.Name == "" || it.Price == 0 {
			need = true
			break
		}
	}
	if !need {
		return nil
	}

	menu, err := t.backend.ListMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch menu: %w", err)
	}
	byID := make(map[int]backend.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}
	for i := range items {
		m, ok := byID[items[i].MenuItemID]
		if !ok {
			return fmt.Errorf("menu item %d does not exist", items[i].MenuItemID)
		}
		if items[i].Name == "" {
			items[i].Name = m.Name
		}
		if items[i].Price == 0 {
			items[i].Price = m.Price
		}
	}
	return nil
}
