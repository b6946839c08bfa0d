package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/hostline/internal/backend"
)

// MaxOrderQuantity is the total quantity above which the caller is asked
// to confirm before anything is added.
const MaxOrderQuantity = 20

const (
	replyOrderStart = "You would like to place an order. " +
		"Please tell me what you would like to order. " +
		"For example: two classic burgers and one fries."
	replyNoItems = "I did not catch any items. " +
		"Please say something like: one cheeseburger and one coffee."
	replyNoMenuMatch = "I could not match those items to our menu. " +
		"Please try again and use names like classic burger, pancakes, or coffee."
	replyAskType     = "Is this order for pickup or delivery?"
	replyAskName     = "Got it. What name should I put on the order?"
	replyNeedName    = "Please tell me the name for the order."
	replyOrderFailed = "Something went wrong while placing your order. Please try again later."
)

func (a *Agent) newOrderFlow() flow {
	return flow{
		intent: IntentOrder,
		start:  a.startOrder,
		steps: map[Step]stepHandler{
			StepAskItems:    a.askItems,
			StepAskType:     a.askOrderType,
			StepAskName:     a.askOrderName,
			StepCreateOrder: a.createOrder,
		},
	}
}

func (a *Agent) startOrder(_ context.Context, tc *turn) string {
	tc.session.begin(IntentOrder, StepAskItems)
	return replyOrderStart
}

func (a *Agent) askItems(ctx context.Context, tc *turn) (string, bool) {
	s := tc.session
	reqs := parseItemRequests(tc.text)
	if len(reqs) == 0 {
		return replyNoItems, false
	}

	menu, err := a.menu.ListMenu(ctx)
	if err != nil {
		a.backendFailed("list_menu", err)
		s.Reset()
		return replyOrderFailed, false
	}

	items := resolveItems(reqs, menu)
	var known, unknown []backend.OrderItem
	for _, it := range items {
		if it.MenuItemID != 0 {
			known = append(known, it)
		} else {
			unknown = append(unknown, it)
		}
	}
	if len(known) == 0 {
		return replyNoMenuMatch, false
	}
	if totalQuantity(items) > MaxOrderQuantity {
		return fmt.Sprintf("That sounds like a big order: %s. Did you really want that many items?", summarizeItems(items)), false
	}

	s.OrderItems = append(s.OrderItems, known...)
	s.Step = StepAskType

	var b strings.Builder
	fmt.Fprintf(&b, "Great, I have %s. ", summarizeItems(s.OrderItems))
	if len(unknown) > 0 {
		names := make([]string, len(unknown))
		for i, it := range unknown {
			names[i] = it.Name
		}
		fmt.Fprintf(&b, "I could not find %s on our menu. ", joinSpoken(names, "or"))
	}
	b.WriteString(replyAskType)
	return b.String(), false
}

func (a *Agent) askOrderType(_ context.Context, tc *turn) (string, bool) {
	orderType, ok := parseOrderType(tc.lower)
	if !ok {
		return replyAskType, false
	}
	tc.session.OrderType = orderType
	tc.session.Step = StepAskName
	return replyAskName, false
}

func (a *Agent) askOrderName(_ context.Context, tc *turn) (string, bool) {
	name := parseName(tc.text)
	if name == "" {
		return replyNeedName, false
	}
	tc.session.CustomerName = name
	tc.session.Step = StepCreateOrder
	return "", true
}

func (a *Agent) createOrder(ctx context.Context, tc *turn) (string, bool) {
	s := tc.session
	req := backend.OrderRequest{
		Items:         s.OrderItems,
		OrderType:     valueOr(s.OrderType, backend.OrderTypePickup),
		CustomerName:  valueOr(s.CustomerName, "Guest"),
		CustomerPhone: tc.phone,
	}

	order, err := a.orders.CreateOrder(ctx, req)
	s.Reset()
	if err != nil {
		a.backendFailed("create_order", err)
		return replyOrderFailed, false
	}

	reply := a.orderConfirmation(order, req)
	tc.outcome = &Outcome{
		CallerKey:    tc.callerKey,
		Kind:         OutcomeOrder,
		Reference:    order.OrderNumber,
		CustomerName: req.CustomerName,
		Summary:      fmt.Sprintf("%s order, %s, total %.2f", req.OrderType, summarizeItems(req.Items), order.TotalPrice),
	}
	return reply, false
}

func (a *Agent) orderConfirmation(order *backend.Order, req backend.OrderRequest) string {
	orderType := valueOr(order.OrderType, req.OrderType)

	items := order.OrderItems
	if len(items) == 0 {
		items = req.Items
	}
	var phrases []string
	for _, it := range items {
		if it.Name != "" {
			phrases = append(phrases, fmt.Sprintf("%d %s", it.Quantity, it.Name))
		}
	}
	itemText := "your items"
	if len(phrases) > 0 {
		itemText = strings.Join(phrases, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your %s order has been placed successfully. ", orderType)
	fmt.Fprintf(&b, "You ordered %s. ", itemText)
	fmt.Fprintf(&b, "Your order number is %s. ", order.OrderNumber)
	fmt.Fprintf(&b, "The total is %.2f dollars. ", order.TotalPrice)
	if order.EstimatedReadyTime != "" {
		fmt.Fprintf(&b, "It should be ready around %s. ", spokenReadyTime(order.EstimatedReadyTime))
	}
	fmt.Fprintf(&b, "Thank you for ordering from %s.", a.profile.Name)
	return b.String()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
