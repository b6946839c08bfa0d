// Package prompts implements MCP prompt handlers for the phone assistant.
//
// MCP prompts are user-triggered workflows (like slash commands). Unlike
// tools, which the AI calls, prompts are picked by the operator: here they
// turn a generic LLM into the restaurant's phone agent, or ask it to recap
// a caller's history.
package prompts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/mark3labs/mcp-go/mcp"
)

var timeNow = time.Now

// VoiceAgentPrompt handles the voice-agent MCP prompt. It renders the
// system instructions for an LLM that answers the restaurant's phone
// using the backend tools.
type VoiceAgentPrompt struct {
	profile dialogue.Profile
}

// NewVoiceAgentPrompt creates a VoiceAgentPrompt.
func NewVoiceAgentPrompt(profile dialogue.Profile) *VoiceAgentPrompt {
	return &VoiceAgentPrompt{profile: profile}
}

// Definition returns the MCP prompt definition for registration.
func (p *VoiceAgentPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("voice-agent",
		mcp.WithPromptDescription(
			"Act as the restaurant's phone agent for one call. "+
				"Takes orders and reservations with the menu and reservation tools.",
		),
		mcp.WithArgument("caller_phone",
			mcp.ArgumentDescription("The caller's phone number, used for orders and reservations"),
		),
	)
}

// Handle processes the voice-agent prompt request.
func (p *VoiceAgentPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	phone := ""
	if args := req.Params.Arguments; args != nil {
		phone = strings.TrimSpace(args["caller_phone"])
	}
	if phone == "" {
		phone = "unknown"
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Phone agent for %s", p.profile.Name),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(p.render(phone, timeNow())),
			},
		},
	}, nil
}

func (p *VoiceAgentPrompt) render(phone string, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the phone agent for %s, at %s. We are open %s.\n\n",
		p.profile.Name, p.profile.SpokenAddress, p.profile.SpokenHours)

	sb.WriteString("## Call context\n\n")
	fmt.Fprintf(&sb, "- Caller phone: %s\n", phone)
	fmt.Fprintf(&sb, "- Current date and time: %s\n\n", now.Format("January 2, 2006 3:04 PM"))

	sb.WriteString("## Voice rules\n\n" +
		"- Ask one question at a time and keep replies to one or two sentences.\n" +
		"- Read prices and times as words: \"eleven ninety\", \"seven thirty PM\".\n" +
		"- Offer at most three options.\n" +
		"- Say \"Let me check that for you\" before calling a tool.\n\n")

	sb.WriteString("## Orders\n\n" +
		"1. Ask what they would like. Look items up with `get_menu_items`; never invent items or prices.\n" +
		"2. Confirm the items, then ask for pickup, delivery or dine-in. Delivery needs an address.\n" +
		"3. Ask for a name and confirm the caller phone.\n" +
		"4. Call `create_order` and read back the order number, total and ready time.\n\n")

	fmt.Fprintf(&sb, "## Reservations\n\n"+
		"1. Ask for the party size (%d to %d), the date and the time.\n"+
		"2. Call `check_reservation_availability`. If the slot is taken, offer the suggested alternatives.\n"+
		"3. Ask for a name and confirm the caller phone.\n"+
		"4. Call `create_reservation` and confirm the table, date and time.\n\n",
		dialogue.MinPartySize, dialogue.MaxPartySize)

	sb.WriteString("## Questions\n\n")
	if len(p.profile.MenuCategories) > 0 {
		fmt.Fprintf(&sb, "- Menu categories: %s.\n", strings.Join(p.profile.MenuCategories, ", "))
	}
	if p.profile.ParkingInfo != "" {
		fmt.Fprintf(&sb, "- Parking: %s\n", p.profile.ParkingInfo)
	}
	sb.WriteString("- If a tool fails, apologize briefly and offer to try again.\n")
	return sb.String()
}
