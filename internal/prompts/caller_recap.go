package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallerRecapPrompt handles the caller-recap MCP prompt.
// It instructs the AI to summarize what a caller has done before.
type CallerRecapPrompt struct{}

// NewCallerRecapPrompt creates a CallerRecapPrompt.
func NewCallerRecapPrompt() *CallerRecapPrompt {
	return &CallerRecapPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *CallerRecapPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("caller-recap",
		mcp.WithPromptDescription(
			"Summarize a caller's past orders, reservations and any conversation still in progress.",
		),
		mcp.WithArgument("caller_id",
			mcp.ArgumentDescription("Caller phone number"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the caller-recap prompt request.
func (p *CallerRecapPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	caller := ""
	if args := req.Params.Arguments; args != nil {
		caller = strings.TrimSpace(args["caller_id"])
	}
	if caller == "" {
		return nil, fmt.Errorf("caller_id is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Recap for caller %s", caller),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please run `call_history` with caller_id='%s' and `session_status` with the same caller_id.\n\n"+
						"Then:\n"+
						"1. Tell me the name they usually give\n"+
						"2. List their orders and reservations, newest first, with reference numbers\n"+
						"3. If a conversation is in progress, say which step it is waiting on",
					caller,
				)),
			},
		},
	}, nil
}
