package tools

import (
	"context"
	"strings"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandleMessageTool handles the handle_message MCP tool. It runs one
// utterance through the rule-based agent.
type HandleMessageTool struct {
	agent *dialogue.Agent
}

// NewHandleMessageTool creates a HandleMessageTool.
func NewHandleMessageTool(agent *dialogue.Agent) *HandleMessageTool {
	return &HandleMessageTool{agent: agent}
}

// Definition returns the MCP tool definition for handle_message.
func (t *HandleMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("handle_message",
		mcp.WithDescription(
			"Send one caller utterance to the restaurant phone assistant and get its spoken reply. "+
				"The assistant remembers the conversation per caller_id, so send every turn of a call with the same id.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What the caller said"),
		),
		mcp.WithString("caller_id",
			mcp.Description("Caller phone number. Omit for an anonymous caller."),
		),
	)
}

// Handle processes the handle_message tool call.
func (t *HandleMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}
	res := t.agent.HandleMessage(ctx, text, req.GetString("caller_id", ""))
	return jsonResult(res)
}

// SessionStatusTool handles the session_status MCP tool.
type SessionStatusTool struct {
	sessions dialogue.SessionStore
}

// NewSessionStatusTool creates a SessionStatusTool.
func NewSessionStatusTool(sessions dialogue.SessionStore) *SessionStatusTool {
	return &SessionStatusTool{sessions: sessions}
}

// Definition returns the MCP tool definition for session_status.
func (t *SessionStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("session_status",
		mcp.WithDescription("Show the in-progress conversation state (flow, step and collected slots) for a caller."),
		mcp.WithString("caller_id",
			mcp.Description("Caller phone number. Omit for the anonymous caller."),
		),
	)
}

type sessionResult struct {
	CallerKey string            `json:"callerKey"`
	Active    bool              `json:"active"`
	Session   *dialogue.Session `json:"session"`
}

// Handle processes the session_status tool call. It never creates a
// session.
func (t *SessionStatusTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := dialogue.CallerKey(req.GetString("caller_id", ""))
	s, ok := t.sessions.Get(key)
	if !ok {
		return jsonResult(sessionResult{CallerKey: key})
	}
	return jsonResult(sessionResult{CallerKey: key, Active: s.Active(), Session: &s})
}
