package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/HendryAvila/hostline/internal/journal"
	"github.com/mark3labs/mcp-go/mcp"
)

// CallLog is the read side of the call journal.
type CallLog interface {
	History(ctx context.Context, callerKey string, limit int) (*journal.History, error)
	Stats(ctx context.Context) (*journal.Stats, error)
}

// CallHistoryTool handles the call_history MCP tool.
type CallHistoryTool struct {
	log CallLog
}

// NewCallHistoryTool creates a CallHistoryTool.
func NewCallHistoryTool(log CallLog) *CallHistoryTool {
	return &CallHistoryTool{log: log}
}

// Definition returns the MCP tool definition for call_history.
func (t *CallHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("call_history",
		mcp.WithDescription("Show a caller's recent turns and completed orders and reservations, newest first."),
		mcp.WithString("caller_id",
			mcp.Description("Caller phone number. Omit for the anonymous caller."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries of each kind (default: 20, max: 50)"),
		),
	)
}

// Handle processes the call_history tool call.
func (t *CallHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := dialogue.CallerKey(req.GetString("caller_id", ""))
	h, err := t.log.History(ctx, key, intArg(req, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read call history: %v", err)), nil
	}
	return jsonResult(h)
}

// JournalStatsTool handles the journal_stats MCP tool.
type JournalStatsTool struct {
	log CallLog
}

// NewJournalStatsTool creates a JournalStatsTool.
func NewJournalStatsTool(log CallLog) *JournalStatsTool {
	return &JournalStatsTool{log: log}
}

// Definition returns the MCP tool definition for journal_stats.
func (t *JournalStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("journal_stats",
		mcp.WithDescription("Show call journal statistics: turns, distinct callers, orders, reservations and intent counts."),
	)
}

// Handle processes the journal_stats tool call.
func (t *JournalStatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.log.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Call Journal Statistics\n\n")
	fmt.Fprintf(&sb, "- **Turns**: %d\n", stats.TotalTurns)
	fmt.Fprintf(&sb, "- **Callers**: %d\n", stats.TotalCallers)
	fmt.Fprintf(&sb, "- **Orders**: %d\n", stats.Orders)
	fmt.Fprintf(&sb, "- **Reservations**: %d\n", stats.Reservations)

	if len(stats.Intents) == 0 {
		sb.WriteString("- **Intents**: none\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	intents := make([]string, 0, len(stats.Intents))
	for k := range stats.Intents {
		intents = append(intents, k)
	}
	sort.Strings(intents)
	sb.WriteString("- **Intents**:\n")
	for _, k := range intents {
		fmt.Fprintf(&sb, "  - %s: %d\n", k, stats.Intents[k])
	}
	return mcp.NewToolResultText(sb.String()), nil
}
