// Package tools implements the MCP tool handlers for the phone assistant.
//
// The backend tools (menu, orders, availability, reservations) are the one
// canonical tool contract an LLM voice agent uses. The dialogue and journal
// tools expose the rule-based agent and its call log.
//
// Each tool follows the same shape:
//   - a struct with its dependencies injected through the constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() validates arguments and returns a result; caller mistakes
//     and backend failures become tool errors, never Go errors
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}

// optionalString returns a pointer to the trimmed argument, or nil when it
// is missing or blank.
func optionalString(req mcp.CallToolRequest, key string) *string {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return nil
	}
	return &v
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// missing returns a tool error naming the first blank required argument.
func missing(req mcp.CallToolRequest, keys ...string) *mcp.CallToolResult {
	for _, k := range keys {
		if strings.TrimSpace(req.GetString(k, "")) == "" {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' is required", k))
		}
	}
	return nil
}
