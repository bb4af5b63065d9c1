// Package tools defines the Bullhorn CRM tool surface exposed to AI
// assistants: MCP tool metadata paired with local execution logic over the
// Bullhorn REST client.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool pairs MCP tool metadata with its execution function.
type Tool struct {
	mcp.Tool // Name, Description, InputSchema, Annotations

	Execute func(ctx context.Context, args map[string]any) (*Result, error)
}

// Result is the structured outcome of a tool invocation.
type Result struct {
	Status  ResultStatus   `json:"status"`
	Text    string         `json:"text,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ResultStatus indicates the outcome of tool execution.
type ResultStatus string

const (
	// ResultSuccess indicates the tool completed successfully.
	ResultSuccess ResultStatus = "success"
	// ResultError indicates the tool failed with an error.
	ResultError ResultStatus = "error"
)

// IsError reports whether the result carries a failure.
func (r *Result) IsError() bool {
	return r.Status == ResultError
}
