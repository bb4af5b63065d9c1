package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Attach registers every tool in the registry on the MCP server, bridging
// the tool's Execute func to the go-sdk handler contract. Tool failures are
// reported through the result's IsError flag, not as protocol errors.
func Attach(server *mcp.Server, registry *Registry, log zerolog.Logger) {
	for _, tool := range registry.All() {
		server.AddTool(&tool.Tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := map[string]any{}
			if len(req.Params.Arguments) > 0 {
				if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
					return nil, fmt.Errorf("decoding arguments for %s: %w", tool.Name, err)
				}
			}

			callLog := log.With().Str("tool", tool.Name).Str("call_id", xid.New().String()).Logger()
			callLog.Debug().Msg("Executing tool")

			result, err := tool.Execute(ctx, args)
			if err != nil {
				return nil, err
			}
			if result.IsError() {
				callLog.Warn().Str("error_kind", errorKind(result)).Msg("Tool returned error result")
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: result.Text}},
				IsError: result.IsError(),
			}, nil
		})
	}
}

func errorKind(result *Result) string {
	if kind, ok := result.Details["error_kind"].(string); ok {
		return kind
	}
	return "unknown"
}
