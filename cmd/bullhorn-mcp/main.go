package main

import (
	"context"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/recruitkit/bullhorn-mcp/pkg/bullhorn"
	"github.com/recruitkit/bullhorn-mcp/pkg/tools"
)

// Filled at build time with the -X linker flag.
var Version = "0.1.0"

func main() {
	// stdout carries the MCP stdio transport; all logging goes to stderr.
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(logLevel())

	cfg, err := bullhorn.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Bullhorn configuration")
	}

	auth := bullhorn.NewAuthenticator(cfg, log)
	client := bullhorn.NewClient(auth, log)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "bullhorn-crm",
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: "Query Bullhorn CRM data - jobs, candidates, and placements",
	})
	tools.Attach(server, tools.NewBullhornRegistry(client), log)

	log.Info().Str("version", Version).Msg("Starting Bullhorn MCP server on stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal().Err(err).Msg("MCP server exited with error")
	}
}

func logLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("BULLHORN_LOG_LEVEL"))))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
