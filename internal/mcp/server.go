package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/losers-bracket/internal/handlers"
	"github.com/sirupsen/logrus"
)

const (
	serverName    = "Fantasy Losers Bracket"
	serverVersion = "1.0.0"
)

// NewBracketMCPServer registers the bracket tools on a new MCP server.
func NewBracketMCPServer(svc handlers.BracketService, source string, logger *logrus.Logger) *server.DefaultServer {
	bracketHandler := handlers.NewBracketHandler(svc, source, logger)

	s := server.NewDefaultServer(serverName, serverVersion)
	if s == nil {
		logger.Error("Failed to create MCP server instance")
		return nil
	}

	logger.Info("MCP server instance created successfully")

	s.HandleListTools(func(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
		tools := Tools(bracketHandler)

		logger.WithField("tools_count", len(tools)).Info("Listing available tools")

		return &mcp.ListToolsResult{
			Tools: tools,
		}, nil
	})

	s.HandleCallTool(func(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		logger.WithFields(logrus.Fields{
			"tool": name,
			"args": arguments,
		}).Info("Tool called")

		return CallTool(ctx, bracketHandler, name, arguments)
	})

	logger.Info("All tools registered successfully")
	return s
}

// Tools lists every tool the server exposes.
func Tools(h *handlers.BracketHandler) []mcp.Tool {
	return []mcp.Tool{
		h.GetLosersBracketTool(),
		h.GetRegularSeasonStandingsTool(),
		h.GetLiveMatchupsTool(),
	}
}

// CallTool routes a tool call to its handler.
func CallTool(ctx context.Context, h *handlers.BracketHandler, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	switch name {
	case "get_losers_bracket":
		return h.HandleGetLosersBracket(ctx, arguments)
	case "get_regular_season_standings":
		return h.HandleGetRegularSeasonStandings(ctx, arguments)
	case "get_live_matchups":
		return h.HandleGetLiveMatchups(ctx, arguments)
	default:
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Type: "text",
					Text: "Unknown tool: " + name,
				},
			},
			IsError: true,
		}, nil
	}
}
