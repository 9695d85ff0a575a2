package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/losers-bracket/internal/app"
	"github.com/sam-maryland/losers-bracket/internal/config"
	"github.com/sam-maryland/losers-bracket/internal/logging"
	"github.com/sam-maryland/losers-bracket/internal/mcp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.NewConfig(os.Getenv("BRACKET_CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create logger")
	}
	// stdout carries the MCP protocol.
	logging.WithOutput(logger, os.Stderr)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build bracket service")
	}

	mcpServer := mcp.NewBracketMCPServer(a.Service, a.Feed.Name(), logger)
	if mcpServer == nil {
		logger.Fatal("Failed to create MCP server")
	}

	logger.WithField("league_id", cfg.League.ID).Info("Starting Losers Bracket MCP Server...")

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
		os.Exit(1)
	}
}
