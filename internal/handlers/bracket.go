package handlers

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/render"
	"github.com/sam-maryland/losers-bracket/internal/service"
	"github.com/sirupsen/logrus"
)

// BracketService is the part of service.Service the tools need.
type BracketService interface {
	Run(ctx context.Context) (*bracket.Result, error)
	Standings(ctx context.Context) (*service.StandingsReport, error)
	LiveMatchups(ctx context.Context, week int) (*service.WeekMatchups, error)
}

// APIResponse wraps every JSON tool response
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Summary  string      `json:"summary"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata describes where a response came from
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	LeagueID  string    `json:"league_id,omitempty"`
}

const (
	formatJSON = "json"
	formatText = "text"
)

// BracketHandler handles the losers bracket tools
type BracketHandler struct {
	service BracketService
	source  string
	logger  *logrus.Logger
	now     func() time.Time
}

// NewBracketHandler creates a new bracket handler. source names the league
// feed in response metadata.
func NewBracketHandler(svc BracketService, source string, logger *logrus.Logger) *BracketHandler {
	return &BracketHandler{
		service: svc,
		source:  source,
		logger:  logger,
		now:     time.Now,
	}
}

func formatProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Response format: \"json\" (default) or \"text\" for a printable table",
		"enum":        []string{formatJSON, formatText},
	}
}

// GetLosersBracketTool returns the tool definition for get_losers_bracket
func (h *BracketHandler) GetLosersBracketTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_losers_bracket",
		Description: "Get the live losers bracket: the bottom teams after the regular season, their bracket-week point totals, the final ranking and how many points last place needs to escape",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"format": formatProperty(),
			},
		},
	}
}

// HandleGetLosersBracket handles the get_losers_bracket tool call
func (h *BracketHandler) HandleGetLosersBracket(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_losers_bracket")

	format, err := parseFormat(args)
	if err != nil {
		return nil, err
	}

	result, err := h.service.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute losers bracket")
		return errorResult(fmt.Sprintf("Failed to compute losers bracket: %s", describe(err))), nil
	}

	if format == formatText {
		return textResult(render.BracketText(result)), nil
	}

	summary := fmt.Sprintf("%s is in last place after week %d", result.Name(result.Escape.LastPlace), result.CurrentWeek)
	if result.LiveUnavailable {
		summary += "; live scores unavailable"
	}
	return h.jsonResult(result, summary, result.LeagueID)
}

// GetRegularSeasonStandingsTool returns the tool definition for get_regular_season_standings
func (h *BracketHandler) GetRegularSeasonStandingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_regular_season_standings",
		Description: "Get regular-season standings through the cutoff week, ordered by win percentage then points for, with the losers bracket teams marked",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"format": formatProperty(),
			},
		},
	}
}

// HandleGetRegularSeasonStandings handles the get_regular_season_standings tool call
func (h *BracketHandler) HandleGetRegularSeasonStandings(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_regular_season_standings")

	format, err := parseFormat(args)
	if err != nil {
		return nil, err
	}

	report, err := h.service.Standings(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute standings")
		return errorResult(fmt.Sprintf("Failed to compute standings: %s", describe(err))), nil
	}

	if format == formatText {
		return textResult(render.StandingsText(report)), nil
	}
	summary := fmt.Sprintf("Standings for %d teams through week %d", len(report.Standings), report.Cutoff)
	return h.jsonResult(report, summary, report.LeagueID)
}

// GetLiveMatchupsTool returns the tool definition for get_live_matchups
func (h *BracketHandler) GetLiveMatchupsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_live_matchups",
		Description: "Get matchup scores for a week, including in-progress games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"week": map[string]interface{}{
					"type":        "integer",
					"description": "Week number (1-18); defaults to the current week",
				},
				"format": formatProperty(),
			},
		},
	}
}

// HandleGetLiveMatchups handles the get_live_matchups tool call
func (h *BracketHandler) HandleGetLiveMatchups(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_live_matchups")

	format, err := parseFormat(args)
	if err != nil {
		return nil, err
	}

	week := 0
	if raw, ok := args["week"]; ok {
		weekFloat, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("week must be a number")
		}
		if weekFloat != math.Trunc(weekFloat) {
			return nil, fmt.Errorf("week must be a whole number, got %v", weekFloat)
		}
		week = int(weekFloat)
		if week < 1 || week > 18 {
			return nil, fmt.Errorf("week must be between 1 and 18")
		}
	}

	matchups, err := h.service.LiveMatchups(ctx, week)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get live matchups")
		return errorResult(fmt.Sprintf("Failed to get matchups: %s", describe(err))), nil
	}

	if format == formatText {
		return textResult(render.MatchupsText(matchups)), nil
	}
	summary := fmt.Sprintf("Found %d matchups for week %d", len(matchups.Matchups), matchups.Week)
	return h.jsonResult(matchups, summary, "")
}

func (h *BracketHandler) jsonResult(data interface{}, summary, leagueID string) (*mcp.CallToolResult, error) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Summary: summary,
		Metadata: Metadata{
			Timestamp: h.now(),
			Source:    h.source,
			LeagueID:  leagueID,
		},
	}

	jsonResponse, err := formatJSONResponse(response)
	if err != nil {
		h.logger.WithError(err).Error("Failed to format response")
		return errorResult(fmt.Sprintf("Error formatting response: %s", err.Error())), nil
	}
	return textResult(jsonResponse), nil
}
