package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// formatJSONResponse converts a response struct to a formatted JSON string
func formatJSONResponse(response interface{}) (string, error) {
	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	return string(jsonBytes), nil
}

func parseFormat(args map[string]interface{}) (string, error) {
	raw, ok := args["format"]
	if !ok {
		return formatJSON, nil
	}
	format, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("format must be a string")
	}
	switch format {
	case "", formatJSON:
		return formatJSON, nil
	case formatText:
		return formatText, nil
	}
	return "", fmt.Errorf("format must be %q or %q", formatJSON, formatText)
}

// describe adds a hint for the error kinds a user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, bracket.ErrInsufficientData):
		return err.Error() + " (the regular season has not finished yet, check back later)"
	case errors.Is(err, bracket.ErrFeedUnavailable):
		return err.Error() + " (check the league id and, for private ESPN leagues, the ESPN_S2 and SWID cookies)"
	}
	return err.Error()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}
