package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	BaseURL        = "https://api.sleeper.app/v1"
	DefaultTimeout = 10 * time.Second
)

// Client defines the Sleeper API calls needed to rebuild a league's season
type Client interface {
	GetNFLState(ctx context.Context) (*NFLState, error)
	GetLeague(ctx context.Context, leagueID string) (*League, error)
	GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error)
	GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error)
}

// HTTPClient implements the Client interface using HTTP requests
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPClient creates a new HTTP client for the Sleeper API
func NewHTTPClient(logger *logrus.Logger, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// WithBaseURL points the client at a different API root.
func (c *HTTPClient) WithBaseURL(baseURL string) *HTTPClient {
	c.baseURL = baseURL
	return c
}

// makeRequest performs an HTTP GET request to the Sleeper API
func (c *HTTPClient) makeRequest(ctx context.Context, endpoint string, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	c.logger.WithField("url", url).Debug("Making API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("HTTP request failed")
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Error("Failed to read response body")
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("API request failed")

		return &SleeperError{
			Type:       "api_error",
			Message:    fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	// Sleeper answers unknown ids with 200 and a literal null.
	if string(body) == "null" {
		return &SleeperError{
			Type:       "not_found",
			Message:    fmt.Sprintf("no data at %s", endpoint),
			StatusCode: http.StatusNotFound,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		c.logger.WithError(err).WithField("body", string(body)).Error("Failed to unmarshal response")
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.logger.Debug("API request completed successfully")
	return nil
}

// GetNFLState retrieves the current NFL week and season
func (c *HTTPClient) GetNFLState(ctx context.Context) (*NFLState, error) {
	var state NFLState

	if err := c.makeRequest(ctx, "/state/nfl", &state); err != nil {
		return nil, fmt.Errorf("failed to get nfl state: %w", err)
	}

	return &state, nil
}

// GetLeague retrieves comprehensive league information
func (c *HTTPClient) GetLeague(ctx context.Context, leagueID string) (*League, error) {
	endpoint := fmt.Sprintf("/league/%s", leagueID)
	var league League

	if err := c.makeRequest(ctx, endpoint, &league); err != nil {
		return nil, fmt.Errorf("failed to get league %s: %w", leagueID, err)
	}

	return &league, nil
}

// GetLeagueUsers retrieves all users in a league
func (c *HTTPClient) GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error) {
	endpoint := fmt.Sprintf("/league/%s/users", leagueID)
	var users []User

	if err := c.makeRequest(ctx, endpoint, &users); err != nil {
		return nil, fmt.Errorf("failed to get users for league %s: %w", leagueID, err)
	}

	return users, nil
}

// GetLeagueRosters retrieves all rosters in a league
func (c *HTTPClient) GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	endpoint := fmt.Sprintf("/league/%s/rosters", leagueID)
	var rosters []Roster

	if err := c.makeRequest(ctx, endpoint, &rosters); err != nil {
		return nil, fmt.Errorf("failed to get rosters for league %s: %w", leagueID, err)
	}

	return rosters, nil
}

// GetMatchups retrieves matchups for a specific week. During a live week the
// points are the in-progress totals.
func (c *HTTPClient) GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error) {
	endpoint := fmt.Sprintf("/league/%s/matchups/%d", leagueID, week)
	var matchups []Matchup

	if err := c.makeRequest(ctx, endpoint, &matchups); err != nil {
		return nil, fmt.Errorf("failed to get matchups for league %s week %d: %w", leagueID, week, err)
	}

	return matchups, nil
}
