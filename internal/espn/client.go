// Package espn is a minimal client for ESPN's fantasy football league API.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	BaseURL        = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	DefaultTimeout = 10 * time.Second
)

// Credentials are the browser cookies ESPN uses to authorize private leagues.
type Credentials struct {
	ESPNS2 string
	SWID   string
}

// Client fetches league data from ESPN.
type Client interface {
	GetLeague(ctx context.Context, season, leagueID int) (*LeagueResponse, error)
	GetScoreboard(ctx context.Context, season, leagueID, week int) (*LeagueResponse, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	logger     *logrus.Logger
}

// NewHTTPClient creates an ESPN client. Empty credentials work for public leagues.
func NewHTTPClient(logger *logrus.Logger, creds Credentials, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:    BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
		logger:     logger,
	}
}

// WithBaseURL points the client at a different API root.
func (c *HTTPClient) WithBaseURL(baseURL string) *HTTPClient {
	c.baseURL = baseURL
	return c
}

// GetLeague returns teams, status and the full season schedule.
func (c *HTTPClient) GetLeague(ctx context.Context, season, leagueID int) (*LeagueResponse, error) {
	query := url.Values{}
	query.Add("view", "mTeam")
	query.Add("view", "mMatchupScore")
	query.Add("view", "mStatus")
	query.Add("view", "mSettings")

	var league LeagueResponse
	if err := c.get(ctx, season, leagueID, query, &league); err != nil {
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	return &league, nil
}

// GetScoreboard returns the schedule with live totals for one scoring period.
func (c *HTTPClient) GetScoreboard(ctx context.Context, season, leagueID, week int) (*LeagueResponse, error) {
	query := url.Values{}
	query.Add("view", "mMatchupScore")
	query.Add("view", "mScoreboard")
	query.Set("scoringPeriodId", strconv.Itoa(week))

	var league LeagueResponse
	if err := c.get(ctx, season, leagueID, query, &league); err != nil {
		return nil, fmt.Errorf("failed to get scoreboard for league %d week %d: %w", leagueID, week, err)
	}
	return &league, nil
}

func (c *HTTPClient) get(ctx context.Context, season, leagueID int, query url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/seasons/%d/segments/0/leagues/%d?%s", c.baseURL, season, leagueID, query.Encode())
	c.logger.WithField("url", endpoint).Debug("Making ESPN request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.creds.ESPNS2 != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: c.creds.ESPNS2})
	}
	if c.creds.SWID != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: c.creds.SWID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("ESPN request failed")
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"league_id":   leagueID,
		}).Error("ESPN request rejected")
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("ESPN request failed with status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
