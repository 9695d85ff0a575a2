package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/feed"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
	"github.com/sam-maryland/losers-bracket/internal/service"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type brokenFeed struct{ err error }

func (b brokenFeed) Name() string { return "broken" }

func (b brokenFeed) Snapshot(context.Context) (bracket.Snapshot, error) {
	return bracket.Snapshot{}, b.err
}

func (b brokenFeed) LiveMatchups(context.Context, int) ([]bracket.Matchup, error) {
	return nil, b.err
}

func newTestApp(t *testing.T, f feed.Feed) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	recorder := metrics.NewRecorder()
	svc := service.New(f, bracket.DefaultSettings(), service.NewCache(service.DefaultTTL, recorder), logger, recorder)
	return New(NewHandler(logger, svc, 0), recorder)
}

func newFixtureApp(t *testing.T) *fiber.App {
	t.Helper()
	fixture, err := feed.LoadFixture("../../../testdata/league.json")
	require.NoError(t, err)
	return newTestApp(t, fixture)
}

func do(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) ErrorBody {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Error
}

func TestHealthz(t *testing.T) {
	app := newFixtureApp(t)
	resp, _ := do(t, app, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestGetBracket(t *testing.T) {
	app := newFixtureApp(t)
	resp, body := do(t, app, "/api/bracket")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result bracket.Result
	require.NoError(t, json.Unmarshal(body, &result))
	require.Len(t, result.Ranking, 4)
	require.Equal(t, bracket.TeamID("F"), result.Ranking[0].TeamID)
	require.Equal(t, bracket.TeamID("D"), result.Escape.LastPlace)
	require.InDelta(t, 10.51, result.Escape.PointsNeeded, 0.0001)
	require.True(t, result.LiveActive)
}

func TestGetBracketText(t *testing.T) {
	app := newFixtureApp(t)
	resp, body := do(t, app, "/bracket")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/plain"))
	require.Contains(t, string(body), "DEAD LAST")
}

func TestGetStandings(t *testing.T) {
	app := newFixtureApp(t)
	resp, body := do(t, app, "/api/standings")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report service.StandingsReport
	require.NoError(t, json.Unmarshal(body, &report))
	require.Len(t, report.Standings, 6)
	require.Equal(t, []bracket.TeamID{"C", "D", "E", "F"}, report.Cohort)
}

func TestGetMatchups(t *testing.T) {
	app := newFixtureApp(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		wantWeek   int
	}{
		{"current week", "/api/matchups/current", http.StatusOK, "", 16},
		{"explicit week", "/api/matchups/16", http.StatusOK, "", 16},
		{"not a number", "/api/matchups/abc", http.StatusBadRequest, CodeInvalidArgument, 0},
		{"out of range", "/api/matchups/19", http.StatusBadRequest, CodeInvalidArgument, 0},
		{"no data for week", "/api/matchups/3", http.StatusBadGateway, CodeLiveUnavailable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.target)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				require.Equal(t, tt.wantCode, decodeError(t, body).Code)
				return
			}
			var out service.WeekMatchups
			require.NoError(t, json.Unmarshal(body, &out))
			require.Equal(t, tt.wantWeek, out.Week)
			require.Len(t, out.Matchups, 3)
		})
	}
}

func TestFeedFailureMapsToBadGateway(t *testing.T) {
	app := newTestApp(t, brokenFeed{err: errors.New("connection refused")})
	resp, body := do(t, app, "/api/bracket")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	e := decodeError(t, body)
	require.Equal(t, CodeFeedUnavailable, e.Code)
	require.Contains(t, e.Message, "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newFixtureApp(t)
	do(t, app, "/api/bracket")

	resp, body := do(t, app, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "losers_bracket_pipeline_runs_total")
}
