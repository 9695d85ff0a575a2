package feed

import (
	"context"
	"sort"
	"strconv"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/espn"
	"github.com/sirupsen/logrus"
)

// ESPN rebuilds a league's season from an ESPN league schedule.
type ESPN struct {
	client   espn.Client
	leagueID int
	season   int
	logger   *logrus.Logger
}

// NewESPN creates an ESPN feed for one league season.
func NewESPN(client espn.Client, leagueID, season int, logger *logrus.Logger) *ESPN {
	return &ESPN{
		client:   client,
		leagueID: leagueID,
		season:   season,
		logger:   logger,
	}
}

func (e *ESPN) Name() string { return "espn" }

// Snapshot returns every team with the decided matchup periods before the
// current one.
func (e *ESPN) Snapshot(ctx context.Context) (bracket.Snapshot, error) {
	league, err := e.client.GetLeague(ctx, e.season, e.leagueID)
	if err != nil {
		return bracket.Snapshot{}, err
	}

	owners := make(map[string]string, len(league.Members))
	for _, m := range league.Members {
		owners[m.ID] = m.DisplayName
	}

	espnTeams := make([]espn.Team, len(league.Teams))
	copy(espnTeams, league.Teams)
	sort.Slice(espnTeams, func(i, j int) bool {
		return espnTeams[i].ID < espnTeams[j].ID
	})

	teams := make([]bracket.Team, len(espnTeams))
	byID := make(map[int]*bracket.Team, len(espnTeams))
	for i, t := range espnTeams {
		teams[i] = bracket.Team{ID: espnTeamID(t.ID), Name: t.DisplayName()}
		if len(t.Owners) > 0 {
			teams[i].Owner = owners[t.Owners[0]]
		}
		byID[t.ID] = &teams[i]
	}

	byPeriod := make(map[int][]espn.ScheduleEntry)
	for _, entry := range league.Schedule {
		byPeriod[entry.MatchupPeriodID] = append(byPeriod[entry.MatchupPeriodID], entry)
	}

	current := league.Status.CurrentMatchupPeriod
	stopped := make(map[int]bool)
	for period := 1; period < current; period++ {
		recorded := make(map[int]bool)
		for _, entry := range byPeriod[period] {
			// Byes carry no winner but their score is final once the period closes.
			if !entry.Decided() && entry.Away != nil {
				continue
			}
			for teamID, result := range entryResults(entry) {
				team, ok := byID[teamID]
				if !ok || stopped[teamID] {
					continue
				}
				team.Outcomes = append(team.Outcomes, result.outcome)
				team.Scores = append(team.Scores, result.score)
				recorded[teamID] = true
			}
		}
		for teamID := range byID {
			if !recorded[teamID] && !stopped[teamID] {
				stopped[teamID] = true
				e.logger.WithFields(logrus.Fields{
					"league_id": e.leagueID,
					"team_id":   teamID,
					"period":    period,
				}).Debug("No decided matchup for team; later periods ignored")
			}
		}
	}

	season := league.SeasonID
	if season == 0 {
		season = e.season
	}
	return bracket.Snapshot{
		LeagueID:    strconv.Itoa(e.leagueID),
		Season:      season,
		CurrentWeek: current,
		Teams:       teams,
	}, nil
}

// LiveMatchups returns the scoreboard for a week with live totals.
func (e *ESPN) LiveMatchups(ctx context.Context, week int) ([]bracket.Matchup, error) {
	board, err := e.client.GetScoreboard(ctx, e.season, e.leagueID, week)
	if err != nil {
		return nil, err
	}

	var matchups []bracket.Matchup
	for _, entry := range board.Schedule {
		if entry.MatchupPeriodID != week {
			continue
		}
		m := bracket.Matchup{Week: week}
		if entry.Home != nil {
			m.Home = bracket.MatchupSide{TeamID: espnTeamID(entry.Home.TeamID), Score: entry.Home.LiveScore()}
		}
		if entry.Away != nil {
			m.Away = bracket.MatchupSide{TeamID: espnTeamID(entry.Away.TeamID), Score: entry.Away.LiveScore()}
		}
		matchups = append(matchups, m)
	}
	return matchups, nil
}

type teamResult struct {
	outcome bracket.Outcome
	score   float64
}

func entryResults(entry espn.ScheduleEntry) map[int]teamResult {
	results := make(map[int]teamResult, 2)
	if entry.Home == nil || entry.Away == nil {
		for _, side := range []*espn.TeamScore{entry.Home, entry.Away} {
			if side != nil {
				results[side.TeamID] = teamResult{outcome: bracket.OutcomeNoContest, score: side.TotalPoints}
			}
		}
		return results
	}

	home, away := bracket.OutcomeTie, bracket.OutcomeTie
	switch entry.Winner {
	case espn.WinnerHome:
		home, away = bracket.OutcomeWin, bracket.OutcomeLoss
	case espn.WinnerAway:
		home, away = bracket.OutcomeLoss, bracket.OutcomeWin
	}
	results[entry.Home.TeamID] = teamResult{outcome: home, score: entry.Home.TotalPoints}
	results[entry.Away.TeamID] = teamResult{outcome: away, score: entry.Away.TotalPoints}
	return results
}

func espnTeamID(id int) bracket.TeamID {
	return bracket.TeamID(strconv.Itoa(id))
}
