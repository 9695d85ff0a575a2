package feed

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/sleeper"
	"github.com/sirupsen/logrus"
)

// Sleeper rebuilds a league's season from Sleeper's weekly matchups.
type Sleeper struct {
	client   sleeper.Client
	leagueID string
	logger   *logrus.Logger
	weeks    *weekStore
}

// NewSleeper creates a Sleeper feed for one league.
func NewSleeper(client sleeper.Client, leagueID string, logger *logrus.Logger) *Sleeper {
	return &Sleeper{
		client:   client,
		leagueID: leagueID,
		logger:   logger,
		weeks:    newWeekStore(),
	}
}

func (s *Sleeper) Name() string { return "sleeper" }

// Snapshot fetches the league, its members and every finalized week.
func (s *Sleeper) Snapshot(ctx context.Context) (bracket.Snapshot, error) {
	league, err := s.client.GetLeague(ctx, s.leagueID)
	if err != nil {
		return bracket.Snapshot{}, err
	}

	currentWeek, completed, err := s.weekPointers(ctx, league)
	if err != nil {
		return bracket.Snapshot{}, err
	}

	rosters, err := s.client.GetLeagueRosters(ctx, s.leagueID)
	if err != nil {
		return bracket.Snapshot{}, err
	}
	users, err := s.client.GetLeagueUsers(ctx, s.leagueID)
	if err != nil {
		return bracket.Snapshot{}, err
	}

	sort.Slice(rosters, func(i, j int) bool {
		return rosters[i].RosterID < rosters[j].RosterID
	})

	userMap := make(map[string]*sleeper.User)
	for i := range users {
		userMap[users[i].UserID] = &users[i]
	}

	teams := make([]bracket.Team, len(rosters))
	byRoster := make(map[int]*bracket.Team, len(rosters))
	for i, roster := range rosters {
		teams[i] = bracket.Team{
			ID:   rosterTeamID(roster.RosterID),
			Name: fmt.Sprintf("Team %d", roster.RosterID),
		}
		if user, exists := userMap[roster.OwnerID]; exists {
			teams[i].Owner = user.DisplayName
			teams[i].Name = user.DisplayName
			if name := user.TeamName(); name != "" {
				teams[i].Name = name
			}
		}
		byRoster[roster.RosterID] = &teams[i]
	}

	// A roster missing from a week stops accumulating so weeks stay aligned.
	stopped := make(map[int]bool)
	for week := 1; week <= completed; week++ {
		matchups, err := s.finalizedWeek(ctx, week)
		if err != nil {
			return bracket.Snapshot{}, err
		}

		seen := make(map[int]bool, len(matchups))
		for _, result := range weekResults(matchups) {
			seen[result.rosterID] = true
			team, ok := byRoster[result.rosterID]
			if !ok || stopped[result.rosterID] {
				continue
			}
			team.Outcomes = append(team.Outcomes, result.outcome)
			team.Scores = append(team.Scores, result.score)
		}
		for rosterID := range byRoster {
			if !seen[rosterID] && !stopped[rosterID] {
				stopped[rosterID] = true
				s.logger.WithFields(logrus.Fields{
					"league_id": s.leagueID,
					"roster_id": rosterID,
					"week":      week,
				}).Warn("Roster missing from finalized week")
			}
		}
	}

	return bracket.Snapshot{
		LeagueID:    s.leagueID,
		Season:      league.SeasonYear(),
		CurrentWeek: currentWeek,
		Teams:       teams,
	}, nil
}

// LiveMatchups returns the in-progress pairings for a week. Rosters without
// exactly one opponent come back as one-sided matchups, the same shape
// weekResults scores as no contest.
func (s *Sleeper) LiveMatchups(ctx context.Context, week int) ([]bracket.Matchup, error) {
	matchups, err := s.client.GetMatchups(ctx, s.leagueID, week)
	if err != nil {
		return nil, err
	}

	groups, unpaired := groupMatchups(matchups)
	result := make([]bracket.Matchup, 0, len(matchups))
	oneSided := func(m sleeper.Matchup) bracket.Matchup {
		return bracket.Matchup{
			Week: week,
			Home: bracket.MatchupSide{TeamID: rosterTeamID(m.RosterID), Score: m.Score()},
		}
	}
	for _, group := range groups {
		if len(group) != 2 {
			for _, m := range group {
				result = append(result, oneSided(m))
			}
			continue
		}
		result = append(result, bracket.Matchup{
			Week: week,
			Home: bracket.MatchupSide{TeamID: rosterTeamID(group[0].RosterID), Score: group[0].Score()},
			Away: bracket.MatchupSide{TeamID: rosterTeamID(group[1].RosterID), Score: group[1].Score()},
		})
	}
	for _, single := range unpaired {
		result = append(result, oneSided(single))
	}
	return result, nil
}

// weekPointers derives the current week and the last finalized week. The
// league's own leg counters are preferred because the NFL state resets its
// week during the NFL postseason.
func (s *Sleeper) weekPointers(ctx context.Context, league *sleeper.League) (current, completed int, err error) {
	current = league.Settings.Leg
	if current == 0 {
		state, err := s.client.GetNFLState(ctx)
		if err != nil {
			return 0, 0, err
		}
		current = state.Week
	}

	completed = league.Settings.LastScoredLeg
	if completed == 0 {
		completed = current - 1
	}
	if current <= completed {
		current = completed + 1
	}
	return current, completed, nil
}

func (s *Sleeper) finalizedWeek(ctx context.Context, week int) ([]sleeper.Matchup, error) {
	if cached, ok := s.weeks.Get(week); ok {
		return cached, nil
	}
	matchups, err := s.client.GetMatchups(ctx, s.leagueID, week)
	if err != nil {
		return nil, err
	}
	s.weeks.Set(week, matchups)
	return matchups, nil
}

type rosterResult struct {
	rosterID int
	outcome  bracket.Outcome
	score    float64
}

// weekResults turns one finalized week into an outcome and score per roster.
func weekResults(matchups []sleeper.Matchup) []rosterResult {
	groups, unpaired := groupMatchups(matchups)

	results := make([]rosterResult, 0, len(matchups))
	for _, pair := range groups {
		if len(pair) != 2 {
			for _, m := range pair {
				results = append(results, rosterResult{rosterID: m.RosterID, outcome: bracket.OutcomeNoContest, score: m.Score()})
			}
			continue
		}
		a, b := pair[0], pair[1]
		aOutcome, bOutcome := bracket.OutcomeTie, bracket.OutcomeTie
		if a.Score() > b.Score() {
			aOutcome, bOutcome = bracket.OutcomeWin, bracket.OutcomeLoss
		} else if b.Score() > a.Score() {
			aOutcome, bOutcome = bracket.OutcomeLoss, bracket.OutcomeWin
		}
		results = append(results,
			rosterResult{rosterID: a.RosterID, outcome: aOutcome, score: a.Score()},
			rosterResult{rosterID: b.RosterID, outcome: bOutcome, score: b.Score()},
		)
	}
	for _, m := range unpaired {
		results = append(results, rosterResult{rosterID: m.RosterID, outcome: bracket.OutcomeNoContest, score: m.Score()})
	}
	return results
}

// groupMatchups pairs rosters by matchup id, ordered by matchup id then
// roster id. Rosters with no matchup id are returned separately.
func groupMatchups(matchups []sleeper.Matchup) ([][]sleeper.Matchup, []sleeper.Matchup) {
	byID := make(map[int][]sleeper.Matchup)
	var ids []int
	var unpaired []sleeper.Matchup
	for _, m := range matchups {
		if m.MatchupID == nil {
			unpaired = append(unpaired, m)
			continue
		}
		id := *m.MatchupID
		if _, exists := byID[id]; !exists {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], m)
	}
	sort.Ints(ids)

	groups := make([][]sleeper.Matchup, 0, len(ids))
	for _, id := range ids {
		group := byID[id]
		sort.Slice(group, func(i, j int) bool {
			return group[i].RosterID < group[j].RosterID
		})
		groups = append(groups, group)
	}
	sort.Slice(unpaired, func(i, j int) bool {
		return unpaired[i].RosterID < unpaired[j].RosterID
	})
	return groups, unpaired
}

func rosterTeamID(rosterID int) bracket.TeamID {
	return bracket.TeamID(strconv.Itoa(rosterID))
}
