package bracket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeLive is a LiveFeed backed by a function field.
type fakeLive struct {
	LiveMatchupsFunc func(ctx context.Context, week int) ([]Matchup, error)
	calls            int
}

func (f *fakeLive) LiveMatchups(ctx context.Context, week int) ([]Matchup, error) {
	f.calls++
	if f.LiveMatchupsFunc != nil {
		return f.LiveMatchupsFunc(ctx, week)
	}
	return nil, errors.New("not implemented")
}

func repeatOutcome(o Outcome, n int) []Outcome {
	out := make([]Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

func repeatScore(s float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// makeTeam builds a team with `wins` wins followed by losses over the cutoff,
// each regular-season week scoring `weekly`, followed by bracket weeks.
func makeTeam(id string, wins, cutoff int, weekly float64, bracketWeeks ...float64) Team {
	outcomes := append(repeatOutcome(OutcomeWin, wins), repeatOutcome(OutcomeLoss, cutoff-wins)...)
	scores := repeatScore(weekly, cutoff)
	for range bracketWeeks {
		outcomes = append(outcomes, OutcomeNoContest)
	}
	scores = append(scores, bracketWeeks...)
	return Team{ID: TeamID(id), Name: "Team " + id, Outcomes: outcomes, Scores: scores}
}

func sixTeamLeague(currentWeek int, bracketWeeks map[string][]float64) Snapshot {
	return Snapshot{
		LeagueID:    "league-1",
		Season:      2025,
		CurrentWeek: currentWeek,
		Teams: []Team{
			makeTeam("a", 10, 14, 110, bracketWeeks["a"]...),
			makeTeam("b", 9, 14, 105, bracketWeeks["b"]...),
			makeTeam("c", 7, 14, 100, bracketWeeks["c"]...),
			makeTeam("d", 6, 14, 95, bracketWeeks["d"]...),
			makeTeam("e", 6, 14, 90, bracketWeeks["e"]...),
			makeTeam("f", 4, 14, 80, bracketWeeks["f"]...),
		},
	}
}

func TestComputeStandings_Records(t *testing.T) {
	teams := []Team{
		{ID: "x", Outcomes: []Outcome{OutcomeWin, OutcomeTie, OutcomeLoss, OutcomeWin}, Scores: []float64{100, 90, 80, 70}},
		{ID: "y", Outcomes: []Outcome{OutcomeLoss, OutcomeTie, OutcomeWin, OutcomeLoss, OutcomeWin}, Scores: []float64{50, 60, 70, 80, 999}},
	}

	standings, err := ComputeStandings(teams, 4)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	for _, entry := range standings {
		require.Equal(t, 4, entry.Wins+entry.Losses+entry.Ties)
		require.GreaterOrEqual(t, entry.WinFraction, 0.0)
		require.LessOrEqual(t, entry.WinFraction, 1.0)
	}

	require.Equal(t, TeamID("x"), standings[0].TeamID)
	require.Equal(t, 1, standings[0].Rank)
	require.InDelta(t, 2.5/4, standings[0].WinFraction, 1e-9)
	require.InDelta(t, 340.0, standings[0].PointsFor, 1e-9)
	require.Equal(t, "2-1-1", standings[0].Record())

	// Week five is past the cutoff and must not count.
	require.InDelta(t, 260.0, standings[1].PointsFor, 1e-9)
	require.Equal(t, 2, standings[1].Rank)
}

func TestComputeStandings_PointsForBreaksWinFractionTies(t *testing.T) {
	low := makeTeam("low", 7, 14, 90)
	high := makeTeam("high", 7, 14, 91)

	standings, err := ComputeStandings([]Team{low, high}, 14)
	require.NoError(t, err)
	require.Equal(t, []TeamID{"high", "low"}, CohortIDs(standings))

	low.Scores[0] += 20
	standings, err = ComputeStandings([]Team{low, high}, 14)
	require.NoError(t, err)
	require.Equal(t, []TeamID{"low", "high"}, CohortIDs(standings))
}

func TestComputeStandings_InsufficientData(t *testing.T) {
	teams := []Team{
		makeTeam("a", 5, 14, 100),
		{ID: "short", Outcomes: repeatOutcome(OutcomeWin, 13), Scores: repeatScore(100, 13)},
	}

	_, err := ComputeStandings(teams, 14)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInsufficientData))
	require.False(t, errors.Is(err, ErrFeedUnavailable))
}

func TestSelectCohort(t *testing.T) {
	snap := sixTeamLeague(15, nil)
	standings, err := ComputeStandings(snap.Teams, 14)
	require.NoError(t, err)

	cohort, err := SelectCohort(standings, 4)
	require.NoError(t, err)
	require.Len(t, cohort, 4)
	require.Equal(t, []TeamID{"c", "d", "e", "f"}, CohortIDs(cohort))
	require.Equal(t, standings[2:], cohort)
	require.Equal(t, TeamID("f"), cohort[3].TeamID)

	_, err = SelectCohort(standings[:3], 4)
	require.True(t, errors.Is(err, ErrInvalidSettings))
}

func TestAggregate_BeforeWindowIsZero(t *testing.T) {
	snap := sixTeamLeague(14, nil)
	live := &fakeLive{}

	agg := Aggregate(context.Background(), snap.Teams[2:], 14, Window{Start: 15, End: 17}, live)

	require.Equal(t, 0, agg.CompletedBracketWeeks)
	require.False(t, agg.Live.Attempted)
	require.Equal(t, 0, live.calls)
	for _, team := range snap.Teams[2:] {
		require.Equal(t, 0.0, agg.Tally[team.ID])
	}
}

func TestAggregate_FinalizedAndLive(t *testing.T) {
	snap := sixTeamLeague(16, map[string][]float64{
		"a": {120}, "b": {130}, "c": {101.5}, "d": {99}, "e": {88}, "f": {77},
	})
	live := &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		require.Equal(t, 16, week)
		return []Matchup{
			{Week: 16, Home: MatchupSide{TeamID: "c", Score: 10}, Away: MatchupSide{TeamID: "d", Score: 20}},
			{Week: 16, Home: MatchupSide{TeamID: "a", Score: 500}, Away: MatchupSide{TeamID: "e", Score: 30}},
			{Week: 16, Home: MatchupSide{TeamID: "f", Score: 40}},
		}, nil
	}}

	agg := Aggregate(context.Background(), snap.Teams[2:], 16, Window{Start: 15, End: 17}, live)

	require.Equal(t, 1, agg.CompletedBracketWeeks)
	require.True(t, agg.Live.Attempted)
	require.True(t, agg.Live.Available)
	require.NoError(t, agg.Live.Err())
	require.Equal(t, Tally{"c": 111.5, "d": 119, "e": 118, "f": 117}, agg.Tally)
	_, hasA := agg.Tally["a"]
	require.False(t, hasA)
}

func TestAggregate_NonCohortLiveScoreIsIgnored(t *testing.T) {
	snap := sixTeamLeague(15, nil)
	cohort := snap.Teams[2:]
	window := Window{Start: 15, End: 17}

	base := Aggregate(context.Background(), cohort, 15, window, &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		return []Matchup{{Week: 15, Home: MatchupSide{TeamID: "c", Score: 12}}}, nil
	}})
	withOutsider := Aggregate(context.Background(), cohort, 15, window, &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		return []Matchup{
			{Week: 15, Home: MatchupSide{TeamID: "c", Score: 12}},
			{Week: 15, Home: MatchupSide{TeamID: "a", Score: 150}, Away: MatchupSide{TeamID: "zzz", Score: 3}},
		}, nil
	}})

	require.Equal(t, base.Tally, withOutsider.Tally)
}

func TestAggregate_LiveFailureIsAbsorbed(t *testing.T) {
	snap := sixTeamLeague(17, map[string][]float64{
		"a": {1, 1}, "b": {1, 1}, "c": {50, 50}, "d": {40, 40}, "e": {30, 30}, "f": {20, 20},
	})
	tests := []struct {
		name string
		live LiveFeed
	}{
		{name: "feed error", live: &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
			return nil, errors.New("401 unauthorized")
		}}},
		{name: "no matchups", live: &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
			return nil, nil
		}}},
		{name: "no feed", live: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(context.Background(), snap.Teams[2:], 17, Window{Start: 15, End: 17}, tt.live)

			require.Equal(t, 2, agg.CompletedBracketWeeks)
			require.True(t, agg.Live.Attempted)
			require.False(t, agg.Live.Available)
			require.True(t, errors.Is(agg.Live.Err(), ErrLiveFetchFailed))
			require.NotEmpty(t, agg.Live.Error)
			require.Equal(t, Tally{"c": 100, "d": 80, "e": 60, "f": 40}, agg.Tally)
		})
	}
}

func TestAggregate_FinalizedWeekIsNotCountedTwice(t *testing.T) {
	// Week 16 is already finalized even though the feed still reports it as current.
	snap := sixTeamLeague(16, map[string][]float64{
		"a": {1, 1}, "b": {1, 1}, "c": {50, 50}, "d": {40, 40}, "e": {30, 30}, "f": {20, 20},
	})
	live := &fakeLive{}

	agg := Aggregate(context.Background(), snap.Teams[2:], 16, Window{Start: 15, End: 17}, live)

	require.Equal(t, 0, live.calls)
	require.False(t, agg.Live.Attempted)
	require.Equal(t, 100.0, agg.Tally["c"])
}

func TestAggregate_ClampsToWindow(t *testing.T) {
	snap := sixTeamLeague(19, map[string][]float64{
		"a": {1, 1, 1, 1}, "b": {1, 1, 1, 1}, "c": {10, 10, 10, 500}, "d": {1, 1, 1, 1}, "e": {1, 1, 1, 1}, "f": {1, 1, 1, 1},
	})

	agg := Aggregate(context.Background(), snap.Teams[2:], 19, Window{Start: 15, End: 17}, nil)

	require.Equal(t, 3, agg.CompletedBracketWeeks)
	require.False(t, agg.Live.Attempted)
	require.Equal(t, 30.0, agg.Tally["c"])
}

func TestResolve_AllTiedUsesFallback(t *testing.T) {
	cohort := []StandingsEntry{{TeamID: "A"}, {TeamID: "B"}, {TeamID: "C"}, {TeamID: "D"}}
	tally := Tally{"A": 100, "B": 100, "C": 100, "D": 100}

	ranking, tiebreak := Resolve(tally, cohort)

	require.True(t, tiebreak)
	require.Equal(t, []TeamID{"A", "B", "C", "D"}, rankingIDs(ranking))
	require.True(t, ranking[0].TopOfLosers)
	require.True(t, ranking[3].LastPlace)

	margin := Escape(ranking, tally, tiebreak, 16, 17)
	require.Equal(t, 0.0, margin.PointsNeeded)
	require.Equal(t, TeamID("D"), margin.LastPlace)
	require.Equal(t, TeamID("C"), margin.SecondLast)
}

func TestResolve_SortsByTallyWithStablePartialTies(t *testing.T) {
	// Regular-season order puts C ahead of B, so the stable sort keeps C first.
	cohort := []StandingsEntry{{TeamID: "D"}, {TeamID: "C"}, {TeamID: "B"}, {TeamID: "A"}}
	tally := Tally{"A": 310.5, "B": 298.0, "C": 298.0, "D": 280.0}

	ranking, tiebreak := Resolve(tally, cohort)

	require.False(t, tiebreak)
	require.Equal(t, []TeamID{"A", "C", "B", "D"}, rankingIDs(ranking))
	require.Equal(t, 310.5, ranking[0].Score)
	require.Equal(t, 4, ranking[3].Position)

	margin := Escape(ranking, tally, tiebreak, 17, 17)
	require.Equal(t, TeamID("D"), margin.LastPlace)
	require.Equal(t, TeamID("B"), margin.SecondLast)
	require.InDelta(t, 18.01, margin.PointsNeeded, 1e-9)
	require.Equal(t, 1, margin.RemainingWeeks)
	require.False(t, margin.SeasonOver)
}

func TestEscape(t *testing.T) {
	ranking := []RankedTeam{{TeamID: "A"}, {TeamID: "B"}}
	tests := []struct {
		name          string
		tally         Tally
		week          int
		wantNeeded    float64
		wantRemaining int
		wantOver      bool
	}{
		{name: "equal tallies need a hundredth", tally: Tally{"A": 50, "B": 50}, week: 15, wantNeeded: 0.01, wantRemaining: 3},
		{name: "gap", tally: Tally{"A": 60, "B": 50}, week: 16, wantNeeded: 10.01, wantRemaining: 2},
		{name: "order disagrees with tally", tally: Tally{"A": 40, "B": 50}, week: 17, wantNeeded: 0, wantRemaining: 1},
		{name: "season over", tally: Tally{"A": 60, "B": 50}, week: 18, wantNeeded: 10.01, wantRemaining: 0, wantOver: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			margin := Escape(ranking, tt.tally, false, tt.week, 17)
			require.GreaterOrEqual(t, margin.PointsNeeded, 0.0)
			require.InDelta(t, tt.wantNeeded, margin.PointsNeeded, 1e-9)
			require.Equal(t, tt.wantRemaining, margin.RemainingWeeks)
			require.Equal(t, tt.wantOver, margin.SeasonOver)
		})
	}

	require.Equal(t, 0.01, Escape(ranking, Tally{"A": 50, "B": 50}, false, 15, 17).PointsNeeded)
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	bad := []Settings{
		{Cutoff: 0, Window: Window{Start: 1, End: 3}, CohortSize: 4},
		{Cutoff: 14, Window: Window{Start: 16, End: 17}, CohortSize: 4},
		{Cutoff: 14, Window: Window{Start: 15, End: 14}, CohortSize: 4},
		{Cutoff: 14, Window: Window{Start: 15, End: 17}, CohortSize: 1},
	}
	for _, s := range bad {
		require.True(t, errors.Is(s.Validate(), ErrInvalidSettings), "settings %+v", s)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	snap := sixTeamLeague(16, map[string][]float64{
		"a": {1}, "b": {1}, "c": {120}, "d": {110}, "e": {100}, "f": {90},
	})
	live := &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		return []Matchup{
			{Week: 16, Home: MatchupSide{TeamID: "c", Score: 5}, Away: MatchupSide{TeamID: "f", Score: 40}},
		}, nil
	}}

	res, err := Run(context.Background(), snap, DefaultSettings(), live)
	require.NoError(t, err)

	require.Equal(t, []TeamID{"f", "c", "d", "e"}, rankingIDs(res.Ranking))
	require.Equal(t, TeamID("e"), res.Escape.LastPlace)
	require.Equal(t, TeamID("d"), res.Escape.SecondLast)
	require.InDelta(t, 10.01, res.Escape.PointsNeeded, 1e-9)
	require.Equal(t, 2, res.Escape.RemainingWeeks)
	require.True(t, res.LiveActive)
	require.False(t, res.LiveUnavailable)
	require.Equal(t, "Team f", res.Name("f"))
	require.Len(t, res.Cohort, 4)
}

func TestRun_AllTiedEndToEnd(t *testing.T) {
	snap := sixTeamLeague(16, map[string][]float64{
		"a": {1}, "b": {1}, "c": {100}, "d": {100}, "e": {100}, "f": {100},
	})

	res, err := Run(context.Background(), snap, DefaultSettings(), &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		return nil, errors.New("week not started")
	}})
	require.NoError(t, err)

	require.True(t, res.TiebreakUsed)
	require.True(t, res.LiveUnavailable)
	require.Equal(t, CohortIDs(res.Cohort), rankingIDs(res.Ranking))
	require.Equal(t, 0.0, res.Escape.PointsNeeded)
}

func TestRun_IsDeterministic(t *testing.T) {
	snap := sixTeamLeague(17, map[string][]float64{
		"a": {1, 2}, "b": {3, 4}, "c": {101.25, 99.5}, "d": {88.1, 77.3}, "e": {120, 60}, "f": {95, 95},
	})
	live := &fakeLive{LiveMatchupsFunc: func(ctx context.Context, week int) ([]Matchup, error) {
		return []Matchup{{Week: 17, Home: MatchupSide{TeamID: "d", Score: 33.3}, Away: MatchupSide{TeamID: "e", Score: 12.7}}}, nil
	}}

	first, err := Run(context.Background(), snap, DefaultSettings(), live)
	require.NoError(t, err)
	second, err := Run(context.Background(), snap, DefaultSettings(), live)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestRun_InsufficientData(t *testing.T) {
	snap := Snapshot{CurrentWeek: 14, Teams: []Team{
		{ID: "a", Outcomes: repeatOutcome(OutcomeWin, 13), Scores: repeatScore(1, 13)},
	}}

	_, err := Run(context.Background(), snap, DefaultSettings(), nil)
	require.True(t, errors.Is(err, ErrInsufficientData))
}

func rankingIDs(ranking []RankedTeam) []TeamID {
	ids := make([]TeamID, len(ranking))
	for i, r := range ranking {
		ids[i] = r.TeamID
	}
	return ids
}
