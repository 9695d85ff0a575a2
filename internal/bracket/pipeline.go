package bracket

import (
	"context"
	"fmt"
)

// Prepare runs the Standings Calculator and Cohort Selector for a snapshot.
func Prepare(snap Snapshot, settings Settings) (standings, cohort []StandingsEntry, err error) {
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	standings, err = ComputeStandings(snap.Teams, settings.Cutoff)
	if err != nil {
		return nil, nil, err
	}
	cohort, err = SelectCohort(standings, settings.CohortSize)
	if err != nil {
		return nil, nil, err
	}
	return standings, cohort, nil
}

// CohortTeams resolves cohort entries to the snapshot's teams, in cohort order.
func CohortTeams(snap Snapshot, cohort []StandingsEntry) ([]Team, error) {
	index := snap.TeamIndex()
	teams := make([]Team, len(cohort))
	for i, entry := range cohort {
		team, ok := index[entry.TeamID]
		if !ok {
			return nil, fmt.Errorf("cohort team %s missing from snapshot", entry.TeamID)
		}
		teams[i] = team
	}
	return teams, nil
}

// Assemble resolves the ranking and escape margin for an aggregation and
// packages everything a presentation layer needs.
func Assemble(snap Snapshot, settings Settings, cohort []StandingsEntry, agg Aggregation) *Result {
	ranking, tiebreakUsed := Resolve(agg.Tally, cohort)
	return &Result{
		LeagueID:        snap.LeagueID,
		Season:          snap.Season,
		CurrentWeek:     snap.CurrentWeek,
		Settings:        settings,
		Teams:           snap.Directory(),
		Cohort:          cohort,
		Ranking:         ranking,
		TiebreakUsed:    tiebreakUsed,
		Escape:          Escape(ranking, agg.Tally, tiebreakUsed, snap.CurrentWeek, settings.Window.End),
		LiveActive:      settings.Window.Contains(snap.CurrentWeek),
		LiveUnavailable: agg.Live.Attempted && !agg.Live.Available,
	}
}

// Run executes the whole pipeline without caching.
func Run(ctx context.Context, snap Snapshot, settings Settings, live LiveFeed) (*Result, error) {
	_, cohort, err := Prepare(snap, settings)
	if err != nil {
		return nil, err
	}
	teams, err := CohortTeams(snap, cohort)
	if err != nil {
		return nil, err
	}
	agg := Aggregate(ctx, teams, snap.CurrentWeek, settings.Window, live)
	return Assemble(snap, settings, cohort, agg), nil
}
