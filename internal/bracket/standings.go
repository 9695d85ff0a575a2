package bracket

import (
	"fmt"
	"sort"
)

// ComputeStandings derives each team's record through the cutoff week and
// orders the entries by win fraction, then points for, both descending.
// Teams with equal win fraction and points for keep their input order.
//
// The win fraction denominator is always the cutoff, not games played.
func ComputeStandings(teams []Team, cutoff int) ([]StandingsEntry, error) {
	if cutoff < 1 {
		return nil, fmt.Errorf("%w: cutoff must be at least 1, got %d", ErrInvalidSettings, cutoff)
	}

	standings := make([]StandingsEntry, 0, len(teams))
	for _, team := range teams {
		if team.CompletedWeeks() < cutoff {
			return nil, fmt.Errorf("%w: team %s has %d of %d weeks", ErrInsufficientData, team.ID, team.CompletedWeeks(), cutoff)
		}

		entry := StandingsEntry{TeamID: team.ID}
		for _, outcome := range team.Outcomes[:cutoff] {
			switch outcome {
			case OutcomeWin:
				entry.Wins++
			case OutcomeLoss:
				entry.Losses++
			case OutcomeTie:
				entry.Ties++
			}
		}
		for _, score := range team.Scores[:cutoff] {
			entry.PointsFor += score
		}
		entry.WinFraction = (float64(entry.Wins) + 0.5*float64(entry.Ties)) / float64(cutoff)

		standings = append(standings, entry)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].WinFraction != standings[j].WinFraction {
			return standings[i].WinFraction > standings[j].WinFraction
		}
		return standings[i].PointsFor > standings[j].PointsFor
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, nil
}
