package bracket

import "fmt"

// SelectCohort returns the bottom n entries of descending standings. The
// returned slice keeps regular-season order, so index n-1 is the worst team;
// that order doubles as the tiebreak fallback.
func SelectCohort(standings []StandingsEntry, n int) ([]StandingsEntry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cohort size must be positive, got %d", ErrInvalidSettings, n)
	}
	if len(standings) < n {
		return nil, fmt.Errorf("%w: league has %d teams, cohort needs %d", ErrInvalidSettings, len(standings), n)
	}

	cohort := make([]StandingsEntry, n)
	copy(cohort, standings[len(standings)-n:])
	return cohort, nil
}

// CohortIDs extracts the team ids of a cohort in order.
func CohortIDs(cohort []StandingsEntry) []TeamID {
	ids := make([]TeamID, len(cohort))
	for i, entry := range cohort {
		ids[i] = entry.TeamID
	}
	return ids
}
