package bracket

import "sort"

// Resolve orders the cohort by tally, highest first. When every tally is
// identical the cohort's regular-season order is used instead and
// tiebreakUsed is true. Partial ties keep regular-season order.
func Resolve(tally Tally, cohort []StandingsEntry) (ranking []RankedTeam, tiebreakUsed bool) {
	order := CohortIDs(cohort)
	if len(order) == 0 {
		return nil, false
	}

	tiebreakUsed = allTied(tally, order)
	if !tiebreakUsed {
		sort.SliceStable(order, func(i, j int) bool {
			return tally[order[i]] > tally[order[j]]
		})
	}

	ranking = make([]RankedTeam, len(order))
	for i, id := range order {
		ranking[i] = RankedTeam{
			Position:    i + 1,
			TeamID:      id,
			Score:       tally[id],
			TopOfLosers: i == 0,
			LastPlace:   i == len(order)-1,
		}
	}
	return ranking, tiebreakUsed
}

func allTied(tally Tally, order []TeamID) bool {
	first := tally[order[0]]
	for _, id := range order[1:] {
		if tally[id] != first {
			return false
		}
	}
	return true
}
