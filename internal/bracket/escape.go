package bracket

// overtakeEpsilon turns a tie into a strict overtake.
const overtakeEpsilon = 0.01

// Escape computes how many points the last-place team needs to pass the
// second-to-last team and how many bracket weeks remain, counting the
// current one.
func Escape(ranking []RankedTeam, tally Tally, tiebreakUsed bool, currentWeek, windowEnd int) EscapeMargin {
	margin := EscapeMargin{
		RemainingWeeks: windowEnd - currentWeek + 1,
		SeasonOver:     currentWeek > windowEnd,
	}
	if margin.RemainingWeeks < 0 {
		margin.RemainingWeeks = 0
	}

	n := len(ranking)
	if n == 0 {
		return margin
	}
	margin.LastPlace = ranking[n-1].TeamID
	if n < 2 {
		return margin
	}
	margin.SecondLast = ranking[n-2].TeamID

	if tiebreakUsed {
		return margin
	}
	needed := tally[margin.SecondLast] - tally[margin.LastPlace] + overtakeEpsilon
	if needed > 0 {
		margin.PointsNeeded = needed
	}
	return margin
}
