package bracket

import (
	"context"
	"fmt"
)

// LiveFeed supplies in-progress matchup scores for a week.
type LiveFeed interface {
	LiveMatchups(ctx context.Context, week int) ([]Matchup, error)
}

// LiveStatus reports what happened to the live addend of an aggregation.
type LiveStatus struct {
	Attempted bool   `json:"attempted"`
	Available bool   `json:"available"`
	Week      int    `json:"week,omitempty"`
	Error     string `json:"error,omitempty"`
	err       error
}

// Err returns the live fetch failure, wrapping ErrLiveFetchFailed, or nil.
func (s LiveStatus) Err() error {
	return s.err
}

// Aggregation is the Bracket Aggregator output. It is never mutated after
// Aggregate returns, so it can be shared between callers.
type Aggregation struct {
	Tally                 Tally      `json:"tally"`
	CompletedBracketWeeks int        `json:"completed_bracket_weeks"`
	Live                  LiveStatus `json:"live"`
}

// Aggregate sums each cohort team's finalized scores inside the window and,
// when the current week is a bracket week that has not been finalized yet,
// adds live scores from the feed. A live feed failure leaves the finalized
// tally intact and is reported through Aggregation.Live.
func Aggregate(ctx context.Context, cohort []Team, currentWeek int, window Window, live LiveFeed) Aggregation {
	agg := Aggregation{Tally: make(Tally, len(cohort))}
	if len(cohort) == 0 {
		return agg
	}

	actualCompleted := len(cohort[0].Scores)
	agg.CompletedBracketWeeks = completedBracketWeeks(actualCompleted, window)

	offset := window.Start - 1
	for _, team := range cohort {
		agg.Tally[team.ID] = 0
		end := offset + agg.CompletedBracketWeeks
		if end > len(team.Scores) {
			end = len(team.Scores)
		}
		for week := offset; week < end; week++ {
			agg.Tally[team.ID] += team.Scores[week]
		}
	}

	// A week already in the finalized scores must not be counted twice.
	if !window.Contains(currentWeek) || currentWeek <= actualCompleted {
		return agg
	}

	agg.Live = LiveStatus{Attempted: true, Week: currentWeek}
	matchups, err := fetchLive(ctx, live, currentWeek)
	if err != nil {
		agg.Live.err = err
		agg.Live.Error = err.Error()
		return agg
	}

	agg.Live.Available = true
	for _, m := range matchups {
		for _, side := range m.Sides() {
			if _, inCohort := agg.Tally[side.TeamID]; inCohort {
				agg.Tally[side.TeamID] += side.Score
			}
		}
	}

	return agg
}

func completedBracketWeeks(actualCompleted int, window Window) int {
	completed := actualCompleted - (window.Start - 1)
	if completed < 0 {
		return 0
	}
	if completed > window.Len() {
		return window.Len()
	}
	return completed
}

func fetchLive(ctx context.Context, live LiveFeed, week int) ([]Matchup, error) {
	if live == nil {
		return nil, fmt.Errorf("%w: no live feed configured", ErrLiveFetchFailed)
	}
	matchups, err := live.LiveMatchups(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("%w: week %d: %w", ErrLiveFetchFailed, week, err)
	}
	if len(matchups) == 0 {
		return nil, fmt.Errorf("%w: week %d returned no matchups", ErrLiveFetchFailed, week)
	}
	return matchups, nil
}
