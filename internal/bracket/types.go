// Package bracket computes the losers bracket: regular-season standings, the
// bottom cohort, bracket-window tallies, the final ranking and the escape
// margin for the team in last place.
package bracket

import "fmt"

// TeamID identifies a team across feed calls. Feeds must keep it stable.
type TeamID string

// Outcome is the result of a single week for one team.
type Outcome string

const (
	OutcomeWin  Outcome = "W"
	OutcomeLoss Outcome = "L"
	OutcomeTie  Outcome = "T"
	// OutcomeNoContest marks a scored week without an opponent: a bye, or a
	// one-sided week after the regular season. It counts toward completed
	// weeks and points for, never toward the record.
	OutcomeNoContest Outcome = "-"
)

// Team carries a team's finalized weekly results. Outcomes and Scores are
// aligned by week: index 0 is week 1. A week that has not been finalized is
// absent rather than zero.
type Team struct {
	ID       TeamID    `json:"id"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner,omitempty"`
	Outcomes []Outcome `json:"outcomes"`
	Scores   []float64 `json:"scores"`
}

// CompletedWeeks is the number of finalized weeks recorded for the team.
func (t Team) CompletedWeeks() int {
	if len(t.Outcomes) < len(t.Scores) {
		return len(t.Outcomes)
	}
	return len(t.Scores)
}

// TeamInfo holds display attributes looked up by TeamID.
type TeamInfo struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// Snapshot is everything the League Snapshot Feed returns for one league.
type Snapshot struct {
	LeagueID    string `json:"league_id"`
	Season      int    `json:"season"`
	CurrentWeek int    `json:"current_week"`
	Teams       []Team `json:"teams"`
}

// TeamIndex builds the lookup table from TeamID to Team.
func (s Snapshot) TeamIndex() map[TeamID]Team {
	index := make(map[TeamID]Team, len(s.Teams))
	for _, t := range s.Teams {
		index[t.ID] = t
	}
	return index
}

// Directory returns display attributes for every team in the snapshot.
func (s Snapshot) Directory() map[TeamID]TeamInfo {
	dir := make(map[TeamID]TeamInfo, len(s.Teams))
	for _, t := range s.Teams {
		dir[t.ID] = TeamInfo{Name: t.Name, Owner: t.Owner}
	}
	return dir
}

// MatchupSide is one team's live score in a matchup. An empty TeamID means
// the side is absent.
type MatchupSide struct {
	TeamID TeamID  `json:"team_id"`
	Score  float64 `json:"score"`
}

// Matchup is a single pairing from the Live Matchup Feed.
type Matchup struct {
	Week int         `json:"week"`
	Home MatchupSide `json:"home"`
	Away MatchupSide `json:"away"`
}

// Sides returns the present sides of the matchup.
func (m Matchup) Sides() []MatchupSide {
	sides := make([]MatchupSide, 0, 2)
	if m.Home.TeamID != "" {
		sides = append(sides, m.Home)
	}
	if m.Away.TeamID != "" {
		sides = append(sides, m.Away)
	}
	return sides
}

// Window is the inclusive range of bracket weeks.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of weeks in the window.
func (w Window) Len() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// Contains reports whether week falls inside the window.
func (w Window) Contains(week int) bool {
	return week >= w.Start && week <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// Settings fixes the shape of the bracket for one league.
type Settings struct {
	Cutoff     int    `json:"cutoff"`
	Window     Window `json:"window"`
	CohortSize int    `json:"cohort_size"`
}

// DefaultSettings is the standard 14-week regular season with a 15-17 bracket
// among the bottom four.
func DefaultSettings() Settings {
	return Settings{
		Cutoff:     14,
		Window:     Window{Start: 15, End: 17},
		CohortSize: 4,
	}
}

// Validate checks the bracket invariants.
func (s Settings) Validate() error {
	if s.Cutoff < 1 {
		return fmt.Errorf("%w: cutoff must be at least 1, got %d", ErrInvalidSettings, s.Cutoff)
	}
	if s.Window.Start != s.Cutoff+1 {
		return fmt.Errorf("%w: window must start the week after the cutoff (%d), got %d", ErrInvalidSettings, s.Cutoff+1, s.Window.Start)
	}
	if s.Window.End < s.Window.Start {
		return fmt.Errorf("%w: window end %d precedes start %d", ErrInvalidSettings, s.Window.End, s.Window.Start)
	}
	if s.CohortSize < 2 {
		return fmt.Errorf("%w: cohort size must be at least 2, got %d", ErrInvalidSettings, s.CohortSize)
	}
	return nil
}

// StandingsEntry is a team's regular-season record through the cutoff.
type StandingsEntry struct {
	TeamID      TeamID  `json:"team_id"`
	Rank        int     `json:"rank"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Ties        int     `json:"ties"`
	WinFraction float64 `json:"win_fraction"`
	PointsFor   float64 `json:"points_for"`
}

// Record formats the entry as W-L or W-L-T.
func (e StandingsEntry) Record() string {
	if e.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", e.Wins, e.Losses, e.Ties)
	}
	return fmt.Sprintf("%d-%d", e.Wins, e.Losses)
}

// Tally maps cohort teams to their bracket-window points.
type Tally map[TeamID]float64

// RankedTeam is one row of the final losers ranking.
type RankedTeam struct {
	Position    int     `json:"position"`
	TeamID      TeamID  `json:"team_id"`
	Score       float64 `json:"score"`
	TopOfLosers bool    `json:"top_of_losers"`
	LastPlace   bool    `json:"last_place"`
}

// EscapeMargin describes what the last-place team needs to climb out.
type EscapeMargin struct {
	LastPlace      TeamID  `json:"last_place"`
	SecondLast     TeamID  `json:"second_last"`
	PointsNeeded   float64 `json:"points_needed"`
	RemainingWeeks int     `json:"remaining_weeks"`
	SeasonOver     bool    `json:"season_over"`
}

// Result is the complete output of one pipeline run.
type Result struct {
	LeagueID        string              `json:"league_id"`
	Season          int                 `json:"season"`
	CurrentWeek     int                 `json:"current_week"`
	Settings        Settings            `json:"settings"`
	Teams           map[TeamID]TeamInfo `json:"teams"`
	Cohort          []StandingsEntry    `json:"cohort"`
	Ranking         []RankedTeam        `json:"ranking"`
	TiebreakUsed    bool                `json:"tiebreak_used"`
	Escape          EscapeMargin        `json:"escape"`
	LiveActive      bool                `json:"live_active"`
	LiveUnavailable bool                `json:"live_unavailable"`
}

// Name returns the display name for id, falling back to the id itself.
func (r *Result) Name(id TeamID) string {
	if info, ok := r.Teams[id]; ok && info.Name != "" {
		return info.Name
	}
	return string(id)
}
