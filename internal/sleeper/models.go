package sleeper

import "strconv"

// NFLState is Sleeper's pointer into the NFL calendar
type NFLState struct {
	Week        int    `json:"week"`
	DisplayWeek int    `json:"display_week"`
	Season      string `json:"season"`
	SeasonType  string `json:"season_type"`
	Leg         int    `json:"leg"`
}

// League represents a Sleeper fantasy league
type League struct {
	LeagueID     string         `json:"league_id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	Sport        string         `json:"sport"`
	Season       string         `json:"season"`
	Settings     LeagueSettings `json:"settings"`
	TotalRosters int            `json:"total_rosters"`
}

// SeasonYear parses the season string, returning 0 when it is not numeric.
func (l League) SeasonYear() int {
	year, err := strconv.Atoi(l.Season)
	if err != nil {
		return 0
	}
	return year
}

// LeagueSettings contains league configuration
type LeagueSettings struct {
	PlayoffTeams     int `json:"playoff_teams"`
	PlayoffWeekStart int `json:"playoff_week_start"`
	NumTeams         int `json:"num_teams"`
	StartWeek        int `json:"start_week"`
	LastScoredLeg    int `json:"last_scored_leg"`
	Leg              int `json:"leg"`
}

// User represents a Sleeper user
type User struct {
	UserID      string                 `json:"user_id"`
	Username    string                 `json:"username"`
	DisplayName string                 `json:"display_name"`
	Avatar      string                 `json:"avatar"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// TeamName returns the user's custom team name, if they set one.
func (u User) TeamName() string {
	if name, ok := u.Metadata["team_name"].(string); ok {
		return name
	}
	return ""
}

// Roster represents a team's roster
type Roster struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	Settings RosterSettings `json:"settings"`
}

// RosterSettings contains team performance data
type RosterSettings struct {
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Ties        int     `json:"ties"`
	FPTS        float64 `json:"fpts"`
	FPTSDecimal float64 `json:"fpts_decimal"`
}

// Matchup represents one roster's side of a weekly matchup. Rosters without
// an opponent that week have a nil MatchupID.
type Matchup struct {
	RosterID      int                `json:"roster_id"`
	MatchupID     *int               `json:"matchup_id"`
	Points        float64            `json:"points"`
	CustomPoints  *float64           `json:"custom_points"`
	Starters      []string           `json:"starters"`
	PlayersPoints map[string]float64 `json:"players_points"`
}

// Score returns the commissioner override when present, otherwise points.
func (m Matchup) Score() float64 {
	if m.CustomPoints != nil {
		return *m.CustomPoints
	}
	return m.Points
}

// SleeperError represents an error from the Sleeper API
type SleeperError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	LeagueID   string `json:"league_id,omitempty"`
}

func (e *SleeperError) Error() string {
	return e.Message
}
