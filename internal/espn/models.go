package espn

// Winner values reported on schedule entries.
const (
	WinnerHome      = "HOME"
	WinnerAway      = "AWAY"
	WinnerTie       = "TIE"
	WinnerUndecided = "UNDECIDED"
)

// LeagueResponse is the subset of the league endpoint used here.
type LeagueResponse struct {
	ID              int             `json:"id"`
	ScoringPeriodID int             `json:"scoringPeriodId"`
	SeasonID        int             `json:"seasonId"`
	Status          Status          `json:"status"`
	Settings        Settings        `json:"settings"`
	Teams           []Team          `json:"teams"`
	Members         []Member        `json:"members"`
	Schedule        []ScheduleEntry `json:"schedule"`
}

type Settings struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type Status struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type Team struct {
	ID           int      `json:"id"`
	Abbreviation string   `json:"abbrev"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Nickname     string   `json:"nickname"`
	Owners       []string `json:"owners"`
}

// DisplayName prefers the single name field and falls back to the older
// location/nickname pair.
func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Location != "" || t.Nickname != "" {
		if t.Nickname == "" {
			return t.Location
		}
		if t.Location == "" {
			return t.Nickname
		}
		return t.Location + " " + t.Nickname
	}
	return t.Abbreviation
}

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type ScheduleEntry struct {
	ID              int        `json:"id"`
	MatchupPeriodID int        `json:"matchupPeriodId"`
	Home            *TeamScore `json:"home"`
	Away            *TeamScore `json:"away"`
	Winner          string     `json:"winner"`
	PlayoffTierType string     `json:"playoffTierType"`
}

// Decided reports whether ESPN has finalized the matchup.
func (s ScheduleEntry) Decided() bool {
	return s.Winner != "" && s.Winner != WinnerUndecided
}

type TeamScore struct {
	TeamID          int      `json:"teamId"`
	TotalPoints     float64  `json:"totalPoints"`
	TotalPointsLive *float64 `json:"totalPointsLive"`
}

// LiveScore returns the in-progress total when ESPN provides one.
func (s TeamScore) LiveScore() float64 {
	if s.TotalPointsLive != nil {
		return *s.TotalPointsLive
	}
	return s.TotalPoints
}

// APIError is a non-200 answer from ESPN. Private leagues answer 401 when the
// espn_s2/SWID cookies are missing or expired.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
