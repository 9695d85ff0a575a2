package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// LeagueSettings represents the bracket configuration for a specific league
type LeagueSettings struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Bracket     BracketOverride `json:"bracket"`
	Notes       string          `json:"notes"`
}

// BracketOverride replaces the configured bracket shape field by field. Zero
// fields keep the configured value.
type BracketOverride struct {
	Cutoff      int `json:"cutoff"`
	WindowStart int `json:"window_start"`
	WindowEnd   int `json:"window_end"`
	CohortSize  int `json:"cohort_size"`
}

// Apply overlays the override onto base.
func (o BracketOverride) Apply(base bracket.Settings) bracket.Settings {
	if o.Cutoff > 0 {
		base.Cutoff = o.Cutoff
		// A new cutoff moves the window unless the override places it too.
		if o.WindowStart == 0 {
			length := base.Window.Len()
			base.Window.Start = o.Cutoff + 1
			base.Window.End = base.Window.Start + length - 1
		}
	}
	if o.WindowStart > 0 {
		base.Window.Start = o.WindowStart
	}
	if o.WindowEnd > 0 {
		base.Window.End = o.WindowEnd
	}
	if o.CohortSize > 0 {
		base.CohortSize = o.CohortSize
	}
	return base
}

// Without drops every field that pinned sets.
func (o BracketOverride) Without(pinned BracketOverride) BracketOverride {
	if pinned.Cutoff > 0 {
		o.Cutoff = 0
	}
	if pinned.WindowStart > 0 {
		o.WindowStart = 0
	}
	if pinned.WindowEnd > 0 {
		o.WindowEnd = 0
	}
	if pinned.CohortSize > 0 {
		o.CohortSize = 0
	}
	return o
}

// LeagueFile represents the entire league settings file
type LeagueFile struct {
	Instructions    string                    `json:"_instructions,omitempty"`
	Leagues         map[string]LeagueSettings `json:"leagues"`
	DefaultSettings LeagueSettings            `json:"default_settings"`
}

// LoadLeagueSettings loads per-league settings. An empty path searches the
// usual locations relative to the working directory; when nothing is found
// the defaults apply to every league.
func LoadLeagueSettings(path string) (*LeagueFile, error) {
	configPaths := []string{
		"configs/league_settings.json",
		"../configs/league_settings.json",
		"../../configs/league_settings.json",
	}
	if path != "" {
		configPaths = []string{path}
	}

	var configData []byte
	var foundPath string

	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			var readErr error
			configData, readErr = os.ReadFile(p)
			if readErr == nil {
				foundPath = p
				break
			}
		}
	}

	if foundPath == "" {
		if path != "" {
			return nil, fmt.Errorf("league settings file %s not found", path)
		}
		return &LeagueFile{
			Leagues: make(map[string]LeagueSettings),
			DefaultSettings: LeagueSettings{
				Name:        "Default League",
				Description: "Bottom four after a 14-week regular season, bracket weeks 15-17",
			},
		}, nil
	}

	var file LeagueFile
	if err := json.Unmarshal(configData, &file); err != nil {
		return nil, fmt.Errorf("failed to parse league settings from %s: %w", foundPath, err)
	}
	if file.Leagues == nil {
		file.Leagues = make(map[string]LeagueSettings)
	}

	return &file, nil
}

// GetLeagueSettings returns settings for a specific league ID
func (f *LeagueFile) GetLeagueSettings(leagueID string) LeagueSettings {
	if settings, exists := f.Leagues[leagueID]; exists {
		return settings
	}

	return f.DefaultSettings
}

// BracketSettings resolves the bracket shape for a league and validates it.
// Fields pinned in base win over the league's override.
func (f *LeagueFile) BracketSettings(leagueID string, base BracketConfig) (bracket.Settings, error) {
	settings := f.GetLeagueSettings(leagueID).Bracket.Without(base.Pinned).Apply(base.Settings())
	// A league cutoff moves the window; pinned window edges stay put.
	if base.Pinned.WindowStart > 0 {
		settings.Window.Start = base.Pinned.WindowStart
	}
	if base.Pinned.WindowEnd > 0 {
		settings.Window.End = base.Pinned.WindowEnd
	}
	if err := settings.Validate(); err != nil {
		return bracket.Settings{}, fmt.Errorf("league %s: %w", leagueID, err)
	}
	return settings, nil
}
