package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// Config holds application configuration.
type Config struct {
	League  LeagueConfig  `mapstructure:"league"`
	Bracket BracketConfig `mapstructure:"bracket"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LeagueConfig selects the league and the provider serving it.
type LeagueConfig struct {
	Provider     string `mapstructure:"provider"`
	ID           string `mapstructure:"id"`
	Season       int    `mapstructure:"season"`
	ESPNS2       string `mapstructure:"espn_s2"`
	SWID         string `mapstructure:"swid"`
	FixturePath  string `mapstructure:"fixture_path"`
	SettingsFile string `mapstructure:"settings_file"`
}

// NumericID parses the league id for providers that key leagues by number.
func (l LeagueConfig) NumericID() (int, error) {
	id, err := strconv.Atoi(l.ID)
	if err != nil {
		return 0, fmt.Errorf("league.id %q must be numeric for %s leagues", l.ID, l.Provider)
	}
	return id, nil
}

// BracketConfig is the default bracket shape before per-league overrides.
// Pinned holds the fields set explicitly by file or environment; the league
// settings file never replaces those.
type BracketConfig struct {
	Cutoff      int             `mapstructure:"cutoff"`
	WindowStart int             `mapstructure:"window_start"`
	WindowEnd   int             `mapstructure:"window_end"`
	CohortSize  int             `mapstructure:"cohort_size"`
	Pinned      BracketOverride `mapstructure:"-"`
}

// Settings converts the config into pipeline settings.
func (b BracketConfig) Settings() bracket.Settings {
	return bracket.Settings{
		Cutoff:     b.Cutoff,
		Window:     bracket.Window{Start: b.WindowStart, End: b.WindowEnd},
		CohortSize: b.CohortSize,
	}
}

// CacheConfig controls aggregation memoization. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// FeedConfig contains upstream request settings.
type FeedConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
