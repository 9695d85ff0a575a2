package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("BRACKET_LEAGUE_ID", "1180091227358150656")

	cfg, err := NewConfig("")
	require.NoError(t, err)

	require.Equal(t, ProviderSleeper, cfg.League.Provider)
	require.Equal(t, "1180091227358150656", cfg.League.ID)
	require.Equal(t, bracket.DefaultSettings(), cfg.Bracket.Settings())
	require.Equal(t, BracketOverride{}, cfg.Bracket.Pinned)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
	require.Equal(t, 3, cfg.Feed.RetryAttempts)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("BRACKET_LEAGUE_PROVIDER", "espn")
	t.Setenv("BRACKET_LEAGUE_ID", "1590064")
	t.Setenv("BRACKET_LEAGUE_SEASON", "2024")
	t.Setenv("ESPN_S2", "s2-cookie")
	t.Setenv("SWID", "{SWID}")
	t.Setenv("BRACKET_BRACKET_CUTOFF", "13")
	t.Setenv("BRACKET_BRACKET_WINDOW_START", "14")
	t.Setenv("BRACKET_BRACKET_WINDOW_END", "16")
	t.Setenv("BRACKET_CACHE_TTL", "30s")

	cfg, err := NewConfig("")
	require.NoError(t, err)

	require.Equal(t, ProviderESPN, cfg.League.Provider)
	require.Equal(t, 2024, cfg.League.Season)
	require.Equal(t, "s2-cookie", cfg.League.ESPNS2)
	require.Equal(t, "{SWID}", cfg.League.SWID)
	require.Equal(t, bracket.Window{Start: 14, End: 16}, cfg.Bracket.Settings().Window)
	require.Equal(t, BracketOverride{Cutoff: 13, WindowStart: 14, WindowEnd: 16}, cfg.Bracket.Pinned)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)

	id, err := cfg.League.NumericID()
	require.NoError(t, err)
	require.Equal(t, 1590064, id)
}

func TestNewConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
league:
  provider: fixture
  fixture_path: testdata/league.json
bracket:
  cohort_size: 3
logging:
  format: text
`), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	require.Equal(t, ProviderFixture, cfg.League.Provider)
	require.Equal(t, 3, cfg.Bracket.CohortSize)
	require.Equal(t, BracketOverride{CohortSize: 3}, cfg.Bracket.Pinned)
	require.Equal(t, "text", cfg.Logging.Format)

	_, err = NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			League:  LeagueConfig{Provider: ProviderSleeper, ID: "123"},
			Bracket: BracketConfig{Cutoff: 14, WindowStart: 15, WindowEnd: 17, CohortSize: 4},
			Server:  ServerConfig{Port: 8080},
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     string
		wantSetting bool
	}{
		{"valid", func(c *Config) {}, "", false},
		{"missing league id", func(c *Config) { c.League.ID = "" }, "league.id is required", false},
		{"unknown provider", func(c *Config) { c.League.Provider = "yahoo" }, "unknown league.provider", false},
		{"espn needs numeric id", func(c *Config) { c.League.Provider = ProviderESPN; c.League.ID = "abc" }, "must be numeric", false},
		{"espn needs season", func(c *Config) { c.League.Provider = ProviderESPN }, "league.season is required", false},
		{"fixture needs path", func(c *Config) { c.League.Provider = ProviderFixture }, "fixture_path is required", false},
		{"window gap", func(c *Config) { c.Bracket.WindowStart = 16 }, "window must start", true},
		{"cohort too small", func(c *Config) { c.Bracket.CohortSize = 1 }, "cohort size", true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
			if tt.wantSetting {
				require.ErrorIs(t, err, bracket.ErrInvalidSettings)
			}
		})
	}
}
