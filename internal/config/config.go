// Package config loads service configuration and per-league bracket settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envFile   = ".env"
	envPrefix = "BRACKET"
)

// Providers supported by the feed layer.
const (
	ProviderSleeper = "sleeper"
	ProviderESPN    = "espn"
	ProviderFixture = "fixture"
)

// NewConfig loads configuration from an optional file and the environment
// with typed defaults and validation. Environment variables use the BRACKET_
// prefix, e.g. BRACKET_LEAGUE_ID; the ESPN cookies also read ESPN_S2 and SWID.
func NewConfig(configFile string) (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Bracket.Pinned = pinnedBracket(v, cfg.Bracket)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("league.provider", ProviderSleeper)
	v.SetDefault("league.season", 0)
	v.SetDefault("league.settings_file", "")

	v.SetDefault("bracket.cutoff", 14)
	v.SetDefault("bracket.window_start", 15)
	v.SetDefault("bracket.window_end", 17)
	v.SetDefault("bracket.cohort_size", 4)

	v.SetDefault("cache.ttl", 90*time.Second)

	v.SetDefault("feed.timeout", 10*time.Second)
	v.SetDefault("feed.retry_attempts", 3)
	v.SetDefault("feed.retry_interval", 200*time.Millisecond)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)
}

// pinnedBracket collects the bracket keys set in the config file or the
// environment. Defaults are not pinned.
func pinnedBracket(v *viper.Viper, b BracketConfig) BracketOverride {
	explicit := func(key string) bool {
		if v.InConfig(key) {
			return true
		}
		_, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		return ok
	}

	var pinned BracketOverride
	if explicit("bracket.cutoff") {
		pinned.Cutoff = b.Cutoff
	}
	if explicit("bracket.window_start") {
		pinned.WindowStart = b.WindowStart
	}
	if explicit("bracket.window_end") {
		pinned.WindowEnd = b.WindowEnd
	}
	if explicit("bracket.cohort_size") {
		pinned.CohortSize = b.CohortSize
	}
	return pinned
}

func bindEnvs(v *viper.Viper) error {
	keys := []string{
		"logging.level",
		"logging.format",
		"league.provider",
		"league.id",
		"league.season",
		"league.fixture_path",
		"league.settings_file",
		"bracket.cutoff",
		"bracket.window_start",
		"bracket.window_end",
		"bracket.cohort_size",
		"cache.ttl",
		"feed.timeout",
		"feed.retry_attempts",
		"feed.retry_interval",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"server.request_timeout",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if err := v.BindEnv("league.espn_s2", envPrefix+"_LEAGUE_ESPN_S2", "ESPN_S2"); err != nil {
		return fmt.Errorf("bind league.espn_s2: %w", err)
	}
	if err := v.BindEnv("league.swid", envPrefix+"_LEAGUE_SWID", "SWID"); err != nil {
		return fmt.Errorf("bind league.swid: %w", err)
	}
	return nil
}

// Validate ensures required fields are present and consistent.
func (c Config) Validate() error {
	switch c.League.Provider {
	case ProviderSleeper:
		if c.League.ID == "" {
			return errors.New("league.id is required")
		}
	case ProviderESPN:
		if c.League.ID == "" {
			return errors.New("league.id is required")
		}
		if _, err := c.League.NumericID(); err != nil {
			return err
		}
		if c.League.Season <= 0 {
			return errors.New("league.season is required for espn leagues")
		}
	case ProviderFixture:
		if c.League.FixturePath == "" {
			return errors.New("league.fixture_path is required for the fixture provider")
		}
	default:
		return fmt.Errorf("unknown league.provider %q", c.League.Provider)
	}

	if err := c.Bracket.Settings().Validate(); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	return nil
}
