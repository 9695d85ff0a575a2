// Package app wires configuration into a ready bracket service.
package app

import (
	"fmt"

	"github.com/sam-maryland/losers-bracket/internal/config"
	"github.com/sam-maryland/losers-bracket/internal/espn"
	"github.com/sam-maryland/losers-bracket/internal/feed"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
	"github.com/sam-maryland/losers-bracket/internal/service"
	"github.com/sam-maryland/losers-bracket/internal/sleeper"
	"github.com/sirupsen/logrus"
)

// App is the assembled runtime shared by the MCP server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Recorder *metrics.Recorder
	Feed     feed.Feed
	Service  *service.Service
}

// New builds the feed for the configured provider, resolves the league's
// bracket settings and constructs the service around them.
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	recorder := metrics.NewRecorder()

	f, err := NewFeed(cfg, logger)
	if err != nil {
		return nil, err
	}
	f = feed.NewInstrumented(f, recorder)

	leagues, err := config.LoadLeagueSettings(cfg.League.SettingsFile)
	if err != nil {
		return nil, err
	}
	settings, err := leagues.BracketSettings(cfg.League.ID, cfg.Bracket)
	if err != nil {
		return nil, err
	}

	league := leagues.GetLeagueSettings(cfg.League.ID)
	logger.WithFields(logrus.Fields{
		"provider":    cfg.League.Provider,
		"league_id":   cfg.League.ID,
		"league_name": league.Name,
		"description": league.Description,
		"notes":       league.Notes,
		"cutoff":      settings.Cutoff,
		"window":      settings.Window.String(),
		"cohort_size": settings.CohortSize,
	}).Info("Bracket settings resolved")

	cache := service.NewCache(cfg.Cache.TTL, recorder).WithComputeTimeout(cfg.Feed.Timeout)
	return &App{
		Config:   cfg,
		Logger:   logger,
		Recorder: recorder,
		Feed:     f,
		Service:  service.New(f, settings, cache, logger, recorder),
	}, nil
}

// NewFeed constructs the provider feed. Network feeds retry snapshot
// failures; the fixture feed is returned as is.
func NewFeed(cfg *config.Config, logger *logrus.Logger) (feed.Feed, error) {
	switch cfg.League.Provider {
	case config.ProviderSleeper:
		client := sleeper.NewHTTPClient(logger, cfg.Feed.Timeout)
		return feed.NewRetrying(feed.NewSleeper(client, cfg.League.ID, logger), logger, cfg.Feed.RetryAttempts, cfg.Feed.RetryInterval), nil
	case config.ProviderESPN:
		id, err := cfg.League.NumericID()
		if err != nil {
			return nil, err
		}
		client := espn.NewHTTPClient(logger, espn.Credentials{
			ESPNS2: cfg.League.ESPNS2,
			SWID:   cfg.League.SWID,
		}, cfg.Feed.Timeout)
		return feed.NewRetrying(feed.NewESPN(client, id, cfg.League.Season, logger), logger, cfg.Feed.RetryAttempts, cfg.Feed.RetryInterval), nil
	case config.ProviderFixture:
		return feed.LoadFixture(cfg.League.FixturePath)
	default:
		return nil, fmt.Errorf("unknown league provider %q", cfg.League.Provider)
	}
}
