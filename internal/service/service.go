// Package service runs the losers bracket pipeline against a league feed and
// memoizes the bracket aggregation between refreshes.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/feed"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Run outcomes reported to metrics.
const (
	outcomeOK               = "ok"
	outcomeFeedUnavailable  = "feed_unavailable"
	outcomeInsufficientData = "insufficient_data"
	outcomeInvalidSettings  = "invalid_settings"
	outcomeError            = "error"
)

// Service coordinates one league's feed, bracket settings and cache.
type Service struct {
	feed     feed.Feed
	settings bracket.Settings
	cache    *Cache
	logger   *logrus.Logger
	recorder *metrics.Recorder
}

// New constructs a Service. A nil cache computes every run from scratch.
func New(f feed.Feed, settings bracket.Settings, cache *Cache, logger *logrus.Logger, recorder *metrics.Recorder) *Service {
	if cache == nil {
		cache = NewCache(0, recorder)
	}
	return &Service{
		feed:     f,
		settings: settings,
		cache:    cache,
		logger:   logger,
		recorder: recorder,
	}
}

// Settings returns the bracket settings the service runs with.
func (s *Service) Settings() bracket.Settings {
	return s.settings
}

// Run produces the current losers bracket. Snapshot failures wrap
// bracket.ErrFeedUnavailable; a live failure only sets LiveUnavailable.
func (s *Service) Run(ctx context.Context) (*bracket.Result, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	_, cohort, err := bracket.Prepare(snap, s.settings)
	if err != nil {
		return nil, s.fail(err)
	}
	teams, err := bracket.CohortTeams(snap, cohort)
	if err != nil {
		return nil, s.fail(err)
	}

	key := CacheKey{
		LeagueID:    snap.LeagueID,
		Season:      snap.Season,
		Cutoff:      s.settings.Cutoff,
		Window:      s.settings.Window,
		CurrentWeek: snap.CurrentWeek,
	}
	agg, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) bracket.Aggregation {
		agg := bracket.Aggregate(ctx, teams, snap.CurrentWeek, s.settings.Window, s.feed)
		if err := agg.Live.Err(); err != nil {
			s.recorder.RecordLiveFailure()
			s.logger.WithFields(logrus.Fields{
				"feed":      s.feed.Name(),
				"league_id": snap.LeagueID,
				"week":      agg.Live.Week,
			}).WithError(err).Warn("Live scores unavailable, showing finalized weeks only")
		}
		return agg
	})
	if err != nil {
		return nil, s.fail(err)
	}

	result := bracket.Assemble(snap, s.settings, cohort, agg)
	s.recorder.RecordRun(outcomeOK)
	s.logger.WithFields(logrus.Fields{
		"league_id":     result.LeagueID,
		"current_week":  result.CurrentWeek,
		"last_place":    result.Escape.LastPlace,
		"tiebreak_used": result.TiebreakUsed,
	}).Debug("Bracket computed")
	return result, nil
}

// StandingsReport is the regular-season table through the cutoff.
type StandingsReport struct {
	LeagueID    string                              `json:"league_id"`
	Season      int                                 `json:"season"`
	CurrentWeek int                                 `json:"current_week"`
	Cutoff      int                                 `json:"cutoff"`
	Standings   []bracket.StandingsEntry            `json:"standings"`
	Cohort      []bracket.TeamID                    `json:"cohort"`
	Teams       map[bracket.TeamID]bracket.TeamInfo `json:"teams"`
}

// Name returns the display name for id, falling back to the id itself.
func (r *StandingsReport) Name(id bracket.TeamID) string {
	if info, ok := r.Teams[id]; ok && info.Name != "" {
		return info.Name
	}
	return string(id)
}

// Standings computes the regular-season standings and marks the cohort.
func (s *Service) Standings(ctx context.Context) (*StandingsReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	standings, cohort, err := bracket.Prepare(snap, s.settings)
	if err != nil {
		return nil, err
	}
	return &StandingsReport{
		LeagueID:    snap.LeagueID,
		Season:      snap.Season,
		CurrentWeek: snap.CurrentWeek,
		Cutoff:      s.settings.Cutoff,
		Standings:   standings,
		Cohort:      bracket.CohortIDs(cohort),
		Teams:       snap.Directory(),
	}, nil
}

// WeekMatchups is one week of live pairings with team names resolved.
type WeekMatchups struct {
	Week     int                                 `json:"week"`
	Matchups []bracket.Matchup                   `json:"matchups"`
	Teams    map[bracket.TeamID]bracket.TeamInfo `json:"teams"`
}

// LiveMatchups returns the pairings for week, or for the current week when
// week is zero. Unlike a bracket run, a failure here is returned.
func (s *Service) LiveMatchups(ctx context.Context, week int) (*WeekMatchups, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if week <= 0 {
		week = snap.CurrentWeek
	}

	matchups, err := s.feed.LiveMatchups(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("%w: week %d: %w", bracket.ErrLiveFetchFailed, week, err)
	}
	return &WeekMatchups{
		Week:     week,
		Matchups: matchups,
		Teams:    snap.Directory(),
	}, nil
}

// Refresh recomputes the bracket so the cache is warm for the next reader.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

func (s *Service) snapshot(ctx context.Context) (bracket.Snapshot, error) {
	snap, err := s.feed.Snapshot(ctx)
	if err != nil {
		s.logger.WithField("feed", s.feed.Name()).WithError(err).Error("Failed to fetch league snapshot")
		return bracket.Snapshot{}, fmt.Errorf("%w: %w", bracket.ErrFeedUnavailable, err)
	}
	return snap, nil
}

// fail records the run outcome for a failed run.
func (s *Service) fail(err error) error {
	outcome := outcomeError
	switch {
	case errors.Is(err, bracket.ErrInsufficientData):
		outcome = outcomeInsufficientData
	case errors.Is(err, bracket.ErrInvalidSettings):
		outcome = outcomeInvalidSettings
	case errors.Is(err, bracket.ErrFeedUnavailable):
		outcome = outcomeFeedUnavailable
	}
	s.recorder.RecordRun(outcome)
	return err
}
