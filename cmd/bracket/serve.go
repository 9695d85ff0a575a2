package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sam-maryland/losers-bracket/internal/transport/httpserver"
	"github.com/sirupsen/logrus"
)

type serveCmd struct {
	NoRefresh bool `help:"Do not refresh the bracket in the background." name:"no-refresh"`
}

func (s *serveCmd) Run(g *globalCmd) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	cfg := a.Config
	logger := a.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refreshing once per TTL keeps the cached aggregation warm for readers.
	if !s.NoRefresh && cfg.Cache.TTL > 0 {
		c := cron.New()
		_, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.Cache.TTL), func() {
			rctx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
			defer cancel()
			if err := a.Service.Refresh(rctx); err != nil {
				logger.WithError(err).Warn("Scheduled bracket refresh failed")
			}
		})
		if err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		logger.WithField("every", cfg.Cache.TTL.String()).Info("Scheduled bracket refresh")
	}

	h := httpserver.NewHandler(logger, a.Service, cfg.Server.RequestTimeout)
	server := httpserver.New(h, a.Recorder)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.ServerAddr()).Info("HTTP server starting")
		errCh <- server.Listen(cfg.ServerAddr())
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	logger.Info("Shutting down")
	if err := server.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.WithError(err).Error("Graceful shutdown failed")
		return err
	}
	logger.WithFields(logrus.Fields{"league_id": cfg.League.ID}).Info("Server stopped")
	return nil
}
