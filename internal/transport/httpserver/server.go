// Package httpserver serves the bracket over HTTP with fiber.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sam-maryland/losers-bracket/internal/handlers"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
	"github.com/sam-maryland/losers-bracket/internal/render"
	"github.com/sam-maryland/losers-bracket/internal/transport/middleware"
	"github.com/sirupsen/logrus"
)

// ErrInvalidArgument marks a malformed request.
var ErrInvalidArgument = errors.New("invalid argument")

// Handler serves the bracket endpoints.
type Handler struct {
	logger  *logrus.Logger
	service handlers.BracketService
	timeout time.Duration
}

// NewHandler constructs the HTTP handlers. Each request gets timeout to
// finish its feed calls; zero means no limit beyond the client's.
func NewHandler(logger *logrus.Logger, svc handlers.BracketService, timeout time.Duration) *Handler {
	return &Handler{
		logger:  logger,
		service: svc,
		timeout: timeout,
	}
}

// New builds the fiber app with every route registered.
func New(h *Handler, recorder *metrics.Recorder) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           h.timeout,
		WriteTimeout:          h.timeout,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(h.logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	if recorder != nil {
		app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))
	}

	app.Get("/bracket", h.GetBracketText)
	api := app.Group("/api")
	api.Get("/bracket", h.GetBracket)
	api.Get("/standings", h.GetStandings)
	api.Get("/matchups/:week", h.GetMatchups)

	return app
}

// GetBracket returns the bracket result as JSON.
func (h *Handler) GetBracket(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute bracket")
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// GetBracketText returns the bracket as a printable table.
func (h *Handler) GetBracketText(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute bracket")
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(http.StatusOK).SendString(render.BracketText(result))
}

// GetStandings returns the regular-season standings.
func (h *Handler) GetStandings(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.service.Standings(ctx)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute standings")
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(report)
}

// GetMatchups returns one week's pairings. The week "current" selects the
// league's current week.
func (h *Handler) GetMatchups(c *fiber.Ctx) error {
	week := 0
	if raw := c.Params("week"); raw != "current" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 18 {
			return writeError(c, errors.Join(ErrInvalidArgument, errors.New("week must be a number between 1 and 18 or \"current\"")))
		}
		week = parsed
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	matchups, err := h.service.LiveMatchups(ctx, week)
	if err != nil {
		h.logger.WithError(err).WithField("week", week).Error("failed to get matchups")
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(matchups)
}

func (h *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.timeout)
}
