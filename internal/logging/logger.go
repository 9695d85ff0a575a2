// Package logging builds the logrus logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates a logger at the given level. Format is "json" (the default) or
// "text".
func New(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return logger, nil
}

// WithOutput redirects the logger, returning it for chaining. The MCP server
// writes its protocol to stdout, so its logs go to stderr.
func WithOutput(logger *logrus.Logger, w io.Writer) *logrus.Logger {
	logger.SetOutput(w)
	return logger
}
