// Command bracket prints or serves a fantasy league's losers bracket.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/sam-maryland/losers-bracket/internal/app"
	"github.com/sam-maryland/losers-bracket/internal/config"
	"github.com/sam-maryland/losers-bracket/internal/logging"
)

type globalCmd struct {
	Config   string `help:"Optional config file (yaml, json or toml)." env:"BRACKET_CONFIG_FILE"`
	LogLevel string `help:"Override the configured log level." name:"log-level"`
}

// load reads configuration and assembles the service. Logs go to stderr so
// command output stays pipeable.
func (g *globalCmd) load() (*app.App, error) {
	cfg, err := config.NewConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logging.WithOutput(logger, os.Stderr)
	return app.New(cfg, logger)
}

var CLI struct {
	globalCmd

	Show      showCmd      `cmd:"" default:"1" help:"Print the current losers bracket."`
	Standings standingsCmd `cmd:"" help:"Print regular-season standings through the cutoff."`
	Matchups  matchupsCmd  `cmd:"" help:"Print one week of matchups."`
	Serve     serveCmd     `cmd:"" help:"Serve the bracket over HTTP and refresh it on a schedule."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bracket"),
		kong.Description("Fantasy football losers bracket: who finishes dead last."),
	)
	err := ctx.Run(&CLI.globalCmd)
	ctx.FatalIfErrorf(err)
}
