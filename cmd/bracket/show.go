package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sam-maryland/losers-bracket/internal/render"
)

type showCmd struct {
	JSON bool `help:"Print the result as JSON." name:"json"`
}

func (s *showCmd) Run(g *globalCmd) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	result, err := a.Service.Run(context.Background())
	if err != nil {
		return err
	}
	if s.JSON {
		return printJSON(result)
	}
	render.Bracket(os.Stdout, result)
	return nil
}

type standingsCmd struct {
	JSON bool `help:"Print the standings as JSON." name:"json"`
}

func (s *standingsCmd) Run(g *globalCmd) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	report, err := a.Service.Standings(context.Background())
	if err != nil {
		return err
	}
	if s.JSON {
		return printJSON(report)
	}
	render.Standings(os.Stdout, report)
	return nil
}

type matchupsCmd struct {
	Week int  `arg:"" optional:"" help:"Week to show. Defaults to the current week."`
	JSON bool `help:"Print the matchups as JSON." name:"json"`
}

func (m *matchupsCmd) Run(g *globalCmd) error {
	if m.Week < 0 || m.Week > 18 {
		return fmt.Errorf("week must be between 1 and 18, got %d", m.Week)
	}
	a, err := g.load()
	if err != nil {
		return err
	}
	wm, err := a.Service.LiveMatchups(context.Background(), m.Week)
	if err != nil {
		return err
	}
	if m.JSON {
		return printJSON(wm)
	}
	render.Matchups(os.Stdout, wm)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
