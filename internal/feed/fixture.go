package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// FixtureData is the on-disk format of a recorded league: the snapshot plus
// live matchups keyed by week.
type FixtureData struct {
	Snapshot bracket.Snapshot          `json:"snapshot"`
	Live     map[int][]bracket.Matchup `json:"live,omitempty"`
}

// Fixture serves a recorded league. It backs offline runs and tests.
type Fixture struct {
	data FixtureData
}

func NewFixture(data FixtureData) *Fixture {
	return &Fixture{data: data}
}

// LoadFixture reads a FixtureData JSON file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var data FixtureData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return NewFixture(data), nil
}

func (f *Fixture) Name() string { return "fixture" }

func (f *Fixture) Snapshot(ctx context.Context) (bracket.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return bracket.Snapshot{}, err
	}
	return f.data.Snapshot, nil
}

func (f *Fixture) LiveMatchups(ctx context.Context, week int) ([]bracket.Matchup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matchups, ok := f.data.Live[week]
	if !ok {
		return nil, fmt.Errorf("no live matchups recorded for week %d", week)
	}
	return matchups, nil
}
