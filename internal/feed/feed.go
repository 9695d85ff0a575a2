// Package feed adapts league data providers to the two feeds the bracket
// pipeline consumes: a league snapshot and live matchups for one week.
package feed

import (
	"context"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
)

// SnapshotFeed returns a league's teams with their finalized weekly results.
type SnapshotFeed interface {
	Snapshot(ctx context.Context) (bracket.Snapshot, error)
}

// Feed combines both feeds of one provider.
type Feed interface {
	SnapshotFeed
	bracket.LiveFeed
	Name() string
}
