package feed

import (
	"context"
	"time"

	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
)

// Instrumented records call counts and latency for every feed call.
type Instrumented struct {
	inner    Feed
	recorder *metrics.Recorder
}

func NewInstrumented(inner Feed, recorder *metrics.Recorder) *Instrumented {
	return &Instrumented{inner: inner, recorder: recorder}
}

func (i *Instrumented) Name() string { return i.inner.Name() }

func (i *Instrumented) Snapshot(ctx context.Context) (bracket.Snapshot, error) {
	start := time.Now()
	snap, err := i.inner.Snapshot(ctx)
	i.recorder.RecordFeedCall(i.inner.Name(), "snapshot", time.Since(start), err)
	return snap, err
}

func (i *Instrumented) LiveMatchups(ctx context.Context, week int) ([]bracket.Matchup, error) {
	start := time.Now()
	matchups, err := i.inner.LiveMatchups(ctx, week)
	i.recorder.RecordFeedCall(i.inner.Name(), "live", time.Since(start), err)
	return matchups, err
}
