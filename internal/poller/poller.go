package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"meme-index/internal/metrics"
	"meme-index/internal/tokens"
)

// Collector resolves a target set into sorted summaries.
type Collector interface {
	Collect(ctx context.Context, targets []tokens.Target) []tokens.Summary
}

type Poller struct {
	collector Collector
	store     tokens.SnapshotStore
	targets   []tokens.Target
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func New(collector Collector, store tokens.SnapshotStore, targets []tokens.Target, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		collector: collector,
		store:     store,
		targets:   targets,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls once immediately and then every interval until ctx is done.
// A cycle still in flight when the next tick fires is left running; whichever
// cycle finishes last owns the stored snapshot.
func (p *Poller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	launch := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Tick(ctx); err != nil {
				p.logger.Error("poll error", zap.Error(err))
			}
		}()
	}

	launch()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			launch()
		}
	}
}

// Tick runs one collection pass and replaces the stored snapshot.
func (p *Poller) Tick(ctx context.Context) error {
	items := p.collector.Collect(ctx, p.targets)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	snap := tokens.NewSnapshot(items, p.now().UTC())
	if err := p.store.Save(ctx, snap); err != nil {
		return err
	}
	metrics.RecordSnapshot(len(snap.Tokens), snap.UpdatedAt)
	p.logger.Info("snapshot stored",
		zap.Int("tokens", len(snap.Tokens)),
		zap.String("total_market_cap", snap.TotalMarketCap().StringFixed(2)))
	return nil
}
