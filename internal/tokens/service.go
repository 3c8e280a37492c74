package tokens

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meme-index/internal/dexscreener"
	"meme-index/internal/metrics"
)

// PairSource returns all trading pairs known for a contract address.
type PairSource interface {
	TokenPairs(ctx context.Context, address string) ([]dexscreener.Pair, error)
}

// Options tune the fan-out of Collect.
type Options struct {
	// MaxConcurrency bounds in-flight resolutions; 0 means unbounded.
	MaxConcurrency int
	// Stagger delays the dispatch of each target after the first.
	Stagger time.Duration
}

type Service struct {
	src    PairSource
	opts   Options
	logger *zap.Logger
}

func NewService(src PairSource, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, opts: opts, logger: logger}
}

// Resolve runs the per-address pipeline: fetch pairs, select the best pair on
// the target chain, normalize. Every failure, including a panic below this
// point, comes back as an error.
func (s *Service) Resolve(ctx context.Context, t Target) (sum Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolve %s: panic: %v", t, r)
		}
		metrics.RecordResolution(resolutionResult(err))
	}()

	pairs, err := s.src.TokenPairs(ctx, t.Address)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch pairs for %s: %w", t.Address, err)
	}
	best, err := SelectBestPair(pairs, t.Chain)
	if err != nil {
		return Summary{}, fmt.Errorf("%w for %s", err, t.Address)
	}
	return Normalize(t.Address, best), nil
}

// Collect resolves every target concurrently, drops the ones that fail and
// orders the rest by market cap, highest first. Equal market caps are ordered
// by contract address, then by position in targets.
func (s *Service) Collect(ctx context.Context, targets []Target) []Summary {
	start := time.Now()
	slots := make([]*Summary, len(targets))

	var g errgroup.Group
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}

dispatch:
	for i, t := range targets {
		if i > 0 && s.opts.Stagger > 0 {
			timer := time.NewTimer(s.opts.Stagger)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Warn("collect cancelled before dispatch",
					zap.Int("dispatched", i), zap.Int("targets", len(targets)))
				break dispatch
			case <-timer.C:
			}
		}

		g.Go(func() error {
			sum, err := s.Resolve(ctx, t)
			if err != nil {
				s.logger.Warn("token resolution failed",
					zap.Int("index", i),
					zap.String("chain", t.Chain),
					zap.String("address", t.Address),
					zap.Error(err))
				return nil
			}
			s.logger.Debug("token resolved",
				zap.String("symbol", sum.Symbol),
				zap.String("address", t.Address),
				zap.String("market_cap", sum.MarketCap.String()))
			slots[i] = &sum
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Summary, 0, len(slots))
	for _, sum := range slots {
		if sum != nil {
			out = append(out, *sum)
		}
	}
	SortByMarketCap(out)

	metrics.RecordCollect(time.Since(start))
	s.logger.Info("collected tokens",
		zap.Int("targets", len(targets)),
		zap.Int("resolved", len(out)),
		zap.Duration("took", time.Since(start)))
	return out
}

// SortByMarketCap orders summaries by market cap descending, breaking ties by
// contract address ascending. The sort is stable.
func SortByMarketCap(items []Summary) {
	slices.SortStableFunc(items, func(a, b Summary) int {
		if c := b.MarketCap.Cmp(a.MarketCap); c != 0 {
			return c
		}
		return strings.Compare(a.ContractAddress, b.ContractAddress)
	})
}

func resolutionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoChainPairs):
		return "no_chain_pairs"
	case errors.Is(err, ErrNoPairs):
		return "no_pairs"
	case errors.Is(err, dexscreener.ErrUnexpectedStatus):
		return "upstream_status"
	case errors.Is(err, dexscreener.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
