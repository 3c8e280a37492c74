package tokens

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"meme-index/internal/dexscreener"
)

func amt(s string) dexscreener.Amount {
	return dexscreener.Amount{Value: decimal.RequireFromString(s), Valid: true}
}

func pairWithLiquidity(chain, name, liquidity string) dexscreener.Pair {
	p := dexscreener.Pair{ChainID: chain, BaseToken: dexscreener.Token{Name: name, Symbol: name}}
	if liquidity != "" {
		p.Liquidity.USD = amt(liquidity)
	}
	return p
}

func pairWithMarketCap(chain, symbol, marketCap string) dexscreener.Pair {
	p := pairWithLiquidity(chain, symbol, "1000")
	p.MarketCap = amt(marketCap)
	return p
}

// fakeSource serves canned pairs or errors keyed by address.
type fakeSource struct {
	mu       sync.Mutex
	pairs    map[string][]dexscreener.Pair
	errs     map[string]error
	panics   map[string]bool
	delay    time.Duration
	calls    []string
	inflight atomic.Int32
	peak     atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pairs:  map[string][]dexscreener.Pair{},
		errs:   map[string]error{},
		panics: map[string]bool{},
	}
}

func (f *fakeSource) TokenPairs(ctx context.Context, address string) ([]dexscreener.Pair, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, address)
	pairs, err, boom := f.pairs[address], f.errs[address], f.panics[address]
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if boom {
		panic("decoder exploded")
	}
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
