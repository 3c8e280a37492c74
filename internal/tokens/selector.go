package tokens

import (
	"fmt"

	"meme-index/internal/dexscreener"
)

// SelectBestPair picks the representative pair for a token: among pairs on
// chain (all pairs when chain is empty), the one with the greatest USD
// liquidity. Missing liquidity counts as zero and the first maximum wins.
func SelectBestPair(pairs []dexscreener.Pair, chain string) (dexscreener.Pair, error) {
	if len(pairs) == 0 {
		return dexscreener.Pair{}, ErrNoPairs
	}

	best := -1
	for i := range pairs {
		if chain != "" && pairs[i].ChainID != chain {
			continue
		}
		if best < 0 || pairs[i].Liquidity.USD.Decimal().GreaterThan(pairs[best].Liquidity.USD.Decimal()) {
			best = i
		}
	}
	if best < 0 {
		return dexscreener.Pair{}, fmt.Errorf("%w %s", ErrNoChainPairs, chain)
	}
	return pairs[best], nil
}
