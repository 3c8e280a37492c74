package tokens

import (
	"math"

	"meme-index/internal/dexscreener"
)

// Normalize flattens the selected pair into a Summary keyed by address.
// It never fails: absent or malformed numbers become zero.
func Normalize(address string, p dexscreener.Pair) Summary {
	s := Summary{
		Name:            p.BaseToken.Name,
		Symbol:          p.BaseToken.Symbol,
		Price:           p.PriceUSD.Decimal(),
		MarketCap:       p.MarketCap.Decimal(),
		Change1h:        p.PriceChange.H1.Decimal(),
		Change24h:       p.PriceChange.H24.Decimal(),
		Volume:          p.Volume.H24.Decimal(),
		ActivityCount:   activityCount(p.Txns.H24.Buys.Int(), p.Txns.H24.Sells.Int()),
		ContractAddress: address,
		ImageURL:        p.Info.ImageURL,
	}
	if s.Name == "" {
		s.Name = UnknownName
	}
	if s.Symbol == "" {
		s.Symbol = UnknownSymbol
	}
	if s.ImageURL == "" {
		s.ImageURL = p.BaseToken.ImageURL
	}
	return s
}

// activityCount adds the 24h buy and sell counts. Negative counts are treated
// as zero and the sum saturates at MaxInt64.
func activityCount(buys, sells int64) int64 {
	buys, sells = max(buys, 0), max(sells, 0)
	if buys > math.MaxInt64-sells {
		return math.MaxInt64
	}
	return buys + sells
}
