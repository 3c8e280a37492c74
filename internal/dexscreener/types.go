package dexscreener

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a numeric field of the pairs payload. DexScreener sends some
// numbers quoted (priceUsd) and others bare; either form is accepted, and
// null, absent, malformed or out of float64 range values leave the Amount
// invalid (zero).
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = unq
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return nil
	}
	*a = Amount{Value: d, Valid: true}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value.String())
}

// Decimal returns the parsed value, or zero when the field was absent.
func (a Amount) Decimal() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Int returns the integer part of the value clamped to the int64 range, or
// zero when absent.
func (a Amount) Int() int64 {
	if !a.Valid {
		return 0
	}
	switch {
	case a.Value.GreaterThan(maxInt64):
		return math.MaxInt64
	case a.Value.LessThan(minInt64):
		return math.MinInt64
	}
	return a.Value.IntPart()
}

type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Window struct {
	M5  Amount `json:"m5"`
	H1  Amount `json:"h1"`
	H6  Amount `json:"h6"`
	H24 Amount `json:"h24"`
}

type TxnCounts struct {
	Buys  Amount `json:"buys"`
	Sells Amount `json:"sells"`
}

type Txns struct {
	M5  TxnCounts `json:"m5"`
	H1  TxnCounts `json:"h1"`
	H6  TxnCounts `json:"h6"`
	H24 TxnCounts `json:"h24"`
}

type Liquidity struct {
	USD   Amount `json:"usd"`
	Base  Amount `json:"base"`
	Quote Amount `json:"quote"`
}

type Info struct {
	ImageURL string `json:"imageUrl,omitempty"`
}

// Pair is one trading venue for a token as returned by the token-pairs endpoint.
type Pair struct {
	ChainID     string    `json:"chainId"`
	DexID       string    `json:"dexId"`
	URL         string    `json:"url"`
	PairAddress string    `json:"pairAddress"`
	BaseToken   Token     `json:"baseToken"`
	QuoteToken  Token     `json:"quoteToken"`
	PriceNative Amount    `json:"priceNative"`
	PriceUSD    Amount    `json:"priceUsd"`
	Txns        Txns      `json:"txns"`
	Volume      Window    `json:"volume"`
	PriceChange Window    `json:"priceChange"`
	Liquidity   Liquidity `json:"liquidity"`
	FDV         Amount    `json:"fdv"`
	MarketCap   Amount    `json:"marketCap"`
	Info        Info      `json:"info"`
}

type tokenPairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}
