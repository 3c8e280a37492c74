package tokens

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	UnknownName   = "Unknown Token"
	UnknownSymbol = "UNKNOWN"
)

// Summary is the flattened market view of one token, built from its best pair.
// A Summary is never mutated after Normalize returns it.
type Summary struct {
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	Price           decimal.Decimal `json:"price"`
	MarketCap       decimal.Decimal `json:"marketCap"`
	Change1h        decimal.Decimal `json:"change1h"`
	Change24h       decimal.Decimal `json:"change24h"`
	Volume          decimal.Decimal `json:"volume"`
	ActivityCount   int64           `json:"activityCount"`
	ContractAddress string          `json:"contractAddress"`
	ImageURL        string          `json:"imageUrl,omitempty"`
}

// Snapshot is the result of one poll cycle.
type Snapshot struct {
	Tokens    []Summary `json:"tokens"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSnapshot(items []Summary, at time.Time) Snapshot {
	if items == nil {
		items = []Summary{}
	}
	return Snapshot{Tokens: items, UpdatedAt: at}
}

// TotalMarketCap sums MarketCap across the snapshot.
func (s Snapshot) TotalMarketCap() decimal.Decimal {
	total := decimal.Zero
	for _, t := range s.Tokens {
		total = total.Add(t.MarketCap)
	}
	return total
}

// Wire shapes: decimals go out as JSON numbers.
type SummaryOut struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Price           float64 `json:"price"`
	MarketCap       float64 `json:"marketCap"`
	Change1h        float64 `json:"change1h"`
	Change24h       float64 `json:"change24h"`
	Volume          float64 `json:"volume"`
	ActivityCount   int64   `json:"activityCount"`
	ContractAddress string  `json:"contractAddress"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

type ListOut struct {
	Tokens []SummaryOut `json:"tokens"`
}

type SnapshotOut struct {
	Tokens         []SummaryOut `json:"tokens"`
	TotalMarketCap float64      `json:"totalMarketCap"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type ErrorOut struct {
	Error string `json:"error"`
}

func (s Summary) Out() SummaryOut {
	return SummaryOut{
		Name:            s.Name,
		Symbol:          s.Symbol,
		Price:           wireFloat(s.Price),
		MarketCap:       wireFloat(s.MarketCap),
		Change1h:        wireFloat(s.Change1h),
		Change24h:       wireFloat(s.Change24h),
		Volume:          wireFloat(s.Volume),
		ActivityCount:   s.ActivityCount,
		ContractAddress: s.ContractAddress,
		ImageURL:        s.ImageURL,
	}
}

func toOut(items []Summary) []SummaryOut {
	out := make([]SummaryOut, 0, len(items))
	for _, s := range items {
		out = append(out, s.Out())
	}
	return out
}

func (s Snapshot) Out() SnapshotOut {
	return SnapshotOut{
		Tokens:         toOut(s.Tokens),
		TotalMarketCap: wireFloat(s.TotalMarketCap()),
		UpdatedAt:      s.UpdatedAt,
	}
}

// wireFloat converts d for the wire. Values outside the float64 range encode as 0
// since encoding/json rejects infinities.
func wireFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}
