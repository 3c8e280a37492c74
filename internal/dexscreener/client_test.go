package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePairs = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "bsc",
      "dexId": "pancakeswap",
      "pairAddress": "0xpair1",
      "baseToken": {"address": "0xabc", "name": "Four", "symbol": "FOUR"},
      "priceUsd": "0.001234",
      "marketCap": 1234567.5,
      "priceChange": {"h1": -1.5, "h24": 12.25},
      "volume": {"h24": 98765.4},
      "txns": {"h24": {"buys": 120, "sells": 80}},
      "liquidity": {"usd": 55000.1},
      "info": {"imageUrl": "https://img.example/four.png"}
    },
    {
      "chainId": "solana",
      "baseToken": {"name": "Other", "symbol": "OTH"},
      "priceUsd": null,
      "liquidity": null
    }
  ]
}`

func TestClientTokenPairs(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePairs))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/latest/dex/tokens/", time.Second)
	pairs, err := c.TokenPairs(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "/latest/dex/tokens/0xabc", gotPath)

	p := pairs[0]
	assert.Equal(t, "bsc", p.ChainID)
	assert.Equal(t, "FOUR", p.BaseToken.Symbol)
	assert.Equal(t, "0.001234", p.PriceUSD.Decimal().String())
	assert.Equal(t, "1234567.5", p.MarketCap.Decimal().String())
	assert.Equal(t, int64(120), p.Txns.H24.Buys.Int())
	assert.Equal(t, "https://img.example/four.png", p.Info.ImageURL)

	assert.False(t, pairs[1].PriceUSD.Valid)
	assert.False(t, pairs[1].Liquidity.USD.Valid)
}

func TestClientTokenPairsMissingPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":null}`))
	}))
	defer srv.Close()

	pairs, err := NewClient(srv.URL+"/", time.Second).TokenPairs(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestClientTokenPairsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: ErrUnexpectedStatus},
		{name: "rate limited", status: http.StatusTooManyRequests, body: ``, wantErr: ErrUnexpectedStatus},
		{name: "malformed body", status: http.StatusOK, body: `{"pairs": [`, wantErr: ErrInvalidResponse},
		{name: "wrong shape", status: http.StatusOK, body: `{"pairs": {"chainId": "bsc"}}`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL+"/", time.Second).TokenPairs(context.Background(), "0xabc")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientTokenPairsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url+"/", time.Second).TokenPairs(context.Background(), "0xabc")
	require.Error(t, err)
}
