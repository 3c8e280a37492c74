package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"meme-index/internal/metrics"
)

// DefaultBaseURL is the token-pairs endpoint; the contract address is appended.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex/tokens/"

// Client fetches trading pairs for a token from DexScreener.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a client for baseURL. A zero timeout disables the
// per-request deadline; the caller's context still applies.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// TokenPairs returns every pair DexScreener reports for address, across all
// chains. An absent "pairs" key yields an empty slice, not an error.
func (c *Client) TokenPairs(ctx context.Context, address string) ([]Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(address), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("error", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: dex http %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out tokenPairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out.Pairs, nil
}
