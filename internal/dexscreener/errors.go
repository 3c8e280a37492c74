// Package dexscreener is a client for the DexScreener token-pairs endpoint.
package dexscreener

import "errors"

var (
	// ErrUnexpectedStatus indicates a non-2xx response from DexScreener.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates a body that does not match the pairs schema.
	ErrInvalidResponse = errors.New("invalid response")
)
