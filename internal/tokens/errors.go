// Package tokens resolves contract addresses into market summaries and serves them.
package tokens

import "errors"

var (
	// ErrNoPairs indicates DexScreener returned no trading pairs for the address.
	ErrNoPairs = errors.New("no trading pairs found")
	// ErrNoChainPairs indicates pairs exist, but none on the target chain.
	ErrNoChainPairs = errors.New("no trading pairs found on chain")
	// ErrInvalidAddress indicates a contract address that is malformed for its chain.
	ErrInvalidAddress = errors.New("invalid contract address")
	// ErrSnapshotNotFound indicates no poll cycle has stored a snapshot yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
