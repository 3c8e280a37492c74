package tokens

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// ChainSolana is DexScreener's chain id for Solana.
const ChainSolana = "solana"

// DexScreener chain ids that use 20-byte hex addresses.
var evmChains = map[string]bool{
	"bsc":        true,
	"ethereum":   true,
	"base":       true,
	"arbitrum":   true,
	"polygon":    true,
	"avalanche":  true,
	"optimism":   true,
	"blast":      true,
	"linea":      true,
	"scroll":     true,
	"zksync":     true,
	"fantom":     true,
	"cronos":     true,
	"pulsechain": true,
	"mantle":     true,
	"sonic":      true,
}

// Target is one configured token: the chain its pairs are filtered to and
// the contract address used as the lookup key. An empty Chain disables the
// chain filter.
type Target struct {
	Chain   string `json:"chain" mapstructure:"chain"`
	Address string `json:"address" mapstructure:"address"`
}

func (t Target) String() string {
	if t.Chain == "" {
		return t.Address
	}
	return t.Chain + ":" + t.Address
}

// ParseTarget reads "chain:address" or a bare address, which takes defaultChain.
func ParseTarget(raw, defaultChain string) (Target, error) {
	raw = strings.TrimSpace(raw)
	t := Target{Chain: defaultChain, Address: raw}
	if chain, addr, ok := strings.Cut(raw, ":"); ok {
		t = Target{Chain: strings.TrimSpace(chain), Address: strings.TrimSpace(addr)}
	}
	t.Chain = strings.ToLower(t.Chain)
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Validate checks the address shape for the target's chain. The address
// itself is never rewritten; it is echoed back unmodified in summaries.
func (t Target) Validate() error {
	addr := t.Address
	if addr == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if strings.ContainsAny(addr, " \t\r\n/?#%") {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	switch {
	case evmChains[t.Chain]:
		if !common.IsHexAddress(addr) || !strings.HasPrefix(strings.ToLower(addr), "0x") {
			return fmt.Errorf("%w: %s is not a hex address on %s", ErrInvalidAddress, addr, t.Chain)
		}
	case t.Chain == ChainSolana:
		b, err := base58.Decode(addr)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("%w: %s is not a base58 public key", ErrInvalidAddress, addr)
		}
	}
	return nil
}

// ParseTargets validates a whole list and fails on the first bad entry.
func ParseTargets(raw []string, defaultChain string) ([]Target, error) {
	out := make([]Target, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		t, err := ParseTarget(r, defaultChain)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Duplicates reports targets listed more than once. Duplicates are kept and
// resolved independently; this is for load-time diagnostics.
func Duplicates(targets []Target) []Target {
	seen := make(map[Target]int, len(targets))
	var dups []Target
	for _, t := range targets {
		seen[t]++
		if seen[t] == 2 {
			dups = append(dups, t)
		}
	}
	return dups
}
