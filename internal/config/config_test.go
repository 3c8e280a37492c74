package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-index/internal/tokens"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "bsc", cfg.Chain)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.DispatchStagger)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "https://api.dexscreener.com/latest/dex/tokens/", cfg.DexURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.NotNil(t, cfg.Targets)
	assert.Empty(t, cfg.Targets)
}

func TestLoadTokensFromEnv(t *testing.T) {
	t.Setenv("MEMEINDEX_TOKENS", "0x6b05cE09207f890da9650052155ebA32f3C94444, solana:So11111111111111111111111111111111111111112")
	t.Setenv("MEMEINDEX_POLL_INTERVAL", "45s")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, []tokens.Target{
		{Chain: "bsc", Address: "0x6b05cE09207f890da9650052155ebA32f3C94444"},
		{Chain: "solana", Address: "So11111111111111111111111111111111111111112"},
	}, cfg.Targets)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
}

func TestLoadTokensFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chain: bsc
max-concurrency: 4
tokens:
  - "0x5c0B93C0DbA4B7557d366EEf3cca08c3c05b4444"
  - chain: ethereum
    address: "0x44443dd87EC4d1bEa3425AcC118Adb023f07F91b"
  - address: "0x0A43fC31a73013089DF59194872Ecae4cAe14444"
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, []tokens.Target{
		{Chain: "bsc", Address: "0x5c0B93C0DbA4B7557d366EEf3cca08c3c05b4444"},
		{Chain: "ethereum", Address: "0x44443dd87EC4d1bEa3425AcC118Adb023f07F91b"},
		{Chain: "bsc", Address: "0x0A43fC31a73013089DF59194872Ecae4cAe14444"},
	}, cfg.Targets)
}

func TestLoadFlagsOverride(t *testing.T) {
	t.Setenv("MEMEINDEX_CHAIN", "ethereum")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("chain", "bsc", "")
	flags.StringSlice("tokens", nil, "")
	flags.Duration("dispatch-stagger", 100*time.Millisecond, "")
	require.NoError(t, flags.Parse([]string{
		"--chain=solana",
		"--tokens=EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"--dispatch-stagger=0s",
	}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "solana", cfg.Chain)
	assert.Equal(t, time.Duration(0), cfg.DispatchStagger)
	assert.Equal(t, []tokens.Target{{Chain: "solana", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}}, cfg.Targets)
}

func TestLoadRejectsMalformedAddress(t *testing.T) {
	t.Setenv("MEMEINDEX_TOKENS", "0x6b05cE09207f890da9650052155ebA32f3C94444,bsc:0xdeadbeef")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, tokens.ErrInvalidAddress)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MEMEINDEX_POLL_INTERVAL", "0s")
	_, err := Load("", nil)
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
