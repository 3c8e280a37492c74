package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meme-index/internal/dexscreener"
	"meme-index/internal/tokens"
)

// Config holds configuration merged from .env, environment, config file and flags.
type Config struct {
	Port            string
	RedisAddr       string
	RedisDB         int
	RateLimitRPS    int
	RateLimitBurst  int
	DexURL          string
	Chain           string
	Targets         []tokens.Target
	PollInterval    time.Duration
	MaxConcurrency  int
	DispatchStagger time.Duration
	UpstreamTimeout time.Duration
	SnapshotTTL     time.Duration
	LogLevel        string
}

const envPrefix = "MEMEINDEX"

// Load reads configuration. Unknown chains are accepted; addresses on known
// chains must be well formed or Load fails.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3000")
	v.SetDefault("redis-addr", "")
	v.SetDefault("redis-db", 0)
	v.SetDefault("rate-limit-rps", 5)
	v.SetDefault("rate-limit-burst", 10)
	v.SetDefault("dex-url", dexscreener.DefaultBaseURL)
	v.SetDefault("chain", "bsc")
	v.SetDefault("poll-interval", 30*time.Second)
	v.SetDefault("max-concurrency", 0)
	v.SetDefault("dispatch-stagger", 100*time.Millisecond)
	v.SetDefault("upstream-timeout", 10*time.Second)
	v.SetDefault("snapshot-ttl", time.Duration(0))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Port:            v.GetString("port"),
		RedisAddr:       v.GetString("redis-addr"),
		RedisDB:         v.GetInt("redis-db"),
		RateLimitRPS:    v.GetInt("rate-limit-rps"),
		RateLimitBurst:  v.GetInt("rate-limit-burst"),
		DexURL:          v.GetString("dex-url"),
		Chain:           strings.ToLower(strings.TrimSpace(v.GetString("chain"))),
		PollInterval:    v.GetDuration("poll-interval"),
		MaxConcurrency:  v.GetInt("max-concurrency"),
		DispatchStagger: v.GetDuration("dispatch-stagger"),
		UpstreamTimeout: v.GetDuration("upstream-timeout"),
		SnapshotTTL:     v.GetDuration("snapshot-ttl"),
		LogLevel:        v.GetString("log-level"),
	}

	targets, err := loadTargets(v, cfg.Chain)
	if err != nil {
		return Config{}, err
	}
	cfg.Targets = targets

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max-concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	if c.DispatchStagger < 0 || c.UpstreamTimeout < 0 || c.SnapshotTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// loadTargets accepts "chain:address" strings (config file list, or a
// comma-separated env/flag value) and {chain, address} objects.
func loadTargets(v *viper.Viper, defaultChain string) ([]tokens.Target, error) {
	if !v.IsSet("tokens") {
		return []tokens.Target{}, nil
	}

	var raw []string
	switch typed := v.Get("tokens").(type) {
	case string:
		raw = splitAndClean(typed)
	case []string:
		raw = cleanStrings(typed)
	case []interface{}:
		for i, item := range typed {
			switch it := item.(type) {
			case string:
				raw = append(raw, it)
			case map[string]interface{}:
				chain, _ := it["chain"].(string)
				addr, _ := it["address"].(string)
				if chain == "" {
					chain = defaultChain
				}
				raw = append(raw, chain+":"+addr)
			default:
				return nil, fmt.Errorf("tokens[%d]: unsupported entry %T", i, item)
			}
		}
	default:
		return nil, fmt.Errorf("tokens: unsupported value %T", typed)
	}

	return tokens.ParseTargets(raw, defaultChain)
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	return cleanStrings(strings.Split(input, ","))
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
