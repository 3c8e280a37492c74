package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meme-index/internal/config"
	"meme-index/internal/dexscreener"
	httpSrv "meme-index/internal/http"
	"meme-index/internal/logging"
	"meme-index/internal/metrics"
	"meme-index/internal/poller"
	"meme-index/internal/redis"
	"meme-index/internal/tokens"
)

func main() {
	root := &cobra.Command{
		Use:          "meme-index",
		Short:        "Token market-cap index backed by DexScreener",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("chain", "bsc", "default chain id for targets and pair filtering (empty disables the filter)")
	root.PersistentFlags().StringSlice("tokens", nil, "targets as chain:address (comma-separated)")
	root.PersistentFlags().String("dex-url", dexscreener.DefaultBaseURL, "DexScreener token-pairs endpoint")
	root.PersistentFlags().Int("max-concurrency", 0, "max in-flight resolutions, 0 means unbounded")
	root.PersistentFlags().Duration("dispatch-stagger", 100*time.Millisecond, "delay between dispatching successive targets")
	root.PersistentFlags().Duration("upstream-timeout", 10*time.Second, "per-request DexScreener timeout, 0 disables")
	root.PersistentFlags().String("redis-addr", "", "Redis address; empty keeps snapshots in memory")
	root.PersistentFlags().Int("redis-db", 0, "Redis database")
	root.PersistentFlags().Duration("snapshot-ttl", 0, "snapshot expiry in Redis, 0 keeps until replaced")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the token API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("port", "3000", "listen port")
	serveCmd.Flags().Int("rate-limit-rps", 5, "per-IP refill rate (requires Redis)")
	serveCmd.Flags().Int("rate-limit-burst", 10, "per-IP burst (requires Redis)")
	serveCmd.Flags().Bool("with-poller", true, "run the snapshot poller in-process")
	serveCmd.Flags().Duration("poll-interval", 30*time.Second, "snapshot refresh interval")
	root.AddCommand(serveCmd)

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Refresh the snapshot on an interval",
		RunE:  runPoll,
	}
	pollCmd.Flags().Duration("poll-interval", 30*time.Second, "snapshot refresh interval")
	root.AddCommand(pollCmd)

	resolveCmd := &cobra.Command{
		Use:   "resolve [address...]",
		Short: "Resolve addresses once and print them; no arguments resolves the configured targets",
		RunE:  runResolve,
	}
	root.AddCommand(resolveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    config.Config
	logger *zap.Logger
	rdb    *goredis.Client
	svc    *tokens.Service
	store  tokens.SnapshotStore
}

func setup(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	for _, d := range tokens.Duplicates(cfg.Targets) {
		logger.Warn("target listed more than once", zap.String("target", d.String()))
	}

	a := &app{cfg: cfg, logger: logger}
	a.rdb = redis.NewClient(cfg)
	if a.rdb != nil {
		a.store = tokens.NewRepo(a.rdb, cfg.SnapshotTTL)
	} else {
		a.store = tokens.NewMemoryRepo()
	}

	client := dexscreener.NewClient(cfg.DexURL, cfg.UpstreamTimeout)
	a.svc = tokens.NewService(client, tokens.Options{
		MaxConcurrency: cfg.MaxConcurrency,
		Stagger:        cfg.DispatchStagger,
	}, logger)
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.logger.Sync()
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.rdb != nil {
		if err := redis.Ping(ctx, a.rdb); err != nil {
			return err
		}
	}

	withPoller, _ := cmd.Flags().GetBool("with-poller")
	pollDone := make(chan struct{})
	if withPoller {
		p := poller.New(a.svc, a.store, a.cfg.Targets, a.cfg.PollInterval, a.logger)
		go func() {
			defer close(pollDone)
			_ = p.Run(ctx)
		}()
	} else {
		close(pollDone)
	}

	h := tokens.NewHandler(a.svc, a.store, a.cfg.Targets, a.cfg.Chain, a.logger)
	srv := httpSrv.NewServer(a.cfg, h, a.rdb, a.logger)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API listening",
			zap.String("port", a.cfg.Port),
			zap.Int("targets", len(a.cfg.Targets)),
			zap.String("chain", a.cfg.Chain),
			zap.Bool("poller", withPoller))
		errCh <- srv.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		stop()
		<-pollDone
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		a.logger.Error("shutdown", zap.Error(err))
	}
	<-pollDone
	return nil
}

func runPoll(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting poller",
		zap.String("dex_url", a.cfg.DexURL),
		zap.Duration("interval", a.cfg.PollInterval),
		zap.String("chain", a.cfg.Chain),
		zap.Int("targets", len(a.cfg.Targets)))

	err = poller.New(a.svc, a.store, a.cfg.Targets, a.cfg.PollInterval, a.logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if len(args) == 0 {
		items := a.svc.Collect(ctx, a.cfg.Targets)
		return enc.Encode(tokens.NewSnapshot(items, time.Now().UTC()).Out())
	}

	targets, err := tokens.ParseTargets(args, a.cfg.Chain)
	if err != nil {
		return err
	}
	var failed int
	for _, t := range targets {
		sum, err := a.svc.Resolve(ctx, t)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Error fetching token data: %v\n", err)
			continue
		}
		if err := enc.Encode(sum.Out()); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(targets))
	}
	return nil
}
