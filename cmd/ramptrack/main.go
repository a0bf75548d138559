package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/DomeLiquid/ramptrack/backend"
	"github.com/DomeLiquid/ramptrack/config"
	"github.com/DomeLiquid/ramptrack/logger"
	"github.com/DomeLiquid/ramptrack/pricecache"
	"github.com/DomeLiquid/ramptrack/store"
	"github.com/DomeLiquid/ramptrack/tracker"
	"github.com/facebookgo/clock"
)

func main() {
	orderId := flag.Uint64("order", 0, "id of the order to track")
	userId := flag.Uint64("user", 0, "id of the acting user")
	token := flag.String("token", "", "session token of the acting user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("4")
		logger.Logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel)
	if cfg.LogToFile && cfg.Workdir != "" {
		logger.AddFileLogger(cfg.Workdir)
	}
	log := &logger.Logger

	if *orderId == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *orderId, *userId, *token); err != nil {
		log.Fatal().Err(err).Uint64("order_id", *orderId).Msg("ramptrack")
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log core.Log, orderId, userId uint64, token string) error {
	clk := clock.New()

	dsn := cfg.DatabaseUri
	if cfg.Workdir != "" && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(cfg.Workdir, dsn)
	}
	db, err := store.Open(dsn)
	if err != nil {
		return err
	}
	durable := store.NewGormKVStore(db)
	kv := store.NewCachedKVStore(durable, cfg.PriceCacheTTL)
	cache := pricecache.New(clk, kv, pricecache.WithTTL(cfg.PriceCacheTTL), pricecache.WithLog(log))
	if cfg.PrunePriceCache {
		pruned, err := durable.DeleteUpdatedBefore(pricecache.KeyPrefix, clk.Now().Add(-cache.TTL()))
		if err != nil {
			log.Warn().Err(err).Msg("prune price cache")
		} else if pruned > 0 {
			log.Info().Int64("pruned", pruned).Msg("pruned stale prices")
		}
	}

	client := backend.NewClient(cfg.BackendURL, backend.WithTimeout(cfg.BackendTimeout), backend.WithLog(log))
	prices := pricecache.NewResolver(cache, client, log)

	opts := []tracker.OptionFunc{
		tracker.WithLog(log),
		tracker.WithTimings(cfg.Timings()),
		tracker.WithPriceResolver(prices),
	}
	if userId != 0 && token != "" {
		user, err := client.RefetchUser(ctx, userId, token)
		if err != nil {
			return err
		}
		user = withSession(user, token)
		sessionToken, err := user.SessionToken(clk)
		if err != nil {
			return err
		}
		opts = append(opts, tracker.WithSession(user, sessionToken))
	}

	state, err := client.GetOrder(ctx, orderId)
	if err != nil {
		return err
	}

	listener := newLogListener(ctx, log, client, userId, token)
	tr := tracker.New(clk, client, listener, orderId, opts...)
	listener.tracker = tr
	defer tr.Close()

	tr.Start(ctx, state)
	if listener.settled(state) {
		log.Info().Str("state", state.Kind().String()).Msg("order already settled")
		return nil
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("interrupted")
	case <-listener.done:
	}
	return nil
}
