package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/kalshi-lagbot/internal/api"
	"github.com/rickgao/kalshi-lagbot/internal/auth"
	"github.com/rickgao/kalshi-lagbot/internal/config"
	"github.com/rickgao/kalshi-lagbot/internal/discovery"
	"github.com/rickgao/kalshi-lagbot/internal/execute"
	"github.com/rickgao/kalshi-lagbot/internal/journal"
	"github.com/rickgao/kalshi-lagbot/internal/reference"
	"github.com/rickgao/kalshi-lagbot/internal/runner"
	"github.com/rickgao/kalshi-lagbot/internal/strategy"
	"github.com/rickgao/kalshi-lagbot/internal/summary"
	"github.com/rickgao/kalshi-lagbot/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/lagbot.yaml", "path to config file")
	interval := flag.Duration("interval", 0, "repeat the run at this interval (0 runs once)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting lagbot",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"dry_run", cfg.Run.IsDryRun(),
		"discovery", cfg.Discovery.Mode,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		cleanup()
		os.Exit(1)
	}
	defer cleanup()

	r := runner.New(runner.Config{
		DryRun:        cfg.Run.IsDryRun(),
		CheckExchange: cfg.API.CheckExchange == nil || *cfg.API.CheckExchange,
		LagEnabled:    cfg.Lag.IsEnabled(),
		LogDecisions:  cfg.Logging.LogDecisions,
		MaxHighlights: cfg.Summary.MaxHighlights,
	}, deps, logger)

	if *interval > 0 {
		logger.Info("running on interval", "interval", *interval)
		r.Loop(ctx, *interval)
		logger.Info("lagbot stopped")
		return
	}

	out := r.RunOnce(ctx)
	if out.Err != nil {
		cleanup()
		os.Exit(1)
	}
}

// buildDeps wires the run's collaborators from config.
func buildDeps(ctx context.Context, cfg *config.BotConfig, logger *slog.Logger) (runner.Deps, func(), error) {
	cleanup := func() {}
	deps := runner.Deps{}

	var client *api.Client
	if cfg.API.HasCredentials() {
		creds, err := auth.LoadCredentials(cfg.API.APIKey, cfg.API.PrivateKeyPEM, cfg.API.PrivateKeyPath)
		if err != nil {
			return deps, cleanup, fmt.Errorf("load credentials: %w", err)
		}
		client = api.NewClient(
			cfg.API.RestURL,
			creds,
			api.WithLogger(logger),
			api.WithTimeout(cfg.API.Timeout),
			api.WithRetries(cfg.API.MaxRetries, time.Second),
		)
	}

	if client != nil {
		deps.Status = client
		deps.Markets = discovery.New(discovery.Config{
			Mode:                cfg.Discovery.Mode,
			EventSeriesTickers:  cfg.Discovery.EventSeriesTickers,
			EventTickerPrefixes: cfg.Discovery.EventTickerPrefixes,
			CryptoAssets:        cfg.Strategy.CryptoAssets,
			SeriesCategory:      cfg.Discovery.SeriesCategory,
			SeriesFrequency:     cfg.Discovery.SeriesFrequency,
			EventsLimit:         cfg.Discovery.EventsLimit,
			MinCloseTS:          cfg.Discovery.MinCloseTS,
		}, client, logger)
	} else {
		logger.Warn("no API credentials, dry run with an empty market list")
		deps.Markets = discovery.Static(nil)
	}

	if cfg.Lag.IsEnabled() {
		deps.Scanner = reference.NewScanner(cfg.Lag.MinSources, cfg.Lag.FetchTimeout, logger)
		deps.Assets = runner.Assets(cfg.Lag.Symbols, runner.DefaultSources(cfg.Lag.BinanceTransport, cfg.Lag.BinanceWSURL))
	}

	deps.Engine = strategy.NewEngine(strategy.Config{
		BTCOnly:          cfg.Strategy.BTCOnly,
		CryptoOnly:       cfg.Strategy.IsCryptoOnly(),
		CryptoAssets:     cfg.Strategy.CryptoAssets,
		IntervalPattern:  cfg.Strategy.IntervalRegex,
		CombinedMaxPrice: cfg.Strategy.CombinedMaxPrice,
		OrderCount:       cfg.Strategy.OrderCount,
		LagEnabled:       cfg.Lag.IsEnabled(),
		LagThreshold:     cfg.Lag.Threshold,
		RequireSignal:    cfg.Lag.RequireSignal,
	})

	var sink execute.Sink
	if client != nil {
		sink = execute.KalshiSink(client, cfg.API.TimeInForce)
	}
	deps.Executor = execute.New(sink, cfg.Run.IsDryRun(), logger)

	if cfg.Journal.Enabled {
		db := cfg.Journal.Postgres
		logger.Info("connecting to journal database",
			"host", db.Host,
			"port", db.Port,
			"database", db.Name,
		)
		pool, err := journal.Connect(ctx, db)
		if err != nil {
			return deps, cleanup, fmt.Errorf("connect journal: %w", err)
		}
		cleanup = pool.Close

		j := journal.New(pool, logger)
		if err := j.EnsureSchema(ctx); err != nil {
			return deps, cleanup, err
		}
		deps.Journal = j
	}

	if cfg.Summary.SlackWebhookURL != "" {
		deps.Posters = append(deps.Posters, summary.NewSlack(cfg.Summary.SlackWebhookURL, nil))
	}
	if cfg.Summary.TelegramBotToken != "" && cfg.Summary.TelegramChatID != "" {
		tg, err := summary.NewTelegram(cfg.Summary.TelegramBotToken, cfg.Summary.TelegramChatID)
		if err != nil {
			logger.Warn("telegram summary disabled", "error", err)
		} else {
			deps.Posters = append(deps.Posters, tg)
		}
	}

	return deps, cleanup, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
