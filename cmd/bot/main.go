package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"PocketSim/internal/api"
	"PocketSim/internal/config"
	"PocketSim/internal/notifier"
	"PocketSim/internal/random"
	"PocketSim/internal/recorder"
	"PocketSim/internal/scheduler"
	"PocketSim/internal/session"
	"PocketSim/internal/trader"
	"PocketSim/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("load .env", zap.Error(err))
	}

	// Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()
	logger.Info("PocketSim starting", zap.Int("pairs", len(cfg.Session.Pairs)))

	// Init recorder
	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
	}
	defer rec.Close()

	seed := cfg.Session.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("simulation seed", zap.Uint64("seed", seed))

	// Init Telegram relay
	var tn *notifier.TelegramNotifier
	var relay *notifier.Relay
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		opts := notifier.DefaultRelayOptions()
		opts.Interval = cfg.Telegram.SendInterval
		opts.MinProbability = cfg.Telegram.NotifyMinProbability
		relay = notifier.NewRelay(tn, opts)
	} else {
		logger.Info("telegram disabled: no bot token configured")
	}

	opts := session.Options{
		Pairs:            cfg.Session.Pairs,
		RNG:              random.New(seed),
		Window:           cfg.Session.Window,
		HistoryRetention: cfg.Session.HistoryRetention,
		LogRetention:     cfg.Session.LogRetention,
		InitialBalance:   cfg.Session.InitialBalance,
		Strategies:       cfg.Session.Strategies,
		Trader: trader.Config{
			PayoutRatio:     cfg.Trader.PayoutRatio,
			WinThresholdPct: cfg.Trader.WinThresholdPct,
			AntiStreakPause: cfg.Trader.AntiStreakPause,
			MaxLossStreak:   cfg.Trader.MaxLossStreak,
		},
		Settings: cfg.Bot,
		Recorder: rec,
	}
	if relay != nil {
		opts.Notifier = relay
	}
	sess, err := session.New(opts)
	if err != nil {
		logger.Fatal("init session", zap.Error(err))
	}

	// Init scheduler
	sched := scheduler.NewScheduler(sess)
	if err := sched.RegisterAll(cfg.Schedule.TickCron, cfg.Schedule.PerformanceCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	sched.Start()

	server := api.NewServer(cfg.HTTP.Addr, api.NewHandler(sess))
	g.Go(func() error { return server.Run(gctx) })

	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
		if cfg.Telegram.Polling {
			g.Go(func() error {
				tn.StartPolling(gctx, sched.HandleCommand)
				return nil
			})
			logger.Info("telegram polling started")
		}
	}

	logger.Info("PocketSim is running. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", zap.Error(err))
	}
	logger.Info("PocketSim stopped")
}
