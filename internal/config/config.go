package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PocketSim/internal/calculator"
	"PocketSim/internal/collector"
	"PocketSim/internal/model"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// DefaultPairs is the watch list used when none is configured.
var DefaultPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD",
	"EUR/GBP", "NZD/USD", "USD/CHF", "BTC/USD", "ETH/USD",
	"XAU/USD", "XAG/USD", "EUR/JPY",
}

// Config holds all application configuration.
type Config struct {
	Session struct {
		Pairs            []string `yaml:"pairs"`
		Seed             uint64   `yaml:"seed"`
		Window           int      `yaml:"window"`
		HistoryRetention int      `yaml:"history_retention"`
		LogRetention     int      `yaml:"log_retention"`
		InitialBalance   float64  `yaml:"initial_balance"`
		Strategies       []string `yaml:"strategies"`
	} `yaml:"session"`
	Trader struct {
		PayoutRatio     float64       `yaml:"payout_ratio"`
		WinThresholdPct float64       `yaml:"win_threshold_pct"`
		AntiStreakPause time.Duration `yaml:"anti_streak_pause"`
		MaxLossStreak   int           `yaml:"max_loss_streak"`
	} `yaml:"trader"`
	Schedule struct {
		TickCron        string `yaml:"tick_cron"`
		PerformanceCron string `yaml:"performance_cron"`
	} `yaml:"schedule"`
	Bot      model.BotSettings `yaml:"bot"`
	Telegram struct {
		BotToken             string        `yaml:"bot_token"`
		ChatID               string        `yaml:"chat_id"`
		Polling              bool          `yaml:"polling"`
		NotifyMinProbability float64       `yaml:"notify_min_probability"`
		SendInterval         time.Duration `yaml:"send_interval"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultBot is the starting bot configuration: disabled, demo account, 1–100 per trade.
func DefaultBot() model.BotSettings {
	return model.BotSettings{
		IsEnabled:              false,
		IsDemoAccount:          true,
		MinTradeAmount:         1,
		MaxTradeAmount:         100,
		StopLossAmount:         500,
		MaxConcurrentTrades:    3,
		MinConfidence:          75,
		PreSignalEnabled:       true,
		PreSignalMinutes:       3,
		PreSignalMinConfidence: 85,
	}
}

// Path returns the config path, honouring CONFIG_PATH.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Bot settings carry booleans whose zero value is meaningful, so they are
	// defaulted before the file is applied.
	cfg.Bot = DefaultBot()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("BOT_ACCOUNT_ID"); v != "" {
		cfg.Bot.AccountID = v
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse SIM_SEED: %w", err)
		}
		cfg.Session.Seed = seed
	}

	// Defaults
	if len(cfg.Session.Pairs) == 0 {
		cfg.Session.Pairs = append([]string(nil), DefaultPairs...)
	}
	if cfg.Session.Window == 0 {
		cfg.Session.Window = collector.MaxSamples
	}
	if cfg.Session.HistoryRetention == 0 {
		cfg.Session.HistoryRetention = 100
	}
	if cfg.Session.LogRetention == 0 {
		cfg.Session.LogRetention = 50
	}
	if cfg.Session.InitialBalance == 0 {
		cfg.Session.InitialBalance = 1000
	}
	if cfg.Trader.PayoutRatio == 0 {
		cfg.Trader.PayoutRatio = 0.8
	}
	if cfg.Trader.WinThresholdPct == 0 {
		cfg.Trader.WinThresholdPct = 0.01
	}
	if cfg.Trader.AntiStreakPause == 0 {
		cfg.Trader.AntiStreakPause = 60 * time.Second
	}
	if cfg.Trader.MaxLossStreak == 0 {
		cfg.Trader.MaxLossStreak = 5
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "@every 1s"
	}
	if cfg.Schedule.PerformanceCron == "" {
		cfg.Schedule.PerformanceCron = "@every 5s"
	}
	if cfg.Telegram.NotifyMinProbability == 0 {
		cfg.Telegram.NotifyMinProbability = 90
	}
	if cfg.Telegram.SendInterval == 0 {
		cfg.Telegram.SendInterval = time.Second
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = ":memory:"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration can run a session.
func (c *Config) Validate() error {
	if len(c.Session.Pairs) == 0 {
		return fmt.Errorf("session.pairs must not be empty")
	}
	seen := make(map[string]bool, len(c.Session.Pairs))
	for _, p := range c.Session.Pairs {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("session.pairs contains an empty pair")
		}
		if seen[p] {
			return fmt.Errorf("session.pairs lists %s twice", p)
		}
		seen[p] = true
	}
	if c.Session.Window < calculator.MinSamples || c.Session.Window > collector.MaxSamples {
		return fmt.Errorf("session.window must be in [%d, %d], got %d",
			calculator.MinSamples, collector.MaxSamples, c.Session.Window)
	}
	if c.Session.InitialBalance <= 0 {
		return fmt.Errorf("session.initial_balance must be positive")
	}
	if c.Trader.PayoutRatio <= 0 || c.Trader.PayoutRatio > 1 {
		return fmt.Errorf("trader.payout_ratio must be in (0, 1], got %v", c.Trader.PayoutRatio)
	}
	if c.Trader.WinThresholdPct < 0 {
		return fmt.Errorf("trader.win_threshold_pct must not be negative")
	}
	if c.Bot.MinTradeAmount < 0 || c.Bot.MaxTradeAmount < 0 || c.Bot.StopLossAmount < 0 {
		return fmt.Errorf("bot amounts must not be negative")
	}
	if c.Bot.MinTradeAmount > c.Bot.MaxTradeAmount {
		return fmt.Errorf("bot.min_trade_amount %.2f exceeds bot.max_trade_amount %.2f",
			c.Bot.MinTradeAmount, c.Bot.MaxTradeAmount)
	}
	if c.Bot.PreSignalMinutes < 1 || c.Bot.PreSignalMinutes > 5 {
		return fmt.Errorf("bot.pre_signal_minutes must be in [1, 5], got %d", c.Bot.PreSignalMinutes)
	}
	if c.Bot.MinConfidence < 0 || c.Bot.MinConfidence > 100 {
		return fmt.Errorf("bot.min_confidence must be in [0, 100]")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
