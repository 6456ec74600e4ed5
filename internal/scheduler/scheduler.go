package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PocketSim/internal/model"
	"PocketSim/internal/notifier"
	"PocketSim/pkg/logger"
)

// Engine is the part of a session the scheduler drives.
type Engine interface {
	Tick(now time.Time)
	RefreshPerformance(now time.Time)
	Snapshot() model.Snapshot
	Stats() model.Stats
	Settings() model.BotSettings
	ReplaceSettings(next model.BotSettings) (model.BotSettings, error)
}

const (
	DefaultTickSpec        = "@every 1s"
	DefaultPerformanceSpec = "@every 5s"
	queueSize              = 4
)

type job struct {
	name string
	run  func(now time.Time)
}

// Scheduler fires cron triggers onto a single queue. Run is the only consumer, so jobs
// never overlap and a slow tick makes later triggers drop instead of piling up.
type Scheduler struct {
	Cron   *cron.Cron
	Engine Engine
	Now    func() time.Time

	jobs chan job
}

// NewScheduler creates a Scheduler around engine.
func NewScheduler(engine Engine) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: engine,
		Now:    time.Now,
		jobs:   make(chan job, queueSize),
	}
}

// RegisterAll registers the tick and performance triggers.
func (s *Scheduler) RegisterAll(tickSpec, performanceSpec string) error {
	if tickSpec == "" {
		tickSpec = DefaultTickSpec
	}
	if performanceSpec == "" {
		performanceSpec = DefaultPerformanceSpec
	}
	if _, err := s.Cron.AddFunc(tickSpec, func() { s.enqueue("tick", s.Engine.Tick) }); err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	if _, err := s.Cron.AddFunc(performanceSpec, func() { s.enqueue("performance", s.Engine.RefreshPerformance) }); err != nil {
		return fmt.Errorf("register performance task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running triggers.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) enqueue(name string, run func(time.Time)) bool {
	select {
	case s.jobs <- job{name: name, run: run}:
		return true
	default:
		logger.Warn("job queue full, dropping trigger", zap.String("job", name))
		return false
	}
}

// Run executes queued jobs in order until ctx is cancelled, then stops the cron.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-s.jobs:
			start := time.Now()
			j.run(s.Now())
			logger.Debug("job finished", zap.String("job", j.name), zap.Duration("took", time.Since(start)))
		}
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends the bot name in groups: /status@SimBot.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	switch cmd {
	case "/status":
		return notifier.FormatStatus(s.Engine.Snapshot())
	case "/stats":
		return notifier.FormatStats(s.Engine.Stats())
	case "/signals":
		return notifier.FormatSignals(s.Engine.Snapshot().Signals)
	case "/enable", "/disable":
		next := s.Engine.Settings()
		next.IsEnabled = cmd == "/enable"
		if next.IsEnabled {
			// The stop-loss is enforced every tick and would disable the bot again at once.
			stats := s.Engine.Stats()
			if next.StopLossAmount > 0 && stats.SessionProfit <= -next.StopLossAmount {
				return fmt.Sprintf("⛔ Stop-loss reached: session %.2f, limit -%.2f\nRaise or clear stop_loss_amount to resume trading",
					stats.SessionProfit, next.StopLossAmount)
			}
		}
		applied, err := s.Engine.ReplaceSettings(next)
		if err != nil {
			return fmt.Sprintf("❌ Settings rejected: %v", err)
		}
		if applied.IsEnabled {
			return "▶️ Bot enabled"
		}
		return "⏸ Bot disabled"
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /status\n• /stats\n• /signals\n• /enable\n• /disable"
