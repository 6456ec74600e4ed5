package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"PocketSim/internal/botlog"
	"PocketSim/internal/collector"
	"PocketSim/internal/fund"
	"PocketSim/internal/model"
	"PocketSim/internal/random"
	"PocketSim/internal/recorder"
	"PocketSim/internal/signal"
	"PocketSim/internal/strategy"
	"PocketSim/internal/trader"
	"PocketSim/pkg/logger"
	"PocketSim/pkg/metrics"
)

// Notifier is told about pre-signals and trades. Implementations must not block.
type Notifier interface {
	PreSignal(model.TradingSignal)
	TradeOpened(model.ActiveTrade)
	TradeClosed(model.HistoryItem)
}

// Options configures a Session.
type Options struct {
	Pairs            []string
	RNG              random.Source
	Window           int
	HistoryRetention int
	LogRetention     int
	InitialBalance   float64
	Strategies       []string
	Trader           trader.Config
	Settings         model.BotSettings
	Recorder         recorder.Recorder
	Notifier         Notifier
}

// Session owns all tick state. Every exported method is serialized by one mutex, so
// external reads never observe a half-applied tick.
type Session struct {
	mu sync.Mutex

	pairs     []string
	collector *collector.Collector
	bank      *strategy.Bank
	board     *signal.Board
	projector *signal.Projector
	trader    *trader.Manager
	ledger    *fund.Manager
	book      *botlog.Book
	recorder  recorder.Recorder
	notifier  Notifier

	collect func(pair string, now time.Time) (*collector.Analysis, error)

	settings    model.BotSettings
	tick        uint64
	updatedAt   time.Time
	quotes      map[string]model.Quote
	verdicts    map[string]model.StrategyVerdict
	performance []model.StrategyPerformance
	journaled   int
}

// New wires a Session from opts.
func New(opts Options) (*Session, error) {
	if len(opts.Pairs) == 0 {
		return nil, fmt.Errorf("at least one pair is required")
	}
	bank, err := strategy.Select(opts.Strategies)
	if err != nil {
		return nil, fmt.Errorf("select strategies: %w", err)
	}
	rng := opts.RNG
	if rng == nil {
		rng = random.New(uint64(time.Now().UnixNano()))
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	cfg := opts.Trader
	if cfg.PayoutRatio == 0 {
		cfg = trader.DefaultConfig()
	}

	ledger := fund.NewManager(opts.InitialBalance, opts.HistoryRetention)
	book := botlog.NewBook(opts.LogRetention)
	col := collector.NewCollector(collector.NewGenerator(rng), opts.Window)

	s := &Session{
		pairs:     append([]string(nil), opts.Pairs...),
		collector: col,
		bank:      bank,
		board:     signal.NewBoard(rng, opts.Pairs),
		projector: signal.NewProjector(),
		trader:    trader.NewManager(cfg, rng, opts.Pairs, ledger, book, rec),
		ledger:    ledger,
		book:      book,
		recorder:  rec,
		notifier:  opts.Notifier,
		collect:   col.Collect,
		settings:  opts.Settings.Normalized(),
		quotes:    make(map[string]model.Quote),
		verdicts:  make(map[string]model.StrategyVerdict),
	}
	if s.notifier != nil {
		s.trader.SetListener(s.notifier)
	}
	metrics.Balance.Set(ledger.Balance())

	if perf, err := rec.StrategyPerformance(bank.Names()); err == nil {
		s.performance = perf
	}
	return s, nil
}

// Tick advances the simulation by one second: collect, evaluate, signals, pre-signals, trades.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	quotes := make(map[string]model.Quote, len(s.pairs))
	verdicts := make(map[string]model.StrategyVerdict, len(s.pairs))
	ordered := make([]model.StrategyVerdict, 0, len(s.pairs))
	for _, pair := range s.pairs {
		v, err := s.analyze(pair, now)
		if err != nil {
			s.analysisFailed(pair, err, now)
			continue
		}
		quotes[pair] = v.Quote
		verdicts[pair] = v
		ordered = append(ordered, v)
	}

	s.board.Tick(verdicts, now)
	s.handlePreSignals(s.projector.Tick(ordered, s.settings, now), now)

	if next, changed := s.trader.Tick(now, verdicts, quotes, s.settings); changed {
		s.settings = next
	}

	for pair, q := range quotes {
		s.quotes[pair] = q
	}
	for pair, v := range verdicts {
		s.verdicts[pair] = v
	}
	s.tick++
	s.updatedAt = now

	metrics.TicksTotal.Inc()
	metrics.TickDuration.Observe(time.Since(start).Seconds())
}

// analyze collects and evaluates one pair. A panic anywhere in either step is
// returned as an error so the remaining pairs still tick.
func (s *Session) analyze(pair string, now time.Time) (v model.StrategyVerdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while analyzing %s: %v", pair, r)
		}
	}()
	a, err := s.collect(pair, now)
	if err != nil {
		return v, err
	}
	return s.bank.Evaluate(pair, a.Quote, a.Indicators, now), nil
}

func (s *Session) analysisFailed(pair string, err error, now time.Time) {
	metrics.AnalysisFailures.WithLabelValues(pair).Inc()
	logger.Warn("pair analysis failed, skipping", zap.String("pair", pair), zap.Error(err))
	s.book.Add(model.BotLog{
		Timestamp: now,
		Action:    model.ActionAnalyzing,
		Pair:      pair,
		Reason:    fmt.Sprintf("analysis failed: %v", err),
	})
}

func (s *Session) handlePreSignals(u signal.Update, now time.Time) {
	for _, sig := range u.Activated {
		s.book.Add(model.BotLog{
			Timestamp:  now,
			Action:     model.ActionPreSignal,
			Pair:       sig.Pair,
			Direction:  sig.Direction,
			Confidence: sig.WinProbability,
			Strategy:   sig.StrategyName,
			Reason:     fmt.Sprintf("pre-signal activated, expiration %ds", sig.ExpirationSeconds),
		})
		s.recordSignal(sig, "ACTIVATED", now)
	}
	for _, sig := range u.Created {
		s.book.Add(model.BotLog{
			Timestamp:  now,
			Action:     model.ActionPreSignal,
			Pair:       sig.Pair,
			Direction:  sig.Direction,
			Confidence: sig.WinProbability,
			Strategy:   sig.StrategyName,
			Countdown:  sig.CountdownSeconds,
			Reason:     fmt.Sprintf("pre-signal in %d min • %.1f%%", sig.CountdownSeconds/60, sig.WinProbability),
		})
		metrics.PreSignals.WithLabelValues(sig.Pair, string(sig.Direction)).Inc()
		s.recordSignal(sig, "ARMED", now)
		if s.notifier != nil {
			s.notifier.PreSignal(sig)
		}
	}
}

func (s *Session) recordSignal(sig model.TradingSignal, event string, now time.Time) {
	if err := s.recorder.RecordSignal(&recorder.SignalEvent{
		SignalID:       sig.ID,
		Pair:           sig.Pair,
		Direction:      sig.Direction,
		EventType:      event,
		WinProbability: sig.WinProbability,
		Expiration:     sig.ExpirationSeconds,
		StrategyName:   sig.StrategyName,
		Timestamp:      now,
	}); err != nil {
		logger.Error("failed to journal signal event", zap.String("signal_id", sig.ID), zap.Error(err))
	}
}

// RefreshPerformance pulls per-strategy aggregates from the journal.
func (s *Session) RefreshPerformance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perf, err := s.recorder.StrategyPerformance(s.bank.Names())
	if err != nil {
		logger.Warn("strategy performance refresh failed", zap.Error(err))
		return
	}
	s.performance = perf

	total := 0
	var best *model.StrategyPerformance
	for i := range perf {
		total += perf[i].TotalTrades
		if perf[i].TotalTrades > 0 && (best == nil || perf[i].WinRate > best.WinRate) {
			best = &perf[i]
		}
	}
	if total == s.journaled || best == nil {
		return
	}
	s.journaled = total
	s.book.Add(model.BotLog{
		Timestamp:  now,
		Action:     model.ActionStrategyUpdate,
		Strategy:   best.Name,
		Confidence: best.WinRate,
		Reason:     fmt.Sprintf("%d trades journaled • leader %s %.1f%% over %d", total, best.Name, best.WinRate, best.TotalTrades),
	})
}

// Settings returns the current settings value.
func (s *Session) Settings() model.BotSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Normalized()
}

// ErrCapBelowOpen rejects a concurrency cap lower than the number of open trades.
var ErrCapBelowOpen = errors.New("max_concurrent_trades is below the number of open trades")

// ReplaceSettings swaps the whole settings value between ticks and returns the
// normalized value that took effect. Open trades are never closed early, so a cap
// below their count is rejected and the current settings stay.
func (s *Session) ReplaceSettings(next model.BotSettings) (model.BotSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next = next.Normalized()
	if open := len(s.trader.Active()); next.MaxConcurrentTrades < open {
		return s.settings.Normalized(), fmt.Errorf("%w: cap %d, open %d", ErrCapBelowOpen, next.MaxConcurrentTrades, open)
	}
	s.settings = next
	logger.Info("settings replaced",
		zap.Bool("enabled", s.settings.IsEnabled),
		zap.Float64("min_amount", s.settings.MinTradeAmount),
		zap.Float64("max_amount", s.settings.MaxTradeAmount),
		zap.Int("max_concurrent", s.settings.MaxConcurrentTrades))
	return s.settings.Normalized(), nil
}

// Indicators returns the latest indicator vector of a pair.
func (s *Session) Indicators(pair string) (model.IndicatorVector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verdicts[pair]
	return v.Indicators, ok
}

// Series returns a copy of the retained price window of a pair.
func (s *Session) Series(pair string) ([]model.PriceSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector.Series(pair)
}

// Stats returns the dashboard aggregates.
func (s *Session) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trader.Stats()
}

// Pairs lists the simulated pairs in order.
func (s *Session) Pairs() []string {
	return append([]string(nil), s.pairs...)
}

// Snapshot returns a deep copy of the outbound view.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes := make(map[string]model.Quote, len(s.quotes))
	for k, v := range s.quotes {
		quotes[k] = v
	}
	verdicts := make(map[string]model.StrategyVerdict, len(s.verdicts))
	for k, v := range s.verdicts {
		v.Scores = append([]model.StrategyScore(nil), v.Scores...)
		verdicts[k] = v
	}
	return model.Snapshot{
		Tick:        s.tick,
		UpdatedAt:   s.updatedAt,
		Quotes:      quotes,
		Verdicts:    verdicts,
		Signals:     s.board.Signals(),
		PreSignals:  s.projector.Armed(),
		Upcoming:    s.projector.Upcoming(),
		Trades:      s.trader.Active(),
		History:     s.ledger.GetState().History,
		Logs:        s.book.Entries(),
		Stats:       s.trader.Stats(),
		Performance: append([]model.StrategyPerformance(nil), s.performance...),
		Settings:    s.settings.Normalized(),
	}
}
