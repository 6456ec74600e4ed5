package session

import (
	"errors"
	"testing"
	"time"

	"PocketSim/internal/collector"
	"PocketSim/internal/model"
	"PocketSim/internal/random"
	"PocketSim/internal/recorder"
)

type stubRecorder struct {
	recorder.NoopRecorder
	perf []model.StrategyPerformance
}

func (r *stubRecorder) StrategyPerformance(names []string) ([]model.StrategyPerformance, error) {
	if r.perf == nil {
		return r.NoopRecorder.StrategyPerformance(names)
	}
	return r.perf, nil
}

type countingNotifier struct {
	pre, opened, closed int
}

func (n *countingNotifier) PreSignal(model.TradingSignal) { n.pre++ }
func (n *countingNotifier) TradeOpened(model.ActiveTrade) { n.opened++ }
func (n *countingNotifier) TradeClosed(model.HistoryItem) { n.closed++ }

func enabledSettings() model.BotSettings {
	return model.BotSettings{
		IsEnabled:              true,
		AccountID:              "demo",
		MinTradeAmount:         10,
		MaxTradeAmount:         50,
		MaxConcurrentTrades:    2,
		MinConfidence:          60,
		PreSignalEnabled:       true,
		PreSignalMinutes:       1,
		PreSignalMinConfidence: 60,
	}
}

func newSession(t *testing.T, pairs []string, settings model.BotSettings, rec recorder.Recorder, n Notifier) *Session {
	t.Helper()
	s, err := New(Options{
		Pairs:          pairs,
		RNG:            random.New(42),
		InitialBalance: 1000,
		Settings:       settings,
		Recorder:       rec,
		Notifier:       n,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without pairs")
	}
	if _, err := New(Options{Pairs: []string{"EUR/USD"}, Strategies: []string{"Unknown"}}); err == nil {
		t.Error("expected error for an unknown strategy")
	}
}

func TestTick_Invariants(t *testing.T) {
	notifier := &countingNotifier{}
	s := newSession(t, []string{"BTC/USD", "ETH/USD", "EUR/USD"}, enabledSettings(), nil, notifier)
	start := time.Unix(1700000000, 0)

	for i := 0; i < 400; i++ {
		s.Tick(start.Add(time.Duration(i) * time.Second))
		snap := s.Snapshot()

		if len(snap.Trades) > snap.Settings.MaxConcurrentTrades {
			t.Fatalf("tick %d: %d trades exceed cap", i, len(snap.Trades))
		}
		seen := map[string]bool{}
		for _, tr := range snap.Trades {
			if seen[tr.Pair] {
				t.Fatalf("tick %d: pair %s traded twice", i, tr.Pair)
			}
			seen[tr.Pair] = true
		}
		for pair, v := range snap.Verdicts {
			ind := v.Indicators
			if ind.RSI < 0 || ind.RSI > 100 || ind.Stochastic < 0 || ind.Stochastic > 100 ||
				ind.MFI < 0 || ind.MFI > 100 || ind.ADX < 0 {
				t.Fatalf("tick %d: %s indicators out of bounds %+v", i, pair, ind)
			}
			if v.Confidence < 60 || v.Confidence > 98 {
				t.Fatalf("tick %d: %s confidence %f out of bounds", i, pair, v.Confidence)
			}
		}
		for _, sig := range snap.Signals {
			if sig.CountdownSeconds < 0 {
				t.Fatalf("tick %d: negative countdown on %s", i, sig.Pair)
			}
		}
	}

	snap := s.Snapshot()
	if snap.Tick != 400 {
		t.Errorf("expected tick 400, got %d", snap.Tick)
	}
	if len(snap.Quotes) != 3 || len(snap.Signals) != 3 {
		t.Errorf("expected quotes and signals for 3 pairs, got %d/%d", len(snap.Quotes), len(snap.Signals))
	}
	series, ok := s.Series("BTC/USD")
	if !ok || len(series) != collector.MaxSamples {
		t.Errorf("expected a full window, got %d", len(series))
	}
	if notifier.opened == 0 {
		t.Error("expected the crypto pairs to open at least one trade")
	}
	if len(snap.Logs) == 0 {
		t.Error("expected activity logs")
	}
}

func TestTick_SkipsFailingPair(t *testing.T) {
	s := newSession(t, []string{"EUR/USD", "GBP/USD", "USD/JPY"}, model.BotSettings{}, nil, nil)
	orig := s.collect
	s.collect = func(pair string, now time.Time) (*collector.Analysis, error) {
		switch pair {
		case "GBP/USD":
			panic("malformed series")
		case "USD/JPY":
			return nil, errors.New("invalid price")
		}
		return orig(pair, now)
	}

	s.Tick(time.Unix(0, 0))
	snap := s.Snapshot()
	if _, ok := snap.Quotes["EUR/USD"]; !ok {
		t.Error("expected the healthy pair to be analyzed")
	}
	if len(snap.Quotes) != 1 {
		t.Errorf("expected only one quote, got %d", len(snap.Quotes))
	}
	failures := 0
	for _, e := range snap.Logs {
		if e.Action == model.ActionAnalyzing && (e.Pair == "GBP/USD" || e.Pair == "USD/JPY") {
			failures++
		}
	}
	if failures != 2 {
		t.Errorf("expected 2 analysis failure logs, got %d", failures)
	}
}

func TestReplaceSettings_Normalizes(t *testing.T) {
	s := newSession(t, []string{"EUR/USD"}, model.BotSettings{}, nil, nil)
	got, err := s.ReplaceSettings(model.BotSettings{
		MinTradeAmount:      100,
		MaxTradeAmount:      10,
		StopLossAmount:      -5,
		MaxConcurrentTrades: 0,
		PreSignalMinutes:    9,
		AllowedIPs:          []string{"10.0.0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MinTradeAmount != 10 || got.MaxTradeAmount != 100 {
		t.Errorf("expected swapped amounts, got %f/%f", got.MinTradeAmount, got.MaxTradeAmount)
	}
	if got.StopLossAmount != 0 || got.MaxConcurrentTrades != 1 || got.PreSignalMinutes != 5 {
		t.Errorf("unexpected normalization %+v", got)
	}
	got.AllowedIPs[0] = "changed"
	if s.Settings().AllowedIPs[0] != "10.0.0.1" {
		t.Error("settings must be copied on the way out")
	}
}

// tradeable forces every analyzed pair past the trend and momentum entry gates.
func tradeable(s *Session) {
	orig := s.collect
	s.collect = func(pair string, now time.Time) (*collector.Analysis, error) {
		a, err := orig(pair, now)
		if err != nil {
			return nil, err
		}
		a.Indicators.ADX = 30
		a.Indicators.MACD = 0.001
		return a, nil
	}
}

func TestReplaceSettings_RejectsCapBelowOpenTrades(t *testing.T) {
	s := newSession(t, []string{"EUR/USD", "GBP/USD", "USD/JPY"}, enabledSettings(), nil, nil)
	tradeable(s)
	start := time.Unix(1700000000, 0)
	s.Tick(start)
	s.Tick(start.Add(time.Second))
	if n := len(s.Snapshot().Trades); n != 2 {
		t.Fatalf("expected 2 open trades, got %d", n)
	}

	lower := enabledSettings()
	lower.MaxConcurrentTrades = 1
	got, err := s.ReplaceSettings(lower)
	if !errors.Is(err, ErrCapBelowOpen) {
		t.Fatalf("expected ErrCapBelowOpen, got %v", err)
	}
	if got.MaxConcurrentTrades != 2 || s.Settings().MaxConcurrentTrades != 2 {
		t.Errorf("rejected settings must leave the cap at 2, got %d", s.Settings().MaxConcurrentTrades)
	}

	s.Tick(start.Add(2 * time.Second))
	snap := s.Snapshot()
	if len(snap.Trades) > snap.Settings.MaxConcurrentTrades {
		t.Errorf("%d trades exceed cap %d", len(snap.Trades), snap.Settings.MaxConcurrentTrades)
	}

	same := enabledSettings()
	same.MinTradeAmount = 20
	if _, err := s.ReplaceSettings(same); err != nil {
		t.Errorf("a cap equal to the open count must be accepted: %v", err)
	}
}

func TestTick_EvaluationPanicIsContained(t *testing.T) {
	s := newSession(t, []string{"EUR/USD", "GBP/USD"}, model.BotSettings{}, nil, nil)
	orig := s.collect
	s.collect = func(pair string, now time.Time) (*collector.Analysis, error) {
		if pair == "GBP/USD" {
			// a nil analysis without an error panics during evaluation
			return nil, nil
		}
		return orig(pair, now)
	}

	s.Tick(time.Unix(0, 0))
	snap := s.Snapshot()
	if snap.Tick != 1 {
		t.Fatalf("expected the tick to complete, got tick %d", snap.Tick)
	}
	if _, ok := snap.Verdicts["EUR/USD"]; !ok {
		t.Error("expected the healthy pair to be evaluated")
	}
	if _, ok := snap.Verdicts["GBP/USD"]; ok {
		t.Error("expected the failing pair to be skipped")
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := newSession(t, []string{"EUR/USD"}, model.BotSettings{}, nil, nil)
	s.Tick(time.Unix(0, 0))
	snap := s.Snapshot()
	delete(snap.Quotes, "EUR/USD")
	v := snap.Verdicts["EUR/USD"]
	v.Scores[0].Score = 999

	again := s.Snapshot()
	if _, ok := again.Quotes["EUR/USD"]; !ok {
		t.Error("quote map leaked")
	}
	if again.Verdicts["EUR/USD"].Scores[0].Score == 999 {
		t.Error("score slice leaked")
	}
	if _, ok := s.Indicators("EUR/USD"); !ok {
		t.Error("expected indicators for an analyzed pair")
	}
	if _, ok := s.Indicators("XAU/USD"); ok {
		t.Error("expected no indicators for an unknown pair")
	}
}

func TestRefreshPerformance(t *testing.T) {
	rec := &stubRecorder{}
	s := newSession(t, []string{"EUR/USD"}, model.BotSettings{}, rec, nil)
	if got := len(s.Snapshot().Performance); got != 10 {
		t.Fatalf("expected zeroed rows for 10 strategies, got %d", got)
	}

	rec.perf = []model.StrategyPerformance{
		{Name: "RSI Divergence Pro", TotalTrades: 4, WinRate: 75},
		{Name: "ADX Momentum Power", TotalTrades: 2, WinRate: 50},
	}
	now := time.Unix(100, 0)
	s.RefreshPerformance(now)
	s.RefreshPerformance(now.Add(5 * time.Second))

	snap := s.Snapshot()
	if len(snap.Performance) != 2 || snap.Performance[0].WinRate != 75 {
		t.Errorf("unexpected performance %+v", snap.Performance)
	}
	updates := 0
	for _, e := range snap.Logs {
		if e.Action == model.ActionStrategyUpdate {
			updates++
			if e.Strategy != "RSI Divergence Pro" {
				t.Errorf("expected the leader in the update, got %s", e.Strategy)
			}
		}
	}
	if updates != 1 {
		t.Errorf("expected one STRATEGY_UPDATE for unchanged totals, got %d", updates)
	}
}
