package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"PocketSim/internal/model"
)

type fakeEngine struct {
	mu       sync.Mutex
	calls    []string
	settings model.BotSettings
	stats    model.Stats
	block    chan struct{}
}

func (f *fakeEngine) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeEngine) Tick(time.Time) {
	f.record("tick")
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeEngine) RefreshPerformance(time.Time) { f.record("performance") }

func (f *fakeEngine) Snapshot() model.Snapshot {
	return model.Snapshot{
		Tick:     3,
		Settings: f.Settings(),
		Signals:  []model.TradingSignal{{Pair: "EUR/USD", Direction: model.Buy, SuccessRate: 88}},
	}
}

func (f *fakeEngine) Stats() model.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == (model.Stats{}) {
		return model.Stats{TotalTrades: 2, WinRate: 50}
	}
	return f.stats
}

func (f *fakeEngine) Settings() model.BotSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeEngine) ReplaceSettings(next model.BotSettings) (model.BotSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = next
	return next, nil
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestRegisterAllRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeEngine{})
	if err := s.RegisterAll("not a spec", ""); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	s = NewScheduler(&fakeEngine{})
	if err := s.RegisterAll("", ""); err != nil {
		t.Fatalf("default specs: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	s := NewScheduler(&fakeEngine{})
	for i := 0; i < queueSize; i++ {
		if !s.enqueue("tick", func(time.Time) {}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	if s.enqueue("tick", func(time.Time) {}) {
		t.Error("enqueue into full queue accepted")
	}
}

func TestRunExecutesInOrder(t *testing.T) {
	eng := &fakeEngine{}
	s := NewScheduler(eng)
	s.enqueue("tick", eng.Tick)
	s.enqueue("performance", eng.RefreshPerformance)
	s.enqueue("tick", eng.Tick)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	deadline := time.After(5 * time.Second)
	for len(eng.Calls()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("calls = %v", eng.Calls())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	want := []string{"tick", "performance", "tick"}
	got := eng.Calls()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestSlowTickNeverOverlaps(t *testing.T) {
	eng := &fakeEngine{block: make(chan struct{})}
	s := NewScheduler(eng)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	s.enqueue("tick", eng.Tick)
	for len(eng.Calls()) == 0 {
		time.Sleep(time.Millisecond)
	}
	// The running tick holds the consumer; further triggers fill then overflow.
	accepted := 0
	for i := 0; i < queueSize+3; i++ {
		if s.enqueue("tick", eng.Tick) {
			accepted++
		}
	}
	if accepted != queueSize {
		t.Errorf("accepted = %d, want %d", accepted, queueSize)
	}
	if n := len(eng.Calls()); n != 1 {
		t.Errorf("concurrent ticks = %d, want 1", n)
	}
	close(eng.block)
	cancel()
	<-done
}

func TestHandleCommand(t *testing.T) {
	eng := &fakeEngine{settings: model.BotSettings{MaxConcurrentTrades: 3}}
	s := NewScheduler(eng)

	tests := []struct {
		command string
		want    string
		enabled bool
	}{
		{"/enable", "enabled", true},
		{"/status@SimBot", "Tick: 3", true},
		{"/stats", "Trades: 2", true},
		{"/signals", "EUR/USD", true},
		{"/disable", "disabled", false},
		{"hello", "Available commands", false},
		{"", "Available commands", false},
	}
	for _, tt := range tests {
		got := s.HandleCommand(tt.command)
		if !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
		}
		if eng.Settings().IsEnabled != tt.enabled {
			t.Errorf("after %q enabled = %v, want %v", tt.command, eng.Settings().IsEnabled, tt.enabled)
		}
	}
}

func TestEnableRefusedWhileStopLossReached(t *testing.T) {
	eng := &fakeEngine{
		settings: model.BotSettings{StopLossAmount: 50, MaxConcurrentTrades: 3},
		stats:    model.Stats{TotalTrades: 2, SessionProfit: -50},
	}
	s := NewScheduler(eng)

	got := s.HandleCommand("/enable")
	if !strings.Contains(got, "Stop-loss reached") {
		t.Errorf("reply = %q, want a stop-loss refusal", got)
	}
	if eng.Settings().IsEnabled {
		t.Error("bot must stay disabled while the stop-loss is reached")
	}

	// Raising the limit clears the block.
	eng.settings.StopLossAmount = 100
	if got := s.HandleCommand("/enable"); !strings.Contains(got, "Bot enabled") {
		t.Errorf("reply = %q, want enabled", got)
	}
	if !eng.Settings().IsEnabled {
		t.Error("expected the bot enabled after raising the stop-loss")
	}
}
