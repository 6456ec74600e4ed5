package fund

import (
	"testing"

	"PocketSim/internal/model"
	"PocketSim/internal/random"
)

func baseSettings() model.BotSettings {
	return model.BotSettings{MinTradeAmount: 10, MaxTradeAmount: 100}
}

func TestSize_MartingaleExample(t *testing.T) {
	s := baseSettings()
	s.MartingaleEnabled = true
	got := Size(SizingInput{Settings: s, Balance: 1000, ConsecutiveLosses: 3}, random.NewSequence(0.5))
	if got != 50 {
		t.Errorf("expected 50, got %f", got)
	}
}

func TestSize_Martingale(t *testing.T) {
	s := baseSettings()
	s.MartingaleEnabled = true
	tests := []struct {
		losses  int
		balance float64
		want    float64
	}{
		{0, 1000, 10},
		{1, 1000, 20},
		{2, 1000, 40},
		{7, 1000, 50},   // steps capped at 3, then 5% of balance
		{3, 100000, 80}, // 10 × 2^3
		{2, 300, 15},    // 5% of balance
		{3, 50, 10},     // floor at min
	}
	for _, tt := range tests {
		got := Size(SizingInput{Settings: s, Balance: tt.balance, ConsecutiveLosses: tt.losses}, random.NewSequence(0))
		if got != tt.want {
			t.Errorf("losses=%d balance=%f: expected %f, got %f", tt.losses, tt.balance, tt.want, got)
		}
	}
}

func TestSize_Flat(t *testing.T) {
	s := baseSettings()
	tests := []struct {
		u       float64
		balance float64
		want    float64
	}{
		{0, 10000, 10},
		{0.5, 10000, 55},
		{0.999, 10000, 99},
		{0.999, 500, 50}, // 10% of balance
	}
	for _, tt := range tests {
		got := Size(SizingInput{Settings: s, Balance: tt.balance}, random.NewSequence(tt.u))
		if got != tt.want {
			t.Errorf("u=%f balance=%f: expected %f, got %f", tt.u, tt.balance, tt.want, got)
		}
	}
}

func TestSize_SmartRisk(t *testing.T) {
	s := baseSettings()
	s.MinTradeAmount = 20
	s.UseSmartRisk = true
	w, l := model.Win, model.Loss
	tests := []struct {
		name       string
		confidence float64
		adx        float64
		recent     []model.Result
		balance    float64
		want       float64
	}{
		// 20 × 1.5 × 1.3 × 1.2 = 46.8
		{"hot streak", 92, 40, []model.Result{w, w, w, w, l}, 10000, 46},
		// 20 × 1.2 × 1.1 × 1.1 = 29.04
		{"three wins", 86, 30, []model.Result{w, l, w, l, w}, 10000, 29},
		// 20 × 1.0 × 0.8 × 0.9 = 14.4 → min 20
		{"cold", 70, 10, []model.Result{l, l, l}, 10000, 20},
		// 2% of 1500 = 30
		{"risk cap", 92, 40, []model.Result{w, w, w, w, w}, 1500, 30},
	}
	for _, tt := range tests {
		got := Size(SizingInput{
			Settings: s, Balance: tt.balance, Recent: tt.recent,
			Confidence: tt.confidence, ADX: tt.adx,
		}, random.NewSequence(0))
		if got != tt.want {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

func TestManager_Settle(t *testing.T) {
	m := NewManager(1000, 3)
	items := []model.HistoryItem{
		{ID: "1", Result: model.Loss, Profit: -10},
		{ID: "2", Result: model.Loss, Profit: -20},
		{ID: "3", Result: model.Win, Profit: Payout(25, 0.8, model.Win)},
		{ID: "4", Result: model.Loss, Profit: -5.55},
	}
	for _, it := range items {
		m.Settle(it)
	}

	st := m.GetState()
	if st.Balance != 984.45 {
		t.Errorf("expected balance 984.45, got %f", st.Balance)
	}
	if st.SessionProfit != -15.55 {
		t.Errorf("expected session profit -15.55, got %f", st.SessionProfit)
	}
	if st.ConsecutiveLosses != 1 || st.TotalTrades != 4 || st.Wins != 1 {
		t.Errorf("unexpected counters %+v", st)
	}
	if len(st.History) != 3 || st.History[0].ID != "4" {
		t.Errorf("expected newest-first history capped at 3, got %+v", st.History)
	}

	st.History[0].ID = "mutated"
	if m.GetState().History[0].ID != "4" {
		t.Error("GetState must return a copy")
	}

	stats := m.Stats()
	if stats.WinRate != 25 {
		t.Errorf("expected win rate 25, got %f", stats.WinRate)
	}

	m.ResetStreak()
	if m.GetState().ConsecutiveLosses != 0 {
		t.Error("expected streak reset")
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		amount float64
		ratio  float64
		result model.Result
		want   float64
	}{
		{10, 0.8, model.Win, 8},
		{33, 0.82, model.Win, 27.06},
		{10, 0.8, model.Loss, -10},
	}
	for _, tt := range tests {
		if got := Payout(tt.amount, tt.ratio, tt.result); got != tt.want {
			t.Errorf("%f/%s: expected %f, got %f", tt.amount, tt.result, tt.want, got)
		}
	}
}

func TestManager_RecentWindow(t *testing.T) {
	m := NewManager(100, 0)
	for i := 0; i < 8; i++ {
		m.Settle(model.HistoryItem{Result: model.Win, Profit: 1})
	}
	if got := len(m.Recent()); got != RecentWindow {
		t.Errorf("expected %d recent results, got %d", RecentWindow, got)
	}
}
