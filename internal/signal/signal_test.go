package signal

import (
	"testing"
	"time"

	"PocketSim/internal/model"
	"PocketSim/internal/random"
)

func verdict(pair string, confidence float64) model.StrategyVerdict {
	ind := model.NeutralIndicators(1.1)
	ind.ADX = 40
	ind.MACD = 0.001
	ind.RSI = 20
	return model.StrategyVerdict{
		Pair:         pair,
		Direction:    model.Buy,
		Confidence:   confidence,
		StrategyName: "RSI Divergence Pro",
		Indicators:   ind,
		Quote:        model.Quote{Pair: pair, Price: 1.1},
	}
}

func TestBoard_Lifecycle(t *testing.T) {
	pairs := []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD"}
	b := NewBoard(random.NewSequence(0), pairs)
	verdicts := map[string]model.StrategyVerdict{}
	for _, p := range pairs {
		verdicts[p] = verdict(p, 80)
	}
	now := time.Unix(1700000000, 0)

	b.Tick(verdicts, now)
	sigs := b.Signals()
	if len(sigs) != len(pairs) {
		t.Fatalf("expected %d signals, got %d", len(pairs), len(sigs))
	}
	for i, s := range sigs {
		if s.TimeToSignalSeconds != 30 || s.CountdownSeconds != 30 {
			t.Errorf("%s: expected initial wait 30, got %d", s.Pair, s.TimeToSignalSeconds)
		}
		if s.IsActive {
			t.Errorf("%s: initial signal should not be active", s.Pair)
		}
		want := model.MarketClassic
		if i%3 == 0 {
			want = model.MarketOTC
		}
		if s.MarketType != want {
			t.Errorf("%s: expected %s, got %s", s.Pair, want, s.MarketType)
		}
	}

	prev := 30
	for i := 1; i < 30; i++ {
		if renewed := b.Tick(verdicts, now.Add(time.Duration(i)*time.Second)); len(renewed) != 0 {
			t.Fatalf("tick %d: unexpected renewal", i)
		}
		s, _ := b.Get("EUR/USD")
		if s.CountdownSeconds > prev || s.CountdownSeconds < 0 {
			t.Fatalf("tick %d: countdown went from %d to %d", i, prev, s.CountdownSeconds)
		}
		prev = s.CountdownSeconds
	}
	if prev != 1 {
		t.Fatalf("expected countdown 1 before renewal, got %d", prev)
	}
	s, _ := b.Get("EUR/USD")
	if s.Indicators.RSI != 0 {
		t.Errorf("expected jitter to walk RSI down to the 0 floor, got %f", s.Indicators.RSI)
	}

	renewed := b.Tick(verdicts, now.Add(30*time.Second))
	if len(renewed) != len(pairs) {
		t.Fatalf("expected %d renewals, got %d", len(pairs), len(renewed))
	}
	s, _ = b.Get("EUR/USD")
	if !s.IsActive || s.CountdownSeconds != 45 || s.ExpirationSeconds != 60 {
		t.Errorf("unexpected renewed signal %+v", s)
	}
	if s.Indicators.RSI != 20 {
		t.Errorf("expected a fresh indicator snapshot, got rsi %f", s.Indicators.RSI)
	}
}

func TestBoard_SkipsPairsWithoutVerdict(t *testing.T) {
	b := NewBoard(random.NewSequence(0.5), []string{"EUR/USD", "GBP/USD"})
	b.Tick(map[string]model.StrategyVerdict{"EUR/USD": verdict("EUR/USD", 70)}, time.Now())
	if _, ok := b.Get("GBP/USD"); ok {
		t.Error("expected no signal for a pair without a verdict")
	}
}

func TestBandPositionOf(t *testing.T) {
	ind := model.IndicatorVector{SMA: 1.0, ATR: 0.01}
	tests := []struct {
		price float64
		want  model.BandPosition
	}{
		{1.03, model.BandUpper},
		{1.0, model.BandMiddle},
		{0.97, model.BandLower},
	}
	for _, tt := range tests {
		if got := BandPositionOf(tt.price, ind); got != tt.want {
			t.Errorf("price %f: expected %s, got %s", tt.price, tt.want, got)
		}
	}
}

func TestProject_Gates(t *testing.T) {
	now := time.Unix(0, 0)
	tests := []struct {
		name string
		mod  func(*model.StrategyVerdict)
		ok   bool
	}{
		{"strong", func(v *model.StrategyVerdict) {}, true},
		{"low confidence", func(v *model.StrategyVerdict) { v.Confidence = 70 }, false},
		{"weak trend", func(v *model.StrategyVerdict) { v.Indicators.ADX = 15 }, false},
		{"flat macd", func(v *model.StrategyVerdict) { v.Indicators.MACD = 0.0001 }, false},
		{"low probability", func(v *model.StrategyVerdict) {
			v.Confidence = 76
			v.Indicators.RSI = 50
			v.Indicators.ADX = 22
		}, false},
	}
	for _, tt := range tests {
		v := verdict("EUR/USD", 90)
		tt.mod(&v)
		sig, ok := Project(v, 2, 75, now)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
			continue
		}
		if ok {
			if !sig.IsPreSignal || sig.IsActive || sig.CountdownSeconds != 120 {
				t.Errorf("%s: unexpected pre-signal %+v", tt.name, sig)
			}
			if sig.MarketType != model.MarketOTC {
				t.Errorf("%s: expected OTC for a fiat pair", tt.name)
			}
		}
	}
}

func TestWinProbability(t *testing.T) {
	v := verdict("BTC/USD", 80)
	v.Indicators.Stochastic = 10
	if got := WinProbability(v); got != 95 {
		t.Errorf("expected 95, got %f", got)
	}
	v.Confidence = 96
	if got := WinProbability(v); got != 98 {
		t.Errorf("expected clamp to 98, got %f", got)
	}
	quiet := model.StrategyVerdict{Confidence: 60, Indicators: model.NeutralIndicators(1)}
	if got := WinProbability(quiet); got != 75 {
		t.Errorf("expected floor 75, got %f", got)
	}
}

func TestOptimalExpiration(t *testing.T) {
	tests := []struct {
		adx, atr float64
		want     int
	}{
		{45, 0.0001, 60},
		{45, 0.00001, 120},
		{35, 0.0001, 120},
		{28, 0.0001, 180},
		{20, 0.0001, 300},
	}
	for _, tt := range tests {
		v := verdict("EUR/USD", 90)
		v.Indicators.ADX = tt.adx
		v.Indicators.ATR = tt.atr
		if got := OptimalExpiration(v); got != tt.want {
			t.Errorf("adx=%f atr=%f: expected %d, got %d", tt.adx, tt.atr, tt.want, got)
		}
	}
}

func TestProjector_Lifecycle(t *testing.T) {
	p := NewProjector()
	settings := model.BotSettings{PreSignalEnabled: true, PreSignalMinutes: 1, PreSignalMinConfidence: 75}
	verdicts := []model.StrategyVerdict{verdict("EUR/USD", 90)}
	start := time.Unix(1700000010, 0) // aligned to a 30s bucket

	u := p.Tick(verdicts, settings, start)
	if len(u.Created) != 1 {
		t.Fatalf("expected 1 created pre-signal, got %d", len(u.Created))
	}
	first := u.Created[0].ID

	for i := 1; i < 30; i++ {
		u = p.Tick(verdicts, settings, start.Add(time.Duration(i)*time.Second))
		if len(u.Created) != 0 {
			t.Fatalf("tick %d: duplicate pre-signal in the same bucket", i)
		}
	}
	u = p.Tick(verdicts, settings, start.Add(30*time.Second))
	if len(u.Created) != 1 {
		t.Fatalf("expected a new pre-signal in the next bucket, got %d", len(u.Created))
	}

	var activated []model.TradingSignal
	for i := 31; i <= 60; i++ {
		u = p.Tick(verdicts, settings, start.Add(time.Duration(i)*time.Second))
		activated = append(activated, u.Activated...)
	}
	if len(activated) != 1 || activated[0].ID != first {
		t.Fatalf("expected the first pre-signal to activate at 60s, got %d", len(activated))
	}
	if !activated[0].IsActive || activated[0].CountdownSeconds != 0 {
		t.Errorf("unexpected activated signal %+v", activated[0])
	}
	for _, s := range p.Armed() {
		if s.ID == first {
			t.Error("activated pre-signal should be dropped")
		}
	}

	if got := len(p.Upcoming()); got != 5 {
		t.Errorf("expected 5 upcoming projections, got %d", got)
	}
}

func TestProjector_UpcomingLimitAndDisable(t *testing.T) {
	p := NewProjector()
	settings := model.BotSettings{PreSignalEnabled: true, PreSignalMinutes: 2, PreSignalMinConfidence: 75}
	verdicts := []model.StrategyVerdict{
		verdict("EUR/USD", 80), verdict("GBP/USD", 90), verdict("BTC/USD", 85),
	}
	p.Tick(verdicts, settings, time.Unix(1700000010, 0))

	up := p.Upcoming()
	if len(up) != 10 {
		t.Fatalf("expected top 10 upcoming, got %d", len(up))
	}
	for i := 1; i < len(up); i++ {
		if up[i].WinProbability > up[i-1].WinProbability {
			t.Fatalf("upcoming not sorted by probability at %d", i)
		}
	}

	settings.PreSignalEnabled = false
	u := p.Tick(verdicts, settings, time.Unix(1700000100, 0))
	if len(u.Created) != 0 || len(p.Upcoming()) != 0 {
		t.Error("expected no projections when disabled")
	}
	if len(p.Armed()) != 3 {
		t.Errorf("expected armed pre-signals to keep counting, got %d", len(p.Armed()))
	}
}
