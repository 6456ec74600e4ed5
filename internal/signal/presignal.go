package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"PocketSim/internal/model"
)

const (
	// MinWinProbability is the lowest projected probability that is surfaced.
	MinWinProbability = 85.0

	minADX        = 20.0
	minMACD       = 0.0002
	probFloor     = 75.0
	probCeiling   = 98.0
	dedupBucket   = 30 * time.Second
	dedupTTL      = 60 * time.Second
	upcomingLimit = 10
	maxLookahead  = 5
)

// Projector turns verdicts into pre-signals: advance warnings N minutes before entry.
// A pre-signal is ARMED while counting down, DUE at zero and then dropped.
type Projector struct {
	armed    []model.TradingSignal
	seen     map[string]time.Time
	upcoming []model.TradingSignal
}

// Update is what one projector tick produced.
type Update struct {
	Created   []model.TradingSignal
	Activated []model.TradingSignal
}

// NewProjector creates an empty Projector.
func NewProjector() *Projector {
	return &Projector{seen: make(map[string]time.Time)}
}

// Project builds a pre-signal for v that fires in minutes, or false when the verdict is
// too weak.
func Project(v model.StrategyVerdict, minutes int, minConfidence float64, now time.Time) (model.TradingSignal, bool) {
	ind := v.Indicators
	if v.Confidence < minConfidence || ind.ADX < minADX || math.Abs(ind.MACD) < minMACD {
		return model.TradingSignal{}, false
	}
	prob := WinProbability(v)
	if prob < MinWinProbability {
		return model.TradingSignal{}, false
	}

	market := model.MarketOTC
	if strings.Contains(v.Pair, "BTC") || strings.Contains(v.Pair, "ETH") {
		market = model.MarketClassic
	}
	wait := minutes * 60
	return model.TradingSignal{
		ID:                  uuid.NewString(),
		Pair:                v.Pair,
		Direction:           v.Direction,
		MarketType:          market,
		SuccessRate:         prob,
		ExpirationSeconds:   OptimalExpiration(v),
		TimeToSignalSeconds: wait,
		CountdownSeconds:    wait,
		Indicators:          ind,
		BollingerPosition:   BandPositionOf(v.Quote.Price, ind),
		IsPreSignal:         true,
		StrategyName:        v.StrategyName,
		WinProbability:      prob,
		Price:               v.Quote.Price,
		ChangePercent:       v.Quote.ChangePercent,
		CreatedAt:           now,
	}, true
}

// WinProbability adds indicator extremity bonuses to the verdict confidence, clamped to [75,98].
func WinProbability(v model.StrategyVerdict) float64 {
	ind := v.Indicators
	p := v.Confidence
	if ind.RSI < 25 || ind.RSI > 75 {
		p += 5
	}
	if ind.Stochastic < 20 || ind.Stochastic > 80 {
		p += 4
	}
	if ind.MFI < 25 || ind.MFI > 75 {
		p += 4
	}
	if ind.WilliamsR < -80 || ind.WilliamsR > -20 {
		p += 3
	}
	if math.Abs(ind.CCI) > 150 {
		p += 4
	}
	switch {
	case ind.ADX > 35:
		p += 6
	case ind.ADX > 25:
		p += 3
	}
	return math.Max(probFloor, math.Min(probCeiling, p))
}

// OptimalExpiration shortens the expiration as the trend strengthens.
func OptimalExpiration(v model.StrategyVerdict) int {
	ind := v.Indicators
	volPct := 0.0
	if v.Quote.Price > 0 {
		volPct = ind.ATR / v.Quote.Price * 100
	}
	switch {
	case ind.ADX > 40 && volPct > 0.002:
		return 60
	case ind.ADX > 30:
		return 120
	case ind.ADX > 25:
		return 180
	}
	return 300
}

// Tick counts armed pre-signals down, activates the due ones, arms new ones for the
// configured lead time and refreshes the upcoming list. Verdicts are walked in the
// given order.
func (p *Projector) Tick(verdicts []model.StrategyVerdict, settings model.BotSettings, now time.Time) Update {
	var u Update

	kept := p.armed[:0]
	for _, sig := range p.armed {
		sig.CountdownSeconds = max(0, sig.CountdownSeconds-1)
		sig.TimeToSignalSeconds = max(0, sig.TimeToSignalSeconds-1)
		if sig.CountdownSeconds == 0 {
			sig.IsActive = true
			u.Activated = append(u.Activated, sig)
			continue
		}
		kept = append(kept, sig)
	}
	p.armed = kept

	if !settings.PreSignalEnabled {
		p.upcoming = nil
		p.purge(now)
		return u
	}

	minutes := settings.PreSignalMinutes
	for _, v := range verdicts {
		sig, ok := Project(v, minutes, settings.PreSignalMinConfidence, now)
		if !ok {
			continue
		}
		key, bucket := dedupKey(sig, now)
		if _, dup := p.seen[key]; dup {
			continue
		}
		p.seen[key] = bucket
		p.armed = append(p.armed, sig)
		u.Created = append(u.Created, sig)
	}
	p.purge(now)

	var upcoming []model.TradingSignal
	for _, v := range verdicts {
		for m := 1; m <= maxLookahead; m++ {
			if sig, ok := Project(v, m, settings.PreSignalMinConfidence, now); ok {
				upcoming = append(upcoming, sig)
			}
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].WinProbability > upcoming[j].WinProbability
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	p.upcoming = upcoming
	return u
}

// Armed returns copies of the pre-signals still counting down, highest probability first.
func (p *Projector) Armed() []model.TradingSignal {
	out := append([]model.TradingSignal(nil), p.armed...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WinProbability > out[j].WinProbability
	})
	return out
}

// Upcoming returns the 1–5 minute projections of the last tick.
func (p *Projector) Upcoming() []model.TradingSignal {
	return append([]model.TradingSignal(nil), p.upcoming...)
}

func (p *Projector) purge(now time.Time) {
	for key, bucket := range p.seen {
		if now.Sub(bucket) > dedupTTL {
			delete(p.seen, key)
		}
	}
}

func dedupKey(sig model.TradingSignal, now time.Time) (string, time.Time) {
	bucket := now.Truncate(dedupBucket)
	return fmt.Sprintf("%s|%s|%d", sig.Pair, sig.Direction, bucket.Unix()/int64(dedupBucket/time.Second)), bucket
}
