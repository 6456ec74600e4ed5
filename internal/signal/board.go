package signal

import (
	"math"
	"time"

	"github.com/google/uuid"

	"PocketSim/internal/model"
	"PocketSim/internal/random"
)

// ExpirationMenu is the set of trade durations a renewed signal draws from, in seconds.
var ExpirationMenu = []int{60, 120, 180, 300}

const (
	initialWaitMin = 30
	initialWaitMax = 60
	renewWaitMin   = 45
	renewWaitMax   = 225
	rsiJitter      = 1.0
	otcEvery       = 3
)

// Board keeps one countdown signal per pair.
type Board struct {
	rng     random.Source
	pairs   []string
	signals map[string]*model.TradingSignal
}

// NewBoard creates a Board over pairs. The pair order fixes the market type rotation.
func NewBoard(rng random.Source, pairs []string) *Board {
	return &Board{
		rng:     rng,
		pairs:   append([]string(nil), pairs...),
		signals: make(map[string]*model.TradingSignal, len(pairs)),
	}
}

// Tick advances every countdown by one second and renews signals that reached zero.
// Pairs without a verdict this tick are left untouched.
func (b *Board) Tick(verdicts map[string]model.StrategyVerdict, now time.Time) []model.TradingSignal {
	var renewed []model.TradingSignal
	for i, pair := range b.pairs {
		v, ok := verdicts[pair]
		if !ok {
			continue
		}
		sig, ok := b.signals[pair]
		if !ok {
			wait := int(random.Between(b.rng, initialWaitMin, initialWaitMax))
			b.signals[pair] = b.newSignal(i, v, wait, false, now)
			continue
		}

		sig.TimeToSignalSeconds = max(0, sig.TimeToSignalSeconds-1)
		sig.CountdownSeconds = max(0, sig.CountdownSeconds-1)
		sig.Indicators.RSI = math.Max(0, math.Min(100, sig.Indicators.RSI+(b.rng.Float64()-0.5)*2*rsiJitter))

		if sig.TimeToSignalSeconds == 0 {
			wait := int(random.Between(b.rng, renewWaitMin, renewWaitMax))
			next := b.newSignal(i, v, wait, true, now)
			b.signals[pair] = next
			renewed = append(renewed, *next)
		}
	}
	return renewed
}

// Signals returns copies of the standing signals in pair order.
func (b *Board) Signals() []model.TradingSignal {
	out := make([]model.TradingSignal, 0, len(b.signals))
	for _, pair := range b.pairs {
		if sig, ok := b.signals[pair]; ok {
			out = append(out, *sig)
		}
	}
	return out
}

// Get returns the standing signal of a pair.
func (b *Board) Get(pair string) (model.TradingSignal, bool) {
	sig, ok := b.signals[pair]
	if !ok {
		return model.TradingSignal{}, false
	}
	return *sig, true
}

func (b *Board) newSignal(index int, v model.StrategyVerdict, wait int, active bool, now time.Time) *model.TradingSignal {
	market := model.MarketClassic
	if index%otcEvery == 0 {
		market = model.MarketOTC
	}
	return &model.TradingSignal{
		ID:                  uuid.NewString(),
		Pair:                v.Pair,
		Direction:           v.Direction,
		MarketType:          market,
		SuccessRate:         v.Confidence,
		ExpirationSeconds:   random.Pick(b.rng, ExpirationMenu),
		TimeToSignalSeconds: wait,
		CountdownSeconds:    wait,
		Indicators:          v.Indicators,
		BollingerPosition:   BandPositionOf(v.Quote.Price, v.Indicators),
		IsActive:            active,
		StrategyName:        v.StrategyName,
		Price:               v.Quote.Price,
		ChangePercent:       v.Quote.ChangePercent,
		CreatedAt:           now,
	}
}

// BandPositionOf places the price against SMA ± 2·ATR.
func BandPositionOf(price float64, ind model.IndicatorVector) model.BandPosition {
	upper := ind.SMA + 2*ind.ATR
	lower := ind.SMA - 2*ind.ATR
	switch {
	case price > upper:
		return model.BandUpper
	case price < lower:
		return model.BandLower
	}
	return model.BandMiddle
}
