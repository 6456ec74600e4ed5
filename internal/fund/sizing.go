package fund

import (
	"math"

	"PocketSim/internal/model"
	"PocketSim/internal/random"
)

const (
	martingaleMaxSteps  = 3
	martingaleRiskShare = 0.05
	maxRiskShare        = 0.10
	smartRiskShare      = 0.02
)

// SizingInput is what the amount calculation depends on.
type SizingInput struct {
	Settings          model.BotSettings
	Balance           float64
	ConsecutiveLosses int
	Recent            []model.Result
	Confidence        float64
	ADX               float64
}

// ConfidenceTiers scale the smart-risk base amount.
var ConfidenceTiers = []struct {
	MinConfidence float64
	Multiplier    float64
}{
	{90, 1.5},
	{85, 1.2},
}

// ADXTiers scale the smart-risk base amount by trend strength.
var ADXTiers = []struct {
	MinADX     float64
	Multiplier float64
}{
	{35, 1.2},
	{25, 1.1},
}

const adxWeakMultiplier = 0.9

// Size computes the trade amount. Martingale takes precedence over smart-risk;
// with neither enabled the amount is a flat random draw in [min,max].
func Size(in SizingInput, rng random.Source) float64 {
	s := in.Settings
	lo, hi := s.MinTradeAmount, s.MaxTradeAmount

	var amount float64
	upper := math.Min(hi, in.Balance*maxRiskShare)
	switch {
	case s.MartingaleEnabled:
		steps := min(in.ConsecutiveLosses, martingaleMaxSteps)
		amount = lo * math.Pow(2, float64(steps))
		amount = math.Min(amount, math.Min(hi, in.Balance*martingaleRiskShare))
	case s.UseSmartRisk:
		amount = lo * confidenceMultiplier(in.Confidence) * streakMultiplier(in.Recent) * adxMultiplier(in.ADX)
		upper = math.Min(upper, in.Balance*smartRiskShare)
	default:
		amount = lo + rng.Float64()*(hi-lo)
	}

	amount = math.Min(amount, upper)
	amount = math.Max(amount, lo)
	return math.Floor(amount)
}

func confidenceMultiplier(c float64) float64 {
	for _, t := range ConfidenceTiers {
		if c >= t.MinConfidence {
			return t.Multiplier
		}
	}
	return 1.0
}

// streakMultiplier looks at wins among the last RecentWindow results.
func streakMultiplier(recent []model.Result) float64 {
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	wins := 0
	for _, r := range recent {
		if r == model.Win {
			wins++
		}
	}
	switch {
	case wins >= 4:
		return 1.3
	case wins == 3:
		return 1.1
	case wins <= 1:
		return 0.8
	}
	return 1.0
}

func adxMultiplier(adx float64) float64 {
	for _, t := range ADXTiers {
		if adx > t.MinADX {
			return t.Multiplier
		}
	}
	return adxWeakMultiplier
}
