package collector

import (
	"math"
	"strings"
	"time"

	"PocketSim/internal/model"
	"PocketSim/internal/random"
)

const (
	microAmplitude = 0.0002
	cryptoVol      = 0.002
	fiatVol        = 0.0001
	// MacroCarry scales the relative drift between the recent and older averages.
	MacroCarry = 0.015

	macroWindow  = 50
	macroMinimum = 30
	baseVolume   = 500000
	volumeSpread = 1000000
	defaultSeed  = 1.0
)

// SeedPrices are the starting quotes of the known pairs.
var SeedPrices = map[string]float64{
	"EUR/USD": 1.0850,
	"GBP/USD": 1.2650,
	"USD/JPY": 148.50,
	"AUD/USD": 0.6750,
	"USD/CAD": 1.3450,
	"BTC/USD": 45000,
	"ETH/USD": 2400,
	"EUR/GBP": 0.8580,
	"NZD/USD": 0.6150,
	"USD/CHF": 0.8850,
	"XAU/USD": 2050,
	"XAG/USD": 23.50,
	"EUR/JPY": 161.20,
}

// IsCrypto reports whether a pair trades as a crypto asset.
func IsCrypto(pair string) bool {
	return strings.Contains(pair, "BTC") || strings.Contains(pair, "ETH")
}

// SeedPrice returns the bootstrap price of a pair, 1.0 for unknown pairs.
func SeedPrice(pair string) float64 {
	if p, ok := SeedPrices[pair]; ok {
		return p
	}
	return defaultSeed
}

// Generator synthesizes the next sample of a series. It never fails.
type Generator struct {
	rng random.Source
}

// NewGenerator creates a Generator drawing from rng.
func NewGenerator(rng random.Source) *Generator {
	return &Generator{rng: rng}
}

// Next produces the sample following prior. An empty prior bootstraps from the seed table.
func (g *Generator) Next(pair string, prior []model.PriceSample, now time.Time) model.PriceSample {
	if len(prior) == 0 {
		return model.PriceSample{Timestamp: now, Price: SeedPrice(pair), Volume: g.volume()}
	}

	vol := fiatVol
	if IsCrypto(pair) {
		vol = cryptoVol
	}
	last := prior[len(prior)-1].Price
	micro := (g.rng.Float64() - 0.5) * microAmplitude
	noise := (g.rng.Float64() - 0.5) * vol
	macro := macroDrift(prior, vol)

	return model.PriceSample{
		Timestamp: now,
		Price:     last * (1 + micro + macro + noise),
		Volume:    g.volume(),
	}
}

func (g *Generator) volume() float64 {
	return baseVolume + g.rng.Float64()*volumeSpread
}

// macroDrift compares the last 10 samples against samples 20-30 back within the trailing
// window and carries a small fraction of the relative move, bounded by ±vol.
func macroDrift(prior []model.PriceSample, vol float64) float64 {
	if len(prior) > macroWindow {
		prior = prior[len(prior)-macroWindow:]
	}
	n := len(prior)
	if n < macroMinimum {
		return 0
	}
	recent := mean(prior[n-10:])
	older := mean(prior[n-30 : n-20])
	if older == 0 {
		return 0
	}
	drift := (recent - older) / older * MacroCarry
	return math.Max(-vol, math.Min(vol, drift))
}

func mean(samples []model.PriceSample) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s.Price
	}
	return sum / float64(len(samples))
}
