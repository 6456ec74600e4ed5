package collector

import (
	"fmt"
	"math"
	"time"

	"PocketSim/internal/calculator"
	"PocketSim/internal/model"
)

// SpreadRatio is the simulated bid/ask spread as a fraction of price.
const SpreadRatio = 0.0002

// Analysis is everything derived for one pair on one tick.
type Analysis struct {
	Pair       string
	Sample     model.PriceSample
	Quote      model.Quote
	Indicators model.IndicatorVector
}

// Collector orchestrates series generation and indicator computation for every pair.
type Collector struct {
	Generator *Generator
	histories map[string]*History
	limit     int
}

// NewCollector creates a Collector retaining limit samples per pair, at most MaxSamples.
func NewCollector(gen *Generator, limit int) *Collector {
	if limit <= 0 || limit > MaxSamples {
		limit = MaxSamples
	}
	return &Collector{Generator: gen, histories: make(map[string]*History), limit: limit}
}

// Collect advances the pair's series by one sample and computes all indicators.
func (c *Collector) Collect(pair string, now time.Time) (*Analysis, error) {
	h := c.history(pair)
	prev, hasPrev := h.Last()

	sample := c.Generator.Next(pair, h.Samples(), now)
	if math.IsNaN(sample.Price) || math.IsInf(sample.Price, 0) || sample.Price <= 0 {
		return nil, fmt.Errorf("generate %s: invalid price %v", pair, sample.Price)
	}
	h.Append(sample)

	window := h.Samples()
	quote, err := buildQuote(pair, sample, prev, hasPrev, window)
	if err != nil {
		return nil, fmt.Errorf("build quote: %w", err)
	}

	return &Analysis{
		Pair:       pair,
		Sample:     sample,
		Quote:      quote,
		Indicators: calculator.Compute(window, sample.Price),
	}, nil
}

// Series returns a copy of the retained window of a pair.
func (c *Collector) Series(pair string) ([]model.PriceSample, bool) {
	h, ok := c.histories[pair]
	if !ok {
		return nil, false
	}
	return h.Copy(), true
}

// Latest returns the newest sample of a pair.
func (c *Collector) Latest(pair string) (model.PriceSample, bool) {
	h, ok := c.histories[pair]
	if !ok {
		return model.PriceSample{}, false
	}
	return h.Last()
}

func (c *Collector) history(pair string) *History {
	h, ok := c.histories[pair]
	if !ok {
		h = NewHistory(c.limit)
		c.histories[pair] = h
	}
	return h
}

func buildQuote(pair string, s, prev model.PriceSample, hasPrev bool, window []model.PriceSample) (model.Quote, error) {
	high, low, err := calculator.CalculateRange(model.Prices(window), len(window))
	if err != nil {
		return model.Quote{}, err
	}
	spread := s.Price * SpreadRatio
	q := model.Quote{
		Pair:      pair,
		Price:     s.Price,
		Bid:       s.Price - spread/2,
		Ask:       s.Price + spread/2,
		Spread:    spread,
		Volume:    s.Volume,
		High:      high,
		Low:       low,
		Timestamp: s.Timestamp,
	}
	if hasPrev && prev.Price > 0 {
		q.Change = s.Price - prev.Price
		q.ChangePercent = q.Change / prev.Price * 100
	}
	return q, nil
}
