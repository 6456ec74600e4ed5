package strategy

import (
	"fmt"
	"math"
	"time"

	"PocketSim/internal/model"
)

// Strategy is one named heuristic. A positive score favors BUY, a negative one SELL.
type Strategy struct {
	Name  string
	Score func(Input) float64
}

const (
	baseConfidence = 60.0
	maxConfidence  = 98.0
	agreeScore     = 5.0
)

// DefaultStrategies is the canonical ordered table. Order decides ties.
var DefaultStrategies = []Strategy{
	{"Multi-Timeframe Trend", scoreMultiTimeframe},
	{"RSI Divergence Pro", scoreRSIDivergence},
	{"MACD + Volume Surge", scoreMACDVolume},
	{"Bollinger Band Breakout", scoreBollingerBreakout},
	{"Stochastic + MFI Combo", scoreStochMFI},
	{"EMA Crossover Elite", scoreEMACrossover},
	{"ADX Momentum Power", scoreADXMomentum},
	{"CCI Reversal Hunter", scoreCCIReversal},
	{"Williams %R Extreme", scoreWilliamsExtreme},
	{"Volatility Breakout Master", scoreVolatilityBreakout},
}

// ConsensusTiers maps agreeing strategy counts to a bonus magnitude.
var ConsensusTiers = []struct {
	MinAgree int
	Bonus    float64
}{
	{6, 8},
	{4, 5},
}

// ADXTiers and the extremity bonuses feed the confidence formula.
var ADXTiers = []struct {
	MinADX float64
	Bonus  float64
}{
	{35, 7},
	{25, 4},
}

const (
	rsiExtremeBonus = 6.0
	mfiExtremeBonus = 5.0
)

// Bank scores a fixed ordered set of strategies.
type Bank struct {
	strategies []Strategy
}

// NewBank creates a Bank over the given strategies, or DefaultStrategies when empty.
func NewBank(strategies []Strategy) *Bank {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Bank{strategies: append([]Strategy(nil), strategies...)}
}

// Select builds a Bank from a subset of DefaultStrategies by name, keeping canonical order.
func Select(names []string) (*Bank, error) {
	if len(names) == 0 {
		return NewBank(nil), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var picked []Strategy
	for _, s := range DefaultStrategies {
		if want[s.Name] {
			picked = append(picked, s)
			delete(want, s.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown strategy %q", n)
	}
	return NewBank(picked), nil
}

// Names lists the bank's strategies in order.
func (b *Bank) Names() []string {
	out := make([]string, len(b.strategies))
	for i, s := range b.strategies {
		out[i] = s.Name
	}
	return out
}

// Evaluate scores every strategy and derives the verdict for one pair.
func (b *Bank) Evaluate(pair string, quote model.Quote, ind model.IndicatorVector, now time.Time) model.StrategyVerdict {
	in := Input{Indicators: ind, Quote: quote}
	scores := make([]model.StrategyScore, len(b.strategies))

	bestIdx := 0
	var sum float64
	var bulls, bears int
	for i, s := range b.strategies {
		v := s.Score(in)
		scores[i] = model.StrategyScore{Name: s.Name, Score: v, Direction: directionOf(v)}
		sum += v
		if v > agreeScore {
			bulls++
		} else if v < -agreeScore {
			bears++
		}
		// strict comparison keeps the first-listed strategy on ties
		if math.Abs(v) > math.Abs(scores[bestIdx].Score) {
			bestIdx = i
		}
	}

	avg := 0.0
	if len(scores) > 0 {
		avg = sum / float64(len(scores))
	}
	consensus := consensusBonus(bulls, bears)

	v := model.StrategyVerdict{
		Pair:           pair,
		Direction:      directionOf(avg),
		Score:          avg,
		Confidence:     confidence(avg, ind, consensus),
		ConsensusBonus: consensus,
		Scores:         scores,
		Indicators:     ind,
		Quote:          quote,
		Timestamp:      now,
	}
	if len(scores) > 0 {
		v.StrategyName = scores[bestIdx].Name
	}
	return v
}

func directionOf(score float64) model.Direction {
	if score > 0 {
		return model.Buy
	}
	return model.Sell
}

func consensusBonus(bulls, bears int) float64 {
	for _, t := range ConsensusTiers {
		if bulls >= t.MinAgree {
			return t.Bonus
		}
		if bears >= t.MinAgree {
			return -t.Bonus
		}
	}
	return 0
}

func confidence(avg float64, ind model.IndicatorVector, consensus float64) float64 {
	c := baseConfidence + math.Abs(avg)*2
	for _, t := range ADXTiers {
		if ind.ADX > t.MinADX {
			c += t.Bonus
			break
		}
	}
	if ind.RSI < 25 || ind.RSI > 75 {
		c += rsiExtremeBonus
	}
	if ind.MFI < 25 || ind.MFI > 75 {
		c += mfiExtremeBonus
	}
	c += math.Abs(consensus)
	return math.Max(baseConfidence, math.Min(maxConfidence, c))
}
