package calculator

import (
	"errors"
	"math"
)

// CalculateRange scans the most recent lookback values and returns the high and low.
func CalculateRange(values []float64, lookback int) (high, low float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	n := len(values)
	start := n - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if values[i] > high {
			high = values[i]
		}
		if values[i] < low {
			low = values[i]
		}
	}
	return high, low, nil
}

// CalculateStochastic returns %K = (close - low)/(high - low) × 100 over the lookback.
// A flat range yields 50.
func CalculateStochastic(closes []float64, period int) (float64, error) {
	high, low, err := CalculateRange(closes, period)
	if err != nil {
		return 0, err
	}
	if high == low {
		return 50.0, nil
	}
	close := closes[len(closes)-1]
	return clampPercent((close - low) / (high - low) * 100), nil
}

// CalculateWilliamsR returns -100 × (high - close)/(high - low) over the lookback.
// A flat range yields -50.
func CalculateWilliamsR(closes []float64, period int) (float64, error) {
	high, low, err := CalculateRange(closes, period)
	if err != nil {
		return 0, err
	}
	if high == low {
		return -50.0, nil
	}
	close := closes[len(closes)-1]
	wr := -100 * (high - close) / (high - low)
	return math.Max(-100, math.Min(0, wr)), nil
}
