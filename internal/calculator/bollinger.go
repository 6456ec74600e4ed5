package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateBollinger returns the latest SMA-based Bollinger bands over period with
// k standard deviations.
func CalculateBollinger(closes []float64, period int, k float64) (upper, middle, lower float64, err error) {
	if period <= 1 {
		return 0, 0, 0, errors.New("period must be greater than one")
	}
	if len(closes) < period {
		return 0, 0, 0, errors.New("not enough data for Bollinger calculation")
	}
	up, mid, low := talib.BBands(closes, period, k, k, talib.SMA)
	last := len(closes) - 1
	upper, middle, lower = up[last], mid[last], low[last]
	if !finite(upper) || !finite(middle) || !finite(lower) {
		return 0, 0, 0, errors.New("bollinger bands not finite")
	}
	return upper, middle, lower, nil
}

// BollingerWidth is the band width as a percentage of the middle band.
func BollingerWidth(upper, middle, lower float64) float64 {
	if middle == 0 {
		return 0
	}
	return (upper - lower) / middle * 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
