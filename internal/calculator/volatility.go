package calculator

import (
	"errors"
	"math"
)

// Epsilon guards every ratio whose denominator can reach zero on flat input.
const Epsilon = 1e-9

// CalculateATR is the mean absolute close-to-close move over the last period deltas.
// Closes are the only price column available, so |Δclose| stands in for the true range.
func CalculateATR(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 0, errors.New("not enough data for ATR calculation")
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += math.Abs(closes[i] - closes[i-1])
	}
	return sum / float64(period), nil
}

// CalculateADX returns the directional index built from the last period deltas
// together with DI+ and DI-.
func CalculateADX(closes []float64, period int) (adx, diPlus, diMinus float64, err error) {
	if period <= 0 {
		return 0, 0, 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 0, 0, 0, errors.New("not enough data for ADX calculation")
	}
	var dmPlus, dmMinus, trSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		upMove := closes[i] - closes[i-1]
		downMove := closes[i-1] - closes[i]
		trSum += math.Abs(upMove)
		if upMove > downMove && upMove > 0 {
			dmPlus += upMove
		}
		if downMove > upMove && downMove > 0 {
			dmMinus += downMove
		}
	}
	diPlus = dmPlus / (trSum + Epsilon) * 100
	diMinus = dmMinus / (trSum + Epsilon) * 100
	adx = math.Abs(diPlus-diMinus) / (diPlus + diMinus + Epsilon) * 100
	return adx, diPlus, diMinus, nil
}

// CalculateCCI returns (close - SMA)/(0.015 × mean absolute deviation) over the lookback,
// using the close as the typical price.
func CalculateCCI(closes []float64, period int) (float64, error) {
	sma, err := CalculateSMA(closes, period)
	if err != nil {
		return 0, err
	}
	meanDev := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		meanDev += math.Abs(closes[i] - sma)
	}
	meanDev /= float64(period)
	close := closes[len(closes)-1]
	return (close - sma) / (0.015 * (meanDev + Epsilon)), nil
}
