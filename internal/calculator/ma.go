package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA seeds with the simple average of the first period prices, then
// folds the rest with k = 2/(period+1).
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for EMA calculation")
	}
	k := 2.0 / float64(period+1)
	ema := 0.0
	for i := 0; i < period; i++ {
		ema += prices[i]
	}
	ema /= float64(period)
	for i := period; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
	}
	return ema, nil
}

// CalculateMACD returns EMA(fast) - EMA(slow).
func CalculateMACD(prices []float64, fast, slow int) (float64, error) {
	emaFast, err := CalculateEMA(prices, fast)
	if err != nil {
		return 0, err
	}
	emaSlow, err := CalculateEMA(prices, slow)
	if err != nil {
		return 0, err
	}
	return emaFast - emaSlow, nil
}
