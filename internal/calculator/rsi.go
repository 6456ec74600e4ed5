package calculator

import "errors"

// CalculateRSI averages the last period gains and losses without smoothing.
// Returns 50.0 if data is insufficient or flat and 100.0 when only gains occurred.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 50.0, nil // default when data insufficient
	}

	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		// flat window
		if avgGain == 0 {
			return 50.0, nil
		}
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return clampPercent(100.0 - 100.0/(1.0+rs)), nil
}

// CalculateMFI maps positive and negative money flow (close × volume) over the last
// period deltas onto the RSI scale. No flow at all yields 50.
func CalculateMFI(closes, volumes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) != len(volumes) {
		return 0, errors.New("closes and volumes differ in length")
	}
	if len(closes) < period+1 {
		return 50.0, nil
	}

	var posFlow, negFlow float64
	for i := len(closes) - period; i < len(closes); i++ {
		flow := closes[i] * volumes[i]
		switch {
		case closes[i] > closes[i-1]:
			posFlow += flow
		case closes[i] < closes[i-1]:
			negFlow += flow
		}
	}
	if posFlow == 0 && negFlow == 0 {
		return 50.0, nil
	}
	if negFlow == 0 {
		return 100.0, nil
	}
	ratio := posFlow / negFlow
	return clampPercent(100.0 - 100.0/(1.0+ratio)), nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
