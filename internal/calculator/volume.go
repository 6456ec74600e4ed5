package calculator

import "errors"

// CalculateOBV accumulates volume signed by the direction of each close-to-close move.
func CalculateOBV(closes, volumes []float64) (float64, error) {
	if len(closes) != len(volumes) {
		return 0, errors.New("closes and volumes differ in length")
	}
	obv := 0.0
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
	}
	return obv, nil
}

// CalculateVWAP is the volume-weighted average of the last period closes.
// Zero total volume falls back to the latest close.
func CalculateVWAP(closes, volumes []float64, period int) (float64, error) {
	if len(closes) != len(volumes) {
		return 0, errors.New("closes and volumes differ in length")
	}
	if len(closes) == 0 {
		return 0, errors.New("no closes provided")
	}
	start := len(closes) - period
	if start < 0 {
		start = 0
	}
	var pv, v float64
	for i := start; i < len(closes); i++ {
		pv += closes[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return closes[len(closes)-1], nil
	}
	return pv / v, nil
}
