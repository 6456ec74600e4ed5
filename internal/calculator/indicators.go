package calculator

import (
	"math"

	"go.uber.org/zap"

	"PocketSim/internal/model"
	"PocketSim/pkg/logger"
)

const (
	// MinSamples is the shortest window that is analyzed at all.
	MinSamples = 50
	// Lookback is how many trailing samples feed the indicators.
	Lookback = 100

	rsiPeriod   = 14
	stochPeriod = 14
	atrPeriod   = 14
	adxPeriod   = 14
	mfiPeriod   = 14
	smaPeriod   = 20
	cciPeriod   = 20
	bandPeriod  = 20
	bandK       = 2.0
	emaFast     = 12
	emaSlow     = 26
	vwapPeriod  = 50
)

// Compute derives the full indicator vector from a price window. Windows shorter than
// MinSamples yield NeutralIndicators(price). A failing calculator falls back to its
// neutral value.
func Compute(window []model.PriceSample, price float64) model.IndicatorVector {
	neutral := model.NeutralIndicators(price)
	if len(window) < MinSamples {
		return neutral
	}
	if len(window) > Lookback {
		window = window[len(window)-Lookback:]
	}
	closes := model.Prices(window)
	volumes := model.Volumes(window)
	ind := neutral

	if v, err := CalculateRSI(closes, rsiPeriod); err != nil {
		warn("RSI", err)
	} else {
		ind.RSI = v
	}

	if v, err := CalculateEMA(closes, emaFast); err != nil {
		warn("EMA", err)
	} else {
		ind.EMA = v
	}

	if v, err := CalculateSMA(closes, smaPeriod); err != nil {
		warn("SMA", err)
	} else {
		ind.SMA = v
	}

	if v, err := CalculateMACD(closes, emaFast, emaSlow); err != nil {
		warn("MACD", err)
	} else {
		ind.MACD = v
	}

	if v, err := CalculateStochastic(closes, stochPeriod); err != nil {
		warn("Stochastic", err)
	} else {
		ind.Stochastic = v
	}

	if v, err := CalculateWilliamsR(closes, stochPeriod); err != nil {
		warn("Williams %R", err)
	} else {
		ind.WilliamsR = v
	}

	if v, err := CalculateATR(closes, atrPeriod); err != nil {
		warn("ATR", err)
	} else {
		ind.ATR = v
	}

	if v, _, _, err := CalculateADX(closes, adxPeriod); err != nil {
		warn("ADX", err)
	} else {
		ind.ADX = v
	}

	if v, err := CalculateCCI(closes, cciPeriod); err != nil {
		warn("CCI", err)
	} else {
		ind.CCI = v
	}

	if v, err := CalculateMFI(closes, volumes, mfiPeriod); err != nil {
		warn("MFI", err)
	} else {
		ind.MFI = v
	}

	if v, err := CalculateOBV(closes, volumes); err != nil {
		warn("OBV", err)
	} else {
		ind.OBV = v
	}

	if v, err := CalculateVWAP(closes, volumes, vwapPeriod); err != nil {
		warn("VWAP", err)
	} else {
		ind.VWAP = v
	}

	if upper, middle, lower, err := CalculateBollinger(closes, bandPeriod, bandK); err != nil {
		warn("Bollinger", err)
	} else {
		ind.BollingerWidth = BollingerWidth(upper, middle, lower)
	}

	return sanitize(ind, neutral)
}

// sanitize replaces any non-finite field with its neutral counterpart and enforces
// the bounded ranges.
func sanitize(ind, neutral model.IndicatorVector) model.IndicatorVector {
	fix := func(v *float64, fallback float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = fallback
		}
	}
	fix(&ind.RSI, neutral.RSI)
	fix(&ind.MACD, neutral.MACD)
	fix(&ind.EMA, neutral.EMA)
	fix(&ind.SMA, neutral.SMA)
	fix(&ind.Stochastic, neutral.Stochastic)
	fix(&ind.ATR, neutral.ATR)
	fix(&ind.ADX, neutral.ADX)
	fix(&ind.CCI, neutral.CCI)
	fix(&ind.WilliamsR, neutral.WilliamsR)
	fix(&ind.MFI, neutral.MFI)
	fix(&ind.OBV, neutral.OBV)
	fix(&ind.VWAP, neutral.VWAP)
	fix(&ind.BollingerWidth, neutral.BollingerWidth)

	ind.RSI = clampPercent(ind.RSI)
	ind.Stochastic = clampPercent(ind.Stochastic)
	ind.MFI = clampPercent(ind.MFI)
	if ind.ADX < 0 {
		ind.ADX = 0
	}
	return ind
}

func warn(name string, err error) {
	logger.Warn("indicator calculation failed, using neutral value",
		zap.String("indicator", name), zap.Error(err))
}
