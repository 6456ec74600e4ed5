package strategy

import "PocketSim/internal/model"

// Input is what every strategy scores against.
type Input struct {
	Indicators model.IndicatorVector
	Quote      model.Quote
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// scoreMultiTimeframe follows the EMA/SMA alignment, stronger when ADX confirms a trend.
func scoreMultiTimeframe(in Input) float64 {
	ind := in.Indicators
	weight := 10.0
	if ind.ADX > 30 {
		weight = 12
	}
	return sign(ind.EMA-ind.SMA) * weight
}

// scoreRSIDivergence fades RSI extremes. MACD agreeing with the reversal adds 3.
func scoreRSIDivergence(in Input) float64 {
	ind := in.Indicators
	switch {
	case ind.RSI < 25:
		if ind.MACD > 0 {
			return 18
		}
		return 15
	case ind.RSI > 75:
		if ind.MACD < 0 {
			return -18
		}
		return -15
	case ind.RSI < 35:
		return 8
	case ind.RSI > 65:
		return -8
	}
	return 0
}

// scoreMACDVolume follows the MACD sign, stronger on a volume surge.
func scoreMACDVolume(in Input) float64 {
	weight := 10.0
	if in.Quote.Volume > 800000 {
		weight = 15
	}
	return sign(in.Indicators.MACD) * weight
}

// scoreBollingerBreakout trades squeezes and expansions in the RSI bias direction.
func scoreBollingerBreakout(in Input) float64 {
	ind := in.Indicators
	bias := -1.0
	if ind.RSI > 50 {
		bias = 1
	}
	switch {
	case ind.BollingerWidth < 0.2:
		return bias * 12
	case ind.BollingerWidth > 2:
		return bias * 8
	}
	return 0
}

func scoreStochMFI(in Input) float64 {
	ind := in.Indicators
	switch {
	case ind.Stochastic < 20 && ind.MFI < 30:
		return 14
	case ind.Stochastic > 80 && ind.MFI > 70:
		return -14
	}
	return 0
}

// scoreEMACrossover measures EMA distance from SMA in percent.
func scoreEMACrossover(in Input) float64 {
	ind := in.Indicators
	if ind.SMA == 0 {
		return 0
	}
	diff := (ind.EMA - ind.SMA) / ind.SMA * 100
	switch {
	case diff > 0.3:
		return 13
	case diff < -0.3:
		return -13
	}
	return 0
}

func scoreADXMomentum(in Input) float64 {
	if in.Indicators.ADX > 35 {
		return sign(in.Indicators.MACD) * 16
	}
	return 0
}

func scoreCCIReversal(in Input) float64 {
	switch cci := in.Indicators.CCI; {
	case cci > 200:
		return -14
	case cci < -200:
		return 14
	}
	return 0
}

func scoreWilliamsExtreme(in Input) float64 {
	switch wr := in.Indicators.WilliamsR; {
	case wr < -80:
		return 13
	case wr > -20:
		return -13
	}
	return 0
}

// scoreVolatilityBreakout needs both ATR above 0.5% of price and heavy volume.
func scoreVolatilityBreakout(in Input) float64 {
	ind := in.Indicators
	price := in.Quote.Price
	if price <= 0 {
		return 0
	}
	atrPct := ind.ATR / price * 100
	if atrPct > 0.5 && in.Quote.Volume > 900000 {
		return sign(ind.EMA-ind.SMA) * 17
	}
	return 0
}
