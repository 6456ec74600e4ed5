package model

// IndicatorVector holds all computed technical indicators for one pair at one tick.
// RSI, Stochastic and MFI are in [0,100]; ADX is >= 0.
type IndicatorVector struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	EMA            float64 `json:"ema"`
	SMA            float64 `json:"sma"`
	Stochastic     float64 `json:"stochastic"`
	ATR            float64 `json:"atr"`
	ADX            float64 `json:"adx"`
	CCI            float64 `json:"cci"`
	WilliamsR      float64 `json:"williams_r"`
	MFI            float64 `json:"mfi"`
	OBV            float64 `json:"obv"`
	VWAP           float64 `json:"vwap"`
	BollingerWidth float64 `json:"bollinger_width"`
}

// NeutralIndicators is the vector reported while a window is too short to analyze.
func NeutralIndicators(price float64) IndicatorVector {
	return IndicatorVector{
		RSI:            50,
		MACD:           0,
		EMA:            price,
		SMA:            price,
		Stochastic:     50,
		ATR:            0.0001,
		ADX:            20,
		CCI:            0,
		WilliamsR:      -50,
		MFI:            50,
		OBV:            0,
		VWAP:           price,
		BollingerWidth: 0,
	}
}
