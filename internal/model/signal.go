package model

import "time"

// Direction is the side of a verdict, signal or trade. There is no neutral value.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// MarketType tags a signal as a classic or over-the-counter market.
type MarketType string

const (
	MarketClassic MarketType = "CLASSIC"
	MarketOTC     MarketType = "OTC"
)

// BandPosition is where the price sits relative to SMA ± 2·ATR.
type BandPosition string

const (
	BandUpper  BandPosition = "UPPER"
	BandMiddle BandPosition = "MIDDLE"
	BandLower  BandPosition = "LOWER"
)

// StrategyScore represents a single strategy's scoring result.
type StrategyScore struct {
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Direction Direction `json:"direction"`
}

// StrategyVerdict is the final output of the strategy bank for one pair.
type StrategyVerdict struct {
	Pair           string          `json:"pair"`
	Direction      Direction       `json:"direction"`
	Score          float64         `json:"score"`
	StrategyName   string          `json:"strategy_name"`
	Confidence     float64         `json:"confidence"`
	ConsensusBonus float64         `json:"consensus_bonus"`
	Scores         []StrategyScore `json:"scores"`
	Indicators     IndicatorVector `json:"indicators"`
	Quote          Quote           `json:"quote"`
	Timestamp      time.Time       `json:"timestamp"`
}

// TradingSignal is a standing recommendation with a countdown, or a pre-signal projection.
type TradingSignal struct {
	ID                  string          `json:"id"`
	Pair                string          `json:"pair"`
	Direction           Direction       `json:"direction"`
	MarketType          MarketType      `json:"market_type"`
	SuccessRate         float64         `json:"success_rate"`
	ExpirationSeconds   int             `json:"expiration_seconds"`
	TimeToSignalSeconds int             `json:"time_to_signal_seconds"`
	CountdownSeconds    int             `json:"countdown_seconds"`
	Indicators          IndicatorVector `json:"indicators"`
	BollingerPosition   BandPosition    `json:"bollinger_position"`
	IsActive            bool            `json:"is_active"`
	IsPreSignal         bool            `json:"is_pre_signal"`
	StrategyName        string          `json:"strategy_name,omitempty"`
	WinProbability      float64         `json:"win_probability,omitempty"`
	Price               float64         `json:"price,omitempty"`
	ChangePercent       float64         `json:"change_percent,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}
