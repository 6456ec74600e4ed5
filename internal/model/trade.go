package model

import "time"

// Result is the outcome of a resolved trade.
type Result string

const (
	Win  Result = "WIN"
	Loss Result = "LOSS"
)

// ActiveTrade is an open simulated binary option.
type ActiveTrade struct {
	ID                string    `json:"id"`
	Pair              string    `json:"pair"`
	Direction         Direction `json:"direction"`
	Amount            float64   `json:"amount"`
	OpenPrice         float64   `json:"open_price"`
	ExpirationSeconds int       `json:"expiration_seconds"`
	TimeLeftSeconds   int       `json:"time_left_seconds"`
	SuccessRate       float64   `json:"success_rate"`
	StrategyName      string    `json:"strategy_name"`
	OpenedAt          time.Time `json:"opened_at"`
}

// HistoryItem is a resolved trade.
type HistoryItem struct {
	ID           string    `json:"id"`
	Pair         string    `json:"pair"`
	Direction    Direction `json:"direction"`
	Result       Result    `json:"result"`
	Profit       float64   `json:"profit"`
	Amount       float64   `json:"amount"`
	OpenPrice    float64   `json:"open_price"`
	ClosePrice   float64   `json:"close_price"`
	StrategyName string    `json:"strategy_name"`
	Confidence   float64   `json:"confidence"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogAction classifies a BotLog entry.
type LogAction string

const (
	ActionAnalyzing      LogAction = "ANALYZING"
	ActionTradeOpened    LogAction = "TRADE_OPENED"
	ActionTradeClosed    LogAction = "TRADE_CLOSED"
	ActionWaiting        LogAction = "WAITING"
	ActionPreSignal      LogAction = "PRE_SIGNAL"
	ActionStrategyUpdate LogAction = "STRATEGY_UPDATE"
)

// BotLog is one entry of the bot activity feed.
type BotLog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     LogAction `json:"action"`
	Pair       string    `json:"pair,omitempty"`
	Direction  Direction `json:"direction,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Countdown  int       `json:"countdown,omitempty"`
}

// Stats are the aggregate session figures shown on the dashboard.
type Stats struct {
	TotalTrades       int     `json:"total_trades"`
	WinRate           float64 `json:"win_rate"`
	TotalProfit       float64 `json:"total_profit"`
	Balance           float64 `json:"balance"`
	SessionProfit     float64 `json:"session_profit"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
}

// StrategyPerformance aggregates journaled trades per strategy.
type StrategyPerformance struct {
	Name         string    `json:"name"`
	WinRate      float64   `json:"win_rate"`
	TotalTrades  int       `json:"total_trades"`
	ProfitFactor float64   `json:"profit_factor"`
	AvgProfit    float64   `json:"avg_profit"`
	LastUpdate   time.Time `json:"last_update"`
	IsActive     bool      `json:"is_active"`
}
