package recorder

import (
	"time"

	"PocketSim/internal/model"
)

// TradeRecord is one resolved trade as journaled.
type TradeRecord struct {
	TradeID      string
	Pair         string
	Direction    model.Direction
	Result       model.Result
	Amount       float64
	Profit       float64
	OpenPrice    float64
	ClosePrice   float64
	StrategyName string
	Confidence   float64
	OpenedAt     time.Time
	ClosedAt     time.Time
	BalanceAfter float64
}

// SignalEvent records a pre-signal being armed or activated.
type SignalEvent struct {
	SignalID       string
	Pair           string
	Direction      model.Direction
	EventType      string // "ARMED" or "ACTIVATED"
	WinProbability float64
	Expiration     int
	StrategyName   string
	Timestamp      time.Time
}

// Recorder journals trading activity for the session and aggregates it per strategy.
type Recorder interface {
	RecordTrade(rec *TradeRecord) error
	RecordSignal(evt *SignalEvent) error
	// StrategyPerformance aggregates journaled trades for every named strategy, in order.
	StrategyPerformance(names []string) ([]model.StrategyPerformance, error)
	Close() error
}
