package model

import "time"

// Snapshot is the complete outbound view of a session after a tick.
type Snapshot struct {
	Tick        uint64                     `json:"tick"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Quotes      map[string]Quote           `json:"quotes"`
	Verdicts    map[string]StrategyVerdict `json:"verdicts"`
	Signals     []TradingSignal            `json:"signals"`
	PreSignals  []TradingSignal            `json:"pre_signals"`
	Upcoming    []TradingSignal            `json:"upcoming"`
	Trades      []ActiveTrade              `json:"active_trades"`
	History     []HistoryItem              `json:"history"`
	Logs        []BotLog                   `json:"logs"`
	Stats       Stats                      `json:"stats"`
	Performance []StrategyPerformance      `json:"performance"`
	Settings    BotSettings                `json:"settings"`
}

// AccountState is the simulated account ledger of a session.
type AccountState struct {
	Balance           float64       `json:"balance"`
	SessionProfit     float64       `json:"session_profit"`
	ConsecutiveLosses int           `json:"consecutive_losses"`
	TotalTrades       int           `json:"total_trades"`
	Wins              int           `json:"wins"`
	History           []HistoryItem `json:"history"`
}
