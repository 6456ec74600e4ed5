package fund

import (
	"sync"

	"github.com/shopspring/decimal"

	"PocketSim/internal/model"
)

// RecentWindow is how many latest results feed the smart-risk streak tier.
const RecentWindow = 5

// Manager is the simulated account ledger with concurrency safety.
// Money is kept in decimal and rounded to cents on every change.
type Manager struct {
	mu            sync.Mutex
	balance       decimal.Decimal
	sessionProfit decimal.Decimal
	losses        int
	total         int
	wins          int
	history       []model.HistoryItem
	recent        []model.Result
	retention     int
}

// NewManager creates a Manager with an initial balance, keeping retention history items.
func NewManager(initialBalance float64, retention int) *Manager {
	if retention <= 0 {
		retention = 20
	}
	return &Manager{
		balance:   decimal.NewFromFloat(initialBalance).Round(2),
		retention: retention,
	}
}

// GetState returns a copy of the current account state.
func (m *Manager) GetState() model.AccountState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.AccountState{
		Balance:           m.balance.InexactFloat64(),
		SessionProfit:     m.sessionProfit.InexactFloat64(),
		ConsecutiveLosses: m.losses,
		TotalTrades:       m.total,
		Wins:              m.wins,
		History:           append([]model.HistoryItem(nil), m.history...),
	}
}

// Balance returns the current balance.
func (m *Manager) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance.InexactFloat64()
}

// Recent returns the latest results, oldest first.
func (m *Manager) Recent() []model.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Result(nil), m.recent...)
}

// Settle books a resolved trade: profit, counters, streak and history.
func (m *Manager) Settle(item model.HistoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profit := decimal.NewFromFloat(item.Profit).Round(2)
	m.balance = m.balance.Add(profit)
	m.sessionProfit = m.sessionProfit.Add(profit)
	m.total++

	if item.Result == model.Win {
		m.wins++
		m.losses = 0
	} else {
		m.losses++
	}

	m.recent = append(m.recent, item.Result)
	if len(m.recent) > RecentWindow {
		m.recent = m.recent[len(m.recent)-RecentWindow:]
	}

	// newest first
	m.history = append([]model.HistoryItem{item}, m.history...)
	if len(m.history) > m.retention {
		m.history = m.history[:m.retention]
	}
}

// ResetStreak clears the consecutive loss counter.
func (m *Manager) ResetStreak() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.losses = 0
}

// Stats derives the dashboard aggregates.
func (m *Manager) Stats() model.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var winRate float64
	if m.total > 0 {
		winRate = decimal.NewFromInt(int64(m.wins * 100)).
			Div(decimal.NewFromInt(int64(m.total))).Round(0).InexactFloat64()
	}
	return model.Stats{
		TotalTrades:       m.total,
		WinRate:           winRate,
		TotalProfit:       m.sessionProfit.InexactFloat64(),
		Balance:           m.balance.InexactFloat64(),
		SessionProfit:     m.sessionProfit.InexactFloat64(),
		ConsecutiveLosses: m.losses,
	}
}

// Payout returns the signed profit of a trade, rounded to cents.
func Payout(amount, ratio float64, result model.Result) float64 {
	a := decimal.NewFromFloat(amount)
	if result == model.Win {
		return a.Mul(decimal.NewFromFloat(ratio)).Round(2).InexactFloat64()
	}
	return a.Neg().Round(2).InexactFloat64()
}
