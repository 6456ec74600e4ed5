package trader

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PocketSim/internal/botlog"
	"PocketSim/internal/fund"
	"PocketSim/internal/model"
	"PocketSim/internal/random"
	"PocketSim/internal/recorder"
	"PocketSim/internal/signal"
	"PocketSim/pkg/logger"
	"PocketSim/pkg/metrics"
)

const (
	minADX  = 20.0
	minMACD = 0.0002
)

// Config holds the trade economics.
type Config struct {
	PayoutRatio     float64
	WinThresholdPct float64
	AntiStreakPause time.Duration
	MaxLossStreak   int
}

// DefaultConfig returns the standard economics: 80% payout, ±0.01% win band,
// a one minute pause after five straight losses.
func DefaultConfig() Config {
	return Config{
		PayoutRatio:     0.8,
		WinThresholdPct: 0.01,
		AntiStreakPause: 60 * time.Second,
		MaxLossStreak:   5,
	}
}

// Listener is told about trades opening and closing.
type Listener interface {
	TradeOpened(model.ActiveTrade)
	TradeClosed(model.HistoryItem)
}

// Manager opens, tracks and resolves simulated trades.
type Manager struct {
	cfg      Config
	rng      random.Source
	pairs    []string
	ledger   *fund.Manager
	book     *botlog.Book
	recorder recorder.Recorder
	listener Listener

	active        []model.ActiveTrade
	cooldownUntil time.Time
	lastWait      string
}

// NewManager wires a Manager. Pair order breaks confidence ties.
func NewManager(cfg Config, rng random.Source, pairs []string, ledger *fund.Manager, book *botlog.Book, rec recorder.Recorder) *Manager {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Manager{
		cfg:      cfg,
		rng:      rng,
		pairs:    append([]string(nil), pairs...),
		ledger:   ledger,
		book:     book,
		recorder: rec,
	}
}

// SetListener registers l for trade events. Nil disables notifications.
func (m *Manager) SetListener(l Listener) {
	m.listener = l
}

// Active returns copies of the open trades in opening order.
func (m *Manager) Active() []model.ActiveTrade {
	return append([]model.ActiveTrade(nil), m.active...)
}

// CoolingDown reports whether the anti-streak pause is in effect.
func (m *Manager) CoolingDown(now time.Time) bool {
	return now.Before(m.cooldownUntil)
}

// Tick resolves expired trades, enforces the stop-loss and opens at most one trade.
// It returns the settings to carry forward and whether they differ from the input.
func (m *Manager) Tick(now time.Time, verdicts map[string]model.StrategyVerdict, quotes map[string]model.Quote, settings model.BotSettings) (model.BotSettings, bool) {
	m.resolveExpired(now, quotes)

	changed := false
	state := m.ledger.GetState()
	if settings.IsEnabled && settings.StopLossAmount > 0 && state.SessionProfit <= -settings.StopLossAmount {
		settings.IsEnabled = false
		changed = true
		m.book.Add(model.BotLog{
			Timestamp: now,
			Action:    model.ActionWaiting,
			Amount:    state.SessionProfit,
			Reason:    fmt.Sprintf("stop-loss reached: session %.2f, limit -%.2f, bot disabled", state.SessionProfit, settings.StopLossAmount),
		})
		logger.Warn("stop-loss reached, bot disabled",
			zap.Float64("session_profit", state.SessionProfit),
			zap.Float64("stop_loss", settings.StopLossAmount))
	}

	if !settings.IsEnabled {
		m.lastWait = ""
		return settings, changed
	}
	m.enter(now, verdicts, quotes, settings)
	return settings, changed
}

func (m *Manager) resolveExpired(now time.Time, quotes map[string]model.Quote) {
	kept := m.active[:0]
	for _, t := range m.active {
		t.TimeLeftSeconds = max(0, t.TimeLeftSeconds-1)
		q, ok := quotes[t.Pair]
		if t.TimeLeftSeconds > 0 || !ok {
			kept = append(kept, t)
			continue
		}
		m.close(t, q.Price, now)
	}
	m.active = kept
}

// Resolve decides a trade against the closing price: a BUY needs the move above
// +threshold%, a SELL below -threshold%.
func Resolve(direction model.Direction, openPrice, closePrice, thresholdPct float64) model.Result {
	if openPrice <= 0 {
		return model.Loss
	}
	move := (closePrice - openPrice) / openPrice * 100
	switch {
	case direction == model.Buy && move > thresholdPct:
		return model.Win
	case direction == model.Sell && move < -thresholdPct:
		return model.Win
	}
	return model.Loss
}

func (m *Manager) close(t model.ActiveTrade, closePrice float64, now time.Time) {
	result := Resolve(t.Direction, t.OpenPrice, closePrice, m.cfg.WinThresholdPct)
	item := model.HistoryItem{
		ID:           t.ID,
		Pair:         t.Pair,
		Direction:    t.Direction,
		Result:       result,
		Profit:       fund.Payout(t.Amount, m.cfg.PayoutRatio, result),
		Amount:       t.Amount,
		OpenPrice:    t.OpenPrice,
		ClosePrice:   closePrice,
		StrategyName: t.StrategyName,
		Confidence:   t.SuccessRate,
		Timestamp:    now,
	}
	m.ledger.Settle(item)
	balance := m.ledger.Balance()

	sign := ""
	if item.Profit > 0 {
		sign = "+"
	}
	m.book.Add(model.BotLog{
		Timestamp: now,
		Action:    model.ActionTradeClosed,
		Pair:      t.Pair,
		Direction: t.Direction,
		Amount:    t.Amount,
		Strategy:  t.StrategyName,
		Reason:    fmt.Sprintf("%s %s$%.2f", result, sign, item.Profit),
	})

	metrics.TradesClosed.WithLabelValues(t.Pair, string(result)).Inc()
	metrics.Balance.Set(balance)

	if err := m.recorder.RecordTrade(&recorder.TradeRecord{
		TradeID:      t.ID,
		Pair:         t.Pair,
		Direction:    t.Direction,
		Result:       result,
		Amount:       t.Amount,
		Profit:       item.Profit,
		OpenPrice:    t.OpenPrice,
		ClosePrice:   closePrice,
		StrategyName: t.StrategyName,
		Confidence:   t.SuccessRate,
		OpenedAt:     t.OpenedAt,
		ClosedAt:     now,
		BalanceAfter: balance,
	}); err != nil {
		logger.Error("failed to journal trade", zap.String("trade_id", t.ID), zap.Error(err))
	}

	if m.listener != nil {
		m.listener.TradeClosed(item)
	}
}

func (m *Manager) enter(now time.Time, verdicts map[string]model.StrategyVerdict, quotes map[string]model.Quote, settings model.BotSettings) {
	if settings.AccountID == "" {
		m.wait(now, "no account id configured")
		return
	}
	if m.CoolingDown(now) {
		m.wait(now, fmt.Sprintf("anti-streak pause until %s", m.cooldownUntil.Format(time.TimeOnly)))
		return
	}
	state := m.ledger.GetState()
	if m.cfg.MaxLossStreak > 0 && state.ConsecutiveLosses >= m.cfg.MaxLossStreak {
		m.cooldownUntil = now.Add(m.cfg.AntiStreakPause)
		m.ledger.ResetStreak()
		m.book.Add(model.BotLog{
			Timestamp: now,
			Action:    model.ActionWaiting,
			Reason:    fmt.Sprintf("%d consecutive losses, pausing for %s", state.ConsecutiveLosses, m.cfg.AntiStreakPause),
		})
		m.lastWait = ""
		return
	}
	if len(m.active) >= settings.MaxConcurrentTrades {
		m.wait(now, fmt.Sprintf("max concurrent trades reached (%d)", settings.MaxConcurrentTrades))
		return
	}

	best, ok := m.pickBest(verdicts, settings)
	if !ok {
		if len(m.active) == 0 {
			m.analyzing(now, verdicts, settings)
		}
		return
	}

	amount := fund.Size(fund.SizingInput{
		Settings:          settings,
		Balance:           state.Balance,
		ConsecutiveLosses: state.ConsecutiveLosses,
		Recent:            m.ledger.Recent(),
		Confidence:        best.Confidence,
		ADX:               best.Indicators.ADX,
	}, m.rng)
	if amount <= 0 || amount > state.Balance {
		m.wait(now, fmt.Sprintf("insufficient balance %.2f for %.2f", state.Balance, amount))
		return
	}

	price := best.Quote.Price
	if q, ok := quotes[best.Pair]; ok {
		price = q.Price
	}
	expiration := random.Pick(m.rng, signal.ExpirationMenu)
	trade := model.ActiveTrade{
		ID:                uuid.NewString(),
		Pair:              best.Pair,
		Direction:         best.Direction,
		Amount:            amount,
		OpenPrice:         price,
		ExpirationSeconds: expiration,
		TimeLeftSeconds:   expiration,
		SuccessRate:       best.Confidence,
		StrategyName:      best.StrategyName,
		OpenedAt:          now,
	}
	m.active = append(m.active, trade)
	m.lastWait = ""

	ind := best.Indicators
	m.book.Add(model.BotLog{
		Timestamp:  now,
		Action:     model.ActionTradeOpened,
		Pair:       trade.Pair,
		Direction:  trade.Direction,
		Amount:     amount,
		Confidence: best.Confidence,
		Strategy:   best.StrategyName,
		Countdown:  expiration,
		Reason: fmt.Sprintf("%s • %.1f%% • RSI:%.1f MACD:%.5f ADX:%.1f CCI:%.1f",
			best.StrategyName, best.Confidence, ind.RSI, ind.MACD, ind.ADX, ind.CCI),
	})
	metrics.TradesOpened.WithLabelValues(trade.Pair, string(trade.Direction)).Inc()

	if m.listener != nil {
		m.listener.TradeOpened(trade)
	}
}

// pickBest returns the qualifying verdict with the highest confidence. Ties keep pair order.
func (m *Manager) pickBest(verdicts map[string]model.StrategyVerdict, settings model.BotSettings) (model.StrategyVerdict, bool) {
	var best model.StrategyVerdict
	found := false
	for _, pair := range m.pairs {
		v, ok := verdicts[pair]
		if !ok || m.isOpen(pair) {
			continue
		}
		if v.Confidence < settings.MinConfidence ||
			v.Indicators.ADX < minADX ||
			math.Abs(v.Indicators.MACD) < minMACD {
			continue
		}
		if !found || v.Confidence > best.Confidence {
			best, found = v, true
		}
	}
	return best, found
}

func (m *Manager) isOpen(pair string) bool {
	for _, t := range m.active {
		if t.Pair == pair {
			return true
		}
	}
	return false
}

func (m *Manager) analyzing(now time.Time, verdicts map[string]model.StrategyVerdict, settings model.BotSettings) {
	var top model.StrategyVerdict
	found := false
	for _, pair := range m.pairs {
		if v, ok := verdicts[pair]; ok && (!found || v.Confidence > top.Confidence) {
			top, found = v, true
		}
	}
	if !found {
		return
	}
	m.book.Add(model.BotLog{
		Timestamp:  now,
		Action:     model.ActionAnalyzing,
		Pair:       top.Pair,
		Confidence: top.Confidence,
		Strategy:   top.StrategyName,
		Reason: fmt.Sprintf("analyzing %d pairs • best %s (%.1f%%) • %s • waiting for >=%.0f%%",
			len(verdicts), top.Pair, top.Confidence, top.StrategyName, settings.MinConfidence),
	})
}

// wait logs a WAITING entry once per distinct reason.
func (m *Manager) wait(now time.Time, reason string) {
	if reason == m.lastWait {
		return
	}
	m.lastWait = reason
	m.book.Add(model.BotLog{Timestamp: now, Action: model.ActionWaiting, Reason: reason})
}

// Stats derives the dashboard aggregates from the ledger.
func (m *Manager) Stats() model.Stats {
	return m.ledger.Stats()
}
