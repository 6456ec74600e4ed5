package notifier

import (
	"fmt"
	"strings"

	"PocketSim/internal/model"
)

func arrow(d model.Direction) string {
	if d == model.Buy {
		return "🟢 BUY"
	}
	return "🔴 SELL"
}

// FormatPreSignal formats an armed pre-signal.
func FormatPreSignal(sig model.TradingSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>Pre-signal</b> | %s\n\n", sig.Pair))
	b.WriteString(fmt.Sprintf("%s • %.1f%% win probability\n", arrow(sig.Direction), sig.WinProbability))
	b.WriteString(fmt.Sprintf("Entry in %d min • expiration %ds • %s\n", sig.CountdownSeconds/60, sig.ExpirationSeconds, sig.MarketType))
	if sig.StrategyName != "" {
		b.WriteString(fmt.Sprintf("Strategy: %s\n", sig.StrategyName))
	}
	ind := sig.Indicators
	b.WriteString(fmt.Sprintf("RSI %.1f | ADX %.1f | MACD %.5f | band %s\n", ind.RSI, ind.ADX, ind.MACD, sig.BollingerPosition))
	return b.String()
}

// FormatTradeOpened formats a newly opened trade.
func FormatTradeOpened(t model.ActiveTrade) string {
	return fmt.Sprintf("📥 <b>Trade opened</b> | %s\n\n%s $%.2f @ %.5f\nExpiration %ds • %.1f%% • %s\n",
		t.Pair, arrow(t.Direction), t.Amount, t.OpenPrice, t.ExpirationSeconds, t.SuccessRate, t.StrategyName)
}

// FormatTradeClosed formats a resolved trade.
func FormatTradeClosed(h model.HistoryItem) string {
	icon := "❌"
	if h.Result == model.Win {
		icon = "✅"
	}
	return fmt.Sprintf("%s <b>Trade closed</b> | %s\n\n%s %s %+.2f\n%.5f → %.5f • %s\n",
		icon, h.Pair, arrow(h.Direction), h.Result, h.Profit, h.OpenPrice, h.ClosePrice, h.StrategyName)
}

// FormatStats formats the session aggregates.
func FormatStats(s model.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Session stats</b>\n\n")
	b.WriteString(fmt.Sprintf("Trades: %d\n", s.TotalTrades))
	b.WriteString(fmt.Sprintf("Win rate: %.0f%%\n", s.WinRate))
	b.WriteString(fmt.Sprintf("Profit: %+.2f\n", s.TotalProfit))
	b.WriteString(fmt.Sprintf("Balance: %.2f\n", s.Balance))
	b.WriteString(fmt.Sprintf("Loss streak: %d\n", s.ConsecutiveLosses))
	return b.String()
}

// FormatSignals lists standing signals.
func FormatSignals(signals []model.TradingSignal) string {
	if len(signals) == 0 {
		return "No signals yet"
	}
	var b strings.Builder
	b.WriteString("📡 <b>Signals</b>\n\n")
	for _, s := range signals {
		state := "waiting"
		if s.IsActive {
			state = "active"
		}
		b.WriteString(fmt.Sprintf("%s %s %.1f%% • in %ds • %s\n", s.Pair, arrow(s.Direction), s.SuccessRate, s.TimeToSignalSeconds, state))
	}
	return b.String()
}

// FormatStatus summarizes a snapshot.
func FormatStatus(snap model.Snapshot) string {
	var b strings.Builder
	enabled := "⏸ disabled"
	if snap.Settings.IsEnabled {
		enabled = "▶️ enabled"
	}
	b.WriteString(fmt.Sprintf("🤖 <b>Bot status</b> | %s\n\n", enabled))
	b.WriteString(fmt.Sprintf("Tick: %d\n", snap.Tick))
	b.WriteString(fmt.Sprintf("Open trades: %d/%d\n", len(snap.Trades), snap.Settings.MaxConcurrentTrades))
	b.WriteString(fmt.Sprintf("Pre-signals armed: %d\n", len(snap.PreSignals)))
	b.WriteString(fmt.Sprintf("Balance: %.2f (%+.2f)\n", snap.Stats.Balance, snap.Stats.SessionProfit))
	for _, t := range snap.Trades {
		b.WriteString(fmt.Sprintf("  %s %s $%.0f • %ds left\n", t.Pair, t.Direction, t.Amount, t.TimeLeftSeconds))
	}
	return b.String()
}
