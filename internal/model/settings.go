package model

// BotSettings is the process-wide bot configuration. It is replaced as a whole value.
// AccountID, IsDemoAccount, AllowedIPs and AntiDetectEnabled are carried for the dashboard
// only and are not enforced.
type BotSettings struct {
	IsEnabled              bool     `json:"is_enabled" yaml:"enabled"`
	AccountID              string   `json:"account_id" yaml:"account_id"`
	IsDemoAccount          bool     `json:"is_demo_account" yaml:"demo_account"`
	MinTradeAmount         float64  `json:"min_trade_amount" yaml:"min_trade_amount" binding:"gte=0"`
	MaxTradeAmount         float64  `json:"max_trade_amount" yaml:"max_trade_amount" binding:"gte=0"`
	StopLossAmount         float64  `json:"stop_loss_amount" yaml:"stop_loss_amount" binding:"gte=0"`
	AllowedIPs             []string `json:"allowed_ips" yaml:"allowed_ips"`
	MaxConcurrentTrades    int      `json:"max_concurrent_trades" yaml:"max_concurrent_trades" binding:"gte=0"`
	MinConfidence          float64  `json:"min_confidence" yaml:"min_confidence" binding:"gte=0,lte=100"`
	MartingaleEnabled      bool     `json:"martingale_enabled" yaml:"martingale"`
	UseSmartRisk           bool     `json:"use_smart_risk" yaml:"smart_risk"`
	AntiDetectEnabled      bool     `json:"anti_detect_enabled" yaml:"anti_detect"`
	PreSignalEnabled       bool     `json:"pre_signal_enabled" yaml:"pre_signal_enabled"`
	PreSignalMinutes       int      `json:"pre_signal_minutes" yaml:"pre_signal_minutes" binding:"gte=0,lte=5"`
	PreSignalMinConfidence float64  `json:"pre_signal_min_confidence" yaml:"pre_signal_min_confidence" binding:"gte=0,lte=100"`
}

// Normalized returns a copy with out-of-range values clamped into a usable shape.
func (s BotSettings) Normalized() BotSettings {
	if s.MinTradeAmount < 0 {
		s.MinTradeAmount = 0
	}
	if s.MaxTradeAmount < 0 {
		s.MaxTradeAmount = 0
	}
	if s.MinTradeAmount > s.MaxTradeAmount {
		s.MinTradeAmount, s.MaxTradeAmount = s.MaxTradeAmount, s.MinTradeAmount
	}
	if s.StopLossAmount < 0 {
		s.StopLossAmount = 0
	}
	if s.MaxConcurrentTrades < 1 {
		s.MaxConcurrentTrades = 1
	}
	if s.PreSignalMinutes < 1 {
		s.PreSignalMinutes = 1
	}
	if s.PreSignalMinutes > 5 {
		s.PreSignalMinutes = 5
	}
	if s.AllowedIPs != nil {
		s.AllowedIPs = append([]string(nil), s.AllowedIPs...)
	}
	return s
}
