package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"PocketSim/internal/model"
	"PocketSim/pkg/logger"
)

// Sender delivers one message, retrying as it sees fit.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// RelayOptions tunes a Relay.
type RelayOptions struct {
	Buffer     int
	Interval   time.Duration // minimum spacing between messages
	Burst      int
	MaxRetries int
	// MinProbability filters which pre-signals are worth a message.
	MinProbability float64
}

// DefaultRelayOptions stays well under Telegram's per-chat limits.
func DefaultRelayOptions() RelayOptions {
	return RelayOptions{Buffer: 64, Interval: time.Second, Burst: 3, MaxRetries: 3, MinProbability: 90}
}

// Relay queues formatted messages and delivers them in the background at a bounded rate,
// so a tick never waits on the network. A full queue drops the message.
type Relay struct {
	sender  Sender
	opts    RelayOptions
	queue   chan string
	limiter *rate.Limiter
}

// NewRelay creates a Relay delivering through sender.
func NewRelay(sender Sender, opts RelayOptions) *Relay {
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Relay{
		sender:  sender,
		opts:    opts,
		queue:   make(chan string, opts.Buffer),
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
}

// Enqueue schedules text for delivery. It never blocks and reports whether the message
// was accepted.
func (r *Relay) Enqueue(text string) bool {
	select {
	case r.queue <- text:
		return true
	default:
		logger.Warn("notification queue full, dropping message", zap.Int("buffer", cap(r.queue)))
		return false
	}
}

// Run delivers queued messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case text := <-r.queue:
			if err := r.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := r.sender.SendWithRetry(ctx, text, r.opts.MaxRetries); err != nil && ctx.Err() == nil {
				logger.Error("send notification", zap.Error(err))
			}
		}
	}
}

// PreSignal notifies about high-probability pre-signals only.
func (r *Relay) PreSignal(sig model.TradingSignal) {
	if sig.WinProbability < r.opts.MinProbability {
		return
	}
	r.Enqueue(FormatPreSignal(sig))
}

func (r *Relay) TradeOpened(t model.ActiveTrade) {
	r.Enqueue(FormatTradeOpened(t))
}

func (r *Relay) TradeClosed(h model.HistoryItem) {
	r.Enqueue(FormatTradeClosed(h))
}
