package recorder

import (
	"time"

	"PocketSim/internal/model"
)

// NoopRecorder drops everything. Performance reports zeros for every strategy.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(_ *TradeRecord) error  { return nil }
func (n *NoopRecorder) RecordSignal(_ *SignalEvent) error { return nil }
func (n *NoopRecorder) Close() error                      { return nil }

func (n *NoopRecorder) StrategyPerformance(names []string) ([]model.StrategyPerformance, error) {
	now := time.Now()
	out := make([]model.StrategyPerformance, len(names))
	for i, name := range names {
		out[i] = model.StrategyPerformance{Name: name, LastUpdate: now, IsActive: true}
	}
	return out, nil
}
