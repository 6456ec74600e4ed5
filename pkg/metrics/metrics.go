package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pocketsim_ticks_total",
			Help: "Total number of simulation ticks executed",
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pocketsim_tick_duration_seconds",
			Help:    "Wall time spent inside one simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	AnalysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pocketsim_analysis_failures_total",
			Help: "Per-pair analysis failures skipped inside a tick",
		},
		[]string{"pair"},
	)

	TradesOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pocketsim_trades_opened_total",
			Help: "Total number of simulated trades opened",
		},
		[]string{"pair", "direction"},
	)

	TradesClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pocketsim_trades_closed_total",
			Help: "Total number of simulated trades resolved",
		},
		[]string{"pair", "result"},
	)

	Balance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pocketsim_account_balance",
			Help: "Simulated account balance",
		},
	)

	PreSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pocketsim_pre_signals_total",
			Help: "Pre-signals surfaced after deduplication",
		},
		[]string{"pair", "direction"},
	)
)
