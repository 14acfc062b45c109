package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

var (
	// movesTotal counts resolved moves by outcome
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_moves_total",
		Help: "Total resolved moves by outcome (moved, pushed, blocked, fault)",
	}, []string{"outcome"})

	// pushChainLength tracks how many objects each successful push moved
	pushChainLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warehouse_push_chain_length",
		Help:    "Number of objects moved by one push",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50},
	})

	// integrityFaults counts simulations halted by an integrity violation
	integrityFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_integrity_faults_total",
		Help: "Total simulations halted by an integrity violation",
	})

	replaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_replays_total",
		Help: "Total instruction stream replays",
	})

	// activeSessions tracks live sessions
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "warehouse_active_sessions",
		Help: "Number of active sessions",
	})
)

// recordOutcome updates the move metrics for one resolved move
func recordOutcome(out *engine.MoveOutcome) {
	switch {
	case out == nil:
		return
	case !out.Moved:
		movesTotal.WithLabelValues("blocked").Inc()
	case len(out.Pushed) > 0:
		movesTotal.WithLabelValues("pushed").Inc()
		pushChainLength.Observe(float64(len(out.Pushed)))
	default:
		movesTotal.WithLabelValues("moved").Inc()
	}
}

func recordFault() {
	movesTotal.WithLabelValues("fault").Inc()
	integrityFaults.Inc()
}
