package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "exchange",
		Subsystem: "indexer",
		Name:      "blocks_processed_total",
		Help:      "Number of blocks fully applied and checkpointed.",
	})
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Subsystem: "indexer",
		Name:      "events_processed_total",
		Help:      "Number of events applied, by event type.",
	}, []string{"type"})
	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Subsystem: "indexer",
		Name:      "events_dropped_total",
		Help:      "Number of events skipped because they referenced unknown state.",
	}, []string{"type"})
	liquidityUpdateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "exchange",
		Subsystem: "indexer",
		Name:      "liquidity_update_failures_total",
		Help:      "Number of pool liquidity recomputations rejected by the valuation guard.",
	})
)
