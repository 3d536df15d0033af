package instructions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// lockWait tracks how long each side waits for the priority lock.
	lockWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "layercast_store_lock_wait_seconds",
		Help:    "Time spent waiting for the instruction store lock by priority class",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
	}, []string{"class"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layercast_store_mutations_total",
		Help: "Instruction list mutations by operation",
	}, []string{"op"})

	prunedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layercast_store_pruned_total",
		Help: "Instructions removed by refactor by reason",
	}, []string{"reason"})

	listLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layercast_store_instructions",
		Help: "Current number of instructions in the list",
	})
)
