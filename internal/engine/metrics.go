package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layercast_render_frames_total",
		Help: "Frames rendered since start.",
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "layercast_render_duration_seconds",
		Help:    "Time to execute the instruction list once, including the read lock wait.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	layersBuilt = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "layercast_render_layers",
		Help:    "Layers defined per frame.",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	})

	renderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layercast_render_errors_total",
		Help: "Instructions that failed during rendering.",
	})
)
