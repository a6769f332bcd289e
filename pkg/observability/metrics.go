package observability

import (
	"context"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "stackbt"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Ticks        *prometheus.CounterVec
	TickDuration prometheus.Histogram
	StackDepth   prometheus.Gauge
	Pushes       *prometheus.CounterVec
	Pops         *prometheus.CounterVec
	Aborts       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ticks_total",
				Help:      "Total number of driver ticks, by root result.",
			},
			[]string{"result"},
		),
		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent in one driver tick.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		StackDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "stack_depth",
				Help:      "Frames left on the root stack after the last tick.",
			},
		),
		Pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "frame_pushes_total",
				Help:      "Total number of frames pushed, by node.",
			},
			[]string{"node", "kind"},
		),
		Pops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "frame_pops_total",
				Help:      "Total number of frames popped with a result, by node.",
			},
			[]string{"node", "kind", "result"},
		),
		Aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "frame_aborts_total",
				Help:      "Total number of frames discarded before completing, by node.",
			},
			[]string{"node", "kind", "reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.TickDuration, m.StackDepth, m.Pushes, m.Pops, m.Aborts)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFramePush: func(_ context.Context, e *domain.FrameEvent) {
			m.Pushes.WithLabelValues(e.Node, e.Kind).Inc()
		},
		OnFramePop: func(_ context.Context, e *domain.FrameEvent) {
			m.Pops.WithLabelValues(e.Node, e.Kind, e.Result.String()).Inc()
		},
		OnAbort: func(_ context.Context, e *domain.FrameEvent) {
			m.Aborts.WithLabelValues(e.Node, e.Kind, e.Result.Reason).Inc()
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) {
			label := e.Result.String()
			if e.Err != nil {
				label = "error"
			}
			m.Ticks.WithLabelValues(label).Inc()
			m.TickDuration.Observe(e.Duration.Seconds())
			m.StackDepth.Set(float64(e.Depth))
		},
	}
}
