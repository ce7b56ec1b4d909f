package simcore

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters and histograms a coordinator can register once
// and pass to every Node it creates, giving it visibility into strand
// scheduling behavior across a whole simulated mesh without threading
// per-node loggers through every call site.
type Metrics struct {
	Steps           *prometheus.CounterVec
	LoopIterations  *prometheus.CounterVec
	StepDuration    *prometheus.HistogramVec
	YieldReasons    *prometheus.CounterVec
}

// NewMetrics constructs Metrics registered under reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid collisions with other
// simulations sharing the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcsim",
			Name:      "steps_total",
			Help:      "Number of steps run per node.",
		}, []string{"node_type", "node_name"}),
		LoopIterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcsim",
			Name:      "loop_iterations_total",
			Help:      "Number of firmware loop() calls per node.",
		}, []string{"node_type", "node_name"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mcsim",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock time spent inside one step's double-loop idle detector.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"node_type", "node_name"}),
		YieldReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcsim",
			Name:      "yield_reasons_total",
			Help:      "Step yield outcomes by reason.",
		}, []string{"node_type", "node_name", "reason"}),
	}
	reg.MustRegister(m.Steps, m.LoopIterations, m.StepDuration, m.YieldReasons)
	return m
}

// observe records one step's outcome. nil-safe so a Node created without
// metrics wiring pays no cost.
func (m *Metrics) observe(nodeType, nodeName string, iterations uint32, seconds float64, reason YieldReason) {
	if m == nil {
		return
	}
	m.Steps.WithLabelValues(nodeType, nodeName).Inc()
	m.LoopIterations.WithLabelValues(nodeType, nodeName).Add(float64(iterations))
	m.StepDuration.WithLabelValues(nodeType, nodeName).Observe(seconds)
	m.YieldReasons.WithLabelValues(nodeType, nodeName, reason.String()).Inc()
}
