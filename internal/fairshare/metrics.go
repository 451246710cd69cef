package fairshare

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	NAMESPACE = "fairshare"
	SUBSYSTEM = "engine"
)

// Metrics exports the outcome of every cycle.
type Metrics struct {
	// Slots allocated to each leaf.
	desiredServed *prometheus.GaugeVec
	// Slots each leaf can use.
	sent *prometheus.GaugeVec
	// Allocated slots no leaf can use.
	freeSlots prometheus.Gauge
	// Slots handed to the last cycle.
	totalSlots prometheus.Gauge
	cycleTime  prometheus.Histogram
	// Share trees that failed to build.
	buildErrors prometheus.Counter
}

// NewMetrics creates the metrics and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		desiredServed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "desired_served_slots",
				Help:      "Slots each entity is entitled to in the last cycle.",
			},
			[]string{"entity"},
		),
		sent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "sent_slots",
				Help:      "Slots each entity can use in the last cycle.",
			},
			[]string{"entity"},
		),
		freeSlots: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "free_slots",
				Help:      "Allocated slots no entity could use in the last cycle.",
			},
		),
		totalSlots: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "total_slots",
				Help:      "Slots distributed in the last cycle.",
			},
		),
		cycleTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "cycle_time_seconds",
				Help:      "Time taken to distribute and harvest slots.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
		),
		buildErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Subsystem: SUBSYSTEM,
				Name:      "tree_build_errors_total",
				Help:      "Number of share trees that failed to build.",
			},
		),
	}
	registerer.MustRegister(m.desiredServed, m.sent, m.freeSlots, m.totalSlots, m.cycleTime, m.buildErrors)
	return m
}

// ReportCycle replaces the per-entity gauges with the allocations of result.
func (m *Metrics) ReportCycle(result *CycleResult) {
	m.desiredServed.Reset()
	m.sent.Reset()
	for _, a := range result.Allocations {
		m.desiredServed.WithLabelValues(a.EntityPath).Set(float64(a.DesiredServed))
		m.sent.WithLabelValues(a.EntityPath).Set(float64(a.Sent))
	}
	m.freeSlots.Set(float64(result.FreeSlots))
	m.totalSlots.Set(float64(result.TotalSlots))
	m.cycleTime.Observe(result.Duration.Seconds())
}

func (m *Metrics) ReportBuildError() {
	m.buildErrors.Inc()
}
