package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// queueDepth gauges the number of non-terminal tickets in the queue.
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clinic_queue_active_tickets",
		Help: "Current number of active (non-terminal) tickets in the queue.",
	})

	// queueCritical gauges active tickets that are urgent or at/above the
	// critical score threshold.
	queueCritical = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clinic_queue_critical_tickets",
		Help: "Current number of critical tickets in the queue.",
	})

	// queueDelayed gauges active tickets currently in the Delayed status.
	queueDelayed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clinic_queue_delayed_tickets",
		Help: "Current number of delayed tickets in the queue.",
	})

	// assessments counts emitted final triage assessments by color band.
	assessments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_assessments_total",
			Help: "Total number of final triage assessments emitted, by color band.",
		},
		[]string{"color"},
	)
)

func init() {
	prometheus.MustRegister(queueDepth, queueCritical, queueDelayed, assessments)
}
