// Package metrics holds the Prometheus collectors for evaluations and scoring.
//
// The CLI has no HTTP listener, so collectors live on a caller-supplied
// registry that is written to a node-exporter textfile on exit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riskgraph/pkg/models"
)

const namespace = "riskgraph"

// Metrics implements incident.Recorder and records risk score snapshots.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	ServiceImpacts     *prometheus.CounterVec
	CrisisRecommended  *prometheus.CounterVec
	ScoreSnapshots     *prometheus.CounterVec
	ResidualScore      *prometheus.HistogramVec
	PublishedEvents    *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "incident",
				Name:      "evaluations_total",
				Help:      "Total impact evaluations by operation and status",
			},
			[]string{"operation", "status"},
		),
		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "incident",
				Name:      "evaluation_duration_seconds",
				Help:      "Impact evaluation duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		ServiceImpacts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bia",
				Name:      "service_impacts_total",
				Help:      "Evaluated service impacts by impact level",
			},
			[]string{"impact_level"},
		),
		CrisisRecommended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bia",
				Name:      "crisis_recommended_total",
				Help:      "Crisis recommendations by service code",
			},
			[]string{"service_code"},
		),
		ScoreSnapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "score_snapshots_total",
				Help:      "Risk score snapshots by scoring method",
			},
			[]string{"method"},
		),
		ResidualScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "risk",
				Name:      "residual_score",
				Help:      "Distribution of residual risk scores",
				Buckets:   []float64{1, 2, 4, 6, 9, 12, 16, 20, 25, 40},
			},
			[]string{"method"},
		),
		PublishedEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Events handed to the broker by topic and status",
			},
			[]string{"topic", "status"},
		),
	}
}

func (m *Metrics) ObserveEvaluation(operation string, duration time.Duration, err error) {
	m.EvaluationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.EvaluationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordServiceImpact(impact models.ServiceImpact) {
	m.ServiceImpacts.WithLabelValues(string(impact.ImpactLevel)).Inc()
	if impact.CrisisRecommended {
		m.CrisisRecommended.WithLabelValues(impact.ServiceCode).Inc()
	}
}

// RecordSnapshot matches risk.SnapshotHook.
func (m *Metrics) RecordSnapshot(_ *models.Risk, snapshot models.RiskScoringSnapshot) {
	method := snapshot.MethodCode
	if method == "" {
		method = "none"
	}
	m.ScoreSnapshots.WithLabelValues(method).Inc()
	m.ResidualScore.WithLabelValues(method).Observe(snapshot.ResidualScore)
}

func (m *Metrics) RecordPublish(topic string, err error) {
	m.PublishedEvents.WithLabelValues(topic, status(err)).Inc()
}

// WriteTextfile writes every metric gathered from g to path.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
