// Package metrics exports hydration events as Prometheus metrics. A
// Collector implements snapshot.Logger, so it plugs into a Hydrator with
// snapshot.WithLogger, alone or through snapshot.MultiLogger.
package metrics

import (
	snapshot "github.com/goliatone/go-snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "snapshot"

// Outcome label values of snapshot_hydrations_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

var (
	stageBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}
	totalBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// Collector records hydration counters and latency histograms.
type Collector struct {
	hydrations    *prometheus.CounterVec
	duration      prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	entities      *prometheus.CounterVec
	skipped       *prometheus.CounterVec
}

// NewCollector registers the metrics on reg. A nil reg uses the default
// Prometheus registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		hydrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hydrations_total",
			Help:      "Total number of hydration calls by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hydration_duration_seconds",
			Help:      "Wall time of hydration calls",
			Buckets:   totalBuckets,
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of hydration stages",
			Buckets:   stageBuckets,
		}, []string{"stage"}),
		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Number of failed hydration stages, including activity hook failures",
		}, []string{"stage"}),
		entities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_total",
			Help:      "Entities produced per stage",
		}, []string{"stage"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_skipped_total",
			Help:      "Entities dropped in lenient mode per stage",
		}, []string{"stage"}),
	}
}

// LogHydration implements snapshot.Logger.
func (c *Collector) LogHydration(event snapshot.LogEvent) {
	if c == nil {
		return
	}
	if event.Stage == "" {
		c.summary(event)
		return
	}

	stage := string(event.Stage)
	if event.Stage != snapshot.StageActivity {
		c.stageDuration.WithLabelValues(stage).Observe(event.Duration.Seconds())
	}
	if event.Err != nil {
		c.stageErrors.WithLabelValues(stage).Inc()
	}
	switch event.Stage {
	case snapshot.StageNodes, snapshot.StageEdges, snapshot.StageContexts:
		c.entities.WithLabelValues(stage).Add(float64(event.Count))
		if event.Skipped > 0 {
			c.skipped.WithLabelValues(stage).Add(float64(event.Skipped))
		}
	}
}

func (c *Collector) summary(event snapshot.LogEvent) {
	outcome := OutcomeSuccess
	switch {
	case event.Err != nil:
		outcome = OutcomeFailure
	case event.Cached:
		outcome = OutcomeCached
	}
	c.hydrations.WithLabelValues(outcome).Inc()
	c.duration.Observe(event.Duration.Seconds())
}

var _ snapshot.Logger = (*Collector)(nil)
