package metrics

import (
	"CryptoCast/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptocast"

var _ repository.Metrics = (*Recorder)(nil)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	submissions *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	stale       *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder whose collectors live on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Prediction requests submitted by asset and timeframe",
			},
			[]string{"asset", "timeframe"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Applied request outcomes by asset and kind",
			},
			[]string{"asset", "kind"},
		),
		stale: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_total",
				Help:      "Responses discarded because a newer request superseded them",
			},
			[]string{"asset"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_predicted_price",
				Help:      "Most recent predicted target price for an asset",
			},
			[]string{"asset"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
	}
}

// RecordSubmission counts an accepted submission.
func (r *Recorder) RecordSubmission(asset, timeframe string) {
	r.submissions.WithLabelValues(asset, timeframe).Inc()
}

// RecordOutcome counts an outcome that reached the state.
func (r *Recorder) RecordOutcome(asset, kind string) {
	r.outcomes.WithLabelValues(asset, kind).Inc()
}

// RecordStale counts a discarded late response.
func (r *Recorder) RecordStale(asset string) {
	r.stale.WithLabelValues(asset).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last predicted price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
