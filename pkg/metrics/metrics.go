// Package metrics records validation activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Recorder holds the shape collectors. A nil *Recorder is valid and records
// nothing, so callers never need to guard their calls.
type Recorder struct {
	validations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	compileFailures prometheus.Counter
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shape_validations_total",
				Help: "Total number of validations by schema and outcome",
			},
			[]string{"schema", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shape_validation_duration_seconds",
				Help:    "Duration of validation calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"schema"},
		),
		compileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shape_schema_compile_failures_total",
			Help: "Total number of schemas rejected by the compiler",
		}),
	}

	for _, c := range []prometheus.Collector{r.validations, r.duration, r.compileFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveValidation records one validation of the named schema. Inline
// schemas use an empty name.
func (r *Recorder) ObserveValidation(schema string, valid bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	if schema == "" {
		schema = "inline"
	}
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	r.validations.WithLabelValues(schema, outcome).Inc()
	r.duration.WithLabelValues(schema).Observe(elapsed.Seconds())
}

// CompileFailed records a schema that did not compile.
func (r *Recorder) CompileFailed() {
	if r == nil {
		return
	}
	r.compileFailures.Inc()
}
