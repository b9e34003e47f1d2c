package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/tovsim/internal/tov"
)

const (
	OutcomeOK         = "ok"
	OutcomeDegenerate = "degenerate"
	OutcomeInvalid    = "invalid_input"
	OutcomeFailed     = "integration_failure"
	OutcomeCanceled   = "canceled"
)

// Registry holds every tovsim collector. It is separate from the default
// registry so a dump contains solver telemetry only.
var Registry = prometheus.NewRegistry()

var (
	// SolvesTotal counts finished solves by outcome.
	SolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tovsim_solves_total",
			Help: "Total number of stellar structure solves by outcome",
		},
		[]string{"outcome"},
	)

	// SolveSteps tracks accepted integrator steps per successful solve.
	SolveSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tovsim_solve_steps",
			Help:    "Accepted integrator steps per solve",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		},
	)

	// SolveSeconds tracks wall time per solve, failed ones included.
	SolveSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tovsim_solve_seconds",
			Help:    "Wall time of a single solve in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		},
	)

	// SequenceModels is the number of models kept by the last sequence.
	SequenceModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tovsim_sequence_models",
			Help: "Number of models in the most recently built sequence",
		},
	)
)

func init() {
	Registry.MustRegister(SolvesTotal)
	Registry.MustRegister(SolveSteps)
	Registry.MustRegister(SolveSeconds)
	Registry.MustRegister(SequenceModels)
}

// Outcome classifies the result of a solve for the outcome label.
func Outcome(m *tov.Model, err error) string {
	switch {
	case err == nil && m != nil && m.Degenerate:
		return OutcomeDegenerate
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, tov.ErrInvalidInput):
		return OutcomeInvalid
	default:
		return OutcomeFailed
	}
}

// ObserveSolve records one solve started at start.
func ObserveSolve(m *tov.Model, err error, start time.Time) {
	SolvesTotal.WithLabelValues(Outcome(m, err)).Inc()
	SolveSeconds.Observe(time.Since(start).Seconds())
	if err == nil && m != nil {
		SolveSteps.Observe(float64(m.Steps))
	}
}

// WriteTextfile dumps the registry in the text exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
