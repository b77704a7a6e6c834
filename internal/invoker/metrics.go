package invoker

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal counts gateway attempts by result.
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_attempts_total",
			Help: "Total number of payment gateway attempts",
		},
		[]string{"gateway", "attempt", "result"},
	)

	// OutcomesTotal counts finished invocations by outcome.
	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_invocations_total",
			Help: "Total number of payment invocations by outcome",
		},
		[]string{"gateway", "outcome"},
	)

	// InvocationDuration measures an invocation from first attempt to outcome.
	InvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_invocation_duration_seconds",
			Help:    "Duration of payment invocations in seconds, backoff included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"gateway", "outcome"},
	)

	// BackoffDuration measures waits between attempts.
	BackoffDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_backoff_duration_seconds",
			Help:    "Duration of backoff waits between payment attempts in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"gateway", "attempt"},
	)
)

func recordAttempt(gateway string, attempt int, result string) {
	AttemptsTotal.WithLabelValues(gateway, strconv.Itoa(attempt), result).Inc()
}

func recordOutcome(gateway string, out Outcome, seconds float64) {
	label := "success"
	if out.Failure != nil {
		label = out.Failure.Kind.String()
	}
	OutcomesTotal.WithLabelValues(gateway, label).Inc()
	InvocationDuration.WithLabelValues(gateway, label).Observe(seconds)
}

func recordBackoff(gateway string, attempt int, seconds float64) {
	BackoffDuration.WithLabelValues(gateway, strconv.Itoa(attempt)).Observe(seconds)
}
