// Package metrics holds the process-wide Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes.
const (
	OutcomeCaptured  = "captured"
	OutcomeIntegrity = "integrity_failure"
	OutcomeTooLarge  = "too_large"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

var (
	ingestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quotebook",
			Name:      "ingest_total",
			Help:      "Finished capture ingestions by outcome.",
		},
		[]string{"outcome"},
	)

	ingestRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quotebook",
		Name:      "ingest_retries_total",
		Help:      "Attachment download retries.",
	})

	selectionDraws = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quotebook",
		Name:      "selection_draws_total",
		Help:      "Random draws made by the selection engine.",
	})

	selectionRepeats = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quotebook",
		Name:      "selection_repeats_total",
		Help:      "Draws rejected because the quote was shown recently.",
	})

	cleanups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quotebook",
		Name:      "cleanups_total",
		Help:      "Broken quotes removed by the janitor.",
	})
)

// Ingest counts one finished ingestion.
func Ingest(outcome string) { ingestTotal.WithLabelValues(outcome).Inc() }

// Retry counts one download retry.
func Retry() { ingestRetries.Inc() }

// Draw counts one selection draw.
func Draw() { selectionDraws.Inc() }

// Repeat counts one rejected recent draw.
func Repeat() { selectionRepeats.Inc() }

// Cleanup counts one janitor removal.
func Cleanup() { cleanups.Inc() }
