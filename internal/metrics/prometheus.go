// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the carbon tracker.
var (
	// Counters.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_submissions_total",
			Help: "Total number of calculator submissions processed",
		},
		[]string{"status"},
	)

	EmissionRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emission_records_total",
			Help: "Total number of ledger records appended",
		},
		[]string{"category"},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge_name"},
	)

	LeaderboardCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_hits_total",
			Help: "Leaderboard requests served from the cache",
		},
	)

	LeaderboardCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_misses_total",
			Help: "Leaderboard requests that fell through to the database",
		},
	)

	// Histograms.
	SubmissionKgCO2 = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submission_kg_co2",
			Help:    "Signed total kg CO2 per calculator submission",
			Buckets: prometheus.LinearBuckets(-5, 5, 12), // -5 to 50 kg
		},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of accounts registered",
		},
	)
)

// RecordSubmission records one processed calculator submission.
func RecordSubmission(status string, totalKg float64) {
	SubmissionsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		SubmissionKgCO2.Observe(totalKg)
	}
}

// RecordLedgerAppend records appended ledger rows by category.
func RecordLedgerAppend(category string, count int) {
	EmissionRecordsTotal.WithLabelValues(category).Add(float64(count))
}

// RecordBadgeAwarded increments the badge counter.
func RecordBadgeAwarded(badgeName string) {
	BadgesAwardedTotal.WithLabelValues(badgeName).Inc()
}
