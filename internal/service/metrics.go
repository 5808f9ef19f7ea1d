package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	awardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puls_awards_granted_total",
			Help: "Ledger entries created, by award type",
		},
		[]string{"type"},
	)
	awardsThrottled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puls_awards_throttled_total",
			Help: "Grants skipped by the per-type throttle",
		},
		[]string{"type"},
	)
	reconciliations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "puls_reconciliations_total",
			Help: "Pending-entry reconciliation runs",
		},
	)
	tierChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_changes_total",
			Help: "Tier moves, by source and destination tier",
		},
		[]string{"from", "to"},
	)
)

func init() {
	prometheus.MustRegister(awardsGranted)
	prometheus.MustRegister(awardsThrottled)
	prometheus.MustRegister(reconciliations)
	prometheus.MustRegister(tierChanges)
}
