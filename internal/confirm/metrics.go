// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeCancelled = "cancelled"
	OutcomeExpired   = "expired"
	OutcomeFailed    = "failed"
)

var (
	confirmationsRequestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmgate_confirmations_requested_total",
			Help: "Total confirmation dialogs opened, by action.",
		},
		[]string{"action"},
	)

	confirmationsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmgate_confirmations_resolved_total",
			Help: "Total confirmation answers, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	tokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confirmgate_tokens_issued_total",
			Help: "Total confirmation tokens issued.",
		},
	)
)
