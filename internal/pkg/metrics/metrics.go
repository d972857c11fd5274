// Package metrics defines and registers the custom Prometheus metrics of the
// CRM. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - method: "password", "guest" or "token"
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// RegistrationsTotal counts successful registrations by granted role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of users registered, by role.",
	},
	[]string{"role"},
)

// AuthorizationDeniedTotal counts requests rejected by a role gate.
// Label:
//   - surface: "api" or "ui"
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests rejected for insufficient role.",
	},
	[]string{"surface"},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordsMutatedTotal counts successful writes to the record repositories.
// Labels:
//   - entity: "customer" or "lead"
//   - op: "create", "update" or "delete"
var RecordsMutatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_mutated_total",
		Help:      "Total number of customer and lead writes, by entity and operation.",
	},
	[]string{"entity", "op"},
)
