// Package metrics defines and registers all custom Prometheus metrics for the
// inventory auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_auth"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthOperationsTotal counts session lifecycle operations.
// Labels:
//   - operation: register, login, logout, update_profile, assign_role
//   - outcome: "ok" or the error class (e.g. "invalid_credentials", "username_taken", "error")
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of session lifecycle operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// AuthOperationDuration measures how long a lifecycle operation takes, including
// time spent waiting for a concurrent operation to finish.
var AuthOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of session lifecycle operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// SessionActive is 1 while an account is signed in, 0 otherwise.
var SessionActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_active",
		Help:      "Whether an account is currently signed in (1) or not (0).",
	},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts access gate outcomes.
// Labels:
//   - area: the requested area (e.g. "admin")
//   - decision: pending, unauthenticated, forbidden, admitted
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access gate decisions, by area and decision.",
	},
	[]string{"area", "decision"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events by result.
// Label:
//   - result: "stored", "failed" or "dropped" (shard full or dispatcher closed)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events, labelled by result.",
	},
	[]string{"result"},
)
