// Package metrics defines and registers the Prometheus metrics exported by the
// TaskFlow client and the sandbox API. It is the single source of truth for
// metric names, labels, and help strings.
//
// All metrics are registered with the default registry on package init via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskflow"

// ── Client metrics ────────────────────────────────────────────────────────────

// RequestsTotal counts every HTTP exchange the request client completes,
// including the resubmission after a refresh.
// Labels:
//   - method: HTTP method
//   - code: response status code, or "error" on transport failure
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total number of API requests sent by the client.",
	},
	[]string{"method", "code"},
)

// RequestDuration measures round-trip latency of a single exchange.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Duration of a single API exchange.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts access-token refresh attempts.
// Label:
//   - result: "success", "denied" (API rejected or network failed), "missing"
//     (no refresh token stored) or "aborted" (caller context ended)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// RetryOutcomes counts the terminal state reached by each Send call.
var RetryOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "retry_outcomes_total",
		Help:      "Terminal state of the refresh-and-retry policy per request.",
	},
	[]string{"state"},
)

// ── Sandbox metrics ───────────────────────────────────────────────────────────

// SandboxTokensIssuedTotal counts tokens minted by the sandbox API.
// Label:
//   - kind: "access" or "refresh"
var SandboxTokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sandbox",
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued by the sandbox API.",
	},
	[]string{"kind"},
)
