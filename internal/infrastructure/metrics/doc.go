// Package metrics exposes expvar-published counters and gauges used by the
// computation runtime (plans, backends, and layer forwards). It intentionally
// avoids external dependencies and is consumed by the optional
// reinsurance-server for /debug/vars and /metrics endpoints.
package metrics
