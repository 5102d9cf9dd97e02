package metrics

import (
	"expvar"
)

// Task metrics (counters) using expvar maps keyed by node kind.
var (
	tasksExecuted = expvar.NewMap("reinsurance_tasks_executed_total")
	taskFailures  = expvar.NewMap("reinsurance_task_failures_total")
)

// Resolver / Backend metrics.
var (
	plansResolvedTotal   = new(expvar.Int)
	planResolveFailTotal = new(expvar.Int)
	computeCallsTotal    = new(expvar.Int)
	computeFailTotal     = new(expvar.Int)
	backendWorkers       = new(expvar.Int)
)

func init() {
	expvar.Publish("reinsurance_plans_resolved_total", plansResolvedTotal)
	expvar.Publish("reinsurance_plan_resolve_failures_total", planResolveFailTotal)
	expvar.Publish("reinsurance_compute_calls_total", computeCallsTotal)
	expvar.Publish("reinsurance_compute_failures_total", computeFailTotal)
	expvar.Publish("reinsurance_backend_workers", backendWorkers)
}

// Task helpers
func TaskExecuted(kind string) { tasksExecuted.Add(kind, 1) }
func TaskFailed(kind string)   { taskFailures.Add(kind, 1) }

// Resolver/Backend helpers
func IncPlansResolved()       { plansResolvedTotal.Add(1) }
func IncPlanResolveFailures() { planResolveFailTotal.Add(1) }
func IncComputeCalls()        { computeCallsTotal.Add(1) }
func IncComputeFailures()     { computeFailTotal.Add(1) }
func SetBackendWorkers(n int) { backendWorkers.Set(int64(n)) }
