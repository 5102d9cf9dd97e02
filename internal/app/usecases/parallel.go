package usecases

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/core/plan"
	"github.com/cbalona/reinsurance/internal/infrastructure/metrics"
)

// ParallelBackend evaluates independent tasks concurrently on a fixed worker
// pool. A coordinator goroutine owns all bookkeeping; workers only run
// forwards and read the result slots of completed dependencies, so no mutex
// guards the hot path.
type ParallelBackend struct {
	workers int
}

// NewParallelBackend creates a backend with the given worker count. A count
// of zero or less selects runtime.NumCPU.
func NewParallelBackend(workers int) *ParallelBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelBackend{workers: workers}
}

// Name identifies the backend in logs and metrics.
func (b *ParallelBackend) Name() string { return "parallel" }

// Workers returns the configured pool size.
func (b *ParallelBackend) Workers() int { return b.workers }

// taskResult carries a finished task back to the coordinator.
type taskResult struct {
	idx int
	out map[string]*ndarray.Array
	err error
}

// Execute schedules tasks as their dependencies complete. The first failure
// cancels the pool and is returned; remaining tasks are abandoned.
func (b *ParallelBackend) Execute(ctx context.Context, p *plan.Plan, inputs map[string]*ndarray.Array) (Results, error) {
	n := p.Len()
	if n == 0 {
		return Results{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Per-task bookkeeping, indexed by plan position. Slots are written by
	// the coordinator only; workers read a dependency's slot strictly after
	// the coordinator scheduled them, so the channel send orders the access.
	slots := make([]map[string]*ndarray.Array, n)
	remaining := make([]int, n)
	dependents := make([][]int, n)
	for i, task := range p.Tasks {
		remaining[i] = len(task.Deps)
		for _, dep := range task.Deps {
			j, ok := p.Position(dep)
			if !ok {
				return nil, fmt.Errorf("%w: dependency %q missing from plan", ErrBackendExecution, dep)
			}
			dependents[j] = append(dependents[j], i)
		}
	}

	// Buffered to the task count so neither side ever blocks the other.
	ready := make(chan int, n)
	done := make(chan taskResult, n)

	lookup := func(id string) (map[string]*ndarray.Array, bool) {
		i, ok := p.Position(id)
		if !ok || slots[i] == nil {
			return nil, false
		}
		return slots[i], true
	}

	workers := b.workers
	if workers > n {
		workers = n
	}
	metrics.SetBackendWorkers(workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range ready {
				if ctx.Err() != nil {
					done <- taskResult{idx: idx, err: ctx.Err()}
					continue
				}
				out, err := runTask(p.Tasks[idx], inputs, lookup)
				done <- taskResult{idx: idx, out: out, err: err}
			}
		}()
	}

	outstanding := 0
	for i, task := range p.Tasks {
		if len(task.Deps) == 0 {
			ready <- i
			outstanding++
		}
	}

	// Tasks downstream of a failure are never scheduled, so the loop ends
	// once everything already in flight has drained.
	var firstErr error
	for outstanding > 0 {
		res := <-done
		outstanding--
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		if firstErr != nil {
			continue // finished after the failure; result discarded
		}
		slots[res.idx] = res.out
		for _, dep := range dependents[res.idx] {
			remaining[dep]--
			if remaining[dep] == 0 {
				ready <- dep
				outstanding++
			}
		}
	}
	close(ready)
	wg.Wait()

	if firstErr != nil {
		if errors.Is(firstErr, context.Canceled) || errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrBackendExecution, firstErr)
		}
		return nil, firstErr
	}

	results := make(Results, n)
	for i, task := range p.Tasks {
		results[task.ID] = slots[i]
	}
	return results, nil
}
