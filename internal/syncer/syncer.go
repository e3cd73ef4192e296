// Package syncer drains the local queue against the remote store whenever
// connectivity returns.
//
// Drain policy: every pending operation gets exactly one attempt, failures
// are logged but do not abort the batch, and the drained snapshot is then
// discarded regardless of per-item outcome. A failed write is therefore gone
// for good until someone resubmits it — a known hardening point, kept
// because resubmission is cheap and retry storms on flaky store networks
// are not.
package syncer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"compliancehub.org/internal/audit"
	"compliancehub.org/internal/connectivity"
	"compliancehub.org/internal/obs"
	"compliancehub.org/internal/queue"
	"compliancehub.org/internal/remote"
)

// ErrDrainInProgress is returned when a drain is requested while another is
// still running.
var ErrDrainInProgress = errors.New("drain already in progress")

// Result summarises one drain pass.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Engine replays queued operations against the remote store.
type Engine struct {
	queue    *queue.Store
	store    remote.Store
	limiter  *rate.Limiter
	draining atomic.Bool
}

// Option configures the engine.
type Option func(*Engine)

// WithRateLimit paces remote writes during a drain.
func WithRateLimit(l *rate.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// New creates an engine over the given queue and remote store.
func New(q *queue.Store, store remote.Store, opts ...Option) *Engine {
	e := &Engine{
		queue:   q,
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Drain snapshots the queue and attempts every operation in enqueue order,
// then drops the snapshot. Operations enqueued while the drain runs stay in
// the queue for the next pass. At most one drain runs at a time.
func (e *Engine) Drain(ctx context.Context) (Result, error) {
	if !e.draining.CompareAndSwap(false, true) {
		return Result{}, ErrDrainInProgress
	}
	defer e.draining.Store(false)

	start := time.Now()
	batch := e.queue.PeekAll()
	if len(batch) == 0 {
		return Result{}, nil
	}

	var res Result
	attempted := make([]string, 0, len(batch))
	for _, op := range batch {
		if err := e.limiter.Wait(ctx); err != nil {
			// Cancelled mid-drain: drop only what was attempted so the
			// rest replays next time.
			break
		}
		attempted = append(attempted, op.ID)
		res.Attempted++
		if err := e.store.Transact(ctx, op.Writes); err != nil {
			res.Failed++
			obs.DrainOpsTotal.WithLabelValues("error").Inc()
			_ = audit.LogEvent(ctx, "sync.op.failed", map[string]any{
				"op_id": op.ID,
				"error": err.Error(),
			})
			continue
		}
		res.Succeeded++
		obs.DrainOpsTotal.WithLabelValues("ok").Inc()
	}

	dropErr := e.queue.Drop(attempted)
	obs.DrainsTotal.Inc()
	res.Duration = time.Since(start)

	if res.Failed > 0 {
		_ = audit.LogEvent(ctx, "sync.drain.partial", map[string]any{
			"attempted": res.Attempted,
			"failed":    res.Failed,
		})
	}
	return res, dropErr
}

// Watch subscribes to connectivity transitions and drains once per
// became-online event, until the context ends.
func (e *Engine) Watch(ctx context.Context, m *connectivity.Monitor) {
	events := m.Subscribe(ctx)
	for evt := range events {
		if evt != connectivity.EventOnline {
			continue
		}
		res, err := e.Drain(ctx)
		if err != nil && !errors.Is(err, ErrDrainInProgress) {
			_ = audit.LogEvent(ctx, "sync.drain.error", map[string]any{"error": err.Error()})
			continue
		}
		if res.Attempted > 0 {
			_ = audit.LogEvent(ctx, "sync.drain.done", map[string]any{
				"attempted": res.Attempted,
				"succeeded": res.Succeeded,
				"failed":    res.Failed,
			})
		}
	}
}
