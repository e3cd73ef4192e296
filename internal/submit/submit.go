// Package submit routes user-authored reports to the remote store or, when
// that is unreachable, to the durable local queue.
package submit

import (
	"context"
	"time"

	"compliancehub.org/internal/audit"
	"compliancehub.org/internal/ids"
	"compliancehub.org/internal/obs"
	"compliancehub.org/internal/queue"
	"compliancehub.org/internal/remote"
	"compliancehub.org/internal/report"
	"compliancehub.org/internal/session"
)

const reportsEntity = "reports"

// Status distinguishes a confirmed remote write from an offline save. The
// two must stay observably different to the user.
type Status string

const (
	StatusConfirmed     Status = "confirmed"
	StatusQueuedOffline Status = "queued_offline"
)

// Result is the outcome of one submission.
type Result struct {
	Status   Status
	ReportID string
}

// Pipeline stamps and routes report submissions.
type Pipeline struct {
	store remote.Store
	queue *queue.Store
	now   func() time.Time
	newID func() string
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDFunc overrides report id generation.
func WithIDFunc(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a pipeline over the remote store and local queue.
func New(store remote.Store, q *queue.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		queue: q,
		now:   time.Now,
		newID: ids.Report,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit validates and stamps the payload, then writes it remotely when
// online or enqueues it locally. A remote failure while online falls back to
// the queue instead of failing the user-visible action; only validation and
// local persistence failures surface as errors.
func (p *Pipeline) Submit(ctx context.Context, payload report.Payload, viewer session.Viewer, online bool) (Result, error) {
	rep, err := report.New(payload, viewer, p.newID(), p.now())
	if err != nil {
		obs.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return Result{}, err
	}

	writes := []remote.WriteOp{{Entity: reportsEntity, ID: rep.ID, Attrs: rep.Attrs()}}

	if online {
		if err := p.store.Transact(ctx, writes); err == nil {
			obs.SubmissionsTotal.WithLabelValues("confirmed").Inc()
			return Result{Status: StatusConfirmed, ReportID: rep.ID}, nil
		} else {
			_ = audit.LogEvent(ctx, "submit.fallback", map[string]any{
				"report_id": rep.ID,
				"error":     err.Error(),
			})
		}
	}

	if err := p.queue.Enqueue(queue.NewOperation(writes)); err != nil {
		obs.SubmissionsTotal.WithLabelValues("persistence_failed").Inc()
		return Result{}, err
	}
	obs.SubmissionsTotal.WithLabelValues("queued").Inc()
	return Result{Status: StatusQueuedOffline, ReportID: rep.ID}, nil
}
