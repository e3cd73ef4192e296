// smoke-sync exercises the full offline-first path against an in-memory
// remote store: submit offline, survive a restart, reconnect, drain, and
// read back through the access filter.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"compliancehub.org/internal/connectivity"
	"compliancehub.org/internal/profile"
	"compliancehub.org/internal/queue"
	"compliancehub.org/internal/remote"
	"compliancehub.org/internal/report"
	"compliancehub.org/internal/session"
	"compliancehub.org/internal/submit"
	"compliancehub.org/internal/syncer"
	"compliancehub.org/internal/view"
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "smoke-sync")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	queuePath := filepath.Join(dir, "queue.json")

	store := remote.NewInMemory()

	resolver := profile.NewResolver(store)
	prof, err := resolver.Resolve(ctx, remote.Principal{ID: "ext-1", Email: "rsm@ncf.example"})
	if err != nil {
		log.Fatalf("resolve profile: %v", err)
	}
	if prof.Role != session.RoleEmployee {
		log.Fatalf("expected default employee role, got %s", prof.Role)
	}

	loc, _ := session.StoreByID("NCF-002")
	viewer := session.Viewer{
		UserID:    prof.ID,
		Email:     prof.Email,
		Role:      prof.Role,
		StoreID:   loc.ID,
		StoreName: loc.Name,
	}

	q, err := queue.Open(queuePath)
	if err != nil {
		log.Fatalf("open queue: %v", err)
	}
	pipeline := submit.New(store, q)

	shortage := &report.CashAction{
		Type:         "shortage",
		DrawerNumber: "2",
		Expected:     decimal.NewFromInt(300),
		Actual:       decimal.NewFromInt(240),
		Notes:        "drawer short after close",
	}
	res, err := pipeline.Submit(ctx, shortage, viewer, false)
	if err != nil {
		log.Fatalf("offline submit: %v", err)
	}
	if res.Status != submit.StatusQueuedOffline {
		log.Fatalf("expected queued_offline, got %s", res.Status)
	}

	// Simulated restart: reopen the queue from disk.
	q, err = queue.Open(queuePath)
	if err != nil {
		log.Fatalf("reopen queue: %v", err)
	}
	if q.Len() != 1 {
		log.Fatalf("queue did not survive restart: len=%d", q.Len())
	}

	engine := syncer.New(q, store)
	monitor := connectivity.NewMonitor(false)
	go engine.Watch(ctx, monitor)
	drained, err := engine.Drain(ctx)
	if err != nil {
		log.Fatalf("drain: %v", err)
	}
	if drained.Succeeded != 1 || q.Len() != 0 {
		log.Fatalf("drain incomplete: %+v len=%d", drained, q.Len())
	}

	rows, err := store.Query(ctx, remote.Query{Entity: "reports"})
	if err != nil {
		log.Fatalf("query reports: %v", err)
	}
	reports := make([]report.Report, 0, len(rows))
	for _, row := range rows {
		r, err := report.FromAttrs(row)
		if err != nil {
			log.Fatalf("decode report: %v", err)
		}
		reports = append(reports, r)
	}

	mine := view.Visible(reports, viewer)
	if len(mine) != 1 || mine[0].ID != res.ReportID {
		log.Fatalf("filtered view wrong: %d reports", len(mine))
	}
	if mine[0].Priority != report.PriorityHigh {
		log.Fatalf("shortage should be high priority, got %s", mine[0].Priority)
	}

	elsewhere := viewer
	elsewhere.StoreID = "NCF-004"
	if leaked := view.Visible(reports, elsewhere); len(leaked) != 0 {
		log.Fatalf("store isolation broken: %d reports leaked", len(leaked))
	}

	fmt.Printf("✅ offline sync smoke test passed: report=%s\n", res.ReportID)
}
