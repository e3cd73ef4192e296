// Package view derives the report subset a viewer may see from the shared
// report stream.
package view

import (
	"sort"

	"compliancehub.org/internal/report"
	"compliancehub.org/internal/session"
)

// Visible filters reports down to what the viewer may see. Pure and
// order-preserving; callers sort as they wish.
//
// Store isolation is absolute: no cross-store visibility, admins included.
// Employee actions are additionally restricted to admins and the submitter.
func Visible(reports []report.Report, v session.Viewer) []report.Report {
	out := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		if visible(r, v) {
			out = append(out, r)
		}
	}
	return out
}

func visible(r report.Report, v session.Viewer) bool {
	if r.StoreID != v.StoreID {
		return false
	}
	if r.Category == report.CategoryEmployee {
		return v.Role == session.RoleAdmin || r.UserEmail == v.Email
	}
	return true
}

// SortByNewest orders reports descending by creation timestamp, the usual
// presentation order. Stable, so same-millisecond reports keep their input
// order.
func SortByNewest(reports []report.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt > reports[j].CreatedAt
	})
}

// Summary aggregates the full unfiltered stream for the admin overview. This
// is the separate cross-store view; it never feeds per-store dashboards.
type Summary struct {
	Total        int
	HighPriority int
	ByCategory   map[report.Category]int
	ByStore      map[string]int
}

// Summarize counts reports by category, store, and priority.
func Summarize(reports []report.Report) Summary {
	s := Summary{
		ByCategory: make(map[report.Category]int),
		ByStore:    make(map[string]int),
	}
	for _, r := range reports {
		s.Total++
		s.ByCategory[r.Category]++
		s.ByStore[r.StoreID]++
		if r.Priority == report.PriorityHigh {
			s.HighPriority++
		}
	}
	return s
}
