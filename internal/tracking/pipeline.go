package tracking

import (
	"sort"
	"strings"
	"time"

	"github.com/gesthub/gesthub/internal/model"
)

// CollectedWindowDays is how long a collected notice stays listed.
const CollectedWindowDays = 7

// FilterAndSort narrows a raw collection to what one listing shows. The
// steps run in a fixed order: tab, status, search, lineage dedup (pending
// tab only), sort by send date. The input slice is never modified.
func FilterAndSort(notas []*model.Nota, q model.NotaQuery) []*model.Nota {
	q = q.Normalize()

	out := make([]*model.Nota, 0, len(notas))
	for _, n := range notas {
		if n == nil || !inTab(n, q) {
			continue
		}
		if q.Tab == model.TabPending && q.Status != "" && string(n.Status) != q.Status {
			continue
		}
		if !matchesSearch(n, q.Search) {
			continue
		}
		out = append(out, n)
	}

	if q.Tab == model.TabPending {
		out = LatestPerLineage(out)
	}

	SortBySentAt(out, q.Order)
	return out
}

func inTab(n *model.Nota, q model.NotaQuery) bool {
	if q.Tab == model.TabPending {
		return !n.Collected
	}
	if !n.Collected {
		return false
	}
	window := q.WindowDays
	if window <= 0 {
		window = CollectedWindowDays
	}
	return CollectedVisible(n, q.Now, window)
}

// CollectedVisible reports whether a collected notice is still inside its
// visibility window. Without any timestamp it stays visible.
func CollectedVisible(n *model.Nota, now time.Time, windowDays int) bool {
	var at time.Time
	switch {
	case n.CollectedAt != nil && !n.CollectedAt.IsZero():
		at = *n.CollectedAt
	case !n.UpdatedAt.IsZero():
		at = n.UpdatedAt
	default:
		return true
	}
	return DaysElapsed(at, now) <= windowDays
}

func matchesSearch(n *model.Nota, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(n.CompanyName), term) ||
		strings.Contains(strings.ToLower(n.InvoiceNumber), term)
}

// LatestPerLineage keeps, for every lineage key, the notice with the latest
// send date. Groups keep the position of their first member; on equal send
// dates the earlier notice wins.
func LatestPerLineage(notas []*model.Nota) []*model.Nota {
	index := make(map[string]int, len(notas))
	out := make([]*model.Nota, 0, len(notas))
	for _, n := range notas {
		key := n.LineageKey()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, n)
			continue
		}
		if sortKey(n.MessageSentAt) > sortKey(out[i].MessageSentAt) {
			out[i] = n
		}
	}
	return out
}

func SortBySentAt(notas []*model.Nota, order model.SortOrder) {
	sort.SliceStable(notas, func(i, j int) bool {
		a, b := sortKey(notas[i].MessageSentAt), sortKey(notas[j].MessageSentAt)
		if order == model.SortDesc {
			return a > b
		}
		return a < b
	})
}

// sortKey treats a missing date as the Unix epoch.
func sortKey(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
