package tracking

import (
	"testing"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nota(id, company, invoice string, sentAt time.Time) *model.Nota {
	return &model.Nota{
		ID:             id,
		CompanyName:    company,
		InvoiceNumber:  invoice,
		MessageSentAt:  sentAt,
		FirstMessageAt: sentAt,
		Status:         model.NotaStatusPending,
		MessageCount:   1,
	}
}

func collected(n *model.Nota, at time.Time) *model.Nota {
	n.Collected = true
	n.CollectedAt = &at
	return n
}

func ids(notas []*model.Nota) []string {
	out := make([]string, len(notas))
	for i, n := range notas {
		out[i] = n.ID
	}
	return out
}

func TestFilterAndSort_DedupKeepsLatestReminder(t *testing.T) {
	notas := []*model.Nota{
		nota("a1", "Acme", "NF-001", day0),
		nota("a3", "Acme", "NF-001", day0.Add(days(4))),
		nota("a2", "Acme", "NF-001", day0.Add(days(2))),
	}

	got := FilterAndSort(notas, model.NotaQuery{Tab: model.TabPending, Now: day0.Add(days(5))})
	require.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].ID)
}

func TestFilterAndSort_DistinctInvoicesAreNotMerged(t *testing.T) {
	notas := []*model.Nota{
		nota("x", "Acme", "NF-001", day0),
		nota("y", "Acme", "NF-002", day0.Add(time.Hour)),
		nota("z", "Acme Ltda", "NF-001", day0.Add(2*time.Hour)),
	}

	got := FilterAndSort(notas, model.NotaQuery{Tab: model.TabPending, Now: day0})
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
}

func TestFilterAndSort_TabPartition(t *testing.T) {
	now := day0.Add(days(20))
	notas := []*model.Nota{
		nota("open", "Acme", "1", day0),
		collected(nota("seven", "Beta", "2", day0), now.Add(-days(7))),
		collected(nota("eight", "Gama", "3", day0), now.Add(-days(8))),
	}
	undated := nota("undated", "Delta", "4", day0)
	undated.Collected = true
	notas = append(notas, undated)

	pending := FilterAndSort(notas, model.NotaQuery{Tab: model.TabPending, Now: now})
	assert.Equal(t, []string{"open"}, ids(pending))

	done := FilterAndSort(notas, model.NotaQuery{Tab: model.TabCollected, Now: now})
	assert.ElementsMatch(t, []string{"seven", "undated"}, ids(done))
}

func TestFilterAndSort_CollectedWindowFallsBackToUpdatedAt(t *testing.T) {
	now := day0.Add(days(20))
	recent := nota("recent", "Acme", "1", day0)
	recent.Collected = true
	recent.UpdatedAt = now.Add(-days(3))
	old := nota("old", "Acme", "2", day0)
	old.Collected = true
	old.UpdatedAt = now.Add(-days(9))

	got := FilterAndSort([]*model.Nota{recent, old}, model.NotaQuery{Tab: model.TabCollected, Now: now})
	assert.Equal(t, []string{"recent"}, ids(got))
}

func TestFilterAndSort_CollectedTabDoesNotDedup(t *testing.T) {
	now := day0.Add(days(2))
	notas := []*model.Nota{
		collected(nota("c1", "Acme", "1", day0), now),
		collected(nota("c2", "Acme", "1", day0.Add(time.Hour)), now),
	}
	got := FilterAndSort(notas, model.NotaQuery{Tab: model.TabCollected, Now: now})
	assert.Len(t, got, 2)
}

func TestFilterAndSort_StatusFilter(t *testing.T) {
	red := nota("red", "Acme", "1", day0)
	red.Status = model.NotaStatusAlertRed
	green := nota("green", "Beta", "2", day0)
	green.Status = model.NotaStatusAlertGreen
	notas := []*model.Nota{red, green}

	got := FilterAndSort(notas, model.NotaQuery{Tab: model.TabPending, Status: "alert-red", Now: day0})
	assert.Equal(t, []string{"red"}, ids(got))

	got = FilterAndSort(notas, model.NotaQuery{Tab: model.TabPending, Status: "all", Now: day0})
	assert.Len(t, got, 2)
}

func TestFilterAndSort_StatusFilterRunsBeforeDedup(t *testing.T) {
	// the older reminder still matches the filter once the newer one is excluded
	older := nota("older", "Acme", "1", day0)
	older.Status = model.NotaStatusAlertYellow
	newer := nota("newer", "Acme", "1", day0.Add(days(1)))
	newer.Status = model.NotaStatusPending

	got := FilterAndSort([]*model.Nota{older, newer}, model.NotaQuery{Tab: model.TabPending, Status: "alert-yellow", Now: day0})
	assert.Equal(t, []string{"older"}, ids(got))
}

func TestFilterAndSort_Search(t *testing.T) {
	notas := []*model.Nota{
		nota("a", "Acme Plásticos", "NF-100", day0),
		nota("b", "Beta", "NF-200", day0),
	}

	assert.Equal(t, []string{"a"}, ids(FilterAndSort(notas, model.NotaQuery{Search: "acme", Now: day0})))
	assert.Equal(t, []string{"b"}, ids(FilterAndSort(notas, model.NotaQuery{Search: "nf-2", Now: day0})))
	assert.Len(t, FilterAndSort(notas, model.NotaQuery{Search: "", Now: day0}), 2)
}

func TestFilterAndSort_SearchMatchesRawTerm(t *testing.T) {
	notas := []*model.Nota{
		nota("a", "Acme Plásticos", "NF-100", day0),
		nota("b", "Acme", "NF-200", day0),
	}

	// surrounding spaces are part of the term
	q := model.NotaQuery{Search: "Acme ", Now: day0}.Normalize()
	assert.Equal(t, "Acme ", q.Search)
	assert.Equal(t, []string{"a"}, ids(FilterAndSort(notas, q)))
}

func TestFilterAndSort_Order(t *testing.T) {
	notas := []*model.Nota{
		nota("mid", "B", "2", day0.Add(days(1))),
		nota("first", "A", "1", day0),
		nota("last", "C", "3", day0.Add(days(2))),
	}

	assert.Equal(t, []string{"first", "mid", "last"}, ids(FilterAndSort(notas, model.NotaQuery{Order: model.SortAsc, Now: day0})))
	assert.Equal(t, []string{"last", "mid", "first"}, ids(FilterAndSort(notas, model.NotaQuery{Order: model.SortDesc, Now: day0})))
	// input untouched
	assert.Equal(t, "mid", notas[0].ID)
}

func TestFilterAndSort_MissingDatesSortAsEpoch(t *testing.T) {
	undated := nota("undated", "A", "1", time.Time{})
	dated := nota("dated", "B", "2", day0)

	got := FilterAndSort([]*model.Nota{dated, undated, nil}, model.NotaQuery{Now: day0})
	assert.Equal(t, []string{"undated", "dated"}, ids(got))
}

func TestScenario_ReminderReplacesNoticeInPendingView(t *testing.T) {
	first := nota("a", "Acme", "NF-001", day0)
	reminder := nota("b", "Acme", "NF-001", day0.Add(days(5)))
	reminder.FirstMessageAt = day0
	reminder.MessageCount = 2
	now := day0.Add(days(5))

	got := FilterAndSort([]*model.Nota{first, reminder}, model.NotaQuery{Now: now})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	badge := Evaluate(got[0], now)
	assert.Equal(t, UrgencyWarning, badge.Urgency)
	assert.Equal(t, 2, badge.Remaining)
}

func TestScenario_CollectedVisibilityWindow(t *testing.T) {
	collectedAt := day0.Add(days(6))
	n := collected(nota("b", "Acme", "NF-001", day0.Add(days(5))), collectedAt)

	assert.Empty(t, FilterAndSort([]*model.Nota{n}, model.NotaQuery{Tab: model.TabPending, Now: collectedAt}))
	assert.Len(t, FilterAndSort([]*model.Nota{n}, model.NotaQuery{Tab: model.TabCollected, Now: day0.Add(days(13))}), 1)
	assert.Empty(t, FilterAndSort([]*model.Nota{n}, model.NotaQuery{Tab: model.TabCollected, Now: day0.Add(days(14))}))
}
