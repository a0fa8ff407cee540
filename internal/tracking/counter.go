package tracking

import (
	"fmt"
	"math"
	"time"

	"github.com/gesthub/gesthub/internal/model"
)

// MessageCountLabel renders how many notices an invoice has received, e.g.
// "3x". A stored count wins; rows written before counting existed get an
// estimate of one reminder every two days.
func MessageCountLabel(n *model.Nota) string {
	return fmt.Sprintf("%dx", MessageCount(n))
}

func MessageCount(n *model.Nota) int {
	if n.MessageSentAt.IsZero() {
		return 0
	}
	if n.FirstMessageAt.IsZero() {
		return 1
	}
	if n.MessageCount == 0 && sameDay(n.MessageSentAt, n.FirstMessageAt) {
		return 1
	}
	if n.MessageCount > 0 {
		return n.MessageCount
	}
	days := DaysElapsed(n.FirstMessageAt, n.MessageSentAt)
	return int(math.Ceil(float64(days)/2)) + 1
}

// ShowsFirstMessage reports whether the lineage anchor differs from this
// notice's own send date and is worth displaying separately.
func ShowsFirstMessage(n *model.Nota) bool {
	return !n.FirstMessageAt.IsZero() && !n.FirstMessageAt.Equal(n.MessageSentAt)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
