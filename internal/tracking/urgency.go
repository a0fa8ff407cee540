// Package tracking holds the pure pickup-tracking rules: how old a lineage
// is, how urgent that makes it, and how a collection of notices is narrowed
// for display. Nothing here performs I/O; callers pass the clock in.
package tracking

import (
	"fmt"
	"math"
	"time"

	"github.com/gesthub/gesthub/internal/model"
)

const (
	// PickupDeadlineDays is the number of days a client has to collect.
	PickupDeadlineDays = 7
	warningFromDays    = 3
	criticalFromDays   = 6

	msPerDay = 24 * 60 * 60 * 1000
)

type Urgency string

const (
	UrgencyNone     Urgency = ""
	UrgencyOK       Urgency = "ok"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

const (
	StyleCritical  = "bg-red-50 text-red-600"
	StyleWarning   = "bg-yellow-50 text-yellow-600"
	StyleOK        = "bg-green-50 text-green-600"
	StyleCollected = "bg-eink-lightGray text-eink-gray"
)

// DateLayout is the dd/mm/yyyy format staff read dates in.
const DateLayout = "02/01/2006"

// DaysElapsed rounds the distance between from and now up to whole days.
// Direction is ignored, so a clock skewed into the past still ages.
func DaysElapsed(from, now time.Time) int {
	diff := now.UnixMilli() - from.UnixMilli()
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / msPerDay))
}

func UrgencyBucket(daysElapsed int) Urgency {
	switch {
	case daysElapsed >= criticalFromDays:
		return UrgencyCritical
	case daysElapsed >= warningFromDays:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

// DaysRemaining is how many days are left before the pickup deadline.
func DaysRemaining(daysElapsed int) int {
	return PickupDeadlineDays - daysElapsed
}

// Badge is the urgency block shown on a notice.
type Badge struct {
	Urgency     Urgency `json:"urgency"`
	Label       string  `json:"label"`
	StyleClass  string  `json:"style_class"`
	DaysElapsed int     `json:"days_elapsed,omitempty"`
	Remaining   int     `json:"days_remaining,omitempty"`
	Collected   bool    `json:"collected,omitempty"`
}

func (b Badge) Empty() bool {
	return b.Label == "" && b.StyleClass == ""
}

// StatusBadge derives the badge from the stored status and the lineage
// anchor. A pending record with an anchor always ages from the anchor; any
// other status maps straight to its palette.
func StatusBadge(status model.NotaStatus, firstMessageAt time.Time, now time.Time) Badge {
	if status == model.NotaStatusPending && !firstMessageAt.IsZero() {
		days := DaysElapsed(firstMessageAt, now)
		remaining := DaysRemaining(days)
		b := Badge{Urgency: UrgencyBucket(days), DaysElapsed: days, Remaining: remaining}
		switch b.Urgency {
		case UrgencyCritical:
			b.Label = fmt.Sprintf("Attention: 1 day or less to expire (%d days elapsed)", days)
		case UrgencyWarning:
			b.Label = fmt.Sprintf("Attention: %d days to expire (%d days elapsed)", remaining, days)
		default:
			b.Label = fmt.Sprintf("In progress: %d days remaining (%d days elapsed)", remaining, days)
		}
		b.StyleClass = urgencyStyle(b.Urgency)
		return b
	}

	var b Badge
	switch status {
	case model.NotaStatusOverdue:
		b = Badge{Urgency: UrgencyCritical, Label: "Pickup deadline expired"}
	case model.NotaStatusAlertRed:
		b = Badge{Urgency: UrgencyCritical, Label: "Attention: 2 days or less to expire"}
	case model.NotaStatusAlertYellow:
		b = Badge{Urgency: UrgencyWarning, Label: "Attention: 3-4 days to expire"}
	case model.NotaStatusAlertGreen:
		b = Badge{Urgency: UrgencyOK, Label: "In progress: 5-7 days remaining"}
	default:
		return Badge{}
	}
	b.StyleClass = urgencyStyle(b.Urgency)
	return b
}

func urgencyStyle(u Urgency) string {
	switch u {
	case UrgencyCritical:
		return StyleCritical
	case UrgencyWarning:
		return StyleWarning
	case UrgencyOK:
		return StyleOK
	}
	return ""
}

// Evaluate is the badge for a whole record, collected state included.
func Evaluate(n *model.Nota, now time.Time) Badge {
	if n.Collected {
		at := now
		switch {
		case n.CollectedAt != nil && !n.CollectedAt.IsZero():
			at = *n.CollectedAt
		case !n.UpdatedAt.IsZero():
			at = n.UpdatedAt
		}
		return Badge{
			Label:      "Collected on " + at.Format(DateLayout),
			StyleClass: StyleCollected,
			Collected:  true,
		}
	}
	return StatusBadge(n.Status, n.FirstMessageAt, now)
}

func DeriveStatusLabel(n *model.Nota, now time.Time) string {
	return Evaluate(n, now).Label
}

func DeriveStatusStyleClass(n *model.Nota, now time.Time) string {
	return Evaluate(n, now).StyleClass
}

// CoarseStatus is the batch rule that refreshes the stored status of an open
// record from its anchor.
func CoarseStatus(anchor, now time.Time) model.NotaStatus {
	days := DaysElapsed(anchor, now)
	switch {
	case days >= PickupDeadlineDays:
		return model.NotaStatusOverdue
	case days >= 5:
		return model.NotaStatusAlertRed
	case days >= warningFromDays:
		return model.NotaStatusAlertYellow
	default:
		return model.NotaStatusAlertGreen
	}
}
