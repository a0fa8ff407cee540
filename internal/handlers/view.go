package handlers

import (
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/tracking"
)

// View selects which actions a rendered record offers.
type View string

const (
	// ViewDashboard is the actionable pickup dashboard.
	ViewDashboard View = "dashboard"
	// ViewControl is the read-only control list.
	ViewControl View = "control"
)

func parseView(s string) View {
	if View(s) == ViewControl {
		return ViewControl
	}
	return ViewDashboard
}

// Capabilities lists the operations a client may offer for one record.
type Capabilities struct {
	CanSendReminder  bool `json:"can_send_reminder"`
	CanMarkCollected bool `json:"can_mark_collected"`
	CanEditNote      bool `json:"can_edit_note"`
}

func capabilitiesFor(v View, n *model.Nota) Capabilities {
	open := !n.Collected
	return Capabilities{
		CanSendReminder:  v == ViewDashboard && open,
		CanMarkCollected: v == ViewDashboard && open,
		CanEditNote:      true,
	}
}

type notaView struct {
	*model.Nota
	Badge             tracking.Badge `json:"badge"`
	MessageCountLabel string         `json:"message_count_label"`
	ShowsFirstMessage bool           `json:"shows_first_message"`
	Capabilities      Capabilities   `json:"capabilities"`
}

func newNotaView(n *model.Nota, v View, now time.Time) notaView {
	return notaView{
		Nota:              n,
		Badge:             tracking.Evaluate(n, now),
		MessageCountLabel: tracking.MessageCountLabel(n),
		ShowsFirstMessage: tracking.ShowsFirstMessage(n),
		Capabilities:      capabilitiesFor(v, n),
	}
}

func newNotaViews(notas []*model.Nota, v View, now time.Time) []notaView {
	out := make([]notaView, 0, len(notas))
	for _, n := range notas {
		out = append(out, newNotaView(n, v, now))
	}
	return out
}
