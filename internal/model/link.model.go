package model

import "time"

type LinkKind string

const (
	LinkKindReminder   LinkKind = "reminder"
	LinkKindIntake     LinkKind = "intake"
	LinkKindCollection LinkKind = "collection"
	LinkKindQuote      LinkKind = "quote"
)

// LinkEvent asks a workstation to open a composed messaging link.
type LinkEvent struct {
	NotaID    string    `json:"nota_id,omitempty"`
	Kind      LinkKind  `json:"kind"`
	Phone     string    `json:"phone"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
