package model

import (
	"strings"
	"time"
)

// NotaStatus is the coarse lifecycle bucket stored with each record. It is
// refreshed in batch; while a record is pending the urgency shown to staff is
// computed from FirstMessageAt instead.
type NotaStatus string

const (
	NotaStatusPending     NotaStatus = "pending"
	NotaStatusOverdue     NotaStatus = "overdue"
	NotaStatusAlertGreen  NotaStatus = "alert-green"
	NotaStatusAlertYellow NotaStatus = "alert-yellow"
	NotaStatusAlertRed    NotaStatus = "alert-red"
)

var NotaStatuses = []NotaStatus{
	NotaStatusPending,
	NotaStatusOverdue,
	NotaStatusAlertGreen,
	NotaStatusAlertYellow,
	NotaStatusAlertRed,
}

func (s NotaStatus) Valid() bool {
	for _, v := range NotaStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Nota is one notice that an invoice is ready for pickup. Every reminder is a
// new Nota sharing the lineage key of the first one.
type Nota struct {
	ID             string     `json:"id,omitempty"`
	CompanyName    string     `json:"company_name"`
	InvoiceNumber  string     `json:"invoice_number"`
	IssuedAt       time.Time  `json:"issued_at"`
	MessageSentAt  time.Time  `json:"message_sent_at"`
	FirstMessageAt time.Time  `json:"first_message_at"`
	MessageCount   int        `json:"message_count"`
	ContactName    string     `json:"contact_name"`
	ContactPhone   string     `json:"contact_phone"`
	Status         NotaStatus `json:"status"`
	Collected      bool       `json:"collected"`
	CollectedAt    *time.Time `json:"collected_at,omitempty"`
	Note           string     `json:"note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LineageKey identifies the chain of notices for one invoice.
func (n *Nota) LineageKey() string {
	return LineageKey(n.CompanyName, n.InvoiceNumber)
}

func LineageKey(companyName, invoiceNumber string) string {
	return companyName + "|" + invoiceNumber
}

// Anchor is the date urgency ages from. Records persisted before the anchor
// existed fall back to their own send date.
func (n *Nota) Anchor() time.Time {
	if !n.FirstMessageAt.IsZero() {
		return n.FirstMessageAt
	}
	return n.MessageSentAt
}

func (n *Nota) Validate() error {
	var missing []string
	if strings.TrimSpace(n.CompanyName) == "" {
		missing = append(missing, "company_name")
	}
	if strings.TrimSpace(n.InvoiceNumber) == "" {
		missing = append(missing, "invoice_number")
	}
	if strings.TrimSpace(n.ContactName) == "" {
		missing = append(missing, "contact_name")
	}
	if strings.TrimSpace(n.ContactPhone) == "" {
		missing = append(missing, "contact_phone")
	}
	if len(missing) > 0 {
		return Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if n.MessageCount < 0 {
		return Validationf("message_count must not be negative")
	}
	if n.Status != "" && !n.Status.Valid() {
		return Validationf("unknown status %q", n.Status)
	}
	return nil
}

// NotaFields is a partial update. Nil pointers leave the column untouched.
// Setting Collected to false always clears collected_at.
type NotaFields struct {
	Collected   *bool
	CollectedAt *time.Time
	Note        *string
	Status      *NotaStatus
}

func (f NotaFields) Empty() bool {
	return f.Collected == nil && f.CollectedAt == nil && f.Note == nil && f.Status == nil
}
