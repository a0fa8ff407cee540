package repository

import (
	"regexp"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// phonePattern mirrors the notas_fiscais_contact_phone_check constraint.
var phonePattern = regexp.MustCompile(`^[0-9()+\- ]+$`)

type NotaEntity struct {
	pg.Model
	CompanyName    string     `gorm:"column:company_name;not null;index:idx_notas_fiscais_lineage"`
	InvoiceNumber  string     `gorm:"column:invoice_number;not null;index:idx_notas_fiscais_lineage"`
	IssuedAt       time.Time  `gorm:"column:issued_at;not null"`
	MessageSentAt  time.Time  `gorm:"column:message_sent_at;not null;index"`
	FirstMessageAt *time.Time `gorm:"column:first_message_at"`
	MessageCount   int        `gorm:"column:message_count;not null;default:1"`
	ContactName    string     `gorm:"column:contact_name;not null"`
	ContactPhone   string     `gorm:"column:contact_phone;not null"`
	Status         string     `gorm:"column:status;not null;default:pending"`
	Collected      bool       `gorm:"column:collected;not null;default:false"`
	CollectedAt    *time.Time `gorm:"column:collected_at"`
	Note           string     `gorm:"column:note;not null;default:''"`
}

func (NotaEntity) TableName() string {
	return "notas_fiscais"
}

// BeforeCreate assigns the id and enforces the phone check on engines that do
// not carry the table constraint.
func (e *NotaEntity) BeforeCreate(tx *gorm.DB) error {
	if err := e.Model.BeforeCreate(tx); err != nil {
		return err
	}
	if !phonePattern.MatchString(e.ContactPhone) {
		return errors.Wrapf(model.ErrConstraint, "invalid contact phone %q", e.ContactPhone)
	}
	return nil
}

func toNotaEntity(n *model.Nota) *NotaEntity {
	if n == nil {
		return nil
	}
	e := &NotaEntity{
		CompanyName:   n.CompanyName,
		InvoiceNumber: n.InvoiceNumber,
		IssuedAt:      n.IssuedAt,
		MessageSentAt: n.MessageSentAt,
		MessageCount:  n.MessageCount,
		ContactName:   n.ContactName,
		ContactPhone:  n.ContactPhone,
		Status:        string(n.Status),
		Collected:     n.Collected,
		CollectedAt:   n.CollectedAt,
		Note:          n.Note,
	}
	if id, err := uuid.Parse(n.ID); err == nil {
		e.ID = id
	}
	if !n.FirstMessageAt.IsZero() {
		first := n.FirstMessageAt
		e.FirstMessageAt = &first
	}
	e.CreatedAt = n.CreatedAt
	e.UpdatedAt = n.UpdatedAt
	return e
}

func toNotaModel(e *NotaEntity) *model.Nota {
	if e == nil {
		return nil
	}
	n := &model.Nota{
		ID:            e.ID.String(),
		CompanyName:   e.CompanyName,
		InvoiceNumber: e.InvoiceNumber,
		IssuedAt:      e.IssuedAt,
		MessageSentAt: e.MessageSentAt,
		MessageCount:  e.MessageCount,
		ContactName:   e.ContactName,
		ContactPhone:  e.ContactPhone,
		Status:        model.NotaStatus(e.Status),
		Collected:     e.Collected,
		CollectedAt:   e.CollectedAt,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.FirstMessageAt != nil {
		n.FirstMessageAt = *e.FirstMessageAt
	}
	return n
}

func toNotaModels(entities []*NotaEntity) []*model.Nota {
	if entities == nil {
		return nil
	}
	models := make([]*model.Nota, len(entities))
	for i, e := range entities {
		models[i] = toNotaModel(e)
	}
	return models
}
