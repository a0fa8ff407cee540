package services

import (
	"context"

	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/prom"
)

// FormsService backs the three message forms. Only the pickup form stores
// anything; the carrier forms just compose and open a link.
type FormsService struct {
	notas    *NotaService
	composer *composer.Composer
}

func NewFormsService(notas *NotaService, c *composer.Composer) *FormsService {
	return &FormsService{
		notas:    notas,
		composer: c,
	}
}

// Pickup registers the notice and sends the first message for it.
func (s *FormsService) Pickup(ctx context.Context, form model.PickupForm) (*model.Nota, composer.Message, error) {
	if err := model.ValidateForm(form); err != nil {
		return nil, composer.Message{}, s.notas.fail("pickup", err)
	}

	now := s.notas.Now()
	created, err := s.notas.Create(ctx, &model.Nota{
		CompanyName:   form.CompanyName,
		InvoiceNumber: form.InvoiceNumber,
		IssuedAt:      now,
		MessageSentAt: now,
		ContactName:   form.ContactName,
		ContactPhone:  form.WhatsApp,
		Status:        model.NotaStatusPending,
	})
	if err != nil {
		return nil, composer.Message{}, err
	}

	msg := s.composer.Intake(form)
	s.notas.open(ctx, model.LinkEvent{
		NotaID:    created.ID,
		Kind:      model.LinkKindIntake,
		Phone:     msg.Phone,
		URL:       msg.URL,
		CreatedAt: now,
	})
	prom.IncNotaOperation("pickup")
	return created, msg, nil
}

func (s *FormsService) Collection(ctx context.Context, form model.CollectionForm) (composer.Message, error) {
	if err := model.ValidateForm(form); err != nil {
		return composer.Message{}, s.notas.fail("collection", err)
	}
	msg := s.composer.Collection(form)
	s.dispatch(ctx, model.LinkKindCollection, msg)
	return msg, nil
}

func (s *FormsService) Quote(ctx context.Context, form model.QuoteForm) (composer.Message, error) {
	if err := model.ValidateForm(form); err != nil {
		return composer.Message{}, s.notas.fail("quote", err)
	}
	msg := s.composer.Quote(form)
	s.dispatch(ctx, model.LinkKindQuote, msg)
	return msg, nil
}

func (s *FormsService) dispatch(ctx context.Context, kind model.LinkKind, msg composer.Message) {
	s.notas.open(ctx, model.LinkEvent{
		Kind:      kind,
		Phone:     msg.Phone,
		URL:       msg.URL,
		CreatedAt: s.notas.Now(),
	})
	prom.IncNotaOperation(string(kind))
	logger.Info("carrier request composed", "kind", kind, "phone", msg.Phone)
}
