package services

import (
	"context"
	"strings"
	"testing"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFormsService_Pickup(t *testing.T) {
	clock := &testClock{now: day0}
	repo := newMemoryRepository(clock.Now)
	opener := new(MockLinkOpener)
	ctx := context.Background()
	forms := NewFormsService(newTestService(repo, opener, clock), testComposer())

	opener.On("Open", ctx, mock.MatchedBy(func(e model.LinkEvent) bool {
		return e.Kind == model.LinkKindIntake && e.NotaID == "nota-101" &&
			strings.HasPrefix(e.URL, "https://wa.me/5554999990000?text=")
	})).Return(nil)

	created, msg, err := forms.Pickup(ctx, model.PickupForm{
		WhatsApp:      "54 99999-0000",
		ContactName:   "Ana",
		CompanyName:   "Acme",
		InvoiceNumber: "123",
	})
	require.NoError(t, err)
	assert.Equal(t, "nota-101", created.ID)
	assert.Equal(t, 1, created.MessageCount)
	assert.True(t, created.FirstMessageAt.Equal(day0))
	assert.Equal(t, "54 99999-0000", created.ContactPhone)
	assert.Equal(t, model.NotaStatusPending, created.Status)
	assert.Contains(t, msg.Text, "- Nota Fiscal Nº 123")

	opener.AssertExpectations(t)
}

func TestFormsService_Pickup_RepeatJoinsLineage(t *testing.T) {
	clock := &testClock{now: day0}
	repo := newMemoryRepository(clock.Now)
	ctx := context.Background()
	forms := NewFormsService(newTestService(repo, nil, clock), testComposer())

	form := model.PickupForm{WhatsApp: "5499", ContactName: "Ana", CompanyName: "Acme", InvoiceNumber: "123"}
	_, _, err := forms.Pickup(ctx, form)
	require.NoError(t, err)

	clock.now = day(2)
	second, _, err := forms.Pickup(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 2, second.MessageCount)
	assert.True(t, second.FirstMessageAt.Equal(day0))
}

func TestFormsService_Pickup_MissingFields(t *testing.T) {
	repo := new(MockNotaRepository)
	opener := new(MockLinkOpener)
	forms := NewFormsService(newTestService(repo, opener, &testClock{now: day0}), testComposer())

	_, _, err := forms.Pickup(context.Background(), model.PickupForm{WhatsApp: "5499", ContactName: "Ana"})
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "company_name")
	assert.Contains(t, err.Error(), "invoice_number")

	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestFormsService_Collection(t *testing.T) {
	repo := new(MockNotaRepository)
	opener := new(MockLinkOpener)
	ctx := context.Background()
	forms := NewFormsService(newTestService(repo, opener, &testClock{now: day0}), testComposer())

	opener.On("Open", ctx, mock.MatchedBy(func(e model.LinkEvent) bool {
		return e.Kind == model.LinkKindCollection && e.NotaID == "" && e.Phone == "551140001000"
	})).Return(nil)

	msg, err := forms.Collection(ctx, model.CollectionForm{
		WhatsApp: "11 4000-1000", Name: "Transportes Sul", City: "Porto Alegre",
		Volume: "3", Weight: "120", CubicMeters: "1,5",
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "agendar uma coleta")

	opener.AssertExpectations(t)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestFormsService_Quote(t *testing.T) {
	repo := new(MockNotaRepository)
	opener := new(MockLinkOpener)
	ctx := context.Background()
	forms := NewFormsService(newTestService(repo, opener, &testClock{now: day0}), testComposer())

	opener.On("Open", ctx, mock.MatchedBy(func(e model.LinkEvent) bool {
		return e.Kind == model.LinkKindQuote
	})).Return(nil)

	_, err := forms.Quote(ctx, model.QuoteForm{
		WhatsApp: "11 4000-1000", Name: "Transportes Sul", City: "Curitiba",
		Volume: "2", Weight: "80", CubicMeters: "0,8",
	})
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "cargo_value")
	opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)

	msg, err := forms.Quote(ctx, model.QuoteForm{
		WhatsApp: "11 4000-1000", Name: "Transportes Sul", City: "Curitiba",
		Volume: "2", Weight: "80", CubicMeters: "0,8", CargoValue: "1.500,00",
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "R$ 1.500,00")
	opener.AssertExpectations(t)
}
