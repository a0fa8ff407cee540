package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newNota(company, invoice string, sentAt time.Time) *model.Nota {
	return &model.Nota{
		CompanyName:    company,
		InvoiceNumber:  invoice,
		IssuedAt:       sentAt,
		MessageSentAt:  sentAt,
		FirstMessageAt: sentAt,
		MessageCount:   1,
		ContactName:    "Ana",
		ContactPhone:   "(54) 99999-0000",
		Status:         model.NotaStatusPending,
	}
}

func TestNotaRepository_Insert(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		created, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NotZero(t, created.CreatedAt)
		assert.Equal(t, "Acme", created.CompanyName)
		assert.True(t, created.FirstMessageAt.Equal(t0))
		assert.Equal(t, 1, created.MessageCount)
	})

	t.Run("invalid phone is a constraint violation", func(t *testing.T) {
		n := newNota("Acme", "NF-002", t0)
		n.ContactPhone = "call me"

		_, err := repo.Insert(ctx, n)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrConstraint)
	})

	t.Run("missing anchor stays absent", func(t *testing.T) {
		n := newNota("Acme", "NF-003", t0)
		n.FirstMessageAt = time.Time{}

		created, err := repo.Insert(ctx, n)
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.FirstMessageAt.IsZero())
	})
}

func TestNotaRepository_Get(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "NF-001", got.InvoiceNumber)

	_, err = repo.Get(ctx, "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = repo.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestNotaRepository_ListOpenLineage(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	first, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = repo.Insert(ctx, newNota("Acme", "NF-001", t0.Add(48*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newNota("Acme", "NF-999", t0))
	require.NoError(t, err)
	done, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)
	collected := true
	_, err = repo.UpdateFields(ctx, done.ID, model.NotaFields{Collected: &collected, CollectedAt: &t0})
	require.NoError(t, err)

	open, err := repo.ListOpenLineage(ctx, "Acme", "NF-001")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, first.ID, open[0].ID)

	none, err := repo.ListOpenLineage(ctx, "Beta", "NF-001")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotaRepository_CloseLineage(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()
	at := t0.Add(6 * 24 * time.Hour)

	first, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0.Add(48*time.Hour)))
	require.NoError(t, err)
	other, err := repo.Insert(ctx, newNota("Acme", "NF-002", t0))
	require.NoError(t, err)

	var closed int
	err = repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		closed, err = repo.CloseLineage(ctx, "Acme", "NF-001", at)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	for _, id := range []string{first.ID, second.ID} {
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Collected, id)
		require.NotNil(t, got.CollectedAt, id)
		assert.True(t, got.CollectedAt.Equal(at), id)
	}

	got, err := repo.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, got.Collected)

	open, err := repo.ListOpenLineage(ctx, "Acme", "NF-001")
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err = repo.CloseLineage(ctx, "Acme", "NF-001", at)
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestNotaRepository_UpdateFields_NoteIsIdempotent(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	n := newNota("Acme", "NF-001", t0.Add(72*time.Hour))
	n.FirstMessageAt = t0
	n.MessageCount = 3
	n.Status = model.NotaStatusAlertYellow
	created, err := repo.Insert(ctx, n)
	require.NoError(t, err)

	note := "x"
	for i := 0; i < 2; i++ {
		_, err := repo.UpdateFields(ctx, created.ID, model.NotaFields{Note: &note})
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Note)
	assert.Equal(t, 3, got.MessageCount)
	assert.True(t, got.FirstMessageAt.Equal(t0))
	assert.Equal(t, model.NotaStatusAlertYellow, got.Status)
}

func TestNotaRepository_UpdateFields(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)

	t.Run("note only", func(t *testing.T) {
		note := "client will send a carrier"
		got, err := repo.UpdateFields(ctx, created.ID, model.NotaFields{Note: &note})
		require.NoError(t, err)
		assert.Equal(t, note, got.Note)
		assert.False(t, got.Collected)
		assert.Equal(t, model.NotaStatusPending, got.Status)
	})

	t.Run("collect and uncollect", func(t *testing.T) {
		yes, no := true, false
		at := t0.Add(24 * time.Hour)

		got, err := repo.UpdateFields(ctx, created.ID, model.NotaFields{Collected: &yes, CollectedAt: &at})
		require.NoError(t, err)
		assert.True(t, got.Collected)
		require.NotNil(t, got.CollectedAt)
		assert.True(t, got.CollectedAt.Equal(at))

		got, err = repo.UpdateFields(ctx, created.ID, model.NotaFields{Collected: &no})
		require.NoError(t, err)
		assert.False(t, got.Collected)
		assert.Nil(t, got.CollectedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		note := "x"
		_, err := repo.UpdateFields(ctx, "00000000-0000-0000-0000-000000000001", model.NotaFields{Note: &note})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestNotaRepository_Delete(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, newNota("Acme", "NF-001", t0))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), model.ErrNotFound)
}

func TestNotaRepository_RunStatusRefresh(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()
	now := t0.Add(10 * 24 * time.Hour)

	fresh, err := repo.Insert(ctx, newNota("Acme", "1", now.Add(-24*time.Hour)))
	require.NoError(t, err)
	aging, err := repo.Insert(ctx, newNota("Acme", "2", now.Add(-4*24*time.Hour)))
	require.NoError(t, err)
	late, err := repo.Insert(ctx, newNota("Acme", "3", now.Add(-9*24*time.Hour)))
	require.NoError(t, err)
	done, err := repo.Insert(ctx, newNota("Acme", "4", now.Add(-9*24*time.Hour)))
	require.NoError(t, err)
	yes := true
	_, err = repo.UpdateFields(ctx, done.ID, model.NotaFields{Collected: &yes, CollectedAt: &now})
	require.NoError(t, err)

	changed, err := repo.RunStatusRefresh(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	expect := map[string]model.NotaStatus{
		fresh.ID: model.NotaStatusAlertGreen,
		aging.ID: model.NotaStatusAlertYellow,
		late.ID:  model.NotaStatusOverdue,
		done.ID:  model.NotaStatusPending,
	}
	for id, status := range expect {
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status, id)
	}

	changed, err = repo.RunStatusRefresh(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestNotaRepository_ListAll(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewNotaRepository(db)
	ctx := context.Background()

	for _, inv := range []string{"1", "2", "3"} {
		_, err := repo.Insert(ctx, newNota("Acme", inv, t0))
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
