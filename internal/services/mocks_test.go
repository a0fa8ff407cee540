package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockNotaRepository struct {
	mock.Mock
}

func (m *MockNotaRepository) ListAll(ctx context.Context) ([]*model.Nota, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Nota), args.Error(1)
}

func (m *MockNotaRepository) Get(ctx context.Context, id string) (*model.Nota, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Nota), args.Error(1)
}

func (m *MockNotaRepository) ListOpenLineage(ctx context.Context, companyName, invoiceNumber string) ([]*model.Nota, error) {
	args := m.Called(ctx, companyName, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Nota), args.Error(1)
}

func (m *MockNotaRepository) CloseLineage(ctx context.Context, companyName, invoiceNumber string, at time.Time) (int, error) {
	args := m.Called(ctx, companyName, invoiceNumber, at)
	return args.Int(0), args.Error(1)
}

func (m *MockNotaRepository) Insert(ctx context.Context, n *model.Nota) (*model.Nota, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Nota), args.Error(1)
}

func (m *MockNotaRepository) UpdateFields(ctx context.Context, id string, fields model.NotaFields) (*model.Nota, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Nota), args.Error(1)
}

func (m *MockNotaRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotaRepository) RunStatusRefresh(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockNotaRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockLinkOpener struct {
	mock.Mock
}

func (m *MockLinkOpener) Open(ctx context.Context, event model.LinkEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memoryRepository keeps notices in memory so lineage chains can be driven
// end to end without a database.
type memoryRepository struct {
	mu    sync.Mutex
	seq   int
	clock func() time.Time
	notas []*model.Nota
}

func newMemoryRepository(clock func() time.Time) *memoryRepository {
	return &memoryRepository{clock: clock}
}

func (r *memoryRepository) ListAll(context.Context) ([]*model.Nota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Nota, 0, len(r.notas))
	for _, n := range r.notas {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (*model.Nota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notas {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memoryRepository) ListOpenLineage(_ context.Context, company, invoice string) ([]*model.Nota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Nota
	for _, n := range r.notas {
		if n.CompanyName == company && n.InvoiceNumber == invoice && !n.Collected {
			c := *n
			out = append(out, &c)
		}
	}
	// storage order is not guaranteed
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryRepository) CloseLineage(_ context.Context, company, invoice string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	closed := 0
	for _, n := range r.notas {
		if n.CompanyName == company && n.InvoiceNumber == invoice && !n.Collected {
			n.Collected = true
			stamp := at
			n.CollectedAt = &stamp
			closed++
		}
	}
	return closed, nil
}

func (r *memoryRepository) Insert(_ context.Context, n *model.Nota) (*model.Nota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := *n
	c.ID = "nota-" + strconv.Itoa(100+r.seq)
	c.CreatedAt = r.clock().Add(time.Duration(r.seq) * time.Millisecond)
	c.UpdatedAt = c.CreatedAt
	r.notas = append(r.notas, &c)
	out := c
	return &out, nil
}

func (r *memoryRepository) UpdateFields(_ context.Context, id string, f model.NotaFields) (*model.Nota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notas {
		if n.ID != id {
			continue
		}
		if f.Collected != nil {
			n.Collected = *f.Collected
			if !n.Collected {
				n.CollectedAt = nil
			}
		}
		if f.CollectedAt != nil && n.Collected {
			at := *f.CollectedAt
			n.CollectedAt = &at
		}
		if f.Note != nil {
			n.Note = *f.Note
		}
		if f.Status != nil {
			n.Status = *f.Status
		}
		c := *n
		return &c, nil
	}
	return nil, model.ErrNotFound
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notas {
		if n.ID == id {
			r.notas = append(r.notas[:i], r.notas[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memoryRepository) RunStatusRefresh(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (r *memoryRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testComposer() *composer.Composer {
	return composer.New(composer.Business{
		Name:    "Gplásticos",
		Sender:  "Lenoir",
		CNPJ:    "16.914.559/0001-67",
		Hours:   "Segunda a Sexta, das 08h às 18h",
		Address: "R. Demétrio Ângelo Tiburi, 1716",
	}, "https://wa.me", "55")
}
