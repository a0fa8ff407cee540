package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/tracking"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/prom"
	"github.com/pkg/errors"
)

type NotaRepository interface {
	ListAll(ctx context.Context) ([]*model.Nota, error)
	Get(ctx context.Context, id string) (*model.Nota, error)
	ListOpenLineage(ctx context.Context, companyName, invoiceNumber string) ([]*model.Nota, error)
	CloseLineage(ctx context.Context, companyName, invoiceNumber string, at time.Time) (int, error)
	Insert(ctx context.Context, n *model.Nota) (*model.Nota, error)
	UpdateFields(ctx context.Context, id string, fields model.NotaFields) (*model.Nota, error)
	Delete(ctx context.Context, id string) error
	RunStatusRefresh(ctx context.Context, now time.Time) (int, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LinkOpener hands a composed link to whatever opens it for the user.
type LinkOpener interface {
	Open(ctx context.Context, event model.LinkEvent) error
}

type LineageLocker interface {
	Lock(ctx context.Context, lineageKey string) (func(), error)
}

type NotaService struct {
	repo       NotaRepository
	composer   *composer.Composer
	opener     LinkOpener
	locker     LineageLocker
	windowDays int
	now        func() time.Time
}

func NewNotaService(repo NotaRepository, c *composer.Composer, opener LinkOpener, locker LineageLocker, windowDays int) *NotaService {
	if windowDays <= 0 {
		windowDays = tracking.CollectedWindowDays
	}
	return &NotaService{
		repo:       repo,
		composer:   c,
		opener:     opener,
		locker:     locker,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *NotaService) WithClock(now func() time.Time) *NotaService {
	s.now = now
	return s
}

func (s *NotaService) Now() time.Time {
	return s.now()
}

// List returns the filtered, deduplicated and sorted view for one tab.
func (s *NotaService) List(ctx context.Context, q model.NotaQuery) ([]*model.Nota, error) {
	notas, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.fail("list", err)
	}
	if q.Now.IsZero() {
		q.Now = s.now()
	}
	if q.WindowDays == 0 {
		q.WindowDays = s.windowDays
	}
	return tracking.FilterAndSort(notas, q), nil
}

func (s *NotaService) Get(ctx context.Context, id string) (*model.Nota, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail("get", err)
	}
	return n, nil
}

// Create stores a new notice. Fields the caller left empty are filled from
// the open lineage: the anchor is copied from its oldest record and the
// count becomes the lineage size plus one.
func (s *NotaService) Create(ctx context.Context, in *model.Nota) (*model.Nota, error) {
	created, err := s.create(ctx, in)
	if err != nil {
		return nil, s.fail("create", err)
	}
	prom.IncNotaOperation("create")
	logger.Info("nota created", "id", created.ID, "lineage", created.LineageKey(), "count", created.MessageCount)
	return created, nil
}

func (s *NotaService) create(ctx context.Context, in *model.Nota) (*model.Nota, error) {
	if in == nil {
		return nil, model.Validationf("nota is required")
	}
	n := *in
	n.ID = ""
	n.CompanyName = strings.TrimSpace(n.CompanyName)
	n.InvoiceNumber = strings.TrimSpace(n.InvoiceNumber)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if n.MessageSentAt.IsZero() {
		n.MessageSentAt = now
	}
	if n.IssuedAt.IsZero() {
		n.IssuedAt = now
	}
	if n.Status == "" {
		n.Status = model.NotaStatusPending
	}
	if !n.Collected {
		n.CollectedAt = nil
	} else if n.CollectedAt == nil || n.CollectedAt.IsZero() {
		n.CollectedAt = &now
	}

	unlock, err := s.locker.Lock(ctx, n.LineageKey())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created *model.Nota
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if n.FirstMessageAt.IsZero() || n.MessageCount == 0 {
			open, err := s.repo.ListOpenLineage(ctx, n.CompanyName, n.InvoiceNumber)
			if err != nil {
				return err
			}
			fillFromLineage(&n, open)
		}

		var err error
		created, err = s.repo.Insert(ctx, &n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func fillFromLineage(n *model.Nota, open []*model.Nota) {
	if n.FirstMessageAt.IsZero() {
		if len(open) == 0 {
			n.FirstMessageAt = n.MessageSentAt
		} else {
			n.FirstMessageAt = oldestByCreatedAt(open).Anchor()
		}
	}
	if n.MessageCount == 0 {
		n.MessageCount = len(open) + 1
	}
}

func oldestByCreatedAt(notas []*model.Nota) *model.Nota {
	sorted := make([]*model.Nota, len(notas))
	copy(sorted, notas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted[0]
}

// SendReminder records a follow-up for n as a new notice in the same lineage
// and, only once that is stored, hands the reminder link to the opener.
func (s *NotaService) SendReminder(ctx context.Context, n *model.Nota) (*model.Nota, composer.Message, error) {
	if n == nil {
		return nil, composer.Message{}, s.fail("send_reminder", model.Validationf("nota is required"))
	}

	next := *n
	next.ID = ""
	next.MessageSentAt = s.now()
	next.FirstMessageAt = n.Anchor()
	next.MessageCount = max(n.MessageCount, 1) + 1
	next.Collected, next.CollectedAt = false, nil
	next.CreatedAt, next.UpdatedAt = time.Time{}, time.Time{}

	created, err := s.create(ctx, &next)
	if err != nil {
		return nil, composer.Message{}, s.fail("send_reminder", err)
	}

	msg := s.composer.Reminder(created)
	s.open(ctx, model.LinkEvent{
		NotaID:    created.ID,
		Kind:      model.LinkKindReminder,
		Phone:     msg.Phone,
		URL:       msg.URL,
		CreatedAt: created.MessageSentAt,
	})

	prom.IncNotaOperation("send_reminder")
	logger.Info("reminder sent", "id", created.ID, "previous", n.ID, "count", created.MessageCount)
	return created, msg, nil
}

// SendReminderByID loads the notice first.
func (s *NotaService) SendReminderByID(ctx context.Context, id string) (*model.Nota, composer.Message, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, composer.Message{}, s.fail("send_reminder", err)
	}
	if n.Collected {
		return nil, composer.Message{}, s.fail("send_reminder", model.Validationf("nota %s is already collected", id))
	}
	return s.SendReminder(ctx, n)
}

// Preview composes the reminder for id without storing or opening anything.
func (s *NotaService) Preview(ctx context.Context, id string) (*model.Nota, composer.Message, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, composer.Message{}, s.fail("preview", err)
	}
	return n, s.composer.Reminder(n), nil
}

// MarkCollected collects id and closes the rest of its lineage with it, so
// the next notice for the same invoice starts a fresh anchor and count.
func (s *NotaService) MarkCollected(ctx context.Context, id string) (*model.Nota, error) {
	collected := true
	at := s.now()

	var n *model.Nota
	closed := 0
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.repo.UpdateFields(ctx, id, model.NotaFields{Collected: &collected, CollectedAt: &at})
		if err != nil {
			return err
		}
		closed, err = s.repo.CloseLineage(ctx, n.CompanyName, n.InvoiceNumber, at)
		return err
	})
	if err != nil {
		return nil, s.fail("mark_collected", err)
	}
	prom.IncNotaOperation("mark_collected")
	logger.Info("nota collected", "id", id, "lineage", n.LineageKey(), "closed", closed)
	return n, nil
}

func (s *NotaService) UpdateNote(ctx context.Context, id, note string) (*model.Nota, error) {
	n, err := s.repo.UpdateFields(ctx, id, model.NotaFields{Note: &note})
	if err != nil {
		return nil, s.fail("update_note", err)
	}
	prom.IncNotaOperation("update_note")
	return n, nil
}

// RefreshStatus recomputes the stored coarse statuses and returns the fresh
// collection.
func (s *NotaService) RefreshStatus(ctx context.Context) ([]*model.Nota, error) {
	changed, err := s.repo.RunStatusRefresh(ctx, s.now())
	if err != nil {
		return nil, s.fail("refresh_status", err)
	}
	prom.IncNotaOperation("refresh_status")
	prom.AddStatusRefreshed(changed)
	logger.Info("statuses refreshed", "changed", changed)

	notas, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.fail("refresh_status", err)
	}
	return notas, nil
}

// Delete removes a notice for good. Administrative only.
func (s *NotaService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("delete", err)
	}
	prom.IncNotaOperation("delete")
	logger.Warn("nota deleted", "id", id)
	return nil
}

// open never fails the operation: the record is already stored and the
// caller still gets the link back.
func (s *NotaService) open(ctx context.Context, event model.LinkEvent) {
	if s.opener == nil {
		return
	}
	if err := s.opener.Open(ctx, event); err != nil {
		prom.IncLinkOpenFailure(string(event.Kind))
		logger.Error("failed to hand link to opener", "kind", event.Kind, "nota_id", event.NotaID, "error", err)
	}
}

// fail reports an operation error once and passes it on.
func (s *NotaService) fail(op string, err error) error {
	kind := model.Kind(err)
	prom.IncNotaFailure(op, kind)
	if kind == "validation" || kind == "not_found" {
		logger.Warn("nota operation rejected", "operation", op, "kind", kind, "error", err)
	} else {
		logger.Error("nota operation failed", "operation", op, "kind", kind, "error", err)
	}
	return errors.WithMessage(err, op)
}
