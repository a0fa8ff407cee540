package repository

import (
	"context"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/tracking"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type NotaRepository struct {
	*pg.DB
}

func NewNotaRepository(db *pg.DB) *NotaRepository {
	return &NotaRepository{
		db,
	}
}

// ListAll returns every stored notice. Filtering happens in memory.
func (r *NotaRepository) ListAll(ctx context.Context) ([]*model.Nota, error) {
	var entities []*NotaEntity
	if err := r.Read(ctx).Order("created_at ASC").Find(&entities).Error; err != nil {
		return nil, translateError(err, "list notas")
	}
	return toNotaModels(entities), nil
}

func (r *NotaRepository) Get(ctx context.Context, id string) (*model.Nota, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrapf(model.ErrNotFound, "nota %q", id)
	}

	var entity NotaEntity
	if err := r.Read(ctx).Where("id = ?", uid).First(&entity).Error; err != nil {
		return nil, translateError(err, "get nota")
	}
	return toNotaModel(&entity), nil
}

// ListOpenLineage returns the uncollected notices of one lineage, oldest first.
func (r *NotaRepository) ListOpenLineage(ctx context.Context, companyName, invoiceNumber string) ([]*model.Nota, error) {
	var entities []*NotaEntity
	err := r.Read(ctx).
		Where("company_name = ? AND invoice_number = ? AND collected = ?", companyName, invoiceNumber, false).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, translateError(err, "list open lineage")
	}
	return toNotaModels(entities), nil
}

// CloseLineage marks every uncollected notice of one lineage as collected at
// at and returns how many rows it closed.
func (r *NotaRepository) CloseLineage(ctx context.Context, companyName, invoiceNumber string, at time.Time) (int, error) {
	res := r.Write(ctx).Model(&NotaEntity{}).
		Where("company_name = ? AND invoice_number = ? AND collected = ?", companyName, invoiceNumber, false).
		Updates(map[string]any{"collected": true, "collected_at": at})
	if res.Error != nil {
		return 0, translateError(res.Error, "close lineage")
	}
	return int(res.RowsAffected), nil
}

func (r *NotaRepository) Insert(ctx context.Context, n *model.Nota) (*model.Nota, error) {
	entity := toNotaEntity(n)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translateError(err, "insert nota")
	}
	return toNotaModel(entity), nil
}

func (r *NotaRepository) UpdateFields(ctx context.Context, id string, fields model.NotaFields) (*model.Nota, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrapf(model.ErrNotFound, "nota %q", id)
	}
	if fields.Empty() {
		return r.Get(ctx, id)
	}

	updates := map[string]any{}
	if fields.Collected != nil {
		updates["collected"] = *fields.Collected
		if !*fields.Collected {
			updates["collected_at"] = nil
		}
	}
	if fields.CollectedAt != nil && (fields.Collected == nil || *fields.Collected) {
		updates["collected_at"] = *fields.CollectedAt
	}
	if fields.Note != nil {
		updates["note"] = *fields.Note
	}
	if fields.Status != nil {
		updates["status"] = string(*fields.Status)
	}

	res := r.Write(ctx).Model(&NotaEntity{}).Where("id = ?", uid).Updates(updates)
	if res.Error != nil {
		return nil, translateError(res.Error, "update nota")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "nota %q", id)
	}
	return r.Get(ctx, id)
}

func (r *NotaRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.Wrapf(model.ErrNotFound, "nota %q", id)
	}

	res := r.Write(ctx).Where("id = ?", uid).Delete(&NotaEntity{})
	if res.Error != nil {
		return translateError(res.Error, "delete nota")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(model.ErrNotFound, "nota %q", id)
	}
	return nil
}

// RunStatusRefresh recomputes the coarse status of every open notice from its
// anchor and returns how many rows changed.
func (r *NotaRepository) RunStatusRefresh(ctx context.Context, now time.Time) (int, error) {
	changed := 0
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entities []*NotaEntity
		if err := r.Write(ctx).Where("collected = ?", false).Find(&entities).Error; err != nil {
			return err
		}
		for _, e := range entities {
			n := toNotaModel(e)
			status := string(tracking.CoarseStatus(n.Anchor(), now))
			if status == e.Status {
				continue
			}
			err := r.Write(ctx).Model(&NotaEntity{}).
				Where("id = ?", e.ID).
				Update("status", status).Error
			if err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err, "refresh statuses")
	}
	return changed, nil
}
