package repository

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// translateError folds driver and gorm errors into the model error kinds so
// callers never see storage specifics.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, model.ErrConstraint),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrTransient):
		return errors.Wrap(err, op)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(model.ErrNotFound, op)
	case errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		strings.Contains(err.Error(), "SQLSTATE 23514"),
		strings.Contains(err.Error(), "CHECK constraint failed"):
		return errors.Wrapf(model.ErrConstraint, "%s: %v", op, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return errors.Wrapf(model.ErrTransient, "%s: %v", op, err)
	}
	return errors.Wrap(err, op)
}
