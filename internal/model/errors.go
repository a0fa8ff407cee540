package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced by lifecycle operations. Wrap them with context and
// classify with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConstraint = errors.New("constraint violation")
	ErrNotFound   = errors.New("nota not found")
	ErrTransient  = errors.New("storage unavailable")
)

func Validationf(format string, args ...any) error {
	return errors.Wrap(ErrValidation, fmt.Sprintf(format, args...))
}

// Kind names the error class for logs, metrics and HTTP mapping.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConstraint):
		return "constraint"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	}
	return "internal"
}
