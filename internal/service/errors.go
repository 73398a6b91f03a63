package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Domain errors returned by every service. Handlers map them to HTTP codes
// with errors.Is; the wrapped message carries the detail.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrReportAlreadySubmitted = errors.New("report already submitted for today")
	ErrConcurrency            = errors.New("concurrent modification")
	ErrPersistence            = errors.New("persistence error")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// persistence wraps a store failure. Errors that already carry a domain
// sentinel pass through untouched.
func persistence(err error) error {
	if err == nil || isDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to target and everything else to a
// persistence error.
func notFoundOr(err error, target error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d does not exist", target, what, id)
	}
	return persistence(err)
}

func isDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrReportAlreadySubmitted) ||
		errors.Is(err, ErrConcurrency) ||
		errors.Is(err, ErrPersistence)
}
