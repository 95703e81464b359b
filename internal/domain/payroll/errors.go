package payroll

import (
	"errors"
	"fmt"
)

// Error kinds. Every payroll error wraps exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrPeriodNotFound         = fmt.Errorf("payroll period %w", ErrNotFound)
	ErrSourcePeriodNotFound   = fmt.Errorf("source payroll period %w", ErrNotFound)
	ErrEmployeeNotFound       = fmt.Errorf("employee %w", ErrNotFound)
	ErrPeriodOverlap          = fmt.Errorf("%w: payroll period overlaps an existing period", ErrConflict)
	ErrPeriodAlreadyProcessed = fmt.Errorf("%w: payroll period already processed, request recompute to regenerate", ErrConflict)
	ErrPeriodLocked           = fmt.Errorf("%w: payroll period is being processed by another request", ErrConflict)
	ErrSamePeriod             = fmt.Errorf("%w: source and target period must differ", ErrConflict)
	ErrPeriodChanged          = fmt.Errorf("%w: payroll period was modified concurrently", ErrConflict)
	ErrPeriodNotEditable      = fmt.Errorf("%w: payroll period can no longer be modified", ErrInvalidState)
	ErrPeriodPaid             = fmt.Errorf("%w: payroll period already paid", ErrInvalidState)
	ErrPeriodNotProcessed     = fmt.Errorf("%w: payroll period must be processed first", ErrInvalidState)
	ErrPeriodNotDraft         = fmt.Errorf("%w: payroll period must be in draft", ErrInvalidState)
	ErrPeriodCancelled        = fmt.Errorf("%w: payroll period is cancelled", ErrInvalidState)
)
