package payroll

import (
	"context"
	"time"
)

// PayrollPeriodRepository defines data access methods for payroll periods.
// All lookups include companyID to prevent cross-company data access.
type PayrollPeriodRepository interface {
	Create(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	Update(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetByID(ctx context.Context, id string, companyID string) (PayrollPeriod, error)
	// GetByIDForUpdate locks the period row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (PayrollPeriod, error)
	// FindOverlapping returns non-cancelled periods whose range intersects [start, end].
	FindOverlapping(ctx context.Context, companyID string, start, end time.Time, excludeID *string) ([]PayrollPeriod, error)
	// FindPrevious returns the latest non-cancelled period ending before the given date.
	FindPrevious(ctx context.Context, companyID string, before time.Time, excludeID string) (PayrollPeriod, error)
	List(ctx context.Context, companyID string, filter PayrollPeriodFilter) ([]PayrollPeriod, int64, error)
	Delete(ctx context.Context, id string, companyID string) error
	// TransitionStatus moves the period from one status to another and reports false when
	// the period was not in the expected status.
	TransitionStatus(ctx context.Context, id string, companyID string, from, to PeriodStatus) (bool, error)
	MarkProcessed(ctx context.Context, id string, companyID string, processedBy string, processedAt time.Time) (PayrollPeriod, error)
	MarkPaid(ctx context.Context, id string, companyID string) (PayrollPeriod, error)
	UpdateTotals(ctx context.Context, id string, companyID string, totals Totals) error
	Stats(ctx context.Context, companyID string, year *int) ([]StatsRow, error)
	// ResetStaleProcessing returns every period left in processing since before the
	// given instant to draft, across all companies.
	ResetStaleProcessing(ctx context.Context, before time.Time) ([]PayrollPeriod, error)
}

// PayrollItemRepository defines data access methods for payroll line items.
type PayrollItemRepository interface {
	BulkCreate(ctx context.Context, items []PayrollItem) (int64, error)
	// DeleteByPeriod removes the items of a period, restricted to employeeIDs when not empty.
	DeleteByPeriod(ctx context.Context, periodID string, employeeIDs []string) (int64, error)
	FindByPeriod(ctx context.Context, periodID string, employeeID *string) ([]PayrollItem, error)
	// DuplicateFromPeriod copies the source items of employeeIDs into the target period under new ids.
	DuplicateFromPeriod(ctx context.Context, sourceID, targetID string, employeeIDs []string) (int64, error)
}

// PeriodLocker guards a payroll period against concurrent processing.
type PeriodLocker interface {
	Acquire(ctx context.Context, periodID string) (release func(context.Context) error, err error)
}
