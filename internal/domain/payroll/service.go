package payroll

import "context"

// PayrollService exposes the payroll period lifecycle. Company and user come from the JWT in ctx.
type PayrollService interface {
	CreatePeriod(ctx context.Context, req CreatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	UpdatePeriod(ctx context.Context, req UpdatePayrollPeriodRequest) (PayrollPeriodResponse, error)
	GetPeriod(ctx context.Context, id string) (PayrollPeriodResponse, error)
	ListPeriods(ctx context.Context, filter PayrollPeriodFilter) (ListPayrollPeriodResponse, error)
	DeletePeriod(ctx context.Context, id string) error

	ProcessPeriod(ctx context.Context, req ProcessPayrollPeriodRequest) (ProcessPayrollResponse, error)
	MarkAsPaid(ctx context.Context, id string) (PayrollPeriodResponse, error)
	DuplicateFromPreviousPeriod(ctx context.Context, req DuplicatePayrollPeriodRequest) (DuplicatePayrollResponse, error)

	ListItems(ctx context.Context, periodID string, employeeID *string) ([]PayrollItemResponse, error)
	GetStats(ctx context.Context, year *int) (PayrollStatsResponse, error)
}
