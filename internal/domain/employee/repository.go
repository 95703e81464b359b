package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string, companyID string) ([]Employee, error)
	// GetByCompanyID returns every employee of the company that is not soft deleted,
	// whatever its employment status.
	GetByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
