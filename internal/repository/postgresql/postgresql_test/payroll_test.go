package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/erp-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func createTestEmployee(t *testing.T, ctx context.Context, setup *TestDatabaseSetup, companyID, code, salary string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employees (id, company_id, employee_code, full_name, employment_status, hire_date, base_salary)
		VALUES ($1, $2, $3, $4, 'active', '2023-01-02', $5)
	`, id, companyID, code, "Employee "+code, decimal.RequireFromString(salary))
	require.NoError(t, err)
	return id
}

func newPeriod(companyID, name, start, end string) payroll.PayrollPeriod {
	return payroll.PayrollPeriod{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Name:        name,
		PeriodType:  payroll.PeriodTypeMonthly,
		PeriodStart: date(start),
		PeriodEnd:   date(end),
		Status:      payroll.PeriodStatusDraft,
	}
}

func TestPayrollPeriodRepository_CreateAndGet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPeriodRepository(setup.DB)
	companyID := uuid.NewString()

	created, err := repo.Create(ctx, newPeriod(companyID, "July 2024", "2024-07-01", "2024-07-31"))
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, created.Status)
	assert.Equal(t, 1, created.Version)
	assert.True(t, created.TotalGross.IsZero())

	got, err := repo.GetByID(ctx, created.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, "July 2024", got.Name)
	assert.Equal(t, date("2024-07-01"), got.PeriodStart.UTC())

	_, err = repo.GetByID(ctx, created.ID, uuid.NewString())
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)

	_, err = repo.GetByID(ctx, "not-a-uuid", companyID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
}

func TestPayrollPeriodRepository_OverlapConstraint(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPeriodRepository(setup.DB)
	companyID := uuid.NewString()

	july, err := repo.Create(ctx, newPeriod(companyID, "July", "2024-07-01", "2024-07-31"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newPeriod(companyID, "Overlap", "2024-07-31", "2024-08-30"))
	assert.ErrorIs(t, err, payroll.ErrPeriodOverlap)

	found, err := repo.FindOverlapping(ctx, companyID, date("2024-07-15"), date("2024-08-15"), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, july.ID, found[0].ID)

	found, err = repo.FindOverlapping(ctx, companyID, date("2024-07-15"), date("2024-08-15"), &july.ID)
	require.NoError(t, err)
	assert.Empty(t, found)

	ok, err := repo.TransitionStatus(ctx, july.ID, companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Create(ctx, newPeriod(companyID, "Replacement", "2024-07-01", "2024-07-31"))
	assert.NoError(t, err)
}

func TestPayrollPeriodRepository_TransitionStatus(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPeriodRepository(setup.DB)
	companyID := uuid.NewString()

	p, err := repo.Create(ctx, newPeriod(companyID, "July", "2024-07-01", "2024-07-31"))
	require.NoError(t, err)

	ok, err := repo.TransitionStatus(ctx, p.ID, companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(ctx, p.ID, companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.TransitionStatus(ctx, uuid.NewString(), companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)

	processedAt := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	processed, err := repo.MarkProcessed(ctx, p.ID, companyID, "", processedAt)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusProcessed, processed.Status)
	assert.Nil(t, processed.ProcessedBy)
	require.NotNil(t, processed.ProcessedAt)
	assert.True(t, processed.ProcessedAt.Equal(processedAt))
	assert.Greater(t, processed.Version, p.Version)

	paid, err := repo.MarkPaid(ctx, p.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPaid, paid.Status)
}

func TestPayrollPeriodRepository_ResetStaleProcessing(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPeriodRepository(setup.DB)
	companyID := uuid.NewString()

	p, err := repo.Create(ctx, newPeriod(companyID, "July", "2024-07-01", "2024-07-31"))
	require.NoError(t, err)
	_, err = repo.TransitionStatus(ctx, p.ID, companyID, payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing)
	require.NoError(t, err)

	reset, err := repo.ResetStaleProcessing(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reset)

	reset, err = repo.ResetStaleProcessing(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, reset, 1)
	assert.Equal(t, p.ID, reset[0].ID)
	assert.Equal(t, payroll.PeriodStatusDraft, reset[0].Status)
}

func TestPayrollItemRepository_Lifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	periods := postgresql.NewPayrollPeriodRepository(setup.DB)
	items := postgresql.NewPayrollItemRepository(setup.DB)
	companyID := uuid.NewString()

	ana := createTestEmployee(t, ctx, setup, companyID, "E001", "1000.00")
	bruno := createTestEmployee(t, ctx, setup, companyID, "E002", "5000.00")

	june, err := periods.Create(ctx, newPeriod(companyID, "June", "2024-06-01", "2024-06-30"))
	require.NoError(t, err)
	july, err := periods.Create(ctx, newPeriod(companyID, "July", "2024-07-01", "2024-07-31"))
	require.NoError(t, err)

	base := decimal.RequireFromString("1000.00")
	ref := "Lei nº 8.212/1991, art. 20"
	n, err := items.BulkCreate(ctx, []payroll.PayrollItem{
		{ID: uuid.NewString(), PeriodID: june.ID, EmployeeID: ana, Position: 1, ItemType: payroll.ItemTypeBaseSalary,
			Description: "Base salary", CalculationType: payroll.CalculationTypeFixed, BaseValue: &base, CalculatedValue: base},
		{ID: uuid.NewString(), PeriodID: june.ID, EmployeeID: ana, Position: 2, ItemType: payroll.ItemTypeINSS,
			Description: "INSS", CalculationType: payroll.CalculationTypePercentage, BaseValue: &base,
			CalculatedValue: decimal.RequireFromString("-75.00"), LegalReference: &ref},
		{ID: uuid.NewString(), PeriodID: june.ID, EmployeeID: bruno, Position: 1, ItemType: payroll.ItemTypeBaseSalary,
			Description: "Base salary", CalculationType: payroll.CalculationTypeFixed, CalculatedValue: decimal.RequireFromString("5000.00")},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	found, err := items.FindByPeriod(ctx, june.ID, &ana)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 1, found[0].Position)
	assert.True(t, found[1].CalculatedValue.Equal(decimal.RequireFromString("-75")))
	require.NotNil(t, found[1].LegalReference)
	assert.Equal(t, ref, *found[1].LegalReference)

	copied, err := items.DuplicateFromPeriod(ctx, june.ID, july.ID, []string{ana})
	require.NoError(t, err)
	assert.EqualValues(t, 2, copied)

	julyItems, err := items.FindByPeriod(ctx, july.ID, nil)
	require.NoError(t, err)
	require.Len(t, julyItems, 2)
	assert.NotEqual(t, found[0].ID, julyItems[0].ID)

	deleted, err := items.DeleteByPeriod(ctx, june.ID, []string{bruno})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = items.DeleteByPeriod(ctx, june.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	require.NoError(t, periods.Delete(ctx, july.ID, companyID))
	remaining, err := items.FindByPeriod(ctx, july.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestPayrollPeriodRepository_ListAndStats(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollPeriodRepository(setup.DB)
	companyID := uuid.NewString()

	for _, p := range []payroll.PayrollPeriod{
		newPeriod(companyID, "May", "2024-05-01", "2024-05-31"),
		newPeriod(companyID, "June", "2024-06-01", "2024-06-30"),
		newPeriod(companyID, "December", "2023-12-01", "2023-12-31"),
	} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	year := 2024
	list, total, err := repo.List(ctx, companyID, payroll.PayrollPeriodFilter{Year: &year, Page: 1, Limit: 1, SortBy: "period_start", SortOrder: "desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "June", list[0].Name)

	june := list[0]
	require.NoError(t, repo.UpdateTotals(ctx, june.ID, companyID, payroll.Totals{
		Gross:         decimal.RequireFromString("6480.00"),
		Deductions:    decimal.RequireFromString("950.36"),
		Net:           decimal.RequireFromString("5529.64"),
		EmployeeCount: 2,
	}))
	_, err = repo.MarkProcessed(ctx, june.ID, companyID, "", time.Now())
	require.NoError(t, err)

	rows, err := repo.Stats(ctx, companyID, &year)
	require.NoError(t, err)
	count := 0
	for _, row := range rows {
		count += row.Count
		if row.Status == payroll.PeriodStatusProcessed {
			assert.True(t, row.TotalNet.Equal(decimal.RequireFromString("5529.64")))
			assert.NotNil(t, row.LastProcessedAt)
		}
	}
	assert.Equal(t, 2, count)
}

func TestEmployeeRepository_Lookups(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)
	companyID := uuid.NewString()

	id := createTestEmployee(t, ctx, setup, companyID, "E001", "3000.00")
	createTestEmployee(t, ctx, setup, uuid.NewString(), "E001", "4000.00")

	emp, err := repo.GetByID(ctx, id, companyID)
	require.NoError(t, err)
	require.NotNil(t, emp.BaseSalary)
	assert.True(t, emp.Salary().Equal(decimal.RequireFromString("3000")))

	_, err = repo.GetByID(ctx, "bad-id", companyID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	found, err := repo.GetByIDs(ctx, []string{id, uuid.NewString()}, companyID)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = repo.GetByIDs(ctx, []string{"bad-id"}, companyID)
	require.NoError(t, err)
	assert.Empty(t, found)

	resigned := createTestEmployee(t, ctx, setup, companyID, "E002", "2000.00")
	_, err = setup.DB.Exec(ctx, `UPDATE employees SET employment_status = 'resigned' WHERE id = $1`, resigned)
	require.NoError(t, err)
	removed := createTestEmployee(t, ctx, setup, companyID, "E003", "2500.00")
	_, err = setup.DB.Exec(ctx, `UPDATE employees SET deleted_at = NOW() WHERE id = $1`, removed)
	require.NoError(t, err)

	all, err := repo.GetByCompanyID(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, resigned, all[1].ID)
	assert.Equal(t, employee.EmploymentStatusResigned, all[1].EmploymentStatus)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)
	companyID := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `
		INSERT INTO users (id, company_id, email, password_hash, role)
		VALUES ($1, $2, 'owner@example.com', $3, 'owner')
	`, uuid.NewString(), companyID, string(hash))
	require.NoError(t, err)

	found, err := repo.GetByEmail(ctx, "Owner@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleOwner, found.Role)
	require.NotNil(t, found.CompanyID)
	assert.Equal(t, companyID, *found.CompanyID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
