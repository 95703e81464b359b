package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	periodColumns = `id, company_id, name, description, period_type, period_start, period_end,
		payment_date, status, total_gross, total_deductions, total_net, employee_count,
		processed_at, processed_by, version, created_at, updated_at`

	// Exclusion constraint that rejects overlapping non-cancelled periods of one company.
	periodOverlapConstraint = "payroll_periods_no_overlap"
)

type payrollPeriodRepository struct {
	db *database.DB
}

func NewPayrollPeriodRepository(db *database.DB) payroll.PayrollPeriodRepository {
	return &payrollPeriodRepository{db: db}
}

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.PeriodType, &p.PeriodStart, &p.PeriodEnd,
		&p.PaymentDate, &p.Status, &p.TotalGross, &p.TotalDeductions, &p.TotalNet, &p.EmployeeCount,
		&p.ProcessedAt, &p.ProcessedBy, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// periodError maps driver errors to domain errors. A malformed id can never match a row.
func periodError(err error, action string) error {
	if err == pgx.ErrNoRows {
		return payroll.ErrPeriodNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.ConstraintName == periodOverlapConstraint:
			return payroll.ErrPeriodOverlap
		case pgErr.Code == pgInvalidTextRepresentation:
			return payroll.ErrPeriodNotFound
		}
	}
	return fmt.Errorf("failed to %s payroll period: %w", action, err)
}

const pgInvalidTextRepresentation = "22P02"

// isInvalidText reports a value the column type could not parse, such as a malformed uuid.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

func (r *payrollPeriodRepository) Create(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			id, company_id, name, description, period_type, period_start, period_end,
			payment_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.ID, period.CompanyID, period.Name, period.Description, period.PeriodType,
		period.PeriodStart, period.PeriodEnd, period.PaymentDate, period.Status,
	))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "create")
	}

	return created, nil
}

func (r *payrollPeriodRepository) Update(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			name = $1,
			description = $2,
			period_type = $3,
			period_start = $4,
			period_end = $5,
			payment_date = $6,
			status = $7,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $8 AND company_id = $9
		RETURNING ` + periodColumns

	updated, err := scanPeriod(q.QueryRow(ctx, query,
		period.Name, period.Description, period.PeriodType, period.PeriodStart, period.PeriodEnd,
		period.PaymentDate, period.Status, period.ID, period.CompanyID,
	))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "update")
	}

	return updated, nil
}

func (r *payrollPeriodRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE id = $1 AND company_id = $2`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "get")
	}
	return p, nil
}

func (r *payrollPeriodRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE id = $1 AND company_id = $2
		FOR UPDATE`

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "lock")
	}
	return p, nil
}

func (r *payrollPeriodRepository) FindOverlapping(ctx context.Context, companyID string, start, end time.Time, excludeID *string) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1
			AND status <> 'cancelled'
			AND period_start <= $3
			AND period_end >= $2
			AND ($4::uuid IS NULL OR id <> $4::uuid)
		ORDER BY period_start`

	rows, err := q.Query(ctx, query, companyID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping payroll periods: %w", err)
	}
	defer rows.Close()

	return collectPeriods(rows)
}

func (r *payrollPeriodRepository) FindPrevious(ctx context.Context, companyID string, before time.Time, excludeID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE company_id = $1
			AND status <> 'cancelled'
			AND period_end < $2
			AND id <> $3
		ORDER BY period_end DESC
		LIMIT 1`

	p, err := scanPeriod(q.QueryRow(ctx, query, companyID, before, excludeID))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "find previous")
	}
	return p, nil
}

func (r *payrollPeriodRepository) List(ctx context.Context, companyID string, filter payroll.PayrollPeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.PeriodType != nil && *filter.PeriodType != "" {
		conditions = append(conditions, fmt.Sprintf("period_type = $%d", argIdx))
		args = append(args, *filter.PeriodType)
		argIdx++
	}

	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM period_start) = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payroll_periods WHERE %s`, whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	validSortColumns := map[string]string{
		"period_start": "period_start",
		"period_end":   "period_end",
		"name":         "name",
		"status":       "status",
		"created_at":   "created_at",
	}
	sortBy := "period_start"
	if col, ok := validSortColumns[filter.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_periods
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, periodColumns, whereClause, sortBy, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	periods, err := collectPeriods(rows)
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}

func collectPeriods(rows pgx.Rows) ([]payroll.PayrollPeriod, error) {
	var periods []payroll.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll periods: %w", err)
	}
	return periods, nil
}

func (r *payrollPeriodRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_periods WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return periodError(err, "delete")
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollPeriodRepository) TransitionStatus(ctx context.Context, id string, companyID string, from, to payroll.PeriodStatus) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			status = $1,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $2 AND company_id = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, to, id, companyID, from)
	if err != nil {
		return false, periodError(err, "transition")
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	err = q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payroll_periods WHERE id = $1 AND company_id = $2)`,
		id, companyID,
	).Scan(&exists)
	if err != nil {
		return false, periodError(err, "transition")
	}
	if !exists {
		return false, payroll.ErrPeriodNotFound
	}
	return false, nil
}

func (r *payrollPeriodRepository) MarkProcessed(ctx context.Context, id string, companyID string, processedBy string, processedAt time.Time) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	var by *string
	if processedBy != "" {
		by = &processedBy
	}

	query := `
		UPDATE payroll_periods SET
			status = 'processed',
			processed_at = $1,
			processed_by = $2,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $3 AND company_id = $4
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query, processedAt, by, id, companyID))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "mark processed")
	}
	return p, nil
}

func (r *payrollPeriodRepository) MarkPaid(ctx context.Context, id string, companyID string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			status = 'paid',
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + periodColumns

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		return payroll.PayrollPeriod{}, periodError(err, "mark paid")
	}
	return p, nil
}

func (r *payrollPeriodRepository) UpdateTotals(ctx context.Context, id string, companyID string, totals payroll.Totals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			total_gross = $1,
			total_deductions = $2,
			total_net = $3,
			employee_count = $4,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $5 AND company_id = $6
	`

	tag, err := q.Exec(ctx, query, totals.Gross, totals.Deductions, totals.Net, totals.EmployeeCount, id, companyID)
	if err != nil {
		return periodError(err, "update totals of")
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

func (r *payrollPeriodRepository) Stats(ctx context.Context, companyID string, year *int) ([]payroll.StatsRow, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}
	if year != nil {
		conditions = append(conditions, "EXTRACT(YEAR FROM period_start) = $2")
		args = append(args, *year)
	}

	query := fmt.Sprintf(`
		SELECT status, period_type, COUNT(*),
			COALESCE(SUM(total_gross), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(total_net), 0),
			MAX(processed_at)
		FROM payroll_periods
		WHERE %s
		GROUP BY status, period_type
	`, strings.Join(conditions, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll period stats: %w", err)
	}
	defer rows.Close()

	var stats []payroll.StatsRow
	for rows.Next() {
		var s payroll.StatsRow
		if err := rows.Scan(
			&s.Status, &s.PeriodType, &s.Count,
			&s.TotalGross, &s.TotalDeductions, &s.TotalNet,
			&s.LastProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll period stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll period stats: %w", err)
	}

	return stats, nil
}

func (r *payrollPeriodRepository) ResetStaleProcessing(ctx context.Context, before time.Time) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods SET
			status = 'draft',
			version = version + 1,
			updated_at = NOW()
		WHERE status = 'processing' AND updated_at < $1
		RETURNING ` + periodColumns

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to reset stale payroll periods: %w", err)
	}
	defer rows.Close()

	return collectPeriods(rows)
}
