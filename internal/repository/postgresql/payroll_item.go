package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, period_id, employee_id, position, item_type, description, calculation_type,
	base_value, calculated_value, legal_reference, notes, created_at, updated_at`

type payrollItemRepository struct {
	db *database.DB
}

func NewPayrollItemRepository(db *database.DB) payroll.PayrollItemRepository {
	return &payrollItemRepository{db: db}
}

// BulkCreate queues one insert per item and sends them in a single round trip.
func (r *payrollItemRepository) BulkCreate(ctx context.Context, items []payroll.PayrollItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_items (
			id, period_id, employee_id, position, item_type, description, calculation_type,
			base_value, calculated_value, legal_reference, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.PeriodID, item.EmployeeID, item.Position, item.ItemType, item.Description,
			item.CalculationType, item.BaseValue, item.CalculatedValue, item.LegalReference, item.Notes,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range items {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert payroll item: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

func (r *payrollItemRepository) DeleteByPeriod(ctx context.Context, periodID string, employeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_items WHERE period_id = $1`
	args := []interface{}{periodID}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($2::uuid[])`
		args = append(args, employeeIDs)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payroll items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindByPeriod returns no items for a malformed employee id.
func (r *payrollItemRepository) FindByPeriod(ctx context.Context, periodID string, employeeID *string) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + itemColumns + `
		FROM payroll_items
		WHERE period_id = $1
			AND ($2::uuid IS NULL OR employee_id = $2::uuid)
		ORDER BY employee_id, position`

	rows, err := q.Query(ctx, query, periodID, employeeID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayrollItem
	for rows.Next() {
		var it payroll.PayrollItem
		if err := rows.Scan(
			&it.ID, &it.PeriodID, &it.EmployeeID, &it.Position, &it.ItemType, &it.Description,
			&it.CalculationType, &it.BaseValue, &it.CalculatedValue, &it.LegalReference, &it.Notes,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to iterate payroll items: %w", err)
	}

	return items, nil
}

// DuplicateFromPeriod copies rows server side; new ids come from gen_random_uuid.
func (r *payrollItemRepository) DuplicateFromPeriod(ctx context.Context, sourceID, targetID string, employeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_items (
			id, period_id, employee_id, position, item_type, description, calculation_type,
			base_value, calculated_value, legal_reference, notes
		)
		SELECT gen_random_uuid(), $2::uuid, employee_id, position, item_type, description, calculation_type,
			base_value, calculated_value, legal_reference, notes
		FROM payroll_items
		WHERE period_id = $1
	`
	args := []interface{}{sourceID, targetID}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3::uuid[])`
		args = append(args, employeeIDs)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to duplicate payroll items: %w", err)
	}
	return tag.RowsAffected(), nil
}
