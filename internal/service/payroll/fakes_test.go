package payroll

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/lock"
	"github.com/google/uuid"
)

// memDB backs the in-memory repositories. WithinTx snapshots it and restores the
// snapshot when the callback fails, like a rolled back transaction.
type memDB struct {
	periods   map[string]payroll.PayrollPeriod
	items     []payroll.PayrollItem
	employees []employee.Employee

	failBulkCreate error
	failTotals     error
	txCount        int
}

func newMemDB() *memDB {
	return &memDB{periods: make(map[string]payroll.PayrollPeriod)}
}

func (db *memDB) WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	db.txCount++
	periods := make(map[string]payroll.PayrollPeriod, len(db.periods))
	for k, v := range db.periods {
		periods[k] = v
	}
	items := append([]payroll.PayrollItem(nil), db.items...)

	if err := fn(ctx); err != nil {
		db.periods = periods
		db.items = items
		return err
	}
	return nil
}

type memPeriods struct{ db *memDB }

func (r memPeriods) Create(_ context.Context, p payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	p.Version = 1
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.db.periods[p.ID] = p
	return p, nil
}

func (r memPeriods) Update(_ context.Context, p payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	cur, ok := r.db.periods[p.ID]
	if !ok || cur.CompanyID != p.CompanyID {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	p.Version = cur.Version + 1
	r.db.periods[p.ID] = p
	return p, nil
}

func (r memPeriods) GetByID(_ context.Context, id, companyID string) (payroll.PayrollPeriod, error) {
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r memPeriods) GetByIDForUpdate(ctx context.Context, id, companyID string) (payroll.PayrollPeriod, error) {
	return r.GetByID(ctx, id, companyID)
}

func (r memPeriods) FindOverlapping(_ context.Context, companyID string, start, end time.Time, excludeID *string) ([]payroll.PayrollPeriod, error) {
	var out []payroll.PayrollPeriod
	for _, p := range r.db.periods {
		if p.CompanyID != companyID || p.Status == payroll.PeriodStatusCancelled {
			continue
		}
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.Overlaps(start, end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPeriods) FindPrevious(_ context.Context, companyID string, before time.Time, excludeID string) (payroll.PayrollPeriod, error) {
	var found *payroll.PayrollPeriod
	for _, p := range r.db.periods {
		p := p
		if p.CompanyID != companyID || p.ID == excludeID || p.Status == payroll.PeriodStatusCancelled {
			continue
		}
		if !p.PeriodEnd.Before(before) {
			continue
		}
		if found == nil || p.PeriodEnd.After(found.PeriodEnd) {
			found = &p
		}
	}
	if found == nil {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return *found, nil
}

func (r memPeriods) List(_ context.Context, companyID string, f payroll.PayrollPeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	var out []payroll.PayrollPeriod
	for _, p := range r.db.periods {
		if p.CompanyID != companyID {
			continue
		}
		if f.Status != nil && string(p.Status) != *f.Status {
			continue
		}
		if f.PeriodType != nil && string(p.PeriodType) != *f.PeriodType {
			continue
		}
		if f.Year != nil && p.PeriodStart.Year() != *f.Year {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart) })

	total := int64(len(out))
	from := (f.Page - 1) * f.Limit
	if from > len(out) {
		from = len(out)
	}
	to := from + f.Limit
	if to > len(out) {
		to = len(out)
	}
	return out[from:to], total, nil
}

func (r memPeriods) Delete(_ context.Context, id, companyID string) error {
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPeriodNotFound
	}
	delete(r.db.periods, id)
	return nil
}

func (r memPeriods) TransitionStatus(_ context.Context, id, companyID string, from, to payroll.PeriodStatus) (bool, error) {
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return false, payroll.ErrPeriodNotFound
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	p.Version++
	r.db.periods[id] = p
	return true, nil
}

func (r memPeriods) MarkProcessed(_ context.Context, id, companyID, processedBy string, processedAt time.Time) (payroll.PayrollPeriod, error) {
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	p.Status = payroll.PeriodStatusProcessed
	p.ProcessedAt = &processedAt
	if processedBy != "" {
		p.ProcessedBy = &processedBy
	}
	p.Version++
	r.db.periods[id] = p
	return p, nil
}

func (r memPeriods) MarkPaid(_ context.Context, id, companyID string) (payroll.PayrollPeriod, error) {
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	p.Status = payroll.PeriodStatusPaid
	p.Version++
	r.db.periods[id] = p
	return p, nil
}

func (r memPeriods) UpdateTotals(_ context.Context, id, companyID string, t payroll.Totals) error {
	if r.db.failTotals != nil {
		return r.db.failTotals
	}
	p, ok := r.db.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPeriodNotFound
	}
	p.TotalGross = t.Gross
	p.TotalDeductions = t.Deductions
	p.TotalNet = t.Net
	p.EmployeeCount = t.EmployeeCount
	p.Version++
	r.db.periods[id] = p
	return nil
}

func (r memPeriods) Stats(_ context.Context, companyID string, year *int) ([]payroll.StatsRow, error) {
	type key struct {
		s payroll.PeriodStatus
		t payroll.PeriodType
	}
	groups := make(map[key]*payroll.StatsRow)
	for _, p := range r.db.periods {
		if p.CompanyID != companyID || (year != nil && p.PeriodStart.Year() != *year) {
			continue
		}
		k := key{p.Status, p.PeriodType}
		row, ok := groups[k]
		if !ok {
			row = &payroll.StatsRow{Status: p.Status, PeriodType: p.PeriodType}
			groups[k] = row
		}
		row.Count++
		row.TotalGross = row.TotalGross.Add(p.TotalGross)
		row.TotalDeductions = row.TotalDeductions.Add(p.TotalDeductions)
		row.TotalNet = row.TotalNet.Add(p.TotalNet)
		if p.ProcessedAt != nil && (row.LastProcessedAt == nil || p.ProcessedAt.After(*row.LastProcessedAt)) {
			row.LastProcessedAt = p.ProcessedAt
		}
	}
	var out []payroll.StatsRow
	for _, row := range groups {
		out = append(out, *row)
	}
	return out, nil
}

func (r memPeriods) ResetStaleProcessing(_ context.Context, before time.Time) ([]payroll.PayrollPeriod, error) {
	var out []payroll.PayrollPeriod
	for id, p := range r.db.periods {
		if p.Status != payroll.PeriodStatusProcessing || !p.UpdatedAt.Before(before) {
			continue
		}
		p.Status = payroll.PeriodStatusDraft
		p.Version++
		r.db.periods[id] = p
		out = append(out, p)
	}
	return out, nil
}

type memItems struct{ db *memDB }

func (r memItems) BulkCreate(_ context.Context, items []payroll.PayrollItem) (int64, error) {
	if r.db.failBulkCreate != nil {
		return 0, r.db.failBulkCreate
	}
	r.db.items = append(r.db.items, items...)
	return int64(len(items)), nil
}

func (r memItems) DeleteByPeriod(_ context.Context, periodID string, employeeIDs []string) (int64, error) {
	only := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		only[id] = true
	}
	kept := r.db.items[:0:0]
	var removed int64
	for _, item := range r.db.items {
		if item.PeriodID == periodID && (len(only) == 0 || only[item.EmployeeID]) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.db.items = kept
	return removed, nil
}

func (r memItems) FindByPeriod(_ context.Context, periodID string, employeeID *string) ([]payroll.PayrollItem, error) {
	var out []payroll.PayrollItem
	for _, item := range r.db.items {
		if item.PeriodID != periodID || (employeeID != nil && item.EmployeeID != *employeeID) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r memItems) DuplicateFromPeriod(_ context.Context, sourceID, targetID string, employeeIDs []string) (int64, error) {
	only := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		only[id] = true
	}
	var copied []payroll.PayrollItem
	for _, item := range r.db.items {
		if item.PeriodID != sourceID || (len(only) > 0 && !only[item.EmployeeID]) {
			continue
		}
		item.ID = uuid.NewString()
		item.PeriodID = targetID
		copied = append(copied, item)
	}
	r.db.items = append(r.db.items, copied...)
	return int64(len(copied)), nil
}

type memEmployees struct{ db *memDB }

func (r memEmployees) GetByID(_ context.Context, id, companyID string) (employee.Employee, error) {
	for _, e := range r.db.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r memEmployees) GetByIDs(_ context.Context, ids []string, companyID string) ([]employee.Employee, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []employee.Employee
	for _, e := range r.db.employees {
		if want[e.ID] && e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEmployees) GetByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.db.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

// heldLocker reports every period in held as locked by someone else.
type heldLocker struct {
	held map[string]bool
}

func (l *heldLocker) Acquire(_ context.Context, periodID string) (func(context.Context) error, error) {
	if l.held[periodID] {
		return nil, lock.ErrNotAcquired
	}
	return func(context.Context) error { return nil }, nil
}
