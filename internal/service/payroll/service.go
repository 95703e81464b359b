package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const rollbackTimeout = 5 * time.Second

type PayrollServiceImpl struct {
	tx           database.Transactor
	periodRepo   payroll.PayrollPeriodRepository
	itemRepo     payroll.PayrollItemRepository
	employeeRepo employee.EmployeeRepository
	calculator   *Calculator
	locker       payroll.PeriodLocker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	periodRepo payroll.PayrollPeriodRepository,
	itemRepo payroll.PayrollItemRepository,
	employeeRepo employee.EmployeeRepository,
	calculator *Calculator,
	locker payroll.PeriodLocker,
	m *metrics.Metrics,
) *PayrollServiceImpl {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &PayrollServiceImpl{
		tx:           tx,
		periodRepo:   periodRepo,
		itemRepo:     itemRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		locker:       locker,
		metrics:      m,
		logger:       slog.Default(),
		now:          time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *PayrollServiceImpl) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *PayrollServiceImpl) WithLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", user.ErrCompanyIDRequired
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// acquire takes the per-period lock. The returned func releases it even if ctx was cancelled.
func (s *PayrollServiceImpl) acquire(ctx context.Context, periodID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, periodID)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, payroll.ErrPeriodLocked
		}
		return nil, fmt.Errorf("acquire payroll period lock: %w", err)
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release payroll period lock", "period_id", periodID, "error", err)
		}
	}, nil
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	start, _ := validator.IsValidDate(req.PeriodStart)
	end, _ := validator.IsValidDate(req.PeriodEnd)
	var paymentDate *time.Time
	if req.PaymentDate != nil {
		parsed, _ := validator.IsValidDate(*req.PaymentDate)
		paymentDate = &parsed
	}

	var created payroll.PayrollPeriod
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		overlapping, err := s.periodRepo.FindOverlapping(txCtx, companyID, start, end, nil)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return payroll.ErrPeriodOverlap
		}

		created, err = s.periodRepo.Create(txCtx, payroll.PayrollPeriod{
			ID:              newID(),
			CompanyID:       companyID,
			Name:            strings.TrimSpace(req.Name),
			Description:     req.Description,
			PeriodType:      payroll.PeriodType(req.PeriodType),
			PeriodStart:     start,
			PeriodEnd:       end,
			PaymentDate:     paymentDate,
			Status:          payroll.PeriodStatusDraft,
			TotalGross:      decimal.Zero,
			TotalDeductions: decimal.Zero,
			TotalNet:        decimal.Zero,
		})
		return err
	})
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	s.logger.Info("payroll period created", "period_id", created.ID, "company_id", companyID, "status", created.Status)
	return toPeriodResponse(created), nil
}

func (s *PayrollServiceImpl) UpdatePeriod(ctx context.Context, req payroll.UpdatePayrollPeriodRequest) (payroll.PayrollPeriodResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	var updated payroll.PayrollPeriod
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.periodRepo.GetByIDForUpdate(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}
		if err := ensureEditable(current.Status); err != nil {
			return err
		}

		merged, err := req.Apply(current)
		if err != nil {
			return err
		}

		if req.DatesChanged() && merged.Status != payroll.PeriodStatusCancelled {
			overlapping, err := s.periodRepo.FindOverlapping(txCtx, companyID, merged.PeriodStart, merged.PeriodEnd, &merged.ID)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return payroll.ErrPeriodOverlap
			}
		}

		updated, err = s.periodRepo.Update(txCtx, merged)
		return err
	})
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	s.logger.Info("payroll period updated", "period_id", updated.ID, "company_id", companyID, "status", updated.Status)
	return toPeriodResponse(updated), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PayrollPeriodResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}
	return toPeriodResponse(period), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PayrollPeriodFilter) (payroll.ListPayrollPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollPeriodResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollPeriodResponse{}, err
	}

	periods, total, err := s.periodRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListPayrollPeriodResponse{}, err
	}

	data := make([]payroll.PayrollPeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, toPeriodResponse(p))
	}

	return payroll.ListPayrollPeriodResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	var removed int64
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		period, err := s.periodRepo.GetByIDForUpdate(txCtx, id, companyID)
		if err != nil {
			return err
		}
		if err := ensureEditable(period.Status); err != nil {
			return err
		}

		removed, err = s.itemRepo.DeleteByPeriod(txCtx, id, nil)
		if err != nil {
			return err
		}
		return s.periodRepo.Delete(txCtx, id, companyID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("payroll period deleted", "period_id", id, "company_id", companyID, "items", removed)
	return nil
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) ProcessPeriod(ctx context.Context, req payroll.ProcessPayrollPeriodRequest) (payroll.ProcessPayrollResponse, error) {
	started := s.now()

	if err := req.Validate(); err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	release, err := s.acquire(ctx, req.ID)
	if err != nil {
		s.metrics.ObserveProcess(metrics.ResultRejected, s.now().Sub(started))
		return payroll.ProcessPayrollResponse{}, err
	}
	defer release()

	period, err := s.periodRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		s.metrics.ObserveProcess(metrics.ResultRejected, s.now().Sub(started))
		return payroll.ProcessPayrollResponse{}, err
	}

	switch period.Status {
	case payroll.PeriodStatusPaid:
		err = payroll.ErrPeriodPaid
	case payroll.PeriodStatusCancelled:
		err = payroll.ErrPeriodCancelled
	case payroll.PeriodStatusProcessed:
		if !req.Recompute {
			err = payroll.ErrPeriodAlreadyProcessed
		}
	}
	if err != nil {
		s.metrics.ObserveProcess(metrics.ResultRejected, s.now().Sub(started))
		return payroll.ProcessPayrollResponse{}, err
	}

	// Processing is committed on its own so readers see the run in progress.
	if period.Status != payroll.PeriodStatusProcessing {
		moved, err := s.periodRepo.TransitionStatus(ctx, period.ID, companyID, period.Status, payroll.PeriodStatusProcessing)
		if err != nil {
			s.metrics.ObserveProcess(metrics.ResultFailure, s.now().Sub(started))
			return payroll.ProcessPayrollResponse{}, err
		}
		if !moved {
			s.metrics.ObserveProcess(metrics.ResultRejected, s.now().Sub(started))
			return payroll.ProcessPayrollResponse{}, payroll.ErrPeriodChanged
		}
	}

	result, generated, err := s.generate(ctx, period.ID, companyID, userID, req)
	if err != nil {
		s.rollbackToDraft(ctx, period.ID, companyID, err)
		s.metrics.ObserveProcess(metrics.ResultFailure, s.now().Sub(started))
		return payroll.ProcessPayrollResponse{}, err
	}

	for itemType, n := range generated {
		s.metrics.AddItems(string(itemType), n)
	}
	s.metrics.ObserveProcess(metrics.ResultSuccess, s.now().Sub(started))

	s.logger.Info("payroll period processed",
		"period_id", period.ID,
		"company_id", companyID,
		"status", result.Period.Status,
		"employees", result.EmployeesProcessed,
		"items", result.ItemsGenerated,
		"recompute", req.Recompute,
	)
	return result, nil
}

// generate resolves employees, replaces their items, refreshes totals and marks the period
// processed, all in one transaction.
func (s *PayrollServiceImpl) generate(
	ctx context.Context,
	periodID, companyID, userID string,
	req payroll.ProcessPayrollPeriodRequest,
) (payroll.ProcessPayrollResponse, map[payroll.ItemType]int, error) {
	var (
		processed payroll.PayrollPeriod
		employees []employee.Employee
		items     []payroll.PayrollItem
	)

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		locked, err := s.periodRepo.GetByIDForUpdate(txCtx, periodID, companyID)
		if err != nil {
			return err
		}
		if locked.Status != payroll.PeriodStatusProcessing {
			return payroll.ErrPeriodChanged
		}

		employees, err = s.resolveEmployees(txCtx, companyID, req.EmployeeIDs)
		if err != nil {
			return err
		}

		if req.Recompute {
			_, err = s.itemRepo.DeleteByPeriod(txCtx, periodID, nil)
		} else if len(employees) > 0 {
			_, err = s.itemRepo.DeleteByPeriod(txCtx, periodID, employeeIDs(employees))
		}
		if err != nil {
			return err
		}

		now := s.now()
		items = items[:0]
		for _, emp := range employees {
			for _, item := range s.calculator.CalculateItems(emp) {
				item.ID = newID()
				item.PeriodID = periodID
				item.CreatedAt = now
				item.UpdatedAt = now
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			if _, err := s.itemRepo.BulkCreate(txCtx, items); err != nil {
				return err
			}
		}

		if err := s.refreshTotals(txCtx, periodID, companyID); err != nil {
			return err
		}

		processed, err = s.periodRepo.MarkProcessed(txCtx, periodID, companyID, userID, now)
		return err
	})
	if err != nil {
		return payroll.ProcessPayrollResponse{}, nil, err
	}

	generated := make(map[payroll.ItemType]int)
	for _, item := range items {
		generated[item.ItemType]++
	}

	return payroll.ProcessPayrollResponse{
		Period:             toPeriodResponse(processed),
		EmployeesProcessed: len(employees),
		ItemsGenerated:     len(items),
	}, generated, nil
}

// rollbackToDraft returns a period stuck in Processing to Draft. It runs detached from
// request cancellation and only touches the period while it is still Processing.
func (s *PayrollServiceImpl) rollbackToDraft(ctx context.Context, periodID, companyID string, cause error) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	moved, err := s.periodRepo.TransitionStatus(rbCtx, periodID, companyID, payroll.PeriodStatusProcessing, payroll.PeriodStatusDraft)
	if err != nil {
		s.logger.Error("failed to roll back payroll period to draft",
			"period_id", periodID, "company_id", companyID, "error", err, "cause", cause)
		return
	}
	s.logger.Error("payroll processing failed",
		"period_id", periodID, "company_id", companyID, "rolled_back", moved, "error", cause)
}

// RecoverStaleRuns returns periods whose processing run outlived staleAfter to draft.
// It is driven by the scheduler and carries no tenant claims.
func (s *PayrollServiceImpl) RecoverStaleRuns(ctx context.Context, staleAfter time.Duration) (int, error) {
	if staleAfter <= 0 {
		return 0, fmt.Errorf("stale window must be positive")
	}

	reset, err := s.periodRepo.ResetStaleProcessing(ctx, s.now().Add(-staleAfter))
	if err != nil {
		return 0, err
	}
	for _, p := range reset {
		s.logger.Warn("payroll period processing abandoned, reset to draft",
			"period_id", p.ID, "company_id", p.CompanyID, "version", p.Version)
	}
	if len(reset) > 0 {
		s.metrics.ObserveRecovered(len(reset))
	}
	return len(reset), nil
}

func (s *PayrollServiceImpl) resolveEmployees(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return s.employeeRepo.GetByCompanyID(ctx, companyID)
	}

	ids = validator.Unique(ids)
	found, err := s.employeeRepo.GetByIDs(ctx, ids, companyID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]employee.Employee, len(found))
	for _, emp := range found {
		byID[emp.ID] = emp
	}

	employees := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		emp, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func (s *PayrollServiceImpl) refreshTotals(ctx context.Context, periodID, companyID string) error {
	all, err := s.itemRepo.FindByPeriod(ctx, periodID, nil)
	if err != nil {
		return err
	}
	return s.periodRepo.UpdateTotals(ctx, periodID, companyID, ComputeTotals(all))
}

func (s *PayrollServiceImpl) MarkAsPaid(ctx context.Context, id string) (payroll.PayrollPeriodResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	var paid payroll.PayrollPeriod
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		period, err := s.periodRepo.GetByIDForUpdate(txCtx, id, companyID)
		if err != nil {
			return err
		}
		switch period.Status {
		case payroll.PeriodStatusProcessed:
		case payroll.PeriodStatusPaid:
			return payroll.ErrPeriodPaid
		default:
			return payroll.ErrPeriodNotProcessed
		}

		paid, err = s.periodRepo.MarkPaid(txCtx, id, companyID)
		return err
	})
	if err != nil {
		return payroll.PayrollPeriodResponse{}, err
	}

	s.logger.Info("payroll period marked as paid", "period_id", id, "company_id", companyID, "user_id", userID)
	return toPeriodResponse(paid), nil
}

func (s *PayrollServiceImpl) DuplicateFromPreviousPeriod(ctx context.Context, req payroll.DuplicatePayrollPeriodRequest) (payroll.DuplicatePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.DuplicatePayrollResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.DuplicatePayrollResponse{}, err
	}
	if req.SourcePeriodID != nil && *req.SourcePeriodID == req.TargetPeriodID {
		return payroll.DuplicatePayrollResponse{}, payroll.ErrSamePeriod
	}

	release, err := s.acquire(ctx, req.TargetPeriodID)
	if err != nil {
		return payroll.DuplicatePayrollResponse{}, err
	}
	defer release()

	var (
		target payroll.PayrollPeriod
		source payroll.PayrollPeriod
		copied int64
	)
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		target, err = s.periodRepo.GetByIDForUpdate(txCtx, req.TargetPeriodID, companyID)
		if err != nil {
			return err
		}
		if target.Status != payroll.PeriodStatusDraft {
			return payroll.ErrPeriodNotDraft
		}

		source, err = s.resolveSource(txCtx, companyID, target, req.SourcePeriodID)
		if err != nil {
			return err
		}

		sourceItems, err := s.itemRepo.FindByPeriod(txCtx, source.ID, nil)
		if err != nil {
			return err
		}
		employees := copiedEmployees(sourceItems, validator.Unique(req.EmployeeIDs))

		if len(employees) > 0 {
			if _, err := s.itemRepo.DeleteByPeriod(txCtx, target.ID, employees); err != nil {
				return err
			}
			copied, err = s.itemRepo.DuplicateFromPeriod(txCtx, source.ID, target.ID, employees)
			if err != nil {
				return err
			}
		}

		if err := s.refreshTotals(txCtx, target.ID, companyID); err != nil {
			return err
		}
		target, err = s.periodRepo.GetByID(txCtx, target.ID, companyID)
		return err
	})
	if err != nil {
		return payroll.DuplicatePayrollResponse{}, err
	}

	s.logger.Info("payroll items duplicated",
		"period_id", target.ID, "source_period_id", source.ID, "company_id", companyID, "items", copied)

	return payroll.DuplicatePayrollResponse{
		Period:         toPeriodResponse(target),
		SourcePeriodID: source.ID,
		ItemsCopied:    int(copied),
	}, nil
}

func (s *PayrollServiceImpl) resolveSource(ctx context.Context, companyID string, target payroll.PayrollPeriod, sourceID *string) (payroll.PayrollPeriod, error) {
	var (
		source payroll.PayrollPeriod
		err    error
	)
	if sourceID != nil {
		source, err = s.periodRepo.GetByID(ctx, *sourceID, companyID)
	} else {
		source, err = s.periodRepo.FindPrevious(ctx, companyID, target.PeriodStart, target.ID)
	}
	if errors.Is(err, payroll.ErrPeriodNotFound) {
		return payroll.PayrollPeriod{}, payroll.ErrSourcePeriodNotFound
	}
	return source, err
}

// copiedEmployees returns the employees of the source items, restricted to wanted when not empty,
// in first-seen order.
func copiedEmployees(items []payroll.PayrollItem, wanted []string) []string {
	allow := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		allow[id] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if seen[item.EmployeeID] || (len(wanted) > 0 && !allow[item.EmployeeID]) {
			continue
		}
		seen[item.EmployeeID] = true
		out = append(out, item.EmployeeID)
	}
	return out
}

// ========== READS ==========

func (s *PayrollServiceImpl) ListItems(ctx context.Context, periodID string, employeeID *string) ([]payroll.PayrollItemResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.periodRepo.GetByID(ctx, periodID, companyID); err != nil {
		return nil, err
	}

	items, err := s.itemRepo.FindByPeriod(ctx, periodID, employeeID)
	if err != nil {
		return nil, err
	}

	res := make([]payroll.PayrollItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toItemResponse(item))
	}
	return res, nil
}

// GetStats aggregates period counts and the money of processed and paid periods.
func (s *PayrollServiceImpl) GetStats(ctx context.Context, year *int) (payroll.PayrollStatsResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollStatsResponse{}, err
	}

	rows, err := s.periodRepo.Stats(ctx, companyID, year)
	if err != nil {
		return payroll.PayrollStatsResponse{}, err
	}

	return buildStats(rows), nil
}

func buildStats(rows []payroll.StatsRow) payroll.PayrollStatsResponse {
	res := payroll.PayrollStatsResponse{
		ByStatus:        make(map[payroll.PeriodStatus]int),
		ByType:          make(map[payroll.PeriodType]int),
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, st := range payroll.AllPeriodStatuses() {
		res.ByStatus[st] = 0
	}
	for _, pt := range payroll.AllPeriodTypes() {
		res.ByType[pt] = 0
	}

	var last *time.Time
	for _, row := range rows {
		res.TotalPeriods += row.Count
		res.ByStatus[row.Status] += row.Count
		res.ByType[row.PeriodType] += row.Count

		if row.Status == payroll.PeriodStatusProcessed || row.Status == payroll.PeriodStatusPaid {
			res.TotalGross = res.TotalGross.Add(row.TotalGross)
			res.TotalDeductions = res.TotalDeductions.Add(row.TotalDeductions)
			res.TotalNet = res.TotalNet.Add(row.TotalNet)
		}
		if row.LastProcessedAt != nil && (last == nil || row.LastProcessedAt.After(*last)) {
			last = row.LastProcessedAt
		}
	}
	if last != nil {
		formatted := last.UTC().Format(time.RFC3339)
		res.LastProcessedAt = &formatted
	}
	return res
}

// ========== HELPERS ==========

func ensureEditable(status payroll.PeriodStatus) error {
	switch status {
	case payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing:
		return nil
	case payroll.PeriodStatusPaid:
		return payroll.ErrPeriodPaid
	case payroll.PeriodStatusCancelled:
		return payroll.ErrPeriodCancelled
	default:
		return payroll.ErrPeriodNotEditable
	}
}

// newID returns a time ordered UUIDv7.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func employeeIDs(employees []employee.Employee) []string {
	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
	}
	return ids
}

func toPeriodResponse(p payroll.PayrollPeriod) payroll.PayrollPeriodResponse {
	res := payroll.PayrollPeriodResponse{
		ID:              p.ID,
		CompanyID:       p.CompanyID,
		Name:            p.Name,
		Description:     p.Description,
		PeriodType:      string(p.PeriodType),
		PeriodStart:     validator.FormatDate(p.PeriodStart),
		PeriodEnd:       validator.FormatDate(p.PeriodEnd),
		Status:          string(p.Status),
		TotalGross:      p.TotalGross,
		TotalDeductions: p.TotalDeductions,
		TotalNet:        p.TotalNet,
		EmployeeCount:   p.EmployeeCount,
		ProcessedBy:     p.ProcessedBy,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		formatted := validator.FormatDate(*p.PaymentDate)
		res.PaymentDate = &formatted
	}
	if p.ProcessedAt != nil {
		formatted := p.ProcessedAt.UTC().Format(time.RFC3339)
		res.ProcessedAt = &formatted
	}
	return res
}

func toItemResponse(item payroll.PayrollItem) payroll.PayrollItemResponse {
	return payroll.PayrollItemResponse{
		ID:              item.ID,
		PeriodID:        item.PeriodID,
		EmployeeID:      item.EmployeeID,
		ItemType:        string(item.ItemType),
		Description:     item.Description,
		CalculationType: string(item.CalculationType),
		BaseValue:       item.BaseValue,
		CalculatedValue: item.CalculatedValue,
		LegalReference:  item.LegalReference,
		Notes:           item.Notes,
	}
}
