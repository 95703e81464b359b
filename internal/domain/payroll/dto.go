package payroll

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	MinNameLength        = 3
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxPeriodDays        = 93
)

// ========== PERIOD DTOs ==========

type CreatePayrollPeriodRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PeriodType  string  `json:"period_type"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	PaymentDate *string `json:"payment_date,omitempty"`
}

func (r *CreatePayrollPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	var payment *time.Time
	if r.PaymentDate != nil {
		parsed, ok := validator.IsValidDate(*r.PaymentDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
		} else {
			payment = &parsed
		}
	}

	errs = append(errs, validateNameAndDescription(r.Name, r.Description)...)
	if !PeriodType(r.PeriodType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "must be 'monthly', 'biweekly' or 'weekly'"})
	}
	if startOK && endOK {
		errs = append(errs, validateRange(start, end, payment)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePayrollPeriodRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PeriodType  *string `json:"period_type,omitempty"`
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Apply merges the patch into p and validates the merged record.
func (r *UpdatePayrollPeriodRequest) Apply(p PayrollPeriod) (PayrollPeriod, error) {
	var errs validator.ValidationErrors

	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.PeriodType != nil {
		p.PeriodType = PeriodType(*r.PeriodType)
	}
	if r.PeriodStart != nil {
		parsed, ok := validator.IsValidDate(*r.PeriodStart)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
		}
		p.PeriodStart = parsed
	}
	if r.PeriodEnd != nil {
		parsed, ok := validator.IsValidDate(*r.PeriodEnd)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
		}
		p.PeriodEnd = parsed
	}
	if r.PaymentDate != nil {
		parsed, ok := validator.IsValidDate(*r.PaymentDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
		}
		p.PaymentDate = &parsed
	}
	if r.Status != nil {
		status := PeriodStatus(*r.Status)
		if status != PeriodStatusDraft && status != PeriodStatusCancelled {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "can only be set to 'draft' or 'cancelled'"})
		}
		p.Status = status
	}
	if len(errs) > 0 {
		return PayrollPeriod{}, errs
	}

	errs = append(errs, validateNameAndDescription(p.Name, p.Description)...)
	if !p.PeriodType.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "must be 'monthly', 'biweekly' or 'weekly'"})
	}
	errs = append(errs, validateRange(p.PeriodStart, p.PeriodEnd, p.PaymentDate)...)
	if len(errs) > 0 {
		return PayrollPeriod{}, errs
	}

	p.Name = strings.TrimSpace(p.Name)
	return p, nil
}

// DatesChanged reports whether the patch touches the period range.
func (r *UpdatePayrollPeriodRequest) DatesChanged() bool {
	return r.PeriodStart != nil || r.PeriodEnd != nil
}

func validateNameAndDescription(name string, description *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	n := len([]rune(strings.TrimSpace(name)))
	if n < MinNameLength || n > MaxNameLength {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must be between 3 and 100 characters"})
	}
	if description != nil && len([]rune(*description)) > MaxDescriptionLength {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "must be at most 500 characters"})
	}
	return errs
}

func validateRange(start, end time.Time, payment *time.Time) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !end.After(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be after period_start"})
	} else if end.Sub(start) > MaxPeriodDays*24*time.Hour {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "period cannot span more than 93 days"})
	}
	if payment != nil && payment.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "cannot be before period_start"})
	}
	return errs
}

type ProcessPayrollPeriodRequest struct {
	ID          string   `json:"-"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = all active employees
	Recompute   bool     `json:"recompute"`
}

func (r *ProcessPayrollPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty ids"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DuplicatePayrollPeriodRequest struct {
	TargetPeriodID string   `json:"-"`
	SourcePeriodID *string  `json:"source_period_id,omitempty"` // Empty = previous period
	EmployeeIDs    []string `json:"employee_ids,omitempty"`
}

func (r *DuplicatePayrollPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.SourcePeriodID != nil && validator.IsEmpty(*r.SourcePeriodID) {
		errs = append(errs, validator.ValidationError{Field: "source_period_id", Message: "must not be empty"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty ids"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollPeriodFilter struct {
	Status     *string `json:"status,omitempty"`
	PeriodType *string `json:"period_type,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

var periodSortColumns = []string{"period_start", "period_end", "name", "status", "created_at"}

// Validate checks the filter and fills paging and sort defaults.
func (f *PayrollPeriodFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !PeriodStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "invalid status"})
	}
	if f.PeriodType != nil && !PeriodType(*f.PeriodType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "period_type", Message: "invalid period type"})
	}
	if f.Year != nil && (*f.Year < 1900 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a four digit year"})
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.SortBy == "" {
		f.SortBy = "period_start"
	} else if !validator.IsInSlice(f.SortBy, periodSortColumns) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "must be one of period_start, period_end, name, status, created_at"})
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "must be 'asc' or 'desc'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSES ==========

type PayrollPeriodResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	PeriodType      string          `json:"period_type"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	PaymentDate     *string         `json:"payment_date,omitempty"`
	Status          string          `json:"status"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	EmployeeCount   int             `json:"employee_count"`
	ProcessedAt     *string         `json:"processed_at,omitempty"`
	ProcessedBy     *string         `json:"processed_by,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ListPayrollPeriodResponse struct {
	Data       []PayrollPeriodResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollItemResponse struct {
	ID              string           `json:"id"`
	PeriodID        string           `json:"period_id"`
	EmployeeID      string           `json:"employee_id"`
	ItemType        string           `json:"item_type"`
	Description     string           `json:"description"`
	CalculationType string           `json:"calculation_type"`
	BaseValue       *decimal.Decimal `json:"base_value,omitempty"`
	CalculatedValue decimal.Decimal  `json:"calculated_value"`
	LegalReference  *string          `json:"legal_reference,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

type ProcessPayrollResponse struct {
	Period             PayrollPeriodResponse `json:"period"`
	EmployeesProcessed int                   `json:"employees_processed"`
	ItemsGenerated     int                   `json:"items_generated"`
}

type DuplicatePayrollResponse struct {
	Period         PayrollPeriodResponse `json:"period"`
	SourcePeriodID string                `json:"source_period_id"`
	ItemsCopied    int                   `json:"items_copied"`
}

type PayrollStatsResponse struct {
	TotalPeriods    int                  `json:"total_periods"`
	ByStatus        map[PeriodStatus]int `json:"by_status"`
	ByType          map[PeriodType]int   `json:"by_type"`
	TotalGross      decimal.Decimal      `json:"total_gross"`
	TotalDeductions decimal.Decimal      `json:"total_deductions"`
	TotalNet        decimal.Decimal      `json:"total_net"`
	LastProcessedAt *string              `json:"last_processed_at,omitempty"`
}
