package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType enum
type PeriodType string

const (
	PeriodTypeMonthly  PeriodType = "monthly"
	PeriodTypeBiweekly PeriodType = "biweekly"
	PeriodTypeWeekly   PeriodType = "weekly"
)

// AllPeriodTypes lists every PeriodType in display order.
func AllPeriodTypes() []PeriodType {
	return []PeriodType{PeriodTypeMonthly, PeriodTypeBiweekly, PeriodTypeWeekly}
}

func (t PeriodType) IsValid() bool {
	switch t {
	case PeriodTypeMonthly, PeriodTypeBiweekly, PeriodTypeWeekly:
		return true
	}
	return false
}

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusProcessed  PeriodStatus = "processed"
	PeriodStatusPaid       PeriodStatus = "paid"
	PeriodStatusCancelled  PeriodStatus = "cancelled"
)

// AllPeriodStatuses lists every PeriodStatus in lifecycle order.
func AllPeriodStatuses() []PeriodStatus {
	return []PeriodStatus{
		PeriodStatusDraft,
		PeriodStatusProcessing,
		PeriodStatusProcessed,
		PeriodStatusPaid,
		PeriodStatusCancelled,
	}
}

func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusProcessed, PeriodStatusPaid, PeriodStatusCancelled:
		return true
	}
	return false
}

// IsEditable reports whether the period can still be updated or deleted.
func (s PeriodStatus) IsEditable() bool {
	return s == PeriodStatusDraft || s == PeriodStatusProcessing
}

// PayrollPeriod - one payroll cycle of a company
type PayrollPeriod struct {
	ID              string
	CompanyID       string
	Name            string
	Description     *string
	PeriodType      PeriodType
	PeriodStart     time.Time
	PeriodEnd       time.Time
	PaymentDate     *time.Time
	Status          PeriodStatus
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int
	ProcessedAt     *time.Time
	ProcessedBy     *string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Overlaps reports whether [start, end] intersects the period range, bounds inclusive.
func (p PayrollPeriod) Overlaps(start, end time.Time) bool {
	return !start.After(p.PeriodEnd) && !end.Before(p.PeriodStart)
}

// ItemType enum
type ItemType string

const (
	ItemTypeBaseSalary       ItemType = "base_salary"
	ItemTypeINSS             ItemType = "inss"
	ItemTypeIRRF             ItemType = "irrf"
	ItemTypeFGTS             ItemType = "fgts"
	ItemTypeOvertime         ItemType = "overtime"
	ItemTypeNightShift       ItemType = "night_shift"
	ItemTypeBonus            ItemType = "bonus"
	ItemTypeCommission       ItemType = "commission"
	ItemTypeThirteenthSalary ItemType = "thirteenth_salary"
	ItemTypeVacation         ItemType = "vacation"
	ItemTypeMealVoucher      ItemType = "meal_voucher"
	ItemTypeTransportVoucher ItemType = "transport_voucher"
	ItemTypeHealthInsurance  ItemType = "health_insurance"
	ItemTypeAdjustment       ItemType = "adjustment"
)

// CalculationType enum
type CalculationType string

const (
	CalculationTypeFixed      CalculationType = "fixed"
	CalculationTypePercentage CalculationType = "percentage"
	CalculationTypeHours      CalculationType = "hours"
	CalculationTypeComputed   CalculationType = "computed"
)

// PayrollItem - one payroll concept for one employee in one period.
// CalculatedValue is signed: positive is an earning, negative a deduction.
type PayrollItem struct {
	ID              string
	PeriodID        string
	EmployeeID      string
	Position        int
	ItemType        ItemType
	Description     string
	CalculationType CalculationType
	BaseValue       *decimal.Decimal
	CalculatedValue decimal.Decimal
	LegalReference  *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Totals - aggregate values of a period
type Totals struct {
	Gross         decimal.Decimal
	Deductions    decimal.Decimal
	Net           decimal.Decimal
	EmployeeCount int
}

// StatsRow - one group of the period statistics query
type StatsRow struct {
	Status          PeriodStatus
	PeriodType      PeriodType
	Count           int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	LastProcessedAt *time.Time
}
