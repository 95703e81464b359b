package payroll

import (
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/erp-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const (
	legalRefINSS = "Lei nº 8.212/1991, art. 20"
	legalRefIRRF = "Lei nº 7.713/1988"
	legalRefFGTS = "Lei nº 8.036/1990, art. 15"
)

type bracket struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}

// inssBrackets are applied progressively, each rate only on the slice of salary inside its bracket.
var inssBrackets = []bracket{
	{upTo: decimal.RequireFromString("1412.00"), rate: decimal.RequireFromString("0.075")},
	{upTo: decimal.RequireFromString("2666.68"), rate: decimal.RequireFromString("0.09")},
	{upTo: decimal.RequireFromString("4000.03"), rate: decimal.RequireFromString("0.12")},
	{upTo: decimal.RequireFromString("7786.02"), rate: decimal.RequireFromString("0.14")},
}

// INSSCeiling is the maximum monthly employee contribution.
var INSSCeiling = decimal.RequireFromString("908.85")

type irrfBracket struct {
	upTo      *decimal.Decimal
	rate      decimal.Decimal
	deduction decimal.Decimal
}

func limit(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// irrfBrackets apply the full rate to the whole base minus the bracket deduction.
var irrfBrackets = []irrfBracket{
	{upTo: limit("2112.00"), rate: decimal.Zero, deduction: decimal.Zero},
	{upTo: limit("2826.65"), rate: decimal.RequireFromString("0.075"), deduction: decimal.RequireFromString("158.40")},
	{upTo: limit("3751.05"), rate: decimal.RequireFromString("0.15"), deduction: decimal.RequireFromString("370.40")},
	{upTo: limit("4664.68"), rate: decimal.RequireFromString("0.225"), deduction: decimal.RequireFromString("651.73")},
	{upTo: nil, rate: decimal.RequireFromString("0.275"), deduction: decimal.RequireFromString("884.96")},
}

var fgtsRate = decimal.RequireFromString("0.08")

// money rounds to cents, half away from zero.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// INSS returns the employee social security contribution for a monthly salary.
func INSS(salary decimal.Decimal) decimal.Decimal {
	if !salary.IsPositive() {
		return decimal.Zero
	}

	total := decimal.Zero
	lower := decimal.Zero
	for _, b := range inssBrackets {
		if !salary.GreaterThan(lower) {
			break
		}
		slice := decimal.Min(salary, b.upTo).Sub(lower)
		total = total.Add(slice.Mul(b.rate))
		lower = b.upTo
	}

	// The progressive sum lands one cent above the ceiling at the top of the last bracket.
	return decimal.Min(money(total), INSSCeiling)
}

// IRRF returns the income tax withheld on a taxable base (salary minus INSS).
func IRRF(base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}

	for _, b := range irrfBrackets {
		if b.upTo != nil && base.GreaterThan(*b.upTo) {
			continue
		}
		tax := money(base.Mul(b.rate).Sub(b.deduction))
		if tax.IsNegative() {
			return decimal.Zero
		}
		return tax
	}
	return decimal.Zero
}

// FGTS returns the employer severance fund deposit for a salary.
func FGTS(salary decimal.Decimal) decimal.Decimal {
	if !salary.IsPositive() {
		return decimal.Zero
	}
	return money(salary.Mul(fgtsRate))
}

// Calculator turns an employee's salary into the statutory payroll items using the
// current INSS, IRRF and FGTS tables.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateItems builds the ordered statutory items of one employee.
// Period, ID and timestamps are left for the caller to fill.
func (c *Calculator) CalculateItems(emp employee.Employee) []payroll.PayrollItem {
	salary := money(emp.Salary())
	if !salary.IsPositive() {
		return nil
	}

	items := make([]payroll.PayrollItem, 0, 4)
	add := func(item payroll.PayrollItem) {
		item.EmployeeID = emp.ID
		item.Position = len(items) + 1
		items = append(items, item)
	}

	add(payroll.PayrollItem{
		ItemType:        payroll.ItemTypeBaseSalary,
		Description:     "Base salary",
		CalculationType: payroll.CalculationTypeFixed,
		BaseValue:       decimalPtr(salary),
		CalculatedValue: salary,
	})

	inss := INSS(salary)
	if inss.IsPositive() {
		item := payroll.PayrollItem{
			ItemType:        payroll.ItemTypeINSS,
			Description:     "INSS employee contribution",
			CalculationType: payroll.CalculationTypePercentage,
			BaseValue:       decimalPtr(salary),
			CalculatedValue: inss.Neg(),
			LegalReference:  stringPtr(legalRefINSS),
		}
		if inss.Equal(INSSCeiling) {
			item.Notes = stringPtr("capped at the contribution ceiling")
		}
		add(item)
	}

	taxable := salary.Sub(inss)
	if irrf := IRRF(taxable); irrf.IsPositive() {
		add(payroll.PayrollItem{
			ItemType:        payroll.ItemTypeIRRF,
			Description:     "IRRF income tax withholding",
			CalculationType: payroll.CalculationTypePercentage,
			BaseValue:       decimalPtr(taxable),
			CalculatedValue: irrf.Neg(),
			LegalReference:  stringPtr(legalRefIRRF),
		})
	}

	if fgts := FGTS(salary); fgts.IsPositive() {
		add(payroll.PayrollItem{
			ItemType:        payroll.ItemTypeFGTS,
			Description:     "FGTS employer deposit",
			CalculationType: payroll.CalculationTypePercentage,
			BaseValue:       decimalPtr(salary),
			CalculatedValue: fgts,
			LegalReference:  stringPtr(legalRefFGTS),
			Notes:           stringPtr("employer charge, not withheld from the employee"),
		})
	}

	return items
}

// ComputeTotals derives period totals from the full item set.
// FGTS is positive and therefore counted in gross.
func ComputeTotals(items []payroll.PayrollItem) payroll.Totals {
	gross := decimal.Zero
	deductions := decimal.Zero
	employees := make(map[string]struct{})

	for _, item := range items {
		switch {
		case item.CalculatedValue.IsPositive():
			gross = gross.Add(item.CalculatedValue)
		case item.CalculatedValue.IsNegative():
			deductions = deductions.Add(item.CalculatedValue.Abs())
		}
		employees[item.EmployeeID] = struct{}{}
	}

	gross = money(gross)
	deductions = money(deductions)
	return payroll.Totals{
		Gross:         gross,
		Deductions:    deductions,
		Net:           gross.Sub(deductions),
		EmployeeCount: len(employees),
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}
