// Package invoice derives billable amounts from a contract's pricing schedule
// and recorded usage. Nothing here is persisted; every figure is recomputed
// from the Fix and FixContract on demand.
package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

type LineKind string

const (
	LineBaseFee        LineKind = "BASE_FEE"
	LineDaysOverTime   LineKind = "DAYS_OVER_TIME"
	LineTonsOverWeight LineKind = "TONS_OVER_WEIGHT"
)

// Line is one row of the invoice items table.
type Line struct {
	Kind      LineKind        `json:"kind"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

type ComponentKind string

const (
	ComponentCustomAmount   ComponentKind = "CUSTOM_AMOUNT"
	ComponentLandFillCost   ComponentKind = "LAND_FILL_COST"
	ComponentTonsOverWeight ComponentKind = "TONS_OVER_WEIGHT"
	ComponentDaysOverTime   ComponentKind = "DAYS_OVER_TIME"
)

// PaymentIndicator is the paid/unpaid flag shown next to a chargeable component.
// Paid mirrors the matching madePayment flag and nothing else.
type PaymentIndicator struct {
	Component ComponentKind   `json:"component"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
}

// Breakdown is everything the detail view, list row and PDF print.
type Breakdown struct {
	BaseFee      decimal.Decimal    `json:"baseFee"`
	Lines        []Line             `json:"lines"`
	Indicators   []PaymentIndicator `json:"indicators"`
	IncludedDays int                `json:"includedDays"`
	TotalDue     decimal.Decimal    `json:"totalDue"`
}

// BaseFee is the custom amount plus the land-fill cost.
func BaseFee(fix model.Fix) decimal.Decimal {
	return fix.CustomAmount.Add(fix.LandFillCost)
}

// OverTimeCharge is days*rate, or zero when no positive quantity is recorded.
func OverTimeCharge(fix model.Fix, fc model.FixContract) (decimal.Decimal, bool) {
	if !fc.PaymentDaysOverTimeAmount.IsPositive() {
		return decimal.Zero, false
	}
	return fc.PaymentDaysOverTimeAmount.Mul(fix.DaysOverTimeAmount), true
}

// OverWeightCharge is tons*rate, or zero when no positive quantity is recorded.
func OverWeightCharge(fix model.Fix, fc model.FixContract) (decimal.Decimal, bool) {
	if !fc.PaymentTonsOverWeightAmount.IsPositive() {
		return decimal.Zero, false
	}
	return fc.PaymentTonsOverWeightAmount.Mul(fix.TonsOverWeightAmount), true
}

// TotalDue applies the billing rule: base fee plus any positive overage terms.
func TotalDue(fix model.Fix, fc model.FixContract) decimal.Decimal {
	total := BaseFee(fix)
	if charge, ok := OverTimeCharge(fix, fc); ok {
		total = total.Add(charge)
	}
	if charge, ok := OverWeightCharge(fix, fc); ok {
		total = total.Add(charge)
	}
	return total
}

// ContractTotal is TotalDue for a loaded contract aggregate.
func ContractTotal(c model.Contract) decimal.Decimal {
	return TotalDue(c.FixContract.Fix, c.FixContract)
}

// IncludedDays is the rental term length, independent of date order.
func IncludedDays(start, end model.Date) int {
	days := start.DaysUntil(end)
	if days < 0 {
		return -days
	}
	return days
}

// Lines builds the items table. The base fee row is always present; overage
// rows appear only for positive recorded quantities.
func Lines(fix model.Fix, fc model.FixContract) []Line {
	base := BaseFee(fix)
	lines := []Line{{
		Kind:      LineBaseFee,
		Label:     "Custom Amount",
		Quantity:  1,
		UnitPrice: base,
		Amount:    base,
	}}
	if charge, ok := OverTimeCharge(fix, fc); ok {
		lines = append(lines, Line{
			Kind:      LineDaysOverTime,
			Label:     fmt.Sprintf("%s days overtime x $%s", fc.PaymentDaysOverTimeAmount.String(), fix.DaysOverTimeAmount.StringFixed(2)),
			Quantity:  1,
			UnitPrice: charge,
			Amount:    charge,
		})
	}
	if charge, ok := OverWeightCharge(fix, fc); ok {
		lines = append(lines, Line{
			Kind:      LineTonsOverWeight,
			Label:     fmt.Sprintf("%s tons overweight x $%s", fc.PaymentTonsOverWeightAmount.String(), fix.TonsOverWeightAmount.StringFixed(2)),
			Quantity:  1,
			UnitPrice: charge,
			Amount:    charge,
		})
	}
	return lines
}

// Indicators lists the four chargeable components with their paid flags.
// Overage amounts follow the items table: zero unless a positive quantity is
// recorded.
func Indicators(fix model.Fix, fc model.FixContract) []PaymentIndicator {
	tons, _ := OverWeightCharge(fix, fc)
	days, _ := OverTimeCharge(fix, fc)
	return []PaymentIndicator{
		{Component: ComponentCustomAmount, Amount: fix.CustomAmount, Paid: fc.MadePaymentCustomAmount},
		{Component: ComponentLandFillCost, Amount: fix.LandFillCost, Paid: fc.MadePaymentLandFillCost},
		{Component: ComponentTonsOverWeight, Amount: tons, Paid: fc.MadePaymentTonsOverWeightAmount},
		{Component: ComponentDaysOverTime, Amount: days, Paid: fc.MadePaymentDaysOverTimeAmount},
	}
}

// PaidAmount sums the components whose payment flag is set.
func PaidAmount(fix model.Fix, fc model.FixContract) decimal.Decimal {
	paid := decimal.Zero
	if fc.MadePaymentCustomAmount {
		paid = paid.Add(fix.CustomAmount)
	}
	if fc.MadePaymentLandFillCost {
		paid = paid.Add(fix.LandFillCost)
	}
	if charge, ok := OverWeightCharge(fix, fc); ok && fc.MadePaymentTonsOverWeightAmount {
		paid = paid.Add(charge)
	}
	if charge, ok := OverTimeCharge(fix, fc); ok && fc.MadePaymentDaysOverTimeAmount {
		paid = paid.Add(charge)
	}
	return paid
}

func Compute(c model.Contract) Breakdown {
	fix := c.FixContract.Fix
	return Breakdown{
		BaseFee:      BaseFee(fix),
		Lines:        Lines(fix, c.FixContract),
		Indicators:   Indicators(fix, c.FixContract),
		IncludedDays: IncludedDays(c.StartDate, c.EndDate),
		TotalDue:     TotalDue(fix, c.FixContract),
	}
}

// Number formats an invoice number the way it is printed.
func Number(n int64) string {
	return fmt.Sprintf("%06d", n)
}
