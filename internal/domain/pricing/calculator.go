// Package pricing implements the pricing and discount calculator. It is a
// pure domain service: given line inputs, an order-level discount and the
// effective branch tax settings it computes all document totals without
// side effects.
package pricing

import (
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	minTaxRate = decimal.NewFromInt(-100)
)

// TaxSettings are the effective tax configuration for a branch.
type TaxSettings struct {
	Mode catalog.TaxMode
	Rate decimal.Decimal // percentage, e.g. 15 for 15%
}

// LineInput is one cart line to be priced.
type LineInput struct {
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	DiscountPct decimal.Decimal
}

// LineResult carries the per-line outcome.
type LineResult struct {
	Subtotal decimal.Decimal // UnitPrice * Quantity
	Total    decimal.Decimal // Subtotal after the line discount
}

// Result is the full pricing outcome for a document.
type Result struct {
	Lines               []LineResult
	Subtotal            decimal.Decimal // sum of line totals
	OrderDiscountAmount decimal.Decimal
	DiscountedSubtotal  decimal.Decimal
	TaxAmount           decimal.Decimal
	Total               decimal.Decimal
}

// Calculate prices the given lines under the order discount and tax
// settings. Tax is extracted from the discounted subtotal in inclusive
// mode and added on top in exclusive mode. A 100% discount yields a zero
// total and zero tax; the rate is guarded against -100% so the inclusive
// divisor can never reach zero.
func Calculate(lines []LineInput, orderDiscountPct decimal.Decimal, tax TaxSettings) (Result, error) {
	if len(lines) == 0 {
		return Result{}, shared.NewDomainError(shared.CodeValidation, "At least one line is required")
	}
	if err := validatePct(orderDiscountPct, "order discount"); err != nil {
		return Result{}, err
	}
	if !tax.Mode.IsValid() {
		return Result{}, shared.NewDomainErrorf(shared.CodeValidation, "Unknown tax mode %q", tax.Mode)
	}
	if tax.Rate.LessThanOrEqual(minTaxRate) {
		return Result{}, shared.NewDomainErrorf(shared.CodeValidation, "Tax rate must be greater than -100%%, got %s", tax.Rate)
	}

	result := Result{Lines: make([]LineResult, 0, len(lines))}
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return Result{}, shared.NewDomainError(shared.CodeValidation, "Line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return Result{}, shared.NewDomainError(shared.CodeValidation, "Line unit price cannot be negative")
		}
		if err := validatePct(line.DiscountPct, "line discount"); err != nil {
			return Result{}, err
		}

		lineSubtotal := line.UnitPrice.Mul(line.Quantity)
		lineTotal := lineSubtotal.Mul(hundred.Sub(line.DiscountPct)).Div(hundred)
		result.Lines = append(result.Lines, LineResult{Subtotal: lineSubtotal, Total: lineTotal})
		subtotal = subtotal.Add(lineTotal)
	}

	result.Subtotal = subtotal
	result.OrderDiscountAmount = subtotal.Mul(orderDiscountPct).Div(hundred)
	result.DiscountedSubtotal = subtotal.Sub(result.OrderDiscountAmount)

	switch tax.Mode {
	case catalog.TaxModeInclusive:
		divisor := decimal.NewFromInt(1).Add(tax.Rate.Div(hundred))
		result.TaxAmount = result.DiscountedSubtotal.Sub(result.DiscountedSubtotal.Div(divisor))
		result.Total = result.DiscountedSubtotal
	case catalog.TaxModeExclusive:
		result.TaxAmount = result.DiscountedSubtotal.Mul(tax.Rate).Div(hundred)
		result.Total = result.DiscountedSubtotal.Add(result.TaxAmount)
	}

	result.TaxAmount = result.TaxAmount.Round(2)
	result.Total = result.Total.Round(2)
	return result, nil
}

func validatePct(pct decimal.Decimal, what string) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return shared.NewDomainErrorf(shared.CodeValidation, "Invalid %s percentage %s: must be between 0 and 100", what, pct)
	}
	return nil
}
