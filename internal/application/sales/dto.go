// Package sales wires the selling workflows: orchestration of the sale,
// quotation and layby aggregates together with stock, payments and
// document numbering, all inside single transactions.
package sales

import (
	"github.com/google/uuid"
	domain "github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// LineInput is one requested document line. The unit price is always
// resolved from the catalog server-side; clients only choose product,
// quantity and discount.
type LineInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// CreateSaleInput creates a draft credit sale.
type CreateSaleInput struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
}

// UpdateSaleInput replaces the lines of a draft sale.
type UpdateSaleInput struct {
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
}

// PaymentInput records one tender against a sale or layby. ShiftID links
// the payment to an open drawer shift when taken at a till.
type PaymentInput struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode    string          `json:"currency_code" binding:"required,currency_code"`
	ShiftID         *uuid.UUID      `json:"shift_id"`
	Notes           string          `json:"notes"`
}

// TillSaleInput creates, confirms, fully pays and completes a sale in one
// transaction. The payment must cover the whole total.
type TillSaleInput struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
	Payment          PaymentInput    `json:"payment" binding:"required"`
}

// CreateQuotationInput creates a draft quotation. Validity defaults to the
// branch's configured number of days when ValidityDays is zero.
type CreateQuotationInput struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
	ValidityDays     int             `json:"validity_days"`
}

// CreateLaybyInput creates a draft layby. Deposit percentage and
// cancellation fee are snapshotted from branch settings.
type CreateLaybyInput struct {
	BranchID         uuid.UUID       `json:"branch_id" binding:"required"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
}

// UpdateLaybyInput replaces the lines of a draft layby before any payment.
type UpdateLaybyInput struct {
	Lines            []LineInput     `json:"lines" binding:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
}

// CancelLaybyResult reports the outcome of a layby cancellation.
type CancelLaybyResult struct {
	Layby  *domain.Layby   `json:"layby"`
	Refund decimal.Decimal `json:"refund"`
}
