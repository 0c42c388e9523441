package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/payment"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/till"
	"github.com/shopspring/decimal"
)

// LineResponse is one document line in API responses.
type LineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductCode   string          `json:"product_code,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	LineTotal     decimal.Decimal `json:"line_total"`
	StockReserved bool            `json:"stock_reserved,omitempty"`
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	BranchID         uuid.UUID       `json:"branch_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Type             string          `json:"type"`
	Items            []LineResponse  `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxMode          string          `json:"tax_mode"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Status           string          `json:"status"`
	QuotationID      *uuid.UUID      `json:"quotation_id,omitempty"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]LineResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = LineResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			LineTotal:   item.LineTotal,
		}
	}
	return SaleResponse{
		ID:               s.ID,
		Number:           s.Number,
		BranchID:         s.BranchID,
		CustomerID:       s.CustomerID,
		CustomerName:     s.CustomerName,
		Type:             string(s.Type),
		Items:            items,
		Subtotal:         s.Subtotal,
		OrderDiscountPct: s.OrderDiscountPct,
		DiscountAmount:   s.DiscountAmount,
		TaxMode:          string(s.TaxMode),
		TaxRate:          s.TaxRate,
		TaxAmount:        s.TaxAmount,
		Total:            s.Total,
		AmountPaid:       s.AmountPaid,
		AmountDue:        s.AmountDue,
		Status:           string(s.Status),
		QuotationID:      s.QuotationID,
		ConfirmedAt:      s.ConfirmedAt,
		CompletedAt:      s.CompletedAt,
		CancelledAt:      s.CancelledAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		Version:          s.Version,
	}
}

func toSaleResponses(items []sales.Sale) []SaleResponse {
	out := make([]SaleResponse, len(items))
	for i := range items {
		out[i] = toSaleResponse(&items[i])
	}
	return out
}

// QuotationResponse represents a quotation in API responses.
type QuotationResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	BranchID         uuid.UUID       `json:"branch_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Items            []LineResponse  `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxMode          string          `json:"tax_mode"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	QuotationDate    time.Time       `json:"quotation_date"`
	ExpiryDate       time.Time       `json:"expiry_date"`
	Status           string          `json:"status"`
	ConvertedSaleID  *uuid.UUID      `json:"converted_sale_id,omitempty"`
	SentAt           *time.Time      `json:"sent_at,omitempty"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toQuotationResponse(q *sales.Quotation) QuotationResponse {
	items := make([]LineResponse, len(q.Items))
	for i, item := range q.Items {
		items[i] = LineResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			LineTotal:   item.LineTotal,
		}
	}
	return QuotationResponse{
		ID:               q.ID,
		Number:           q.Number,
		BranchID:         q.BranchID,
		CustomerID:       q.CustomerID,
		CustomerName:     q.CustomerName,
		Items:            items,
		Subtotal:         q.Subtotal,
		OrderDiscountPct: q.OrderDiscountPct,
		DiscountAmount:   q.DiscountAmount,
		TaxMode:          string(q.TaxMode),
		TaxRate:          q.TaxRate,
		TaxAmount:        q.TaxAmount,
		Total:            q.Total,
		QuotationDate:    q.QuotationDate,
		ExpiryDate:       q.ExpiryDate,
		Status:           string(q.Status),
		ConvertedSaleID:  q.ConvertedSaleID,
		SentAt:           q.SentAt,
		DecidedAt:        q.DecidedAt,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
		Version:          q.Version,
	}
}

func toQuotationResponses(items []sales.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, len(items))
	for i := range items {
		out[i] = toQuotationResponse(&items[i])
	}
	return out
}

// LaybyResponse represents a layby in API responses.
type LaybyResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	BranchID         uuid.UUID       `json:"branch_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Items            []LineResponse  `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OrderDiscountPct decimal.Decimal `json:"order_discount_pct"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxMode          string          `json:"tax_mode"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	DepositRequired  decimal.Decimal `json:"deposit_required"`
	CancellationFee  decimal.Decimal `json:"cancellation_fee"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Status           string          `json:"status"`
	ActivatedAt      *time.Time      `json:"activated_at,omitempty"`
	CollectedAt      *time.Time      `json:"collected_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toLaybyResponse(l *sales.Layby) LaybyResponse {
	items := make([]LineResponse, len(l.Items))
	for i, item := range l.Items {
		items[i] = LineResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductCode:   item.ProductCode,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			DiscountPct:   item.DiscountPct,
			LineTotal:     item.LineTotal,
			StockReserved: item.StockReserved,
		}
	}
	return LaybyResponse{
		ID:               l.ID,
		Number:           l.Number,
		BranchID:         l.BranchID,
		CustomerID:       l.CustomerID,
		CustomerName:     l.CustomerName,
		Items:            items,
		Subtotal:         l.Subtotal,
		OrderDiscountPct: l.OrderDiscountPct,
		DiscountAmount:   l.DiscountAmount,
		TaxMode:          string(l.TaxMode),
		TaxRate:          l.TaxRate,
		TaxAmount:        l.TaxAmount,
		Total:            l.Total,
		DepositRequired:  l.DepositRequired,
		CancellationFee:  l.CancellationFee,
		AmountPaid:       l.AmountPaid,
		AmountDue:        l.AmountDue,
		Status:           string(l.Status),
		ActivatedAt:      l.ActivatedAt,
		CollectedAt:      l.CollectedAt,
		CancelledAt:      l.CancelledAt,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
		Version:          l.Version,
	}
}

func toLaybyResponses(items []sales.Layby) []LaybyResponse {
	out := make([]LaybyResponse, len(items))
	for i := range items {
		out[i] = toLaybyResponse(&items[i])
	}
	return out
}

// PaymentResponse represents a recorded payment in API responses.
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReceiptNumber   string          `json:"receipt_number"`
	TargetType      string          `json:"target_type"`
	TargetID        uuid.UUID       `json:"target_id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	ShiftID         *uuid.UUID      `json:"shift_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currency_code"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	ReceivedAt      time.Time       `json:"received_at"`
	Notes           string          `json:"notes,omitempty"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		TargetType:      string(p.Target.Type),
		TargetID:        p.Target.ID,
		BranchID:        p.BranchID,
		PaymentMethodID: p.PaymentMethodID,
		ShiftID:         p.ShiftID,
		Amount:          p.Amount,
		CurrencyCode:    p.CurrencyCode,
		ExchangeRate:    p.ExchangeRate,
		BaseAmount:      p.BaseAmount,
		ReceivedAt:      p.ReceivedAt,
		Notes:           p.Notes,
	}
}

// StockItemResponse represents a stock row in API responses.
type StockItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

func toStockItemResponse(s *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:        s.ID,
		BranchID:  s.BranchID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt,
		Version:   s.Version,
	}
}

func toStockItemResponses(items []inventory.StockItem) []StockItemResponse {
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = toStockItemResponse(&items[i])
	}
	return out
}

// ShiftResponse represents a till shift in API responses.
type ShiftResponse struct {
	ID           uuid.UUID       `json:"id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	TillID       uuid.UUID       `json:"till_id"`
	CashierID    uuid.UUID       `json:"cashier_id"`
	Status       string          `json:"status"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	CashSales    decimal.Decimal `json:"cash_sales"`
	MovementsNet decimal.Decimal `json:"movements_net"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	CountedCash  decimal.Decimal `json:"counted_cash"`
	Variance     decimal.Decimal `json:"variance"`
	OpenedAt     time.Time       `json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Version      int             `json:"version"`
}

func toShiftResponse(s *till.Shift) ShiftResponse {
	return ShiftResponse{
		ID:           s.ID,
		BranchID:     s.BranchID,
		TillID:       s.TillID,
		CashierID:    s.CashierID,
		Status:       string(s.Status),
		OpeningFloat: s.OpeningFloat,
		CashSales:    s.CashSales,
		MovementsNet: s.MovementsNet,
		ExpectedCash: s.ExpectedCash,
		CountedCash:  s.CountedCash,
		Variance:     s.Variance,
		OpenedAt:     s.OpenedAt,
		ClosedAt:     s.ClosedAt,
		Notes:        s.Notes,
		Version:      s.Version,
	}
}

func toShiftResponses(items []till.Shift) []ShiftResponse {
	out := make([]ShiftResponse, len(items))
	for i := range items {
		out[i] = toShiftResponse(&items[i])
	}
	return out
}

// CashMovementResponse represents a cash movement in API responses.
type CashMovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ShiftID      uuid.UUID       `json:"shift_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	Reason       string          `json:"reason"`
	Approved     bool            `json:"approved"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toCashMovementResponse(m *till.CashMovement) CashMovementResponse {
	return CashMovementResponse{
		ID:           m.ID,
		ShiftID:      m.ShiftID,
		Type:         string(m.Type),
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		ExchangeRate: m.ExchangeRate,
		BaseAmount:   m.BaseAmount,
		Reason:       m.Reason,
		Approved:     m.Approved,
		ApprovedBy:   m.ApprovedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// DayEndPaymentLineResponse is one reconciliation row in API responses.
type DayEndPaymentLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	CurrencyCode    string          `json:"currency_code"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount"`
	CountedAmount   decimal.Decimal `json:"counted_amount"`
	Variance        decimal.Decimal `json:"variance"`
}

// DayEndResponse represents a day-end summary in API responses.
type DayEndResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	BranchID           uuid.UUID                   `json:"branch_id"`
	BusinessDate       time.Time                   `json:"business_date"`
	Status             string                      `json:"status"`
	Payments           []DayEndPaymentLineResponse `json:"payments"`
	ShiftIDs           []uuid.UUID                 `json:"shift_ids"`
	TotalExpected      decimal.Decimal             `json:"total_expected"`
	TotalCounted       decimal.Decimal             `json:"total_counted"`
	TotalVariance      decimal.Decimal             `json:"total_variance"`
	TotalSales         decimal.Decimal             `json:"total_sales"`
	TotalShiftVariance decimal.Decimal             `json:"total_shift_variance"`
	Notes              string                      `json:"notes,omitempty"`
	ReviewedBy         *uuid.UUID                  `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time                  `json:"reviewed_at,omitempty"`
	ApprovedBy         *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time                  `json:"approved_at,omitempty"`
	ReopenedBy         *uuid.UUID                  `json:"reopened_by,omitempty"`
	ReopenedAt         *time.Time                  `json:"reopened_at,omitempty"`
	CanEditUntil       *time.Time                  `json:"can_edit_until,omitempty"`
	Version            int                         `json:"version"`
}

func toDayEndResponse(d *dayend.DayEnd) DayEndResponse {
	lines := make([]DayEndPaymentLineResponse, len(d.Payments))
	for i, line := range d.Payments {
		lines[i] = DayEndPaymentLineResponse{
			ID:              line.ID,
			PaymentMethodID: line.PaymentMethodID,
			CurrencyCode:    line.CurrencyCode,
			ExpectedAmount:  line.ExpectedAmount,
			CountedAmount:   line.CountedAmount,
			Variance:        line.Variance,
		}
	}
	shiftIDs := make([]uuid.UUID, len(d.Shifts))
	for i, link := range d.Shifts {
		shiftIDs[i] = link.ShiftID
	}
	return DayEndResponse{
		ID:                 d.ID,
		BranchID:           d.BranchID,
		BusinessDate:       d.BusinessDate,
		Status:             string(d.Status),
		Payments:           lines,
		ShiftIDs:           shiftIDs,
		TotalExpected:      d.TotalExpected,
		TotalCounted:       d.TotalCounted,
		TotalVariance:      d.TotalVariance,
		TotalSales:         d.TotalSales,
		TotalShiftVariance: d.TotalShiftVariance,
		Notes:              d.Notes,
		ReviewedBy:         d.ReviewedBy,
		ReviewedAt:         d.ReviewedAt,
		ApprovedBy:         d.ApprovedBy,
		ApprovedAt:         d.ApprovedAt,
		ReopenedBy:         d.ReopenedBy,
		ReopenedAt:         d.ReopenedAt,
		CanEditUntil:       d.CanEditUntil(),
		Version:            d.Version,
	}
}

func toDayEndResponses(items []dayend.DayEnd) []DayEndResponse {
	out := make([]DayEndResponse, len(items))
	for i := range items {
		out[i] = toDayEndResponse(&items[i])
	}
	return out
}
