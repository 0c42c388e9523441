package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/pricing"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents the status of a quotation.
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// IsValid checks whether the status is a known QuotationStatus.
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// String returns the string representation.
func (s QuotationStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s QuotationStatus) IsTerminal() bool {
	return s == QuotationStatusAccepted || s == QuotationStatusRejected || s == QuotationStatusExpired
}

// QuotationItem is a line item in a quotation, priced at creation time.
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (QuotationItem) TableName() string {
	return "quotation_items"
}

func (i QuotationItem) toLineInput() pricing.LineInput {
	return pricing.LineInput{UnitPrice: i.UnitPrice, Quantity: i.Quantity, DiscountPct: i.DiscountPct}
}

// toSnapshot carries a quotation line over to a sale at conversion time,
// keeping the quoted price rather than the current catalog price.
func (i QuotationItem) toSnapshot() ItemSnapshot {
	return ItemSnapshot{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		ProductCode: i.ProductCode,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		DiscountPct: i.DiscountPct,
	}
}

func newQuotationItem(quotationID uuid.UUID, snap ItemSnapshot) (*QuotationItem, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &QuotationItem{
		ID:          uuid.New(),
		QuotationID: quotationID,
		ProductID:   snap.ProductID,
		ProductName: snap.ProductName,
		ProductCode: snap.ProductCode,
		Quantity:    snap.Quantity,
		UnitPrice:   snap.UnitPrice,
		DiscountPct: snap.DiscountPct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Quotation is a non-binding price offer. It never touches stock or
// payments. Expiry is evaluated lazily on read rather than by a scheduled
// job, so ExpireIfPast must be called whenever a quotation is loaded.
type Quotation struct {
	shared.TenantAggregateRoot
	Number           string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_quotations_tenant_number,priority:2"`
	BranchID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName     string          `gorm:"type:varchar(200);not null"`
	Items            []QuotationItem `gorm:"foreignKey:QuotationID;references:ID"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OrderDiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxMode          catalog.TaxMode `gorm:"type:varchar(10);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	QuotationDate    time.Time       `gorm:"not null"`
	ExpiryDate       time.Time       `gorm:"not null;index"`
	Status           QuotationStatus `gorm:"type:varchar(20);not null;index"`
	ConvertedSaleID  *uuid.UUID      `gorm:"type:uuid"`
	SentAt           *time.Time
	DecidedAt        *time.Time
}

// TableName returns the table name for GORM.
func (Quotation) TableName() string {
	return "quotations"
}

// NewQuotation creates a draft quotation valid until expiryDate.
func NewQuotation(
	tenantID uuid.UUID,
	number string,
	branchID, customerID uuid.UUID,
	customerName string,
	taxMode catalog.TaxMode,
	taxRate decimal.Decimal,
	items []ItemSnapshot,
	orderDiscountPct decimal.Decimal,
	quotationDate, expiryDate time.Time,
	createdBy uuid.UUID,
) (*Quotation, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quotation number cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Customer ID cannot be empty")
	}
	if !taxMode.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidation, "Unknown tax mode %q", taxMode)
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quotation requires at least one item")
	}
	if !expiryDate.After(quotationDate) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Expiry date must be after the quotation date")
	}

	q := &Quotation{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Number:              number,
		BranchID:            branchID,
		CustomerID:          customerID,
		CustomerName:        customerName,
		TaxMode:             taxMode,
		TaxRate:             taxRate,
		OrderDiscountPct:    orderDiscountPct,
		QuotationDate:       quotationDate,
		ExpiryDate:          expiryDate,
		Status:              QuotationStatusDraft,
	}

	for _, snap := range items {
		item, err := newQuotationItem(q.ID, snap)
		if err != nil {
			return nil, err
		}
		q.Items = append(q.Items, *item)
	}

	if err := q.reprice(); err != nil {
		return nil, err
	}
	return q, nil
}

// ReplaceItems swaps the item set on a draft quotation and reprices.
func (q *Quotation) ReplaceItems(items []ItemSnapshot, orderDiscountPct decimal.Decimal) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot update a quotation in %s status", q.Status)
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quotation requires at least one item")
	}

	newItems := make([]QuotationItem, 0, len(items))
	for _, snap := range items {
		item, err := newQuotationItem(q.ID, snap)
		if err != nil {
			return err
		}
		newItems = append(newItems, *item)
	}

	q.Items = newItems
	q.OrderDiscountPct = orderDiscountPct
	if err := q.reprice(); err != nil {
		return err
	}
	q.Touch()
	return nil
}

// Send marks the quotation as delivered to the customer.
func (q *Quotation) Send() error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot send a quotation in %s status", q.Status)
	}

	now := time.Now()
	q.Status = QuotationStatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	return nil
}

// IsExpired reports whether the expiry date has passed at the given instant.
func (q *Quotation) IsExpired(now time.Time) bool {
	return now.After(q.ExpiryDate)
}

// ExpireIfPast flips a sent quotation to expired when its expiry date has
// passed, returning true when the flip happened and the row needs saving.
func (q *Quotation) ExpireIfPast(now time.Time) bool {
	if q.Status != QuotationStatusSent || !q.IsExpired(now) {
		return false
	}
	q.Status = QuotationStatusExpired
	q.DecidedAt = &now
	q.UpdatedAt = now
	return true
}

// MarkAccepted records acceptance and the sale the quotation converted
// into. Only a sent, unexpired quotation can be accepted.
func (q *Quotation) MarkAccepted(saleID uuid.UUID, now time.Time) error {
	if q.ExpireIfPast(now) || q.Status != QuotationStatusSent {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot accept a quotation in %s status", q.Status)
	}
	if saleID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Converted sale ID cannot be empty")
	}

	q.Status = QuotationStatusAccepted
	q.ConvertedSaleID = &saleID
	q.DecidedAt = &now
	q.UpdatedAt = now
	return nil
}

// Reject records that the customer declined the offer.
func (q *Quotation) Reject(now time.Time) error {
	if q.ExpireIfPast(now) || q.Status != QuotationStatusSent {
		return shared.NewDomainErrorf(shared.CodeInvalidStateTransition,
			"Cannot reject a quotation in %s status", q.Status)
	}

	q.Status = QuotationStatusRejected
	q.DecidedAt = &now
	q.UpdatedAt = now
	return nil
}

// ItemSnapshots exposes the quoted lines for conversion into a sale.
func (q *Quotation) ItemSnapshots() []ItemSnapshot {
	snaps := make([]ItemSnapshot, len(q.Items))
	for i, item := range q.Items {
		snaps[i] = item.toSnapshot()
	}
	return snaps
}

func (q *Quotation) reprice() error {
	lines := make([]pricing.LineInput, len(q.Items))
	for i, item := range q.Items {
		lines[i] = item.toLineInput()
	}

	result, err := pricing.Calculate(lines, q.OrderDiscountPct, pricing.TaxSettings{Mode: q.TaxMode, Rate: q.TaxRate})
	if err != nil {
		return err
	}

	for i := range q.Items {
		q.Items[i].LineTotal = result.Lines[i].Total.Round(2)
	}
	q.Subtotal = result.Subtotal.Round(2)
	q.DiscountAmount = result.OrderDiscountAmount.Round(2)
	q.TaxAmount = result.TaxAmount
	q.Total = result.Total
	return nil
}
