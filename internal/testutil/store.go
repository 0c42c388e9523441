// Package testutil provides in-memory repository fakes and a pass-through
// transaction scope for application-layer tests. The fakes keep aggregates
// in maps and implement the same error contracts as the real
// persistence layer.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/application/scope"
	"github.com/retailpos/backend/internal/domain/dayend"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/payment"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/till"
	"github.com/shopspring/decimal"
)

// Store is an in-memory database shared by all fake repositories. It
// implements scope.Repositories directly.
type Store struct {
	SalesByID      map[uuid.UUID]*sales.Sale
	QuotationsByID map[uuid.UUID]*sales.Quotation
	LaybysByID     map[uuid.UUID]*sales.Layby
	StockByKey     map[string]*inventory.StockItem
	PaymentRows    []*payment.Payment
	ShiftsByID     map[uuid.UUID]*till.Shift
	MovementsByID  map[uuid.UUID]*till.CashMovement
	DayEndsByID    map[uuid.UUID]*dayend.DayEnd
	SequenceRows   map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		SalesByID:      make(map[uuid.UUID]*sales.Sale),
		QuotationsByID: make(map[uuid.UUID]*sales.Quotation),
		LaybysByID:     make(map[uuid.UUID]*sales.Layby),
		StockByKey:     make(map[string]*inventory.StockItem),
		ShiftsByID:     make(map[uuid.UUID]*till.Shift),
		MovementsByID:  make(map[uuid.UUID]*till.CashMovement),
		DayEndsByID:    make(map[uuid.UUID]*dayend.DayEnd),
		SequenceRows:   make(map[string]int64),
	}
}

func stockKey(tenantID, branchID, productID uuid.UUID) string {
	return tenantID.String() + "|" + branchID.String() + "|" + productID.String()
}

// SeedStock inserts a stock row and returns it.
func (s *Store) SeedStock(tenantID, branchID, productID uuid.UUID, qty decimal.Decimal) *inventory.StockItem {
	item, err := inventory.NewStockItem(tenantID, branchID, productID, qty)
	if err != nil {
		panic(err)
	}
	s.StockByKey[stockKey(tenantID, branchID, productID)] = item
	return item
}

// StockQty reads the current quantity for a branch-product pair, or -1
// when no row exists.
func (s *Store) StockQty(tenantID, branchID, productID uuid.UUID) decimal.Decimal {
	item, ok := s.StockByKey[stockKey(tenantID, branchID, productID)]
	if !ok {
		return decimal.NewFromInt(-1)
	}
	return item.Quantity
}

// Sales implements scope.Repositories.
func (s *Store) Sales() sales.SaleRepository { return saleRepo{s} }

// Quotations implements scope.Repositories.
func (s *Store) Quotations() sales.QuotationRepository { return quotationRepo{s} }

// Laybys implements scope.Repositories.
func (s *Store) Laybys() sales.LaybyRepository { return laybyRepo{s} }

// Stock implements scope.Repositories.
func (s *Store) Stock() inventory.StockItemRepository { return stockRepo{s} }

// Payments implements scope.Repositories.
func (s *Store) Payments() payment.Repository { return paymentRepo{s} }

// Shifts implements scope.Repositories.
func (s *Store) Shifts() till.ShiftRepository { return shiftRepo{s} }

// CashMovements implements scope.Repositories.
func (s *Store) CashMovements() till.CashMovementRepository { return movementRepo{s} }

// DayEnds implements scope.Repositories.
func (s *Store) DayEnds() dayend.Repository { return dayEndRepo{s} }

// Sequences implements scope.Repositories.
func (s *Store) Sequences() shared.SequenceRepository { return sequenceRepo{s} }

// Scope is a pass-through scope.TransactionScope over a Store. It has no
// rollback; services are expected to validate before mutating.
type Scope struct {
	S *Store
}

// NewScope wraps a store.
func NewScope(s *Store) Scope {
	return Scope{S: s}
}

// Execute implements scope.TransactionScope.
func (sc Scope) Execute(ctx context.Context, fn func(ctx context.Context, repos scope.Repositories) error) error {
	return fn(ctx, sc.S)
}

type saleRepo struct{ s *Store }

func (r saleRepo) Save(_ context.Context, sale *sales.Sale) error {
	r.s.SalesByID[sale.ID] = sale
	return nil
}

func (r saleRepo) SaveWithLock(ctx context.Context, sale *sales.Sale) error {
	return r.Save(ctx, sale)
}

func (r saleRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	sale, ok := r.s.SalesByID[id]
	if !ok || sale.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return sale, nil
}

func (r saleRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*sales.Sale, error) {
	for _, sale := range r.s.SalesByID {
		if sale.TenantID == tenantID && sale.Number == number {
			return sale, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r saleRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Sale], error) {
	var items []sales.Sale
	for _, sale := range r.s.SalesByID {
		if sale.TenantID != tenantID {
			continue
		}
		if status, ok := filter.Filters["status"]; ok && string(sale.Status) != fmt.Sprint(status) {
			continue
		}
		items = append(items, *sale)
	}
	p := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &p, nil
}

type quotationRepo struct{ s *Store }

func (r quotationRepo) Save(_ context.Context, q *sales.Quotation) error {
	r.s.QuotationsByID[q.ID] = q
	return nil
}

func (r quotationRepo) SaveWithLock(ctx context.Context, q *sales.Quotation) error {
	return r.Save(ctx, q)
}

func (r quotationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*sales.Quotation, error) {
	q, ok := r.s.QuotationsByID[id]
	if !ok || q.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return q, nil
}

func (r quotationRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Quotation], error) {
	var items []sales.Quotation
	for _, q := range r.s.QuotationsByID {
		if q.TenantID == tenantID {
			items = append(items, *q)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &p, nil
}

type laybyRepo struct{ s *Store }

func (r laybyRepo) Save(_ context.Context, l *sales.Layby) error {
	r.s.LaybysByID[l.ID] = l
	return nil
}

func (r laybyRepo) SaveWithLock(ctx context.Context, l *sales.Layby) error {
	return r.Save(ctx, l)
}

func (r laybyRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*sales.Layby, error) {
	l, ok := r.s.LaybysByID[id]
	if !ok || l.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r laybyRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[sales.Layby], error) {
	var items []sales.Layby
	for _, l := range r.s.LaybysByID {
		if l.TenantID == tenantID {
			items = append(items, *l)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &p, nil
}

type stockRepo struct{ s *Store }

func (r stockRepo) FindByBranchAndProduct(_ context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, ok := r.s.StockByKey[stockKey(tenantID, branchID, productID)]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNoInventoryRecord,
			"No inventory record for product at this branch")
	}
	return item, nil
}

func (r stockRepo) FindAllForBranch(_ context.Context, tenantID, branchID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, int64, error) {
	var items []inventory.StockItem
	for _, item := range r.s.StockByKey {
		if item.TenantID == tenantID && item.BranchID == branchID {
			items = append(items, *item)
		}
	}
	return items, int64(len(items)), nil
}

func (r stockRepo) Save(_ context.Context, item *inventory.StockItem) error {
	r.s.StockByKey[stockKey(item.TenantID, item.BranchID, item.ProductID)] = item
	return nil
}

func (r stockRepo) SaveWithLock(ctx context.Context, item *inventory.StockItem) error {
	return r.Save(ctx, item)
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Save(_ context.Context, p *payment.Payment) error {
	r.s.PaymentRows = append(r.s.PaymentRows, p)
	return nil
}

func (r paymentRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*payment.Payment, error) {
	for _, p := range r.s.PaymentRows {
		if p.TenantID == tenantID && p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r paymentRepo) FindByTarget(_ context.Context, tenantID uuid.UUID, target payment.Target) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range r.s.PaymentRows {
		if p.TenantID == tenantID && p.Target == target {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r paymentRepo) FindByShift(_ context.Context, tenantID, shiftID uuid.UUID) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range r.s.PaymentRows {
		if p.TenantID == tenantID && p.ShiftID != nil && *p.ShiftID == shiftID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r paymentRepo) SumBaseAmountByShiftAndMethod(_ context.Context, tenantID, shiftID, methodID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.PaymentRows {
		if p.TenantID == tenantID && p.ShiftID != nil && *p.ShiftID == shiftID && p.PaymentMethodID == methodID {
			sum = sum.Add(p.BaseAmount)
		}
	}
	return sum, nil
}

func (r paymentRepo) SumBaseAmountByShift(_ context.Context, tenantID, shiftID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.s.PaymentRows {
		if p.TenantID == tenantID && p.ShiftID != nil && *p.ShiftID == shiftID {
			sum = sum.Add(p.BaseAmount)
		}
	}
	return sum, nil
}

func (r paymentRepo) TotalsByMethodAndCurrency(_ context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]payment.MethodCurrencyTotal, error) {
	type key struct {
		method   uuid.UUID
		currency string
	}
	sums := make(map[key]decimal.Decimal)
	var order []key
	for _, p := range r.s.PaymentRows {
		if p.TenantID != tenantID || p.BranchID != branchID {
			continue
		}
		if p.ReceivedAt.Before(from) || !p.ReceivedAt.Before(to) {
			continue
		}
		k := key{p.PaymentMethodID, p.CurrencyCode}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(p.BaseAmount)
	}

	out := make([]payment.MethodCurrencyTotal, 0, len(order))
	for _, k := range order {
		out = append(out, payment.MethodCurrencyTotal{
			PaymentMethodID: k.method,
			CurrencyCode:    k.currency,
			BaseAmount:      sums[k],
		})
	}
	return out, nil
}

type shiftRepo struct{ s *Store }

func (r shiftRepo) Save(_ context.Context, shift *till.Shift) error {
	r.s.ShiftsByID[shift.ID] = shift
	return nil
}

func (r shiftRepo) SaveWithLock(ctx context.Context, shift *till.Shift) error {
	return r.Save(ctx, shift)
}

func (r shiftRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*till.Shift, error) {
	shift, ok := r.s.ShiftsByID[id]
	if !ok || shift.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return shift, nil
}

func (r shiftRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]till.Shift, error) {
	var out []till.Shift
	for _, id := range ids {
		if shift, ok := r.s.ShiftsByID[id]; ok && shift.TenantID == tenantID {
			out = append(out, *shift)
		}
	}
	return out, nil
}

func (r shiftRepo) FindOpenByCashier(_ context.Context, tenantID, cashierID uuid.UUID) (*till.Shift, error) {
	for _, shift := range r.s.ShiftsByID {
		if shift.TenantID == tenantID && shift.CashierID == cashierID && shift.IsOpen() {
			return shift, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r shiftRepo) FindClosedBetween(_ context.Context, tenantID, branchID uuid.UUID, from, to time.Time) ([]till.Shift, error) {
	var out []till.Shift
	for _, shift := range r.s.ShiftsByID {
		if shift.TenantID != tenantID || shift.BranchID != branchID || shift.ClosedAt == nil {
			continue
		}
		if shift.ClosedAt.Before(from) || !shift.ClosedAt.Before(to) {
			continue
		}
		out = append(out, *shift)
	}
	return out, nil
}

func (r shiftRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[till.Shift], error) {
	var items []till.Shift
	for _, shift := range r.s.ShiftsByID {
		if shift.TenantID == tenantID {
			items = append(items, *shift)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &p, nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Save(_ context.Context, m *till.CashMovement) error {
	r.s.MovementsByID[m.ID] = m
	return nil
}

func (r movementRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*till.CashMovement, error) {
	m, ok := r.s.MovementsByID[id]
	if !ok || m.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r movementRepo) FindByShift(_ context.Context, tenantID, shiftID uuid.UUID) ([]till.CashMovement, error) {
	var out []till.CashMovement
	for _, m := range r.s.MovementsByID {
		if m.TenantID == tenantID && m.ShiftID == shiftID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r movementRepo) CountUnapproved(_ context.Context, tenantID, shiftID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.s.MovementsByID {
		if m.TenantID == tenantID && m.ShiftID == shiftID && !m.Approved {
			n++
		}
	}
	return n, nil
}

type dayEndRepo struct{ s *Store }

func (r dayEndRepo) Save(_ context.Context, d *dayend.DayEnd) error {
	r.s.DayEndsByID[d.ID] = d
	return nil
}

func (r dayEndRepo) SaveWithLock(ctx context.Context, d *dayend.DayEnd) error {
	return r.Save(ctx, d)
}

func (r dayEndRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*dayend.DayEnd, error) {
	d, ok := r.s.DayEndsByID[id]
	if !ok || d.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r dayEndRepo) FindByBranchAndDate(_ context.Context, tenantID, branchID uuid.UUID, businessDate time.Time) (*dayend.DayEnd, error) {
	date := dayend.TruncateToDate(businessDate)
	for _, d := range r.s.DayEndsByID {
		if d.TenantID == tenantID && d.BranchID == branchID && d.BusinessDate.Equal(date) {
			return d, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r dayEndRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[dayend.DayEnd], error) {
	var items []dayend.DayEnd
	for _, d := range r.s.DayEndsByID {
		if d.TenantID == tenantID {
			items = append(items, *d)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &p, nil
}

type sequenceRepo struct{ s *Store }

func (r sequenceRepo) Next(_ context.Context, tenantID uuid.UUID, series shared.DocumentSeries, year int) (int64, error) {
	k := fmt.Sprintf("%s|%s|%d", tenantID, series, year)
	r.s.SequenceRows[k]++
	return r.s.SequenceRows[k], nil
}
