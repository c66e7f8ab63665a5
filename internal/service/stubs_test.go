package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so runTx runs the callback
// directly instead of opening a real transaction.

var (
	_ repository.StockRepository      = (*stubStockRepo)(nil)
	_ repository.SaleRepository       = (*stubSaleRepo)(nil)
	_ repository.RegisterRepository   = (*stubRegisterRepo)(nil)
	_ repository.CustomerRepository   = (*stubCustomerRepo)(nil)
	_ repository.ProductRepository    = (*stubProductRepo)(nil)
	_ repository.AccountingRepository = (*stubAccountingRepo)(nil)
)

// ── StockRepository stub ─────────────────────────────────────────────────────

type stubStockRepo struct {
	mu        sync.Mutex
	records   map[string]*model.StockRecord
	movements []model.StockMovement
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{records: make(map[string]*model.StockRecord)}
}

func stockKey(productID uuid.UUID, location string) string {
	return fmt.Sprintf("%s|%s", productID, location)
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) Find(_ context.Context, productID uuid.UUID, location string) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey(productID, location)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubStockRepo) FindTx(_ *gorm.DB, productID uuid.UUID, location string) (*model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey(productID, location)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubStockRepo) ListByLocation(_ context.Context, location string) ([]model.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockRecord
	for _, rec := range r.records {
		if rec.Location == location {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, rec *model.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.records[stockKey(rec.ProductID, rec.Location)] = rec
	return nil
}

func (r *stubStockRepo) IncrementTx(_ *gorm.DB, productID uuid.UUID, location string, qty int, unitCost, unitPrice decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey(productID, location)]
	if !ok {
		return false, nil
	}
	rec.Quantity += qty
	rec.UnitCost = unitCost
	rec.UnitPrice = unitPrice
	q := decimal.NewFromInt(int64(rec.Quantity))
	rec.TotalCost = unitCost.Mul(q)
	rec.TotalPrice = unitPrice.Mul(q)
	return true, nil
}

func (r *stubStockRepo) DecrementTx(_ *gorm.DB, productID uuid.UUID, location string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey(productID, location)]
	if !ok || rec.Quantity < qty {
		return false, nil
	}
	rec.Quantity -= qty
	q := decimal.NewFromInt(int64(rec.Quantity))
	rec.TotalCost = rec.UnitCost.Mul(q)
	rec.TotalPrice = rec.UnitPrice.Mul(q)
	return true, nil
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubStockRepo) quantity(productID uuid.UUID, location string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[stockKey(productID, location)]
	if !ok {
		return 0
	}
	return rec.Quantity
}

// ── SaleRepository stub ──────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu         sync.Mutex
	sales      map[uuid.UUID]*model.Sale
	lastNumber string
	failCreate error
	failFind   error
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = s
	r.lastNumber = s.Number
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) LastNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastNumber, nil
}

func (r *stubSaleRepo) UpdateStatusNotesTx(_ *gorm.DB, id uuid.UUID, status string, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	s.Notes = notes
	return nil
}

func (r *stubSaleRepo) SetLedgerSyncPending(_ context.Context, id uuid.UUID, pending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.LedgerSyncPending = pending
	return nil
}

func (r *stubSaleRepo) ListPendingLedgerSync(_ context.Context, limit int) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.LedgerSyncPending {
			out = append(out, *s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

// ── RegisterRepository stub ──────────────────────────────────────────────────

type stubRegisterRepo struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*model.RegisterSession
	lastNumber string
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{sessions: make(map[uuid.UUID]*model.RegisterSession)}
}

func (r *stubRegisterRepo) Create(_ context.Context, s *model.RegisterSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the uniq_register_open partial index.
	for _, existing := range r.sessions {
		if existing.Status == model.RegisterStatusOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	r.lastNumber = s.Number
	return nil
}

func (r *stubRegisterRepo) FindOpen(_ context.Context) (*model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Status == model.RegisterStatusOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubRegisterRepo) Save(_ context.Context, s *model.RegisterSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *stubRegisterRepo) AccumulateSale(_ context.Context, total, cash, card, transfer decimal.Decimal) (bool, error) {
	// Deltas land under one lock, matching the real repo's single UPDATE.
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Status != model.RegisterStatusOpen {
			continue
		}
		s.TotalSales = s.TotalSales.Add(total)
		s.SalesCount++
		s.TotalCash = s.TotalCash.Add(cash)
		s.TotalCard = s.TotalCard.Add(card)
		s.TotalTransfer = s.TotalTransfer.Add(transfer)
		s.ExpectedCash = s.InitialCash.Add(s.TotalCash)
		return true, nil
	}
	return false, nil
}

func (r *stubRegisterRepo) LastNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastNumber, nil
}

func (r *stubRegisterRepo) List(_ context.Context, limit int) ([]model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RegisterSession
	for _, s := range r.sessions {
		out = append(out, *s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── CustomerRepository stub ──────────────────────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) Save(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, activeOnly bool) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// ── AccountingRepository stub ────────────────────────────────────────────────

type stubAccountingRepo struct {
	mu      sync.Mutex
	entries []model.AccountingEntry
}

func (r *stubAccountingRepo) CreateTx(_ *gorm.DB, e *model.AccountingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubAccountingRepo) List(_ context.Context, limit int) ([]model.AccountingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

const testLocation = "principal"

type saleFixture struct {
	svc        SaleService
	sales      *stubSaleRepo
	stock      *stubStockRepo
	products   *stubProductRepo
	registers  *stubRegisterRepo
	customers  *stubCustomerRepo
	accounting *stubAccountingRepo
}

// newSaleFixture wires a sale service on in-memory stubs. When openRegister
// is true a drawer session seeded with 100 initial cash is already open.
func newSaleFixture(openRegister bool) *saleFixture {
	f := &saleFixture{
		sales:      newStubSaleRepo(),
		stock:      newStubStockRepo(),
		products:   newStubProductRepo(),
		registers:  newStubRegisterRepo(),
		customers:  newStubCustomerRepo(),
		accounting: &stubAccountingRepo{},
	}
	if openRegister {
		initial := decimal.NewFromInt(100)
		_ = f.registers.Create(context.Background(), &model.RegisterSession{
			Number:       "CAJA-000001",
			OpenedBy:     "tester",
			InitialCash:  initial,
			ExpectedCash: initial,
			Status:       model.RegisterStatusOpen,
		})
	}
	f.svc = NewSaleService(
		f.sales,
		NewStockService(f.stock, f.products),
		NewRegisterService(f.registers),
		NewCustomerService(f.customers),
		f.products,
		f.accounting,
		nil, // no dispatcher — receipt emails are not under test here
		testLocation,
	)
	return f
}

func seedProduct(repo *stubProductRepo, name, sku string, price float64) *model.Product {
	p := &model.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		Category:    "general",
		UnitCost:    decimal.NewFromFloat(price / 2),
		RetailPrice: decimal.NewFromFloat(price),
		WholesalePrice: decimal.NewFromFloat(price * 0.9),
		Active:      true,
	}
	repo.products[p.ID] = p
	return p
}

func seedStock(repo *stubStockRepo, p *model.Product, qty int) {
	q := decimal.NewFromInt(int64(qty))
	_ = repo.CreateTx(nil, &model.StockRecord{
		ProductID:  p.ID,
		Location:   testLocation,
		Quantity:   qty,
		UnitCost:   p.UnitCost,
		UnitPrice:  p.RetailPrice,
		TotalCost:  p.UnitCost.Mul(q),
		TotalPrice: p.RetailPrice.Mul(q),
		Status:     model.StockStatusInStock,
	})
}

func decp(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func strp(s string) *string { return &s }
