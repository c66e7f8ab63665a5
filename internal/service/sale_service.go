package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// mixedTenderTolerance is the rounding slack allowed when validating that the
// three tender amounts of a mixed payment add up to the sale total.
var mixedTenderTolerance = decimal.NewFromFloat(0.01)

type SaleService interface {
	CreateSale(ctx context.Context, createdBy string, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	CancelSale(ctx context.Context, id uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// SyncLedger applies the best-effort side effects of a completed sale
	// (register totals, customer history). Called post-commit and from the
	// retry loop for sales still flagged ledger_sync_pending.
	SyncLedger(ctx context.Context, sale *model.Sale) error
}

type saleService struct {
	repo        repository.SaleRepository
	stock       StockService
	register    RegisterService
	customers   CustomerService
	productRepo repository.ProductRepository
	accounting  repository.AccountingRepository
	dispatcher  *worker.Dispatcher
	location    string
}

func NewSaleService(
	repo repository.SaleRepository,
	stock StockService,
	register RegisterService,
	customers CustomerService,
	productRepo repository.ProductRepository,
	accounting repository.AccountingRepository,
	dispatcher *worker.Dispatcher,
	location string,
) SaleService {
	return &saleService{
		repo:        repo,
		stock:       stock,
		register:    register,
		customers:   customers,
		productRepo: productRepo,
		accounting:  accounting,
		dispatcher:  dispatcher,
		location:    location,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// The core protocol:
//   1. Validate cart, customer snapshot, and tender amounts — zero writes on
//      rejection.
//   2. Read-only stock pre-check at the default location, so a short cart is
//      rejected with the offending product named before anything persists.
//   3. ONE transaction: allocate the display number, persist the sale with
//      its line items, decrement every stock line (conditionally — a loss of
//      the race re-checks inside the UPDATE itself), post the accounting
//      entry. A failed decrement rolls back the sale record and every prior
//      decrement.
//   4. Post-commit, best-effort: register session totals, customer directory,
//      receipt email. These must never fail the sale; a miss flags the sale
//      ledger_sync_pending and the retry loop picks it up.

func (s *saleService) CreateSale(ctx context.Context, createdBy string, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, validationErrorf("cart is empty")
	}
	if req.Customer.Name == "" || req.Customer.LastName == "" {
		return nil, validationErrorf("customer name and last name are required")
	}

	// Resolve products and compute totals.
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		sku       string
		unitCost  decimal.Decimal
		unitPrice decimal.Decimal
		quantity  int
		discount  decimal.Decimal
		total     decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero
	discountTotal := decimal.Zero

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, validationErrorf("line item quantity must be positive")
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, validationErrorf("invalid product_id: %s", item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, validationErrorf("product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, validationErrorf("product %s is inactive and cannot be sold", p.Name)
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
		subtotal = subtotal.Add(lineTotal)
		discountTotal = discountTotal.Add(item.Discount)
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			sku:       p.SKU,
			unitCost:  p.UnitCost,
			unitPrice: item.UnitPrice,
			quantity:  item.Quantity,
			discount:  item.Discount,
			total:     lineTotal,
		})
	}

	tax := decimal.Zero
	total := subtotal.Add(tax)

	// Tender validation.
	var change *decimal.Decimal
	switch req.PaymentMethod {
	case model.PaymentCash:
		if req.CashReceived == nil || req.CashReceived.LessThan(total) {
			return nil, validationErrorf("cash received is less than the sale total")
		}
		c := req.CashReceived.Sub(total)
		change = &c
	case model.PaymentMixed:
		sum := decimal.Zero
		for _, amt := range []*decimal.Decimal{req.CashReceived, req.CardAmount, req.TransferAmount} {
			if amt != nil {
				sum = sum.Add(*amt)
			}
		}
		if sum.Sub(total).Abs().GreaterThan(mixedTenderTolerance) {
			return nil, validationErrorf("mixed tender amounts (%s) do not reconcile with total (%s)", sum, total)
		}
	}

	// Read-only pre-check so a short cart is reported per product before any
	// write. The decrement below re-checks atomically; this is for UX only.
	for _, r := range resolved {
		rec, err := s.stock.Get(ctx, r.productID, s.location)
		if errors.Is(err, ErrNotFound) || (err == nil && rec.Quantity < r.quantity) {
			return nil, &InsufficientStockError{Product: r.name}
		}
		if err != nil {
			return nil, err
		}
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number := NextNumber(ctx, SalePrefix, s.repo.LastNumber)

		sale = model.Sale{
			Number:           number,
			TransactionDate:  time.Now(),
			CustomerName:     req.Customer.Name,
			CustomerLastName: req.Customer.LastName,
			CustomerPhone:    req.Customer.Phone,
			CustomerEmail:    req.Customer.Email,
			CustomerAddress:  req.Customer.Address,
			Subtotal:         subtotal,
			Tax:              tax,
			DiscountTotal:    discountTotal,
			Total:            total,
			PaymentMethod:    req.PaymentMethod,
			Status:           model.SaleStatusCompleted,
			Notes:            req.Notes,
			CreatedBy:        createdBy,
		}
		switch req.PaymentMethod {
		case model.PaymentCash:
			sale.CashReceived = req.CashReceived
			sale.Change = change
		case model.PaymentCard:
			sale.CardAmount = req.CardAmount
		case model.PaymentTransfer:
			sale.TransferAmount = req.TransferAmount
		case model.PaymentMixed:
			sale.CashReceived = req.CashReceived
			sale.CardAmount = req.CardAmount
			sale.TransferAmount = req.TransferAmount
		}

		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:   r.productID,
				ProductName: r.name,
				ProductSKU:  r.sku,
				Location:    s.location,
				Quantity:    r.quantity,
				UnitPrice:   r.unitPrice,
				UnitCost:    r.unitCost,
				Discount:    r.discount,
				TotalPrice:  r.total,
			})
		}

		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		for _, r := range resolved {
			reason := fmt.Sprintf("Sale %s", number)
			if err := s.stock.RemoveStockTx(ctx, tx, r.productID, r.quantity, s.location, r.name, "sale", reason, &sale.ID); err != nil {
				return err
			}
		}

		return s.accounting.CreateTx(tx, &model.AccountingEntry{
			SaleID:        sale.ID,
			SaleNumber:    number,
			Amount:        total,
			PaymentMethod: req.PaymentMethod,
			Status:        model.SaleStatusCompleted,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort side effects — never fail the sale past this point.
	if err := s.SyncLedger(ctx, &sale); err != nil {
		log.Error().Err(err).Str("sale", sale.Number).Msg("ledger sync failed — flagging sale for retry")
		if ferr := s.repo.SetLedgerSyncPending(ctx, sale.ID, true); ferr != nil {
			log.Error().Err(ferr).Str("sale", sale.Number).Msg("could not flag sale as ledger_sync_pending")
		} else {
			sale.LedgerSyncPending = true
		}
	}

	if s.dispatcher != nil && sale.CustomerEmail != nil && *sale.CustomerEmail != "" {
		_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{
			ToEmail:    *sale.CustomerEmail,
			SaleNumber: sale.Number,
			Total:      total.StringFixed(2),
		})
	}

	return saleToResponse(&sale), nil
}

// SyncLedger accumulates the sale into the open register session and updates
// the customer directory. Both are best-effort bookkeeping: the drawer
// reconciles at close and the directory is purchase-history telemetry.
func (s *saleService) SyncLedger(ctx context.Context, sale *model.Sale) error {
	cash, card, transfer := decimal.Zero, decimal.Zero, decimal.Zero
	if sale.CashReceived != nil {
		cash = *sale.CashReceived
	}
	if sale.Change != nil {
		cash = cash.Sub(*sale.Change)
	}
	if sale.CardAmount != nil {
		card = *sale.CardAmount
	}
	if sale.TransferAmount != nil {
		transfer = *sale.TransferAmount
	}

	if err := s.register.AddSale(ctx, sale.Total, sale.PaymentMethod, cash, card, transfer); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	if sale.CustomerPhone != nil && *sale.CustomerPhone != "" {
		if err := s.syncCustomer(ctx, sale); err != nil {
			return fmt.Errorf("customer directory: %w", err)
		}
	}
	return nil
}

func (s *saleService) syncCustomer(ctx context.Context, sale *model.Sale) error {
	existing, err := s.customers.FindByPhone(ctx, *sale.CustomerPhone)
	if errors.Is(err, ErrNotFound) {
		_, err := s.customers.Create(ctx, dto.CreateCustomerRequest{
			Phone:   *sale.CustomerPhone,
			Name:    fmt.Sprintf("%s %s", sale.CustomerName, sale.CustomerLastName),
			Email:   sale.CustomerEmail,
			Address: sale.CustomerAddress,
		}, sale.Total)
		return err
	}
	if err != nil {
		return err
	}
	return s.customers.RecordPurchase(ctx, existing.ID, sale.Total)
}

// ── CancelSale ────────────────────────────────────────────────────────────────

// CancelSale is the exact inverse of the stock decrements performed at
// creation: every line is restocked at its original unit cost/price and
// location. The register totals and the accounting entry are intentionally
// left untouched — drawer sessions close daily and reconcile separately.
func (s *saleService) CancelSale(ctx context.Context, id uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if sale.Status == model.SaleStatusCancelled {
		return &StateConflictError{Msg: "sale is already cancelled"}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			restockReason := fmt.Sprintf("Cancelled sale %s: %s", sale.Number, reason)
			if err := s.stock.AddStockTx(ctx, tx, item.ProductID, item.Quantity, item.UnitCost, item.UnitPrice, item.Location, "cancel_restore", restockReason, &sale.ID); err != nil {
				return err
			}
		}

		// Append, not replace.
		appended := fmt.Sprintf("Cancelled: %s", reason)
		if sale.Notes != nil && *sale.Notes != "" {
			appended = fmt.Sprintf("%s\n%s", *sale.Notes, appended)
		}
		return s.repo.UpdateStatusNotesTx(tx, id, model.SaleStatusCancelled, &appended)
	})
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:  item.ProductID.String(),
			Product:    item.ProductName,
			SKU:        item.ProductSKU,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Discount:   item.Discount,
			TotalPrice: item.TotalPrice,
		})
	}
	name := s.CustomerName
	if s.CustomerLastName != "" {
		name = fmt.Sprintf("%s %s", s.CustomerName, s.CustomerLastName)
	}
	return &dto.SaleResponse{
		ID:                s.ID.String(),
		Number:            s.Number,
		CustomerName:      name,
		Items:             items,
		Subtotal:          s.Subtotal,
		Tax:               s.Tax,
		DiscountTotal:     s.DiscountTotal,
		Total:             s.Total,
		PaymentMethod:     s.PaymentMethod,
		CashReceived:      s.CashReceived,
		Change:            s.Change,
		CardAmount:        s.CardAmount,
		TransferAmount:    s.TransferAmount,
		Status:            s.Status,
		Notes:             s.Notes,
		LedgerSyncPending: s.LedgerSyncPending,
		CreatedAt:         s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
