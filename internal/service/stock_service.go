package service

import (
	"context"
	"errors"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockService is the per-(product, location) quantity ledger. Quantity
// mutations go through AddStock / RemoveStock only; the remove path is a
// conditional decrement so the count can never go negative, even when two
// sales race over the last unit.
type StockService interface {
	Get(ctx context.Context, productID uuid.UUID, location string) (*model.StockRecord, error)
	AddStock(ctx context.Context, req dto.AddStockRequest) (*model.StockRecord, error)
	RemoveStock(ctx context.Context, req dto.RemoveStockRequest) error
	ListByLocation(ctx context.Context, location string) ([]model.StockRecord, error)

	// Tx variants run inside the sale orchestrator's transaction.
	AddStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, unitCost, unitPrice decimal.Decimal, location, movType, reason string, ref *uuid.UUID) error
	RemoveStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, location, productName, movType, reason string, ref *uuid.UUID) error
}

type stockService struct {
	repo        repository.StockRepository
	productRepo repository.ProductRepository
}

func NewStockService(repo repository.StockRepository, productRepo repository.ProductRepository) StockService {
	return &stockService{repo: repo, productRepo: productRepo}
}

func (s *stockService) Get(ctx context.Context, productID uuid.UUID, location string) (*model.StockRecord, error) {
	rec, err := s.repo.Find(ctx, productID, location)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *stockService) ListByLocation(ctx context.Context, location string) ([]model.StockRecord, error) {
	return s.repo.ListByLocation(ctx, location)
}

func (s *stockService) AddStock(ctx context.Context, req dto.AddStockRequest) (*model.StockRecord, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, validationErrorf("invalid product_id: %s", req.ProductID)
	}
	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		return nil, validationErrorf("product %s does not exist", req.ProductID)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.AddStockTx(ctx, tx, pid, req.Quantity, req.UnitCost, req.UnitPrice, req.Location, "restock", "manual restock", nil)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.repo.Find(ctx, pid, req.Location)
}

func (s *stockService) RemoveStock(ctx context.Context, req dto.RemoveStockRequest) error {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return validationErrorf("invalid product_id: %s", req.ProductID)
	}
	name := req.ProductID
	if p, err := s.productRepo.FindByID(ctx, pid); err == nil {
		name = p.Name
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.RemoveStockTx(ctx, tx, pid, req.Quantity, req.Location, name, "adjustment", "manual adjustment", nil)
	})
}

// AddStockTx increases the (product, location) record, creating it when
// absent, and appends an audit movement.
func (s *stockService) AddStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, unitCost, unitPrice decimal.Decimal, location, movType, reason string, ref *uuid.UUID) error {
	before := 0
	if rec, err := s.repo.FindTx(tx, productID, location); err == nil {
		before = rec.Quantity
	}

	updated, err := s.repo.IncrementTx(tx, productID, location, qty, unitCost, unitPrice)
	if err != nil {
		return err
	}
	if !updated {
		q := decimal.NewFromInt(int64(qty))
		rec := &model.StockRecord{
			ProductID:  productID,
			Location:   location,
			Quantity:   qty,
			UnitCost:   unitCost,
			UnitPrice:  unitPrice,
			TotalCost:  unitCost.Mul(q),
			TotalPrice: unitPrice.Mul(q),
			Status:     model.StockStatusInStock,
		}
		if err := s.repo.CreateTx(tx, rec); err != nil {
			return err
		}
	}

	return s.repo.CreateMovementTx(tx, &model.StockMovement{
		ProductID:      productID,
		Location:       location,
		Type:           movType,
		Quantity:       qty,
		QuantityBefore: before,
		QuantityAfter:  before + qty,
		Reason:         reason,
		ReferenceID:    ref,
	})
}

// RemoveStockTx decreases the (product, location) record and appends an audit
// movement. Fails with InsufficientStockError when the record is absent or
// holds fewer than qty units — the conditional UPDATE makes that decision,
// not a prior read.
func (s *stockService) RemoveStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, location, productName, movType, reason string, ref *uuid.UUID) error {
	before := 0
	if rec, err := s.repo.FindTx(tx, productID, location); err == nil {
		before = rec.Quantity
	}

	updated, err := s.repo.DecrementTx(tx, productID, location, qty)
	if err != nil {
		return err
	}
	if !updated {
		return &InsufficientStockError{Product: productName}
	}

	return s.repo.CreateMovementTx(tx, &model.StockMovement{
		ProductID:      productID,
		Location:       location,
		Type:           movType,
		Quantity:       -qty,
		QuantityBefore: before,
		QuantityAfter:  before - qty,
		Reason:         reason,
		ReferenceID:    ref,
	})
}
