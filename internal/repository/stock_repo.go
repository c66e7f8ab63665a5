package repository

import (
	"context"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockRepository interface {
	Find(ctx context.Context, productID uuid.UUID, location string) (*model.StockRecord, error)
	FindTx(tx *gorm.DB, productID uuid.UUID, location string) (*model.StockRecord, error)
	ListByLocation(ctx context.Context, location string) ([]model.StockRecord, error)
	CreateTx(tx *gorm.DB, rec *model.StockRecord) error
	// IncrementTx adds qty to an existing record, refreshing unit valuation and
	// derived totals in one UPDATE. Returns false when no record matched.
	IncrementTx(tx *gorm.DB, productID uuid.UUID, location string, qty int, unitCost, unitPrice decimal.Decimal) (bool, error)
	// DecrementTx subtracts qty guarded by quantity >= qty so the count can
	// never go negative, even under concurrent callers. Returns false when the
	// guard rejected the update (absent record or short stock).
	DecrementTx(tx *gorm.DB, productID uuid.UUID, location string, qty int) (bool, error)
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) Find(ctx context.Context, productID uuid.UUID, location string) (*model.StockRecord, error) {
	var rec model.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location = ?", productID, location).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepo) FindTx(tx *gorm.DB, productID uuid.UUID, location string) (*model.StockRecord, error) {
	var rec model.StockRecord
	err := tx.Where("product_id = ? AND location = ?", productID, location).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepo) ListByLocation(ctx context.Context, location string) ([]model.StockRecord, error) {
	var recs []model.StockRecord
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("location = ?", location).
		Order("updated_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *stockRepo) CreateTx(tx *gorm.DB, rec *model.StockRecord) error {
	return tx.Create(rec).Error
}

func (r *stockRepo) IncrementTx(tx *gorm.DB, productID uuid.UUID, location string, qty int, unitCost, unitPrice decimal.Decimal) (bool, error) {
	res := tx.Model(&model.StockRecord{}).
		Where("product_id = ? AND location = ?", productID, location).
		Updates(map[string]interface{}{
			"quantity":    gorm.Expr("quantity + ?", qty),
			"unit_cost":   unitCost,
			"unit_price":  unitPrice,
			"total_cost":  gorm.Expr("? * (quantity + ?)", unitCost, qty),
			"total_price": gorm.Expr("? * (quantity + ?)", unitPrice, qty),
			"status":      model.StockStatusInStock,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stockRepo) DecrementTx(tx *gorm.DB, productID uuid.UUID, location string, qty int) (bool, error) {
	// The quantity >= qty predicate is the whole point: check and decrement
	// happen in one statement, so concurrent sales cannot both pass a stale
	// pre-check and drive the count negative.
	res := tx.Model(&model.StockRecord{}).
		Where("product_id = ? AND location = ? AND quantity >= ?", productID, location, qty).
		Updates(map[string]interface{}{
			"quantity":    gorm.Expr("quantity - ?", qty),
			"total_cost":  gorm.Expr("unit_cost * (quantity - ?)", qty),
			"total_price": gorm.Expr("unit_price * (quantity - ?)", qty),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movs []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movs).Error
	return movs, err
}
