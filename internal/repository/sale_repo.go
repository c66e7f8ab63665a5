package repository

import (
	"context"
	"errors"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// LastNumber returns the display number of the most recently created sale,
	// or "" when the collection is empty.
	LastNumber(ctx context.Context) (string, error)
	UpdateStatusNotesTx(tx *gorm.DB, id uuid.UUID, status string, notes *string) error
	SetLedgerSyncPending(ctx context.Context, id uuid.UUID, pending bool) error
	ListPendingLedgerSync(ctx context.Context, limit int) ([]model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) LastNumber(ctx context.Context) (string, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Select("number").
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Number, nil
}

func (r *saleRepo) UpdateStatusNotesTx(tx *gorm.DB, id uuid.UUID, status string, notes *string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "notes": notes}).Error
}

func (r *saleRepo) SetLedgerSyncPending(ctx context.Context, id uuid.UUID, pending bool) error {
	return r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).
		Update("ledger_sync_pending", pending).Error
}

func (r *saleRepo) ListPendingLedgerSync(ctx context.Context, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("ledger_sync_pending = ? AND status = ?", true, model.SaleStatusCompleted).
		Order("created_at ASC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(transaction_date) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}
