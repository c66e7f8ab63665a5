package repository

import (
	"context"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"gorm.io/gorm"
)

type AccountingRepository interface {
	CreateTx(tx *gorm.DB, e *model.AccountingEntry) error
	List(ctx context.Context, limit int) ([]model.AccountingEntry, error)
}

type accountingRepo struct{ db *gorm.DB }

func NewAccountingRepository(db *gorm.DB) AccountingRepository { return &accountingRepo{db: db} }

func (r *accountingRepo) CreateTx(tx *gorm.DB, e *model.AccountingEntry) error {
	return tx.Create(e).Error
}

func (r *accountingRepo) List(ctx context.Context, limit int) ([]model.AccountingEntry, error) {
	var entries []model.AccountingEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
