package repository

import (
	"context"
	"errors"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RegisterRepository interface {
	Create(ctx context.Context, s *model.RegisterSession) error
	// FindOpen returns the single open session, or gorm.ErrRecordNotFound.
	FindOpen(ctx context.Context) (*model.RegisterSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	Save(ctx context.Context, s *model.RegisterSession) error
	// AccumulateSale adds a completed sale's totals to the open session with a
	// single UPDATE keyed on status = 'open', so concurrent sales can never
	// lose each other's accumulation. Returns false when no session is open.
	AccumulateSale(ctx context.Context, total, cash, card, transfer decimal.Decimal) (bool, error)
	LastNumber(ctx context.Context) (string, error)
	List(ctx context.Context, limit int) ([]model.RegisterSession, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *registerRepo) FindOpen(ctx context.Context) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).
		Where("status = ?", model.RegisterStatusOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) Save(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *registerRepo) AccumulateSale(ctx context.Context, total, cash, card, transfer decimal.Decimal) (bool, error) {
	// expected_cash = initial_cash + total_cash is an invariant, so the
	// recompute is unconditional: non-cash tenders contribute a zero delta.
	res := r.db.WithContext(ctx).
		Model(&model.RegisterSession{}).
		Where("status = ?", model.RegisterStatusOpen).
		Updates(map[string]interface{}{
			"total_sales":    gorm.Expr("total_sales + ?", total),
			"sales_count":    gorm.Expr("sales_count + 1"),
			"total_cash":     gorm.Expr("total_cash + ?", cash),
			"total_card":     gorm.Expr("total_card + ?", card),
			"total_transfer": gorm.Expr("total_transfer + ?", transfer),
			"expected_cash":  gorm.Expr("initial_cash + total_cash + ?", cash),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *registerRepo) LastNumber(ctx context.Context) (string, error) {
	var s model.RegisterSession
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

func (r *registerRepo) List(ctx context.Context, limit int) ([]model.RegisterSession, error) {
	var sessions []model.RegisterSession
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
