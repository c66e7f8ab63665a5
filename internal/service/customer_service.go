package service

import (
	"context"
	"errors"
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerService maintains the phone-keyed customer directory with running
// purchase totals. The sale orchestrator calls it fire-and-forget: a failure
// here never rolls back or blocks the originating sale.
type CustomerService interface {
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	Create(ctx context.Context, req dto.CreateCustomerRequest, firstPurchase decimal.Decimal) (*model.Customer, error)
	RecordPurchase(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	c, err := s.repo.FindByPhone(ctx, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest, firstPurchase decimal.Decimal) (*model.Customer, error) {
	now := time.Now()
	c := &model.Customer{
		Phone:          req.Phone,
		Name:           req.Name,
		Email:          req.Email,
		Address:        req.Address,
		TotalPurchases: firstPurchase,
		Active:         true,
	}
	if !firstPurchase.IsZero() {
		c.LastPurchaseDate = &now
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) RecordPurchase(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now()
	c.TotalPurchases = c.TotalPurchases.Add(amount)
	c.LastPurchaseDate = &now
	return s.repo.Save(ctx, c)
}
