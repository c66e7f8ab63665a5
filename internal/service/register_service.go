package service

import (
	"context"
	"errors"
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterService tracks the single open cash-drawer session. The
// at-most-one-open invariant is enforced twice: a friendly pre-check here,
// and the uniq_register_open partial index at the database for the case
// where two opens race past the pre-check.
type RegisterService interface {
	Open(ctx context.Context, openedBy string, req dto.OpenRegisterRequest) (*model.RegisterSession, error)
	Current(ctx context.Context) (*model.RegisterSession, error)
	// AddSale accumulates a completed sale into the open session. Best-effort:
	// when no session is open it logs and returns nil so the sale is never
	// blocked.
	AddSale(ctx context.Context, total decimal.Decimal, method string, cash, card, transfer decimal.Decimal) error
	Close(ctx context.Context, id uuid.UUID, closedBy string, req dto.CloseRegisterRequest) (*model.RegisterSession, error)
	List(ctx context.Context, limit int) ([]model.RegisterSession, error)
}

type registerService struct {
	repo repository.RegisterRepository
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{repo: repo}
}

func (s *registerService) Open(ctx context.Context, openedBy string, req dto.OpenRegisterRequest) (*model.RegisterSession, error) {
	if req.InitialCash.IsNegative() {
		return nil, validationErrorf("initial cash cannot be negative")
	}

	if _, err := s.repo.FindOpen(ctx); err == nil {
		return nil, &StateConflictError{Msg: "a register session is already open"}
	}

	number := NextNumber(ctx, RegisterPrefix, s.repo.LastNumber)
	session := &model.RegisterSession{
		Number:       number,
		OpenedAt:     time.Now(),
		OpenedBy:     openedBy,
		InitialCash:  req.InitialCash,
		ExpectedCash: req.InitialCash,
		Status:       model.RegisterStatusOpen,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		// Two opens raced past the pre-check; the partial unique index caught
		// the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &StateConflictError{Msg: "a register session is already open"}
		}
		return nil, err
	}

	log.Info().Str("number", number).Str("opened_by", openedBy).Msg("register opened")
	return session, nil
}

func (s *registerService) Current(ctx context.Context) (*model.RegisterSession, error) {
	session, err := s.repo.FindOpen(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return session, err
}

func (s *registerService) AddSale(ctx context.Context, total decimal.Decimal, method string, cash, card, transfer decimal.Decimal) error {
	// Resolve the per-tender deltas; single-tender methods put the full total
	// in their bucket, mixed uses the caller's split.
	cashDelta, cardDelta, transferDelta := decimal.Zero, decimal.Zero, decimal.Zero
	switch method {
	case model.PaymentCash:
		cashDelta = total
	case model.PaymentCard:
		cardDelta = total
	case model.PaymentTransfer:
		transferDelta = total
	case model.PaymentMixed:
		cashDelta, cardDelta, transferDelta = cash, card, transfer
	}

	// One atomic UPDATE keyed on the open session — concurrent sales each
	// apply their own delta, none can overwrite another's.
	updated, err := s.repo.AccumulateSale(ctx, total, cashDelta, cardDelta, transferDelta)
	if err != nil {
		return err
	}
	if !updated {
		log.Warn().Str("method", method).Str("total", total.String()).
			Msg("sale completed with no open register session — totals not accumulated")
	}
	return nil
}

func (s *registerService) Close(ctx context.Context, id uuid.UUID, closedBy string, req dto.CloseRegisterRequest) (*model.RegisterSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.Status == model.RegisterStatusClosed {
		return nil, &StateConflictError{Msg: "register session is already closed"}
	}

	now := time.Now()
	difference := req.FinalCash.Sub(session.ExpectedCash)

	session.Status = model.RegisterStatusClosed
	session.ClosedAt = &now
	session.ClosedBy = &closedBy
	session.FinalCash = &req.FinalCash
	session.CashDifference = &difference
	session.Notes = req.Notes

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	if difference.IsZero() {
		log.Info().Str("number", session.Number).Msg("register closed: drawer balanced")
	} else {
		log.Warn().Str("number", session.Number).
			Str("expected", session.ExpectedCash.String()).
			Str("counted", req.FinalCash.String()).
			Str("difference", difference.String()).
			Msg("register closed with cash variance")
	}

	return session, nil
}

func (s *registerService) List(ctx context.Context, limit int) ([]model.RegisterSession, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}
