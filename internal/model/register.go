package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register session statuses.
const (
	RegisterStatusOpen   = "open"
	RegisterStatusClosed = "closed"
)

// RegisterSession is one cash-drawer session. At most one session with status
// "open" exists system-wide; a partial unique index on (status) WHERE
// status = 'open' enforces the invariant at the database (see infra).
// Lifecycle: open → closed, terminal. There is no reopen.
type RegisterSession struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Number is the human-facing display identifier (CAJA-NNNNNN).
	Number      string          `gorm:"index;not null"`
	OpenedAt    time.Time       `gorm:"not null"`
	OpenedBy    string          `gorm:"not null"`
	InitialCash decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	TotalSales    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCash     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCard     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTransfer decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SalesCount    int             `gorm:"not null;default:0"`
	// ExpectedCash = InitialCash + TotalCash, recomputed on every cash sale.
	ExpectedCash decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Status string `gorm:"type:varchar(20);not null;default:'open'"`

	ClosedAt *time.Time
	ClosedBy *string
	FinalCash *decimal.Decimal `gorm:"type:decimal(14,2)"`
	// CashDifference = FinalCash − ExpectedCash, recorded at close.
	CashDifference *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (RegisterSession) TableName() string { return "register_sessions" }
