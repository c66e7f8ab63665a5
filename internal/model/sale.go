package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale statuses.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Payment methods.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentMixed    = "mixed"
)

// Sale is the durable record of a completed POS transaction.
// The customer block is a snapshot taken at sale time, not a live reference.
// Optional tender amounts are nullable — a column is NULL whenever the field
// is not relevant to the chosen payment method.
type Sale struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Number is the human-facing display identifier (POS-NNNNNN). It is not
	// a key: collisions under concurrent creation are tolerated.
	Number          string    `gorm:"index;not null"`
	TransactionDate time.Time `gorm:"not null;index"`

	CustomerName     string `gorm:"not null"`
	CustomerLastName string
	CustomerPhone    *string `gorm:"index"`
	CustomerEmail    *string
	CustomerAddress  *string

	Items []SaleItem `gorm:"foreignKey:SaleID"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	PaymentMethod  string           `gorm:"type:varchar(20);not null"`
	CashReceived   *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Change         *decimal.Decimal `gorm:"type:decimal(14,2)"`
	CardAmount     *decimal.Decimal `gorm:"type:decimal(14,2)"`
	TransferAmount *decimal.Decimal `gorm:"type:decimal(14,2)"`

	Status string  `gorm:"type:varchar(20);not null;default:'completed'"`
	Notes  *string
	// LedgerSyncPending flags a sale whose best-effort side effects (register
	// totals, customer history) did not land; the retry loop clears it.
	LedgerSyncPending bool   `gorm:"not null;default:false;index"`
	CreatedBy         string `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SaleItem is one cart line with a denormalized product snapshot.
// UnitPrice is the price actually charged, which may diverge from the catalog
// price at sale time. UnitCost is captured so a cancellation can restock at
// the original valuation.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductName string    `gorm:"not null"`
	ProductSKU  string    `gorm:"not null"`
	Location    string    `gorm:"not null"`
	Quantity    int       `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// AccountingEntry is an append-only projection linking a sale to its value
// and tender. It is never mutated after creation; a cancelled sale leaves its
// entry orphaned, to be reconciled when the drawer session closes.
type AccountingEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleNumber    string          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Status        string          `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time
}

func (AccountingEntry) TableName() string { return "accounting_entries" }
