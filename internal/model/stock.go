package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock record status tags.
const (
	StockStatusInStock   = "in_stock"
	StockStatusInTransit = "in_transit"
	StockStatusDelivered = "delivered"
)

// StockRecord tracks quantity and valuation for one product at one location.
// Quantity is never written directly by callers — only the ledger add/remove
// operations mutate it, so it can never go negative.
type StockRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_stock_product_location"`
	Location  string    `gorm:"not null;uniqueIndex:uniq_stock_product_location"`
	Quantity  int       `gorm:"not null;default:0;check:quantity >= 0"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// TotalCost and TotalPrice are recomputed on every mutation.
	TotalCost  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'in_stock'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// StockMovement is an immutable audit row for every stock mutation.
// Type: "sale" | "restock" | "adjustment" | "cancel_restore"
// Movements are never updated or deleted — reversals create inverse entries.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Location       string    `gorm:"not null"`
	Type           string    `gorm:"type:varchar(20);not null"`
	Quantity       int       `gorm:"not null"` // positive = inbound, negative = outbound
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Reason         string
	// ReferenceID links to the originating sale, when there is one.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }
