package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the directory record keyed by phone. Created on the first
// unmatched phone at sale time, then updated in place with running totals.
type Customer struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Phone   string    `gorm:"uniqueIndex;not null"`
	Name    string    `gorm:"not null"`
	Email   *string
	Address *string
	TotalPurchases   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	LastPurchaseDate *time.Time
	Active           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
