package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog record. The POS engine consumes it read-only;
// catalog CRUD lives in the back-office surface.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU      string    `gorm:"uniqueIndex;not null"`
	Name     string    `gorm:"index;not null"`
	Category string    `gorm:"not null"`
	UnitCost decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Two price tiers: retail is the walk-up price, wholesale the bulk price.
	RetailPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Barcode        *string         `gorm:"uniqueIndex"`
	ImageURL       *string
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
