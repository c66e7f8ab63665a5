package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	// UnitPrice is editable at sale time and may diverge from the catalog price.
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

// CustomerSnapshot is captured on the sale record at transaction time; it is
// never a live reference into the customer directory.
type CustomerSnapshot struct {
	Name     string  `json:"name"      validate:"required"`
	LastName string  `json:"last_name" validate:"required"`
	Phone    *string `json:"phone"     validate:"omitempty,min=6"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Address  *string `json:"address"`
}

type CreateSaleRequest struct {
	Items    []SaleItemRequest `json:"items"    validate:"required,min=1,dive"`
	Customer CustomerSnapshot  `json:"customer" validate:"required"`
	// PaymentMethod selects which tender amounts are relevant; the others must
	// be omitted and are stored as NULL.
	PaymentMethod  string           `json:"payment_method"  validate:"required,oneof=cash card transfer mixed"`
	CashReceived   *decimal.Decimal `json:"cash_received"`
	CardAmount     *decimal.Decimal `json:"card_amount"`
	TransferAmount *decimal.Decimal `json:"transfer_amount"`
	Notes          *string          `json:"notes"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`   // YYYY-MM-DD; empty = all dates
	Status string `form:"status"` // completed | cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID  string          `json:"product_id"`
	Product    string          `json:"product"`
	SKU        string          `json:"sku"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	CustomerName  string             `json:"customer_name"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CashReceived  *decimal.Decimal   `json:"cash_received,omitempty"`
	Change        *decimal.Decimal   `json:"change,omitempty"`
	CardAmount    *decimal.Decimal   `json:"card_amount,omitempty"`
	TransferAmount *decimal.Decimal  `json:"transfer_amount,omitempty"`
	Status        string             `json:"status"`
	Notes         *string            `json:"notes,omitempty"`
	LedgerSyncPending bool           `json:"ledger_sync_pending"`
	CreatedAt     string             `json:"created_at"`
}

type AccountingEntryResponse struct {
	ID            string          `json:"id"`
	SaleID        string          `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
