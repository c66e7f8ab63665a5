package dto

import "github.com/shopspring/decimal"

type AddStockRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"  validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	Location  string          `json:"location"   validate:"required"`
}

type RemoveStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	Location  string `json:"location"   validate:"required"`
}

type StockResponse struct {
	ProductID  string          `json:"product_id"`
	Product    string          `json:"product,omitempty"`
	Location   string          `json:"location"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
}
