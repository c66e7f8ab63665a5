package dto

import "github.com/shopspring/decimal"

type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Barcode        *string         `json:"barcode,omitempty"`
	Active         bool            `json:"active"`
}

// PriceCheckResponse is served from the Redis cache when warm.
type PriceCheckResponse struct {
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	RetailPrice decimal.Decimal `json:"retail_price"`
}
