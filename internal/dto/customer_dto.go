package dto

import "github.com/shopspring/decimal"

type CreateCustomerRequest struct {
	Phone   string  `json:"phone" validate:"required,min=6"`
	Name    string  `json:"name"  validate:"required"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address"`
}

type CustomerResponse struct {
	ID               string          `json:"id"`
	Phone            string          `json:"phone"`
	Name             string          `json:"name"`
	Email            *string         `json:"email,omitempty"`
	Address          *string         `json:"address,omitempty"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	LastPurchaseDate *string         `json:"last_purchase_date,omitempty"`
	Active           bool            `json:"active"`
}
