package dto

import "github.com/shopspring/decimal"

type OpenRegisterRequest struct {
	InitialCash decimal.Decimal `json:"initial_cash" validate:"required"`
}

type CloseRegisterRequest struct {
	FinalCash decimal.Decimal `json:"final_cash" validate:"required"`
	Notes     *string         `json:"notes"`
}

type RegisterResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	OpenedAt      string          `json:"opened_at"`
	OpenedBy      string          `json:"opened_by"`
	InitialCash   decimal.Decimal `json:"initial_cash"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	TotalCard     decimal.Decimal `json:"total_card"`
	TotalTransfer decimal.Decimal `json:"total_transfer"`
	SalesCount    int             `json:"sales_count"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	Status        string          `json:"status"`
	ClosedAt      *string          `json:"closed_at,omitempty"`
	ClosedBy      *string          `json:"closed_by,omitempty"`
	FinalCash     *decimal.Decimal `json:"final_cash,omitempty"`
	CashDifference *decimal.Decimal `json:"cash_difference,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}
