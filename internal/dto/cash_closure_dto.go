package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenCashClosureRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
	Notes         *string         `json:"notes"          validate:"omitempty,max=500"`
}

type CloseCashClosureRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" validate:"min=0"`
	Notes         *string         `json:"notes"          validate:"omitempty,max=500"`
	ComputerID    string          `json:"computer_id"    validate:"omitempty,max=100"`
	Print         bool            `json:"print"`
}

type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reason string          `json:"reason" validate:"required,min=3,max=255"`
}

// ClosureFilter is bound from the query string of GET /v1/cash-closures.
type ClosureFilter struct {
	SellerID string `form:"seller_id" validate:"omitempty,uuid"`
	Status   string `form:"status"    validate:"omitempty,oneof=open closed"`
	From     string `form:"from"      validate:"omitempty,datetime=2006-01-02"`
	To       string `form:"to"        validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type WithdrawalResponse struct {
	ID        string          `json:"id"`
	SellerID  string          `json:"seller_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt string          `json:"created_at"`
}

type CashClosureResponse struct {
	ID               string               `json:"id"`
	SellerID         *string              `json:"seller_id"`
	OpenedByID       string               `json:"opened_by_id"`
	OpeningDate      string               `json:"opening_date"`
	ClosingDate      *string              `json:"closing_date"`
	OpeningAmount    decimal.Decimal      `json:"opening_amount"`
	ClosingAmount    *decimal.Decimal     `json:"closing_amount"`
	TotalSales       decimal.Decimal      `json:"total_sales"`
	TotalCashSales   decimal.Decimal      `json:"total_cash_sales"`
	TotalChange      decimal.Decimal      `json:"total_change"`
	TotalWithdrawals decimal.Decimal      `json:"total_withdrawals"`
	ExpectedClosing  *decimal.Decimal     `json:"expected_closing"`
	Difference       *decimal.Decimal     `json:"difference"`
	DifferenceLabel  string               `json:"difference_label,omitempty"` // OK | SOBRA | FALTA
	IsClosed         bool                 `json:"is_closed"`
	Notes            *string              `json:"notes,omitempty"`
	Withdrawals      []WithdrawalResponse `json:"withdrawals,omitempty"`
	// PaymentTotals is filled for the current closure.
	PaymentTotals []MethodTotalResponse `json:"payment_totals,omitempty"`
}

type MethodTotalResponse struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type CashClosureListResponse struct {
	Data  []CashClosureResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type CloseCashClosureResponse struct {
	Closure    CashClosureResponse `json:"closure"`
	ReportText string              `json:"report_text"`
	Print      *PrintResult        `json:"print,omitempty"`
}

type ReportResponse struct {
	Content string       `json:"content"`
	Print   *PrintResult `json:"print,omitempty"`
}
