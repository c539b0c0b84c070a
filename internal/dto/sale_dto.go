package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	SellerID      string `form:"seller_id"       validate:"omitempty,uuid"`
	CashClosureID string `form:"cash_closure_id" validate:"omitempty,uuid"`
	From          string `form:"from"            validate:"omitempty,datetime=2006-01-02"`
	To            string `form:"to"              validate:"omitempty,datetime=2006-01-02"`
	ClientName    string `form:"client_name"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// PaymentRequest is checked by the payment validator, not by tags, so the
// caller gets INVALID_PAYMENT_METHOD / INVALID_PAYMENT_AMOUNT codes.
type PaymentRequest struct {
	Method         string          `json:"method"          validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	AdditionalInfo *string         `json:"additional_info" validate:"omitempty,max=255"`
}

type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items"           validate:"required,min=1,dive"`
	PaymentMethods []PaymentRequest  `json:"payment_methods" validate:"required,min=1,dive"`
	ClientName     *string           `json:"client_name"     validate:"omitempty,max=120"`
	ClientCPFCNPJ  *string           `json:"client_cpf_cnpj" validate:"omitempty,min=11,max=18"`
	// ClientEmail, when present, has the PDF receipt mailed by the email worker.
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
	// ComputerID identifies the client device for printer resolution.
	ComputerID string `json:"computer_id" validate:"omitempty,max=100"`
	// Print defaults to true.
	Print *bool `json:"print"`
}

type ReprintRequest struct {
	ComputerID string `json:"computer_id" validate:"omitempty,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID  string          `json:"product_id"`
	Product    string          `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type PaymentResponse struct {
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	AdditionalInfo *string         `json:"additional_info,omitempty"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	SellerID       string             `json:"seller_id"`
	SellerName     string             `json:"seller_name,omitempty"`
	CashClosureID  *string            `json:"cash_closure_id"`
	BudgetID       *string            `json:"budget_id,omitempty"`
	Total          decimal.Decimal    `json:"total"`
	Change         decimal.Decimal    `json:"change"`
	ClientName     *string            `json:"client_name,omitempty"`
	ClientCPFCNPJ  *string            `json:"client_cpf_cnpj,omitempty"`
	IsInstallment  bool               `json:"is_installment"`
	SaleDate       string             `json:"sale_date"`
	Items          []SaleItemResponse `json:"items"`
	PaymentMethods []PaymentResponse  `json:"payment_methods"`
}

// PrintResult mirrors printing.Result for the API.
type PrintResult struct {
	Success     bool    `json:"success"`
	PrinterName string  `json:"printer_name,omitempty"`
	Tier        string  `json:"tier,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	Message     *string `json:"message,omitempty"`
}

// FiscalSummary is the fiscal side of a sale as seen right after commit.
type FiscalSummary struct {
	Outcome          string  `json:"outcome"` // issued | mocked | failed
	FiscalDocumentID *string `json:"fiscal_document_id,omitempty"`
	Status           string  `json:"status,omitempty"`
	AccessKey        *string `json:"access_key,omitempty"`
	Error            *string `json:"error,omitempty"`
}

// CreateSaleResponse is returned once the sale is committed. Fiscal, print
// and email problems only show up in Warnings.
type CreateSaleResponse struct {
	Sale     SaleResponse   `json:"sale"`
	Fiscal   *FiscalSummary `json:"fiscal,omitempty"`
	Print    *PrintResult   `json:"print,omitempty"`
	Warnings []string       `json:"warnings"`
}

// ReceiptEmailJob is queued after a sale with a client email. The worker
// renders the PDF receipt and mails it.
type ReceiptEmailJob struct {
	CompanyID string `json:"company_id"`
	SaleID    string `json:"sale_id"`
	ToEmail   string `json:"to_email"`
	Attempt   int    `json:"attempt"`
}
