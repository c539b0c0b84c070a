package dto

import "github.com/shopspring/decimal"

type BudgetItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateBudgetRequest struct {
	Items         []BudgetItemRequest `json:"items"           validate:"required,min=1,dive"`
	ClientName    *string             `json:"client_name"     validate:"omitempty,max=120"`
	ClientCPFCNPJ *string             `json:"client_cpf_cnpj" validate:"omitempty,min=11,max=18"`
	// ValidDays defaults to 7.
	ValidDays int     `json:"valid_days" validate:"omitempty,min=1,max=365"`
	Notes     *string `json:"notes"      validate:"omitempty,max=500"`
}

// ApproveBudgetRequest carries the tender for the sale created on approval.
type ApproveBudgetRequest struct {
	PaymentMethods []PaymentRequest `json:"payment_methods" validate:"required,min=1,dive"`
	ClientEmail    *string          `json:"client_email"    validate:"omitempty,email"`
}

type BudgetItemResponse struct {
	ProductID  string          `json:"product_id"`
	Product    string          `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type BudgetResponse struct {
	ID            string               `json:"id"`
	BudgetNumber  int                  `json:"budget_number"`
	SellerID      *string              `json:"seller_id"`
	ClientName    *string              `json:"client_name,omitempty"`
	ClientCPFCNPJ *string              `json:"client_cpf_cnpj,omitempty"`
	Total         decimal.Decimal      `json:"total"`
	Status        string               `json:"status"`
	ValidUntil    string               `json:"valid_until"`
	Notes         *string              `json:"notes,omitempty"`
	SaleID        *string              `json:"sale_id,omitempty"`
	CreatedAt     string               `json:"created_at"`
	Items         []BudgetItemResponse `json:"items"`
}

type ApproveBudgetResponse struct {
	Budget   BudgetResponse      `json:"budget"`
	Sale     *CreateSaleResponse `json:"sale,omitempty"`
	Warnings []string            `json:"warnings"`
}
