package dto

import "github.com/shopspring/decimal"

type CancelFiscalDocumentRequest struct {
	// NFC-e cancellations require a justification of at least 15 characters.
	Reason string `json:"reason" validate:"required,min=15,max=255"`
}

type FiscalDocumentResponse struct {
	ID             string          `json:"id"`
	SaleID         *string         `json:"sale_id"`
	DocumentType   string          `json:"document_type"`
	Series         int             `json:"series"`
	DocumentNumber int64           `json:"document_number"`
	AccessKey      *string         `json:"access_key"`
	Protocol       *string         `json:"protocol"`
	Status         string          `json:"status"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Origin         string          `json:"origin"`
	EmissionDate   string          `json:"emission_date"`
	CancelReason   *string         `json:"cancel_reason,omitempty"`
	CancelledAt    *string         `json:"cancelled_at,omitempty"`
	RetryCount     int             `json:"retry_count"`
	LastError      *string         `json:"last_error,omitempty"`
}
