package fiscal

import (
	"context"
	"fmt"
)

// MockIssuer emits documents locally with status MOCK. Keys are well-formed
// and stable per sale but carry no fiscal value.
type MockIssuer struct {
	qrBaseURL string
}

func NewMockIssuer(qrBaseURL string) *MockIssuer {
	return &MockIssuer{qrBaseURL: qrBaseURL}
}

func (m *MockIssuer) Issue(_ context.Context, req Request) (*Authorization, error) {
	key := AccessKey(req.StateCode, req.CompanyCNPJ, req.EmittedAt, req.Series, req.Number, req.SaleID)
	return &Authorization{
		DocumentNumber: req.Number,
		Series:         req.Series,
		AccessKey:      key,
		Protocol:       fmt.Sprintf("MOCK%011d", req.Number),
		Status:         "MOCK",
		EmissionDate:   req.EmittedAt,
		QRCodeURL:      QRCodeURL(m.qrBaseURL, key),
	}, nil
}

func (m *MockIssuer) Cancel(context.Context, string, string, string) error { return nil }

// QRCodeURL is the consumer lookup URL encoded in the NFC-e QR code
// (version 2, homologation environment).
func QRCodeURL(base, accessKey string) string {
	return fmt.Sprintf("%s?p=%s|2|2", base, accessKey)
}
