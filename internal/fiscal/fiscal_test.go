package fiscal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vendapos/internal/fiscal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() fiscal.Request {
	return fiscal.Request{
		CompanyCNPJ: "12.345.678/0001-95",
		StateCode:   "35",
		SaleID:      uuid.MustParse("6f1c1e4e-3b8a-4c39-9d0e-0c3c5d8f7a21"),
		Series:      1,
		Number:      123,
		Total:       decimal.NewFromFloat(64.29),
		EmittedAt:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestAccessKey_Shape(t *testing.T) {
	req := sampleRequest()
	key := fiscal.AccessKey(req.StateCode, req.CompanyCNPJ, req.EmittedAt, req.Series, req.Number, req.SaleID)

	require.Len(t, key, 44)
	assert.Equal(t, "35", key[0:2])
	assert.Equal(t, "2603", key[2:6])
	assert.Equal(t, "12345678000195", key[6:20])
	assert.Equal(t, "65", key[20:22])
	assert.Equal(t, "001", key[22:25])
	assert.Equal(t, "000000123", key[25:34])
	assert.Equal(t, "1", key[34:35])
	assert.True(t, fiscal.ValidAccessKey(key))

	again := fiscal.AccessKey(req.StateCode, req.CompanyCNPJ, req.EmittedAt, req.Series, req.Number, req.SaleID)
	assert.Equal(t, key, again)
}

func TestValidAccessKey_RejectsTampering(t *testing.T) {
	req := sampleRequest()
	key := []byte(fiscal.AccessKey(req.StateCode, req.CompanyCNPJ, req.EmittedAt, req.Series, req.Number, req.SaleID))
	key[43] = '0' + (key[43]-'0'+1)%10
	assert.False(t, fiscal.ValidAccessKey(string(key)))
	assert.False(t, fiscal.ValidAccessKey("123"))
}

type stubIssuer struct {
	err       error
	cancelErr error
	calls     int
}

func (s *stubIssuer) Issue(_ context.Context, req fiscal.Request) (*fiscal.Authorization, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &fiscal.Authorization{DocumentNumber: req.Number, AccessKey: "k", Status: "Autorizada"}, nil
}

func (s *stubIssuer) Cancel(context.Context, string, string, string) error { return s.cancelErr }

type openBreaker struct{}

func (openBreaker) Execute(func() error) error { return errors.New("circuit breaker is open") }

func TestFacade_MockMode(t *testing.T) {
	f := fiscal.NewFacade(fiscal.ModeMock, fiscal.NewMockIssuer("https://qr.example"), nil)
	out := f.Issue(context.Background(), sampleRequest())

	assert.Equal(t, fiscal.Mocked, out.Kind)
	require.NotNil(t, out.Authorization)
	assert.Equal(t, "MOCK", out.Authorization.Status)
	assert.Contains(t, out.Authorization.QRCodeURL, out.Authorization.AccessKey)
	assert.False(t, out.HasFiscalValue())
}

func TestFacade_GatewayIssued(t *testing.T) {
	f := fiscal.NewFacade(fiscal.ModeGateway, &stubIssuer{}, nil)
	out := f.Issue(context.Background(), sampleRequest())
	assert.Equal(t, fiscal.Issued, out.Kind)
	assert.True(t, out.HasFiscalValue())
}

func TestFacade_GatewayFailureIsOutcome(t *testing.T) {
	f := fiscal.NewFacade(fiscal.ModeGateway, &stubIssuer{err: errors.New("timeout")}, nil)
	out := f.Issue(context.Background(), sampleRequest())
	assert.Equal(t, fiscal.Failed, out.Kind)
	assert.Nil(t, out.Authorization)
	assert.EqualError(t, out.Err, "timeout")
}

func TestFacade_OpenBreakerSkipsIssuer(t *testing.T) {
	issuer := &stubIssuer{}
	f := fiscal.NewFacade(fiscal.ModeGateway, issuer, openBreaker{})
	out := f.Issue(context.Background(), sampleRequest())
	assert.Equal(t, fiscal.Failed, out.Kind)
	assert.Zero(t, issuer.calls)
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "issued", fiscal.Issued.String())
	assert.Equal(t, "mocked", fiscal.Mocked.String())
	assert.Equal(t, "failed", fiscal.Failed.String())
}
