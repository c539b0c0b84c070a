package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vendapos/internal/apperror"
	"vendapos/internal/fiscal"
	"vendapos/internal/model"
	"vendapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, service.RetryBackoff(0))
	assert.Equal(t, time.Minute, service.RetryBackoff(1))
	assert.Equal(t, 2*time.Minute, service.RetryBackoff(2))
	assert.Equal(t, 16*time.Minute, service.RetryBackoff(5))
	assert.Equal(t, time.Hour, service.RetryBackoff(12))
}

func TestIssueForSale_NumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	p := f.store.addProduct(f.company.ID, "Pão de queijo", "2.00", 100)

	var numbers []int64
	for i := 0; i < 3; i++ {
		resp := f.sell(t, p, 1, pay(model.PaymentCash, "2.00"))
		doc, err := f.fiscal.ForSale(context.Background(), f.company.ID, mustUUID(t, resp.Sale.ID))
		require.NoError(t, err)
		require.NotNil(t, doc)
		numbers = append(numbers, doc.DocumentNumber)
		assert.Len(t, *doc.AccessKey, 44)
	}
	assert.Equal(t, []int64{1, 2, 3}, numbers)
}

func TestRetryPending_IssuesAfterGatewayRecovers(t *testing.T) {
	issuer := &switchIssuer{mock: fiscal.NewMockIssuer("https://nfce.test/qrcode")}
	f := newFixture(t, withIssuer(fiscal.ModeGateway, issuer))
	p := f.store.addProduct(f.company.ID, "Iogurte", "4.00", 10)
	resp := f.sell(t, p, 1, pay(model.PaymentPix, "4.00"))
	assert.Equal(t, "failed", resp.Fiscal.Outcome)

	issuer.heal()
	f.store.due()
	rep, err := f.fiscal.RetryPending(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Attempted)
	assert.Equal(t, 1, rep.Issued)
	doc, err := f.fiscal.ForSale(context.Background(), f.company.ID, mustUUID(t, resp.Sale.ID))
	require.NoError(t, err)
	assert.Equal(t, model.FiscalStatusAuthorized, doc.Status)
	assert.Nil(t, doc.NextRetryAt)
	assert.Nil(t, doc.LastError)
}

func TestRetryPending_CompanyLookupFailureSkipsOnlyThatDocument(t *testing.T) {
	issuer := &switchIssuer{mock: fiscal.NewMockIssuer("https://nfce.test/qrcode")}
	f := newFixture(t, withIssuer(fiscal.ModeGateway, issuer))
	p := f.store.addProduct(f.company.ID, "Requeijão", "6.00", 10)
	f.sell(t, p, 1, pay(model.PaymentCash, "6.00"))
	f.sell(t, p, 1, pay(model.PaymentCash, "6.00"))

	issuer.heal()
	f.store.due()
	f.store.mu.Lock()
	f.store.companyLookupFailures = 1
	f.store.mu.Unlock()

	rep, err := f.fiscal.RetryPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Attempted)
	assert.Equal(t, 1, rep.Issued)

	rep, err = f.fiscal.RetryPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Attempted, "skipped document stays due")
	assert.Equal(t, 1, rep.Issued)
}

func TestRetryPending_ExhaustsAfterMaxRetries(t *testing.T) {
	f := newFixture(t, withIssuer(fiscal.ModeGateway, failingIssuer{err: errors.New("timeout")}))
	p := f.store.addProduct(f.company.ID, "Manga", "3.00", 10)
	resp := f.sell(t, p, 1, pay(model.PaymentCash, "3.00"))

	var exhausted int
	for i := 0; i < service.MaxFiscalRetries; i++ {
		f.store.due()
		rep, err := f.fiscal.RetryPending(context.Background(), 10)
		require.NoError(t, err)
		exhausted += len(rep.Exhausted)
	}

	assert.Equal(t, 1, exhausted)
	doc, err := f.fiscal.ForSale(context.Background(), f.company.ID, mustUUID(t, resp.Sale.ID))
	require.NoError(t, err)
	assert.Equal(t, model.FiscalStatusPending, doc.Status)
	assert.Equal(t, service.MaxFiscalRetries, doc.RetryCount)
	assert.Nil(t, doc.NextRetryAt)

	f.store.due()
	rep, err := f.fiscal.RetryPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, rep.Attempted, "parked documents are not retried")
}

func TestIssueForSale_RejectionIsFinal(t *testing.T) {
	rejected := fmt.Errorf("gateway: %w: CNPJ do emitente inválido", fiscal.ErrRejected)
	f := newFixture(t, withIssuer(fiscal.ModeGateway, failingIssuer{err: rejected}))
	p := f.store.addProduct(f.company.ID, "Uva", "9.00", 10)

	resp := f.sell(t, p, 1, pay(model.PaymentCash, "9.00"))

	assert.Equal(t, model.FiscalStatusRejected, resp.Fiscal.Status)
	f.store.due()
	rep, err := f.fiscal.RetryPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, rep.Attempted)
}

func TestCancelFiscalDocument(t *testing.T) {
	issuer := &switchIssuer{mock: fiscal.NewMockIssuer("https://nfce.test/qrcode")}
	issuer.heal()
	f := newFixture(t, withIssuer(fiscal.ModeGateway, issuer))
	p := f.store.addProduct(f.company.ID, "Pera", "5.00", 10)
	resp := f.sell(t, p, 1, pay(model.PaymentCash, "5.00"))
	require.Equal(t, "issued", resp.Fiscal.Outcome)
	id := mustUUID(t, *resp.Fiscal.FiscalDocumentID)
	reason := "Cliente desistiu da compra no caixa"

	cancelled, err := f.fiscal.Cancel(context.Background(), f.company.ID, id, reason)
	require.NoError(t, err)
	assert.Equal(t, model.FiscalStatusCancelled, cancelled.Status)

	_, err = f.fiscal.Cancel(context.Background(), f.company.ID, id, reason)
	assert.True(t, apperror.HasCode(err, apperror.CodeFiscalAlreadyCancelled))

	text, err := f.fiscal.Render(context.Background(), f.company.ID, id, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "CANCELADA")
}

func TestCancelFiscalDocument_MockNotCancellable(t *testing.T) {
	f := newFixture(t)
	p := f.store.addProduct(f.company.ID, "Kiwi", "5.00", 10)
	resp := f.sell(t, p, 1, pay(model.PaymentCash, "5.00"))

	_, err := f.fiscal.Cancel(context.Background(), f.company.ID,
		mustUUID(t, *resp.Fiscal.FiscalDocumentID), "Teste de cancelamento em modo mock")

	assert.True(t, apperror.HasCode(err, apperror.CodeFiscalNotCancellable))
}
