package payment_test

import (
	"testing"

	"vendapos/internal/apperror"
	"vendapos/internal/model"
	"vendapos/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestValidate_CashOverpaymentProducesChange(t *testing.T) {
	s, err := payment.Validate(dec(100), []payment.Line{{Method: model.PaymentCash, Amount: dec(120)}}, "")
	require.NoError(t, err)
	assert.True(t, s.Change.Equal(dec(20)), "change: %s", s.Change)
	assert.True(t, s.Cash.Equal(dec(120)))
	assert.False(t, s.IsInstallment)
}

func TestValidate_Underpayment(t *testing.T) {
	_, err := payment.Validate(dec(100), []payment.Line{
		{Method: model.PaymentCash, Amount: dec(60)},
		{Method: model.PaymentPix, Amount: dec(30)},
	}, "")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePaymentMismatch, appErr.Code)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "90.00", appErr.Details["paid"])
	assert.Equal(t, "100.00", appErr.Details["expected"])
}

func TestValidate_WithinTolerance(t *testing.T) {
	s, err := payment.Validate(dec(100), []payment.Line{{Method: model.PaymentPix, Amount: dec(99.99)}}, "")
	require.NoError(t, err)
	assert.True(t, s.Change.IsZero())
}

func TestValidate_OverpaymentWithoutCashRejected(t *testing.T) {
	_, err := payment.Validate(dec(100), []payment.Line{{Method: model.PaymentCreditCard, Amount: dec(150)}}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentMismatch))
}

func TestValidate_ExcessLargerThanCashRejected(t *testing.T) {
	_, err := payment.Validate(dec(100), []payment.Line{
		{Method: model.PaymentCash, Amount: dec(10)},
		{Method: model.PaymentDebitCard, Amount: dec(120)},
	}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentMismatch))
}

func TestValidate_MixedTenderChangeFromCash(t *testing.T) {
	s, err := payment.Validate(dec(100), []payment.Line{
		{Method: model.PaymentDebitCard, Amount: dec(70)},
		{Method: model.PaymentCash, Amount: dec(50)},
	}, "")
	require.NoError(t, err)
	assert.True(t, s.Change.Equal(dec(20)))
	assert.True(t, s.Paid.Sub(s.Change).Equal(dec(100)))
}

func TestValidate_InvalidMethod(t *testing.T) {
	_, err := payment.Validate(dec(10), []payment.Line{{Method: "cheque", Amount: dec(10)}}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPaymentMethod))
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -5} {
		_, err := payment.Validate(dec(10), []payment.Line{
			{Method: model.PaymentCash, Amount: dec(10)},
			{Method: model.PaymentPix, Amount: dec(amount)},
		}, "")
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPaymentAmount), "amount %v", amount)
	}
}

func TestValidate_SubCentAmountRejected(t *testing.T) {
	_, err := payment.Validate(dec(100), []payment.Line{
		{Method: model.PaymentPix, Amount: decimal.RequireFromString("50.005")},
		{Method: model.PaymentPix, Amount: decimal.RequireFromString("50.005")},
	}, "")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidPaymentAmount, appErr.Code)
	assert.Equal(t, 0, appErr.Details["line"])

	// Trailing zeros are still whole cents.
	s, err := payment.Validate(dec(100), []payment.Line{
		{Method: model.PaymentPix, Amount: decimal.RequireFromString("100.000")},
	}, "")
	require.NoError(t, err)
	assert.True(t, s.Paid.Equal(dec(100)))
}

func TestValidate_MethodCheckedBeforeAmount(t *testing.T) {
	_, err := payment.Validate(dec(10), []payment.Line{{Method: "bitcoin", Amount: dec(0)}}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPaymentMethod))
}

func TestValidate_InstallmentRequiresClient(t *testing.T) {
	lines := []payment.Line{{Method: model.PaymentInstallment, Amount: dec(50)}}

	_, err := payment.Validate(dec(50), lines, "   ")
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingClient))

	s, err := payment.Validate(dec(50), lines, "Maria Souza")
	require.NoError(t, err)
	assert.True(t, s.IsInstallment)
}

func TestValidate_EmptyLines(t *testing.T) {
	_, err := payment.Validate(dec(50), nil, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

// Σamount − change == total for every accepted tender.
func TestValidate_MoneyConservation(t *testing.T) {
	cases := []struct {
		total float64
		lines []payment.Line
	}{
		{37.5, []payment.Line{{Method: model.PaymentCash, Amount: dec(50)}}},
		{37.5, []payment.Line{{Method: model.PaymentPix, Amount: dec(37.5)}}},
		{200, []payment.Line{{Method: model.PaymentCreditCard, Amount: dec(150)}, {Method: model.PaymentCash, Amount: dec(100)}}},
		{12.34, []payment.Line{{Method: model.PaymentStoreCredit, Amount: dec(2.34)}, {Method: model.PaymentCash, Amount: dec(10)}}},
	}
	for _, c := range cases {
		s, err := payment.Validate(dec(c.total), c.lines, "")
		require.NoError(t, err)
		diff := s.Paid.Sub(s.Change).Sub(dec(c.total)).Abs()
		assert.True(t, diff.LessThanOrEqual(payment.Tolerance), "total %v diff %s", c.total, diff)
	}
}
