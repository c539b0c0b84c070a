// Package payment checks tendered payment lines against a transaction total.
// It performs no I/O.
package payment

import (
	"fmt"
	"strings"

	"vendapos/internal/apperror"
	"vendapos/internal/model"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest gap between paid and total still treated as equal.
var Tolerance = decimal.New(1, -2)

// Line is one tender: a method and the amount handed over with it.
type Line struct {
	Method         string
	Amount         decimal.Decimal
	AdditionalInfo *string
}

// Settlement is the outcome of a valid tender.
type Settlement struct {
	Paid          decimal.Decimal
	Cash          decimal.Decimal
	Change        decimal.Decimal
	IsInstallment bool
}

var validMethods = func() map[string]bool {
	m := make(map[string]bool, len(model.PaymentMethods))
	for _, method := range model.PaymentMethods {
		m[method] = true
	}
	return m
}()

// IsValidMethod reports whether method is a recognized payment method.
func IsValidMethod(method string) bool { return validMethods[method] }

// Validate checks lines against total. Checks run in order: method, amount
// (positive, whole cents), installment client, then the sum. Overpayment is accepted only when the
// excess can be returned as change from the cash lines.
func Validate(total decimal.Decimal, lines []Line, clientName string) (*Settlement, error) {
	if len(lines) == 0 {
		return nil, apperror.Validation(apperror.CodeValidation, "Informe ao menos uma forma de pagamento")
	}

	s := &Settlement{Paid: decimal.Zero, Cash: decimal.Zero, Change: decimal.Zero}
	for i, l := range lines {
		if !IsValidMethod(l.Method) {
			return nil, apperror.Validation(apperror.CodeInvalidPaymentMethod,
				fmt.Sprintf("Forma de pagamento inválida: %q", l.Method)).
				WithDetail("line", i).WithDetail("method", l.Method)
		}
		if !l.Amount.IsPositive() {
			return nil, apperror.Validation(apperror.CodeInvalidPaymentAmount,
				"O valor de cada forma de pagamento deve ser maior que zero").
				WithDetail("line", i).WithDetail("amount", l.Amount.StringFixed(2))
		}
		// Whole cents only; amounts persist as decimal(12,2).
		if !l.Amount.Equal(l.Amount.Truncate(2)) {
			return nil, apperror.Validation(apperror.CodeInvalidPaymentAmount,
				"O valor de cada forma de pagamento deve ter no máximo duas casas decimais").
				WithDetail("line", i).WithDetail("amount", l.Amount.String())
		}
		if l.Method == model.PaymentInstallment {
			s.IsInstallment = true
		}
		if l.Method == model.PaymentCash {
			s.Cash = s.Cash.Add(l.Amount)
		}
		s.Paid = s.Paid.Add(l.Amount)
	}

	if s.IsInstallment && strings.TrimSpace(clientName) == "" {
		return nil, apperror.Validation(apperror.CodeMissingClient,
			"Venda no crediário exige o nome do cliente")
	}

	if s.Paid.LessThan(total.Sub(Tolerance)) {
		return nil, mismatch(s.Paid, total)
	}
	if excess := s.Paid.Sub(total); excess.GreaterThan(Tolerance) {
		// Change is only ever handed back from cash.
		if excess.GreaterThan(s.Cash) {
			return nil, mismatch(s.Paid, total)
		}
		s.Change = excess.Round(2)
	}
	return s, nil
}

func mismatch(paid, expected decimal.Decimal) *apperror.Error {
	return apperror.Validation(apperror.CodePaymentMismatch,
		fmt.Sprintf("Pagamento de %s não confere com o total %s", paid.StringFixed(2), expected.StringFixed(2))).
		WithDetail("paid", paid.StringFixed(2)).
		WithDetail("expected", expected.StringFixed(2))
}
