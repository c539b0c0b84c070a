package service

import (
	"sort"

	"vendapos/internal/model"
	"vendapos/internal/payment"
	"vendapos/internal/render"

	"github.com/shopspring/decimal"
)

// Difference labels printed on closure reports.
const (
	DifferenceOK      = "OK"
	DifferenceSurplus = "SOBRA"
	DifferenceShort   = "FALTA"
)

// ClosureSummary is the aggregation of one closure's sales and withdrawals.
type ClosureSummary struct {
	SaleCount        int
	TotalSales       decimal.Decimal
	TotalCashSales   decimal.Decimal
	TotalChange      decimal.Decimal
	TotalWithdrawals decimal.Decimal
	ExpectedClosing  decimal.Decimal
	// Difference and Label are only set when a closing amount is known.
	Difference *decimal.Decimal
	Label      string
	Methods    []render.MethodTotal
	Sellers    []render.SellerTotal
}

// SummarizeClosure computes
//
//	expected   = opening + cash sales - withdrawals - change
//	difference = closing - expected
//
// closing may be nil for a still-open closure.
func SummarizeClosure(opening decimal.Decimal, sales []model.Sale, withdrawals []model.CashWithdrawal, closing *decimal.Decimal) ClosureSummary {
	s := ClosureSummary{
		SaleCount:        len(sales),
		TotalSales:       decimal.Zero,
		TotalCashSales:   decimal.Zero,
		TotalChange:      decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}

	methods := make(map[string]*render.MethodTotal)
	sellers := make(map[string]*render.SellerTotal)
	for i := range sales {
		sale := &sales[i]
		s.TotalSales = s.TotalSales.Add(sale.Total)
		s.TotalChange = s.TotalChange.Add(sale.Change)
		s.TotalCashSales = s.TotalCashSales.Add(sale.CashAmount())

		for _, pm := range sale.PaymentMethods {
			mt, ok := methods[pm.Method]
			if !ok {
				mt = &render.MethodTotal{Method: pm.Method, Total: decimal.Zero}
				methods[pm.Method] = mt
			}
			mt.Count++
			mt.Total = mt.Total.Add(pm.Amount)
		}

		name := sellerName(sale.Seller)
		st, ok := sellers[name]
		if !ok {
			st = &render.SellerTotal{Name: name, Total: decimal.Zero}
			sellers[name] = st
		}
		st.Count++
		st.Total = st.Total.Add(sale.Total)
	}
	for _, w := range withdrawals {
		s.TotalWithdrawals = s.TotalWithdrawals.Add(w.Amount)
	}

	s.ExpectedClosing = opening.Add(s.TotalCashSales).Sub(s.TotalWithdrawals).Sub(s.TotalChange)
	if closing != nil {
		diff := closing.Sub(s.ExpectedClosing)
		s.Difference = &diff
		s.Label = ClassifyDifference(diff)
	}

	for _, m := range model.PaymentMethods {
		if mt, ok := methods[m]; ok {
			s.Methods = append(s.Methods, *mt)
			delete(methods, m)
		}
	}
	// Methods outside the known list (legacy rows) go last, by name.
	var rest []string
	for m := range methods {
		rest = append(rest, m)
	}
	sort.Strings(rest)
	for _, m := range rest {
		s.Methods = append(s.Methods, *methods[m])
	}

	for _, st := range sellers {
		s.Sellers = append(s.Sellers, *st)
	}
	sort.Slice(s.Sellers, func(i, j int) bool { return s.Sellers[i].Name < s.Sellers[j].Name })
	return s
}

// Frozen replaces the recomputed aggregates with the values stored when cl
// was closed. Breakdowns by method and seller still come from the rows.
func (s ClosureSummary) Frozen(cl *model.CashClosure) ClosureSummary {
	s.TotalSales = cl.TotalSales
	s.TotalCashSales = cl.TotalCashSales
	s.TotalChange = cl.TotalChange
	s.TotalWithdrawals = cl.TotalWithdrawals
	if cl.ExpectedClosing != nil {
		s.ExpectedClosing = *cl.ExpectedClosing
	}
	if cl.Difference != nil {
		diff := *cl.Difference
		s.Difference = &diff
		s.Label = ClassifyDifference(diff)
	}
	return s
}

// ClassifyDifference labels a closing difference: OK below one cent,
// SOBRA when positive, FALTA when negative.
func ClassifyDifference(diff decimal.Decimal) string {
	if diff.Abs().LessThan(payment.Tolerance) {
		return DifferenceOK
	}
	if diff.IsPositive() {
		return DifferenceSurplus
	}
	return DifferenceShort
}

func sellerName(s *model.Seller) string {
	if s == nil {
		return "-"
	}
	return s.Name
}
