package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MethodTotal is the sum of one payment method across a closure.
type MethodTotal struct {
	Method string
	Count  int
	Total  decimal.Decimal
}

type SellerTotal struct {
	Name  string
	Count int
	Total decimal.Decimal
}

// ClosureSale is one sale line in the detailed report.
type ClosureSale struct {
	ID         string
	SaleDate   time.Time
	SellerName string
	ClientName string
	Total      decimal.Decimal
	Change     decimal.Decimal
	Payments   []Payment
}

type Withdrawal struct {
	CreatedAt time.Time
	Amount    decimal.Decimal
	Reason    string
}

// ClosureReport carries the already-computed aggregates of one closure.
type ClosureReport struct {
	ClosureID        string
	Company          CompanyHeader
	ScopeLabel       string
	OpeningDate      time.Time
	ClosingDate      *time.Time
	OpeningAmount    decimal.Decimal
	ClosingAmount    *decimal.Decimal
	SaleCount        int
	TotalSales       decimal.Decimal
	TotalCashSales   decimal.Decimal
	TotalChange      decimal.Decimal
	TotalWithdrawals decimal.Decimal
	ExpectedClosing  decimal.Decimal
	Difference       *decimal.Decimal
	DifferenceLabel  string
	Methods          []MethodTotal
	Sellers          []SellerTotal
	Sales            []ClosureSale
	Withdrawals      []Withdrawal
}

// CashClosureReport lays out a closure. includeSaleDetails adds the
// per-seller, per-sale and withdrawal sections.
func (r *Renderer) CashClosureReport(c ClosureReport, includeSaleDetails bool, ti *TimeInfo) string {
	p := newPage(r.width)
	p.header(c.Company)
	if c.ClosingDate != nil {
		p.wrap("RELATÓRIO DE FECHAMENTO DE CAIXA")
	} else {
		p.wrap("RELATÓRIO PARCIAL DE CAIXA")
	}
	p.rule("-")
	p.add("Caixa: " + truncate(c.ScopeLabel, r.width-7))
	p.add("Id: " + shortID(c.ClosureID))
	p.add("Abertura: " + FormatDate(c.OpeningDate, ti))
	if c.ClosingDate != nil {
		p.add("Fechamento: " + FormatDate(*c.ClosingDate, ti))
	}
	p.rule("-")

	p.center("RESUMO DE PAGAMENTOS")
	if len(c.Methods) == 0 {
		p.center("Nenhuma venda registrada.")
	}
	for _, m := range c.Methods {
		p.money(fmt.Sprintf("%s (%d)", PaymentLabel(m.Method), m.Count), m.Total)
	}
	p.rule("-")

	p.money(fmt.Sprintf("Vendas (%d)", c.SaleCount), c.TotalSales)
	p.money("Valor de abertura", c.OpeningAmount)
	p.money("(+) Vendas em dinheiro", c.TotalCashSales)
	p.money("(-) Sangrias", c.TotalWithdrawals)
	p.money("(-) Troco", c.TotalChange)
	p.money("(=) Esperado em caixa", c.ExpectedClosing)
	if c.ClosingAmount != nil {
		p.money("Valor informado", *c.ClosingAmount)
	}
	if c.Difference != nil {
		p.money("Diferença", *c.Difference)
		p.center("*** " + c.DifferenceLabel + " ***")
	}

	if includeSaleDetails {
		r.closureDetails(p, c, ti)
	}

	p.blank()
	p.blank()
	p.center(strings.Repeat("_", r.width-4))
	p.center("Assinatura do responsável")
	return p.String()
}

func (r *Renderer) closureDetails(p *page, c ClosureReport, ti *TimeInfo) {
	if len(c.Sellers) > 0 {
		p.rule("=")
		p.center("VENDAS POR VENDEDOR")
		p.rule("-")
		for _, s := range c.Sellers {
			p.money(fmt.Sprintf("%s (%d)", s.Name, s.Count), s.Total)
		}
	}

	if len(c.Sales) > 0 {
		p.rule("=")
		p.center("DETALHE DAS VENDAS")
		for _, s := range c.Sales {
			p.rule("-")
			p.pair(shortID(s.ID), FormatDate(s.SaleDate, ti))
			if s.SellerName != "" {
				p.add("Vendedor: " + truncate(s.SellerName, r.width-10))
			}
			if s.ClientName != "" {
				p.add("Cliente: " + truncate(s.ClientName, r.width-9))
			}
			for _, pm := range s.Payments {
				p.money("  "+PaymentLabel(pm.Method), pm.Amount)
			}
			if s.Change.IsPositive() {
				p.money("  Troco", s.Change)
			}
			p.money("Total", s.Total)
		}
	}

	if len(c.Withdrawals) > 0 {
		p.rule("=")
		p.center("SANGRIAS")
		p.rule("-")
		for _, w := range c.Withdrawals {
			p.money(FormatDate(w.CreatedAt, ti), w.Amount)
			if w.Reason != "" {
				p.add("  " + truncate(w.Reason, r.width-2))
			}
		}
	}
}
