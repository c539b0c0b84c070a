package render

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	Number        int
	Company       CompanyHeader
	SellerName    string
	ClientName    string
	ClientCPFCNPJ string
	Items         []Item
	Total         decimal.Decimal
	CreatedAt     time.Time
	ValidUntil    time.Time
	Status        string
	Notes         string
}

var budgetStatusLabels = map[string]string{
	"approved": "APROVADO",
	"rejected": "RECUSADO",
	"expired":  "EXPIRADO",
}

// Budget lays out a quote.
func (r *Renderer) Budget(b Budget, ti *TimeInfo) string {
	p := newPage(r.width)
	p.header(b.Company)
	p.center(fmt.Sprintf("ORÇAMENTO Nº %06d", b.Number))
	if label, ok := budgetStatusLabels[b.Status]; ok {
		p.center("*** " + label + " ***")
	}
	p.rule("-")
	p.add("Data: " + FormatDate(b.CreatedAt, ti))
	p.add("Válido até: " + FormatDay(b.ValidUntil, ti))
	if b.SellerName != "" {
		p.add("Vendedor: " + truncate(b.SellerName, r.width-10))
	}
	if b.ClientName != "" {
		p.add("Cliente: " + truncate(b.ClientName, r.width-9))
	}
	if b.ClientCPFCNPJ != "" {
		p.add("CPF/CNPJ: " + FormatCPFCNPJ(b.ClientCPFCNPJ))
	}
	p.rule("-")
	p.itemTable(b.Items)
	p.rule("-")
	p.money("TOTAL", b.Total)
	if b.Notes != "" {
		p.rule("-")
		p.add("Observações:")
		p.wrap(b.Notes)
	}
	p.blank()
	p.wrap("Este orçamento não é documento fiscal.")
	return p.String()
}
