package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the printable view of a committed sale.
type Sale struct {
	ID            string
	Company       CompanyHeader
	SellerName    string
	ClientName    string
	ClientCPFCNPJ string
	Items         []Item
	Payments      []Payment
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Change        decimal.Decimal
	IsInstallment bool
	SaleDate      time.Time
}

// Renderer lays documents out for one paper width.
type Renderer struct {
	width int
}

// New returns a Renderer for width columns; unsupported widths fall back to 32.
func New(width int) *Renderer {
	if _, ok := itemLayouts[width]; !ok {
		width = Width32
	}
	return &Renderer{width: width}
}

func (r *Renderer) Width() int { return r.width }

// Receipt is the plain sale receipt.
func (r *Renderer) Receipt(s Sale, ti *TimeInfo) string {
	p := newPage(r.width)
	p.header(s.Company)
	p.center("COMPROVANTE DE VENDA")
	p.rule("-")
	r.saleBody(p, s, ti)
	p.blank()
	p.wrap("Obrigado pela preferência!")
	return p.String()
}

// NonFiscalReceipt is printed when no authorized fiscal document exists for
// the sale. note explains why (mock issuance, gateway failure).
func (r *Renderer) NonFiscalReceipt(s Sale, note string, ti *TimeInfo) string {
	p := newPage(r.width)
	p.header(s.Company)
	p.center("CUPOM NÃO FISCAL")
	p.wrap("DOCUMENTO SEM VALOR FISCAL")
	p.rule("-")
	r.saleBody(p, s, ti)
	if note != "" {
		p.rule("-")
		p.wrap(note)
	}
	p.blank()
	p.wrap("Obrigado pela preferência!")
	return p.String()
}

func (r *Renderer) saleBody(p *page, s Sale, ti *TimeInfo) {
	p.add("Data: " + FormatDate(s.SaleDate, ti))
	p.add("Venda: " + shortID(s.ID))
	if s.SellerName != "" {
		p.add("Vendedor: " + truncate(s.SellerName, r.width-10))
	}
	if s.ClientName != "" {
		p.add("Cliente: " + truncate(s.ClientName, r.width-9))
	}
	if s.ClientCPFCNPJ != "" {
		p.add("CPF/CNPJ: " + FormatCPFCNPJ(s.ClientCPFCNPJ))
	}
	p.rule("-")
	p.itemTable(s.Items)
	p.rule("-")
	p.pair("Qtd. itens", fmt.Sprintf("%d", totalQuantity(s.Items)))
	p.money("TOTAL", s.Total)
	p.rule("-")
	p.add("FORMA DE PAGAMENTO")
	for _, pm := range s.Payments {
		p.money(PaymentLabel(pm.Method), pm.Amount)
	}
	if s.Change.IsPositive() {
		if s.Paid.IsPositive() {
			p.money("Valor pago", s.Paid)
		}
		p.money("TROCO", s.Change)
	}
	if s.IsInstallment {
		p.blank()
		p.wrap("Venda no crediário. Guarde este comprovante.")
	}
}

func totalQuantity(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Fiscal is the printable view of an NFC-e.
type Fiscal struct {
	Sale           Sale
	DocumentNumber int64
	Series         int
	AccessKey      string
	Protocol       string
	Status         string
	EmissionDate   time.Time
	ConsultURL     string
	QRCodeURL      string
	Homologation   bool
	Cancelled      bool
}

// NFCe is the DANFE NFC-e facsimile.
func (r *Renderer) NFCe(f Fiscal, ti *TimeInfo) string {
	p := newPage(r.width)
	s := f.Sale
	p.header(s.Company)
	p.wrap("DANFE NFC-e - Documento Auxiliar da Nota Fiscal de Consumidor Eletrônica")
	if f.Cancelled {
		p.blank()
		p.center("*** NFC-e CANCELADA ***")
	}
	if f.Homologation {
		p.wrap("EMITIDA EM AMBIENTE DE HOMOLOGAÇÃO - SEM VALOR FISCAL")
	}
	p.rule("-")
	p.itemTable(s.Items)
	p.rule("-")
	p.pair("QTD. TOTAL DE ITENS", fmt.Sprintf("%d", totalQuantity(s.Items)))
	p.money("VALOR TOTAL", s.Total)
	p.pair("FORMA PAGAMENTO", "VALOR PAGO")
	for _, pm := range s.Payments {
		p.money(PaymentLabel(pm.Method), pm.Amount)
	}
	if s.Change.IsPositive() {
		p.money("TROCO", s.Change)
	}
	p.rule("-")
	p.wrap("Consulte pela Chave de Acesso em")
	p.wrap(f.ConsultURL)
	p.wrap(FormatAccessKey(f.AccessKey))
	p.rule("-")
	if s.ClientCPFCNPJ != "" {
		p.wrap("CONSUMIDOR CPF/CNPJ: " + FormatCPFCNPJ(s.ClientCPFCNPJ))
		if s.ClientName != "" {
			p.wrap(strings.ToUpper(s.ClientName))
		}
	} else {
		p.wrap("CONSUMIDOR NÃO IDENTIFICADO")
	}
	p.rule("-")
	p.wrap(fmt.Sprintf("NFC-e nº %09d Série %03d", f.DocumentNumber, f.Series))
	p.center(FormatDate(f.EmissionDate, ti))
	if f.Protocol != "" {
		p.wrap("Protocolo de Autorização: " + f.Protocol)
	}
	p.blank()
	p.add(QRCode(f.QRCodeURL, r.width)...)
	p.blank()
	return p.String()
}
