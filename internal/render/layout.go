package render

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Supported paper widths in columns.
const (
	Width32 = 32
	Width40 = 40
)

// itemColumns holds the fixed column widths of the item table.
// The first row is number + description, the second qty/unit/total.
// Only the description is ever truncated.
type itemColumns struct {
	num, desc        int
	qty, unit, total int
}

var itemLayouts = map[int]itemColumns{
	Width32: {num: 3, desc: 28, qty: 6, unit: 12, total: 14},
	Width40: {num: 3, desc: 36, qty: 8, unit: 14, total: 18},
}

// page accumulates output lines for a single document.
type page struct {
	width int
	lines []string
}

func newPage(width int) *page { return &page{width: width} }

func (p *page) add(lines ...string) { p.lines = append(p.lines, lines...) }

func (p *page) blank() { p.lines = append(p.lines, "") }

func (p *page) center(s string) { p.add(CenterText(s, p.width)) }

func (p *page) wrap(s string) { p.add(WrapText(s, p.width)...) }

func (p *page) rule(ch string) { p.add(strings.Repeat(ch, p.width)) }

// pair puts left flush-left and right flush-right on one line, truncating
// left when both do not fit.
func (p *page) pair(left, right string) {
	p.add(justify(left, right, p.width))
}

func (p *page) money(label string, v decimal.Decimal) {
	p.pair(label, FormatCurrency(v))
}

func (p *page) String() string {
	return strings.Join(p.lines, "\n") + "\n"
}

func justify(left, right string, width int) string {
	rl := utf8.RuneCountInString(right)
	room := width - rl - 1
	if room < 0 {
		room = 0
	}
	left = truncate(left, room)
	gap := width - utf8.RuneCountInString(left) - rl
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func padRight(s string, n int) string {
	s = truncate(s, n)
	return s + strings.Repeat(" ", n-utf8.RuneCountInString(s))
}

func padLeft(s string, n int) string {
	s = truncate(s, n)
	return strings.Repeat(" ", n-utf8.RuneCountInString(s)) + s
}

// Item is one row of an item table.
type Item struct {
	Code        string
	Description string
	Quantity    int
	Unit        string
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

func (p *page) itemTable(items []Item) {
	cols, ok := itemLayouts[p.width]
	if !ok {
		cols = itemLayouts[Width32]
	}
	p.add(padRight("#", cols.num) + " " + padRight("DESCRIÇÃO", cols.desc))
	p.add(padLeft("QTD", cols.qty) + padLeft("VL.UNIT", cols.unit) + padLeft("VL.TOTAL", cols.total))
	p.rule("-")
	for i, it := range items {
		num := strconv.Itoa(i + 1)
		p.add(padRight(num, cols.num) + " " + padRight(it.Description, cols.desc))
		qty := strconv.Itoa(it.Quantity)
		if it.Unit != "" {
			qty += " " + it.Unit
		}
		unit, total := FormatCurrency(it.UnitPrice), FormatCurrency(it.Total)
		if fits(qty, cols.qty) && fits(unit, cols.unit) && fits(total, cols.total) {
			p.add(padLeft(qty, cols.qty) + padLeft(unit, cols.unit) + padLeft(total, cols.total))
			continue
		}
		// Amounts are never cut: wide rows spill onto two lines.
		p.add(alignRight(qty+" x "+unit, p.width))
		p.add(alignRight(total, p.width))
	}
}

// fits reports whether s leaves at least one column of padding in n.
func fits(s string, n int) bool { return utf8.RuneCountInString(s) < n }

// alignRight pads s to n columns without truncating.
func alignRight(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// CompanyHeader identifies the issuer at the top of every document.
type CompanyHeader struct {
	Name    string
	CNPJ    string
	Address string
	City    string
	State   string
	Phone   string
}

func (p *page) header(c CompanyHeader) {
	p.wrap(strings.ToUpper(c.Name))
	if c.CNPJ != "" {
		p.center("CNPJ: " + FormatCNPJ(c.CNPJ))
	}
	if c.Address != "" {
		p.wrap(c.Address)
	}
	if c.City != "" {
		loc := c.City
		if c.State != "" {
			loc += " - " + c.State
		}
		p.center(loc)
	}
	if c.Phone != "" {
		p.center("Tel: " + c.Phone)
	}
	p.rule("=")
}

// Payment is a tender line in display form.
type Payment struct {
	Method string
	Amount decimal.Decimal
}

var paymentLabels = map[string]string{
	"cash":         "Dinheiro",
	"credit_card":  "Cartão de Crédito",
	"debit_card":   "Cartão de Débito",
	"pix":          "PIX",
	"installment":  "Crediário",
	"store_credit": "Crédito Loja",
}

// PaymentLabel returns the Portuguese label for a payment method.
func PaymentLabel(method string) string {
	if l, ok := paymentLabels[method]; ok {
		return l
	}
	return method
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	return strings.ToUpper(truncate(id, 8))
}
