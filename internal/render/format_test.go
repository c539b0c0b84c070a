package render_test

import (
	"strings"
	"testing"
	"time"

	"vendapos/internal/render"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCenterText(t *testing.T) {
	assert.Equal(t, "   abc", render.CenterText("abc", 10))
	assert.Equal(t, "  ab", render.CenterText("ab", 7))
	assert.Equal(t, "ação", render.CenterText("ação", 4))
	// never truncates
	long := strings.Repeat("x", 40)
	assert.Equal(t, long, render.CenterText(long, 32))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "R$ 1234,50", render.FormatCurrency(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "R$ 0,00", render.FormatCurrency(decimal.Zero))
	assert.Equal(t, "R$ -5,10", render.FormatCurrency(decimal.NewFromFloat(-5.1)))
	assert.Equal(t, "R$ 0,01", render.FormatCurrency(decimal.NewFromFloat(0.005)))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "10/03/2026 12:04:05", render.FormatDate(ts, nil))
	assert.Equal(t, "03/10/2026 11:04:05 AM",
		render.FormatDate(ts, &render.TimeInfo{TimeZone: "America/New_York", Locale: "en-US"}))
	assert.Equal(t, "10/03/2026 15:04:05",
		render.FormatDate(ts, &render.TimeInfo{TimeZone: "UTC", Locale: "pt-BR"}))

	// Unknown zone and locale fall back to the defaults.
	assert.Equal(t, "10/03/2026 12:04:05",
		render.FormatDate(ts, &render.TimeInfo{TimeZone: "Mars/Olympus", Locale: "!!"}))
}

func TestWrapText(t *testing.T) {
	lines := render.WrapText("Consulte pela Chave de Acesso em", 20)
	assert.Equal(t, []string{"Consulte pela Chave", "    de Acesso em"}, lines)

	lines = render.WrapText("https://www.nfce.fazenda.sp.gov.br/consulta", 16)
	for _, l := range lines {
		assert.LessOrEqual(t, len([]rune(l)), 16)
	}
	assert.Equal(t, "https://www.nfce", lines[0])

	assert.Empty(t, render.WrapText("   ", 10))
}

func TestFormatDocuments(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-95", render.FormatCNPJ("12345678000195"))
	assert.Equal(t, "12.345.678/0001-95", render.FormatCNPJ("12.345.678/0001-95"))
	assert.Equal(t, "123.456.789-09", render.FormatCPFCNPJ("12345678909"))
	assert.Equal(t, "12.345.678/0001-95", render.FormatCPFCNPJ("12345678000195"))
	assert.Equal(t, "123.456.789-09", render.FormatCPFCNPJ("123.456.789-09"))
	assert.Equal(t, "123", render.FormatCPFCNPJ("123"))

	key := "35260312345678000195650010000001231000001234"
	formatted := render.FormatAccessKey(key)
	assert.Equal(t, "3526 0312 3456 7800 0195 6500 1000 0001 2310 0000 1234", formatted)
	assert.Equal(t, formatted, render.FormatAccessKey(formatted))
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, "Dinheiro", render.PaymentLabel("cash"))
	assert.Equal(t, "Crediário", render.PaymentLabel("installment"))
	assert.Equal(t, "voucher", render.PaymentLabel("voucher"))
}

func TestQRCode(t *testing.T) {
	url := "https://www.homologacao.nfce.fazenda.sp.gov.br/qrcode?p=35260312345678000195650010000001231000001234|2|2|1|ABC"
	a := render.QRCode(url, 40)
	b := render.QRCode(url, 40)
	assert.Equal(t, a, b)
	assert.Greater(t, len(a), 10)
	for _, line := range a {
		assert.Equal(t, "", strings.Trim(line, " █▀▄"))
	}
}

func TestQRCode_FailureDegradesToPlaceholder(t *testing.T) {
	lines := render.QRCode(strings.Repeat("9", 8000), 32)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[QR CODE INDISPONÍVEL]")
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	assert.Len(t, []rune(lines[1]), 32)

	assert.Contains(t, render.QRCode("", 32)[0], "[QR CODE INDISPONÍVEL]")
}
