package infra

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiptFixture(logoURL *string) (*model.Company, *model.Sale) {
	client := "João Pereira"
	company := &model.Company{ID: uuid.New(), Name: "Mercadinho Boa Vista", CNPJ: "12345678000195", LogoURL: logoURL}
	sale := &model.Sale{
		ID:         uuid.New(),
		CompanyID:  company.ID,
		Total:      decimal.RequireFromString("15.00"),
		Change:     decimal.RequireFromString("5.00"),
		ClientName: &client,
		SaleDate:   time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		Items: []model.SaleItem{{
			LineNumber: 1,
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("7.50"),
			TotalPrice: decimal.RequireFromString("15.00"),
			Product:    &model.Product{Name: "Café torrado e moído tradicional 500g"},
		}},
		PaymentMethods: []model.SalePaymentMethod{{LineNumber: 1, Method: model.PaymentCash, Amount: decimal.RequireFromString("20.00")}},
	}
	return company, sale
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestReceiptPDF_WithLogo(t *testing.T) {
	logo := pngLogo(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(logo)
	}))
	defer srv.Close()

	url := srv.URL + "/logo.png"
	company, sale := receiptFixture(&url)
	gen := NewReceiptPDF(t.TempDir(), time.Second)

	path, err := gen.Generate(context.Background(), company, sale)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, path, sale.ID.String())
}

func TestReceiptPDF_SlowLogoIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	url := srv.URL + "/logo.png"
	company, sale := receiptFixture(&url)
	gen := NewReceiptPDF(t.TempDir(), 50*time.Millisecond)

	start := time.Now()
	path, err := gen.Generate(context.Background(), company, sale)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReceiptPDF_UnsupportedLogoType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	url := srv.URL
	company, sale := receiptFixture(&url)

	_, err := NewReceiptPDF(t.TempDir(), time.Second).Generate(context.Background(), company, sale)

	assert.NoError(t, err)
}
