package infra

// pdf.go: receipt PDF attached to the customer e-mail, rendered with go-pdf/fpdf.
// Layout follows the printed receipt: company header, sale reference, item
// table, total, tender lines and change.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vendapos/internal/model"
	"vendapos/internal/render"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
)

// ReceiptPDF renders sale receipts to disk.
type ReceiptPDF struct {
	storagePath string
	logoTimeout time.Duration
	client      *http.Client
}

func NewReceiptPDF(storagePath string, logoTimeout time.Duration) *ReceiptPDF {
	if logoTimeout <= 0 {
		logoTimeout = 5 * time.Second
	}
	return &ReceiptPDF{
		storagePath: storagePath,
		logoTimeout: logoTimeout,
		client:      &http.Client{Timeout: logoTimeout},
	}
}

// Generate writes receipt_{saleID}.pdf and returns its path. The sale must
// carry Items (with Product) and PaymentMethods. A logo that cannot be fetched
// within the timeout is skipped.
func (r *ReceiptPDF) Generate(ctx context.Context, company *model.Company, sale *model.Sale) (string, error) {
	if err := os.MkdirAll(r.storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(r.storagePath, "receipt_"+sale.ID.String()+".pdf")

	// 80mm thermal roll; height grows with the item count.
	height := 120.0 + 5*float64(len(sale.Items)+len(sale.PaymentMethods))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	if logo := r.fetchLogo(ctx, company.LogoURL); logo != nil {
		opts := fpdf.ImageOptions{ImageType: logo.kind, ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo.data))
		if pdf.Ok() {
			pdf.ImageOptions("logo", (pageW-24)/2, pdf.GetY(), 24, 0, true, opts, 0, "")
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(company.DisplayName()), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "CNPJ "+render.FormatCNPJ(company.CNPJ), "", 1, "C", false, 0, "")
	if company.Address != nil {
		pdf.CellFormat(contentW, 4, tr(*company.Address), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Venda nº "+shortID(sale.ID.String())), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.SaleDate.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sale.ClientName != nil {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+*sale.ClientName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		if rs := []rune(name); len(rs) > 24 {
			name = string(rs[:23]) + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, render.FormatCurrency(item.TotalPrice), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, render.FormatCurrency(sale.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, pm := range sale.PaymentMethods {
		pdf.CellFormat(col1+col2, 4, tr(render.PaymentLabel(pm.Method)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, render.FormatCurrency(pm.Amount), "", 1, "R", false, 0, "")
	}
	if sale.Change.IsPositive() {
		pdf.CellFormat(col1+col2, 4, "Troco", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, render.FormatCurrency(sale.Change), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

type logoImage struct {
	data []byte
	kind string
}

func (r *ReceiptPDF) fetchLogo(ctx context.Context, url *string) *logoImage {
	if url == nil || *url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.logoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *url, nil)
	if err != nil {
		return nil
	}
	resp, err := r.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", *url).Msg("pdf: logo indisponível")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", *url).Msg("pdf: logo indisponível")
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil
	}

	var kind string
	switch ct := resp.Header.Get("Content-Type"); {
	case strings.Contains(ct, "png"):
		kind = "PNG"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		kind = "JPG"
	case strings.Contains(ct, "gif"):
		kind = "GIF"
	default:
		return nil
	}
	return &logoImage{data: data, kind: kind}
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
