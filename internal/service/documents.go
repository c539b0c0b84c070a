package service

import (
	"sort"
	"time"

	"vendapos/internal/dto"
	"vendapos/internal/model"
	"vendapos/internal/render"

	"github.com/google/uuid"
)

// ── Model → render views ──────────────────────────────────────────────────────

func companyHeader(c *model.Company) render.CompanyHeader {
	if c == nil {
		return render.CompanyHeader{}
	}
	return render.CompanyHeader{
		Name:    c.DisplayName(),
		CNPJ:    c.CNPJ,
		Address: deref(c.Address),
		City:    deref(c.City),
		State:   deref(c.State),
		Phone:   deref(c.Phone),
	}
}

func saleDocument(c *model.Company, s *model.Sale) render.Sale {
	doc := render.Sale{
		ID:            s.ID.String(),
		Company:       companyHeader(c),
		SellerName:    sellerName(s.Seller),
		ClientName:    deref(s.ClientName),
		ClientCPFCNPJ: deref(s.ClientCPFCNPJ),
		Total:         s.Total,
		Paid:          s.AmountPaid(),
		Change:        s.Change,
		IsInstallment: s.IsInstallment,
		SaleDate:      s.SaleDate,
	}
	items := append([]model.SaleItem(nil), s.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].LineNumber < items[j].LineNumber })
	for _, it := range items {
		doc.Items = append(doc.Items, render.Item{
			Code:        it.ProductID.String(),
			Description: productName(it.Product),
			Quantity:    it.Quantity,
			Unit:        productUnit(it.Product),
			UnitPrice:   it.UnitPrice,
			Total:       it.TotalPrice,
		})
	}
	doc.Payments = salePayments(s)
	return doc
}

func salePayments(s *model.Sale) []render.Payment {
	pms := append([]model.SalePaymentMethod(nil), s.PaymentMethods...)
	sort.SliceStable(pms, func(i, j int) bool { return pms[i].LineNumber < pms[j].LineNumber })
	out := make([]render.Payment, 0, len(pms))
	for _, pm := range pms {
		out = append(out, render.Payment{Method: pm.Method, Amount: pm.Amount})
	}
	return out
}

func budgetDocument(c *model.Company, b *model.Budget) render.Budget {
	doc := render.Budget{
		Number:        b.BudgetNumber,
		Company:       companyHeader(c),
		SellerName:    sellerName(b.Seller),
		ClientName:    deref(b.ClientName),
		ClientCPFCNPJ: deref(b.ClientCPFCNPJ),
		Total:         b.Total,
		CreatedAt:     b.CreatedAt,
		ValidUntil:    b.ValidUntil,
		Status:        b.Status,
		Notes:         deref(b.Notes),
	}
	for _, it := range b.Items {
		doc.Items = append(doc.Items, render.Item{
			Code:        it.ProductID.String(),
			Description: productName(it.Product),
			Quantity:    it.Quantity,
			Unit:        productUnit(it.Product),
			UnitPrice:   it.UnitPrice,
			Total:       it.TotalPrice,
		})
	}
	return doc
}

func closureReport(c *model.Company, cl *model.CashClosure, sales []model.Sale, withdrawals []model.CashWithdrawal) render.ClosureReport {
	if cl.IsClosed {
		sales = salesUntil(sales, cl.ClosingDate)
	}
	sum := SummarizeClosure(cl.OpeningAmount, sales, withdrawals, cl.ClosingAmount)
	if cl.IsClosed {
		sum = sum.Frozen(cl)
	}
	rep := render.ClosureReport{
		ClosureID:        cl.ID.String(),
		Company:          companyHeader(c),
		ScopeLabel:       scopeLabel(cl),
		OpeningDate:      cl.OpeningDate,
		ClosingDate:      cl.ClosingDate,
		OpeningAmount:    cl.OpeningAmount,
		ClosingAmount:    cl.ClosingAmount,
		SaleCount:        sum.SaleCount,
		TotalSales:       sum.TotalSales,
		TotalCashSales:   sum.TotalCashSales,
		TotalChange:      sum.TotalChange,
		TotalWithdrawals: sum.TotalWithdrawals,
		ExpectedClosing:  sum.ExpectedClosing,
		Difference:       sum.Difference,
		DifferenceLabel:  sum.Label,
		Methods:          sum.Methods,
		Sellers:          sum.Sellers,
	}
	for i := range sales {
		s := &sales[i]
		rep.Sales = append(rep.Sales, render.ClosureSale{
			ID:         s.ID.String(),
			SaleDate:   s.SaleDate,
			SellerName: sellerName(s.Seller),
			ClientName: deref(s.ClientName),
			Total:      s.Total,
			Change:     s.Change,
			Payments:   salePayments(s),
		})
	}
	for _, w := range withdrawals {
		rep.Withdrawals = append(rep.Withdrawals, render.Withdrawal{CreatedAt: w.CreatedAt, Amount: w.Amount, Reason: w.Reason})
	}
	return rep
}

// salesUntil drops rows dated after the close; they were never part of the
// frozen totals.
func salesUntil(sales []model.Sale, closing *time.Time) []model.Sale {
	if closing == nil {
		return sales
	}
	out := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if !s.SaleDate.After(*closing) {
			out = append(out, s)
		}
	}
	return out
}

func scopeLabel(cl *model.CashClosure) string {
	if cl.SellerID == nil {
		return "Caixa compartilhado"
	}
	return "Caixa de " + sellerName(cl.Seller)
}

// ── Model → DTO ───────────────────────────────────────────────────────────────

func saleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:             s.ID.String(),
		SellerID:       s.SellerID.String(),
		CashClosureID:  uuidString(s.CashClosureID),
		BudgetID:       uuidString(s.BudgetID),
		Total:          s.Total,
		Change:         s.Change,
		ClientName:     s.ClientName,
		ClientCPFCNPJ:  s.ClientCPFCNPJ,
		IsInstallment:  s.IsInstallment,
		SaleDate:       s.SaleDate.Format(time.RFC3339),
		Items:          make([]dto.SaleItemResponse, 0, len(s.Items)),
		PaymentMethods: make([]dto.PaymentResponse, 0, len(s.PaymentMethods)),
	}
	if s.Seller != nil {
		resp.SellerName = s.Seller.Name
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:  it.ProductID.String(),
			Product:    productName(it.Product),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	for _, pm := range s.PaymentMethods {
		resp.PaymentMethods = append(resp.PaymentMethods, dto.PaymentResponse{
			Method:         pm.Method,
			Amount:         pm.Amount,
			AdditionalInfo: pm.AdditionalInfo,
		})
	}
	return resp
}

func closureToResponse(c *model.CashClosure) dto.CashClosureResponse {
	resp := dto.CashClosureResponse{
		ID:               c.ID.String(),
		SellerID:         uuidString(c.SellerID),
		OpenedByID:       c.OpenedByID.String(),
		OpeningDate:      c.OpeningDate.Format(time.RFC3339),
		OpeningAmount:    c.OpeningAmount,
		ClosingAmount:    c.ClosingAmount,
		TotalSales:       c.TotalSales,
		TotalCashSales:   c.TotalCashSales,
		TotalChange:      c.TotalChange,
		TotalWithdrawals: c.TotalWithdrawals,
		ExpectedClosing:  c.ExpectedClosing,
		Difference:       c.Difference,
		IsClosed:         c.IsClosed,
		Notes:            c.Notes,
	}
	if c.ClosingDate != nil {
		s := c.ClosingDate.Format(time.RFC3339)
		resp.ClosingDate = &s
	}
	if c.Difference != nil {
		resp.DifferenceLabel = ClassifyDifference(*c.Difference)
	}
	for _, w := range c.Withdrawals {
		resp.Withdrawals = append(resp.Withdrawals, withdrawalToResponse(&w))
	}
	return resp
}

func withdrawalToResponse(w *model.CashWithdrawal) dto.WithdrawalResponse {
	return dto.WithdrawalResponse{
		ID:        w.ID.String(),
		SellerID:  w.SellerID.String(),
		Amount:    w.Amount,
		Reason:    w.Reason,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func budgetToResponse(b *model.Budget) dto.BudgetResponse {
	resp := dto.BudgetResponse{
		ID:            b.ID.String(),
		BudgetNumber:  b.BudgetNumber,
		SellerID:      uuidString(b.SellerID),
		ClientName:    b.ClientName,
		ClientCPFCNPJ: b.ClientCPFCNPJ,
		Total:         b.Total,
		Status:        b.Status,
		ValidUntil:    b.ValidUntil.Format(time.RFC3339),
		Notes:         b.Notes,
		SaleID:        uuidString(b.SaleID),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		Items:         make([]dto.BudgetItemResponse, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, dto.BudgetItemResponse{
			ProductID:  it.ProductID.String(),
			Product:    productName(it.Product),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return resp
}

func fiscalToResponse(d *model.FiscalDocument) dto.FiscalDocumentResponse {
	resp := dto.FiscalDocumentResponse{
		ID:             d.ID.String(),
		SaleID:         uuidString(d.SaleID),
		DocumentType:   d.DocumentType,
		Series:         d.Series,
		DocumentNumber: d.DocumentNumber,
		AccessKey:      d.AccessKey,
		Protocol:       d.Protocol,
		Status:         d.Status,
		TotalValue:     d.TotalValue,
		Origin:         d.Origin,
		EmissionDate:   d.EmissionDate.Format(time.RFC3339),
		CancelReason:   d.CancelReason,
		RetryCount:     d.RetryCount,
		LastError:      d.LastError,
	}
	if d.CancelledAt != nil {
		s := d.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

func printerToResponse(p *model.Printer) dto.PrinterResponse {
	resp := dto.PrinterResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		ConnectionType: p.ConnectionType,
		Address:        p.Address,
		PaperWidth:     p.PaperWidth,
		IsDefault:      p.IsDefault,
		IsConnected:    p.IsConnected,
	}
	if p.LastStatusCheck != nil {
		s := p.LastStatusCheck.Format(time.RFC3339)
		resp.LastStatusCheck = &s
	}
	return resp
}

// ── helpers ───────────────────────────────────────────────────────────────────

func productName(p *model.Product) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func productUnit(p *model.Product) string {
	if p == nil || p.Unit == "" {
		return "UN"
	}
	return p.Unit
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
