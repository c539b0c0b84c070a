package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/fiscal"
	"vendapos/internal/model"
	"vendapos/internal/payment"
	"vendapos/internal/printing"
	"vendapos/internal/render"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CreateSaleRequest, ti *render.TimeInfo) (*dto.CreateSaleResponse, error)
	// CreateFromBudget settles an approved budget at its quoted prices. The
	// budget id is the idempotency key: a second call returns the first sale.
	CreateFromBudget(ctx context.Context, sellerID uuid.UUID, b *model.Budget, req dto.ApproveBudgetRequest, ti *render.TimeInfo) (*dto.CreateSaleResponse, error)
	GetSale(ctx context.Context, companyID, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, companyID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	RemoveSale(ctx context.Context, companyID, id uuid.UUID) error
	ReprintSale(ctx context.Context, companyID, id uuid.UUID, computerID string, ti *render.TimeInfo) (*dto.ReportResponse, error)
	// Receipt renders the plain sale receipt without printing it.
	Receipt(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error)
}

// EmailQueue accepts receipt jobs; the Redis dispatcher implements it.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type saleService struct {
	sales      repository.SaleRepository
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	sellers    repository.SellerRepository
	companies  repository.CompanyRepository
	closures   CashClosureService
	closureRep repository.CashClosureRepository
	fiscal     FiscalService
	printer    PrintService
	queue      EmailQueue
	renderer   *render.Renderer
	editWindow time.Duration
	now        clock
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	sellers repository.SellerRepository,
	companies repository.CompanyRepository,
	closures CashClosureService,
	closureRep repository.CashClosureRepository,
	fiscalSvc FiscalService,
	printer PrintService,
	queue EmailQueue,
	renderer *render.Renderer,
	editWindow time.Duration,
) SaleService {
	if editWindow <= 0 {
		editWindow = 24 * time.Hour
	}
	return &saleService{
		sales:      sales,
		products:   products,
		movements:  movements,
		sellers:    sellers,
		companies:  companies,
		closures:   closures,
		closureRep: closureRep,
		fiscal:     fiscalSvc,
		printer:    printer,
		queue:      queue,
		renderer:   renderer,
		editWindow: editWindow,
	}
}

type saleLine struct {
	productID uuid.UUID
	quantity  int
	// unitPrice overrides the catalog price (quoted budgets).
	unitPrice *decimal.Decimal
}

type saleInput struct {
	companyID     uuid.UUID
	sellerID      uuid.UUID
	lines         []saleLine
	payments      []dto.PaymentRequest
	clientName    *string
	clientCPFCNPJ *string
	clientEmail   *string
	budgetID      *uuid.UUID
}

type finishOptions struct {
	computerID  string
	print       bool
	clientEmail *string
	ti          *render.TimeInfo
}

func productNotFound(id uuid.UUID) *apperror.Error {
	return &apperror.Error{
		Kind:    apperror.KindNotFound,
		Code:    apperror.CodeProductNotFound,
		Message: "Produto não encontrado",
		Details: map[string]any{"product_id": id.String()},
	}
}

func insufficientStock(p *model.Product, requested int) *apperror.Error {
	return apperror.Validation(apperror.CodeInsufficientStock, fmt.Sprintf("Estoque insuficiente para %s", p.Name)).
		WithDetail("product_id", p.ID.String()).
		WithDetail("available", p.StockQuantity).
		WithDetail("requested", requested)
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// Validating → Reserving-Stock → Persisting → Committed. Everything up to the
// commit is one transaction; fiscal, print and email run after it and can
// only add warnings.

func (s *saleService) CreateSale(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CreateSaleRequest, ti *render.TimeInfo) (*dto.CreateSaleResponse, error) {
	in := saleInput{
		companyID:     companyID,
		sellerID:      sellerID,
		payments:      req.PaymentMethods,
		clientName:    req.ClientName,
		clientCPFCNPJ: req.ClientCPFCNPJ,
		clientEmail:   req.ClientEmail,
	}
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeValidation, "product_id inválido").WithDetail("product_id", it.ProductID)
		}
		in.lines = append(in.lines, saleLine{productID: pid, quantity: it.Quantity})
	}

	sale, company, err := s.settle(ctx, in)
	if err != nil {
		return nil, err
	}
	doPrint := req.Print == nil || *req.Print
	resp := s.finish(ctx, company, sale, finishOptions{computerID: req.ComputerID, print: doPrint, clientEmail: req.ClientEmail, ti: ti})
	return &resp, nil
}

func (s *saleService) CreateFromBudget(ctx context.Context, sellerID uuid.UUID, b *model.Budget, req dto.ApproveBudgetRequest, ti *render.TimeInfo) (*dto.CreateSaleResponse, error) {
	if existing, err := s.sales.FindByBudgetID(ctx, b.CompanyID, b.ID); err == nil {
		return &dto.CreateSaleResponse{Sale: saleToResponse(existing), Warnings: []string{}}, nil
	} else if !repository.IsNotFound(err) {
		return nil, asAppError(err)
	}

	budgetID := b.ID
	in := saleInput{
		companyID:     b.CompanyID,
		sellerID:      sellerID,
		payments:      req.PaymentMethods,
		clientName:    b.ClientName,
		clientCPFCNPJ: b.ClientCPFCNPJ,
		clientEmail:   req.ClientEmail,
		budgetID:      &budgetID,
	}
	for _, it := range b.Items {
		price := it.UnitPrice
		in.lines = append(in.lines, saleLine{productID: it.ProductID, quantity: it.Quantity, unitPrice: &price})
	}

	sale, company, err := s.settle(ctx, in)
	if err != nil {
		if repository.IsUniqueViolation(err, repository.IdxSaleBudget) {
			existing, findErr := s.sales.FindByBudgetID(ctx, b.CompanyID, b.ID)
			if findErr != nil {
				return nil, asAppError(findErr)
			}
			return &dto.CreateSaleResponse{Sale: saleToResponse(existing), Warnings: []string{}}, nil
		}
		return nil, err
	}
	resp := s.finish(ctx, company, sale, finishOptions{print: false, clientEmail: req.ClientEmail, ti: ti})
	return &resp, nil
}

// settle validates the request and commits the sale with its stock movements.
func (s *saleService) settle(ctx context.Context, in saleInput) (sale *model.Sale, company *model.Company, err error) {
	ctx, end := startSpan(ctx, "sale.settle",
		attribute.String("company_id", in.companyID.String()),
		attribute.Int("items", len(in.lines)))
	defer func() { end(err) }()

	if len(in.lines) == 0 {
		return nil, nil, apperror.Validation(apperror.CodeValidation, "A venda precisa de ao menos um item")
	}
	if company, err = s.companies.FindByID(ctx, in.companyID); err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, apperror.NotFound("Empresa")
		}
		return nil, nil, asAppError(err)
	}
	seller, err := s.sellers.FindByID(ctx, in.companyID, in.sellerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, apperror.NotFound("Vendedor")
		}
		return nil, nil, asAppError(err)
	}

	// 1. Products, scoped to the company
	requested := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for _, l := range in.lines {
		if l.quantity < 1 {
			return nil, nil, apperror.Validation(apperror.CodeValidation, "Quantidade deve ser ao menos 1").
				WithDetail("product_id", l.productID.String())
		}
		if _, seen := requested[l.productID]; !seen {
			ids = append(ids, l.productID)
		}
		requested[l.productID] += l.quantity
	}
	found, err := s.products.FindByIDs(ctx, in.companyID, ids)
	if err != nil {
		return nil, nil, asAppError(err)
	}
	products := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		p, ok := products[id]
		if !ok || !p.Active {
			return nil, nil, productNotFound(id)
		}
		if p.StockQuantity < requested[id] {
			return nil, nil, insufficientStock(p, requested[id])
		}
	}

	// 2. Totals from snapshotted unit prices
	total := decimal.Zero
	items := make([]model.SaleItem, 0, len(in.lines))
	for i, l := range in.lines {
		price := products[l.productID].Price
		if l.unitPrice != nil {
			price = *l.unitPrice
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(l.quantity))).Round(2)
		total = total.Add(lineTotal)
		items = append(items, model.SaleItem{
			LineNumber: i + 1,
			ProductID:  l.productID,
			Quantity:   l.quantity,
			UnitPrice:  price,
			TotalPrice: lineTotal,
		})
	}

	// 3. Tender
	lines := paymentLines(in.payments)
	settlement, err := payment.Validate(total, lines, deref(in.clientName))
	if err != nil {
		return nil, nil, err
	}
	pms := make([]model.SalePaymentMethod, 0, len(lines))
	for i, l := range lines {
		pms = append(pms, model.SalePaymentMethod{
			LineNumber:     i + 1,
			Method:         l.Method,
			Amount:         l.Amount,
			AdditionalInfo: l.AdditionalInfo,
		})
	}

	sale = &model.Sale{
		CompanyID:      in.companyID,
		SellerID:       in.sellerID,
		BudgetID:       in.budgetID,
		Total:          total,
		Change:         settlement.Change,
		ClientName:     in.clientName,
		ClientCPFCNPJ:  in.clientCPFCNPJ,
		ClientEmail:    in.clientEmail,
		IsInstallment:  settlement.IsInstallment,
		SaleDate:       s.now.now(),
		Items:          items,
		PaymentMethods: pms,
	}

	// 4. One transaction: closure link, sale, tender, items, stock. The
	// closure is share-locked so a concurrent close waits for this commit.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		closureID, err := s.closures.OpenClosureIDTx(tx, company, in.sellerID)
		if err != nil {
			return err
		}
		sale.CashClosureID = closureID
		if err := s.sales.Create(ctx, tx, sale); err != nil {
			return err
		}
		for _, id := range ids {
			qty := requested[id]
			ok, err := s.products.DecrementStockTx(tx, in.companyID, id, qty)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(products[id], qty)
			}
			after, err := s.products.FindByIDTx(tx, in.companyID, id)
			if err != nil {
				return err
			}
			ref := sale.ID
			mov := &model.StockMovement{
				CompanyID:   in.companyID,
				ProductID:   id,
				Type:        model.StockMovementSale,
				Quantity:    -qty,
				StockBefore: after.StockQuantity + qty,
				StockAfter:  after.StockQuantity,
				Reason:      "Venda " + shortRef(sale.ID),
				ReferenceID: &ref,
			}
			if err := s.movements.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if repository.IsUniqueViolation(txErr, repository.IdxSaleBudget) {
			return nil, nil, txErr
		}
		return nil, nil, asAppError(txErr)
	}

	sale.Seller = seller
	for i := range sale.Items {
		sale.Items[i].Product = products[sale.Items[i].ProductID]
	}
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("total", sale.Total.StringFixed(2)).
		Str("change", sale.Change.StringFixed(2)).
		Msg("sale: committed")
	return sale, company, nil
}

// finish runs the advisory steps of a committed sale.
func (s *saleService) finish(ctx context.Context, company *model.Company, sale *model.Sale, opts finishOptions) (resp dto.CreateSaleResponse) {
	resp = dto.CreateSaleResponse{Sale: saleToResponse(sale), Warnings: []string{}}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("sale_id", sale.ID.String()).Msg("sale: post-commit step panicked")
			resp.Warnings = append(resp.Warnings, "Falha inesperada após registrar a venda")
		}
	}()

	doc, out := s.fiscal.IssueForSale(ctx, company, sale)
	resp.Fiscal = fiscalSummary(doc, out)
	if out.Kind == fiscal.Failed {
		resp.Warnings = append(resp.Warnings, "Documento fiscal não emitido; nova tentativa será feita automaticamente")
	}

	if opts.print {
		text := s.fiscal.SaleDocument(company, sale, doc, opts.ti)
		res := s.printer.Dispatch(ctx, company.ID, opts.computerID, text, true)
		resp.Print = ToPrintResult(res)
		if !res.Success && res.Details != nil {
			resp.Warnings = append(resp.Warnings, res.Details.Message)
		}
	}

	if opts.clientEmail != nil && *opts.clientEmail != "" && s.queue != nil {
		job := dto.ReceiptEmailJob{
			CompanyID: company.ID.String(),
			SaleID:    sale.ID.String(),
			ToEmail:   *opts.clientEmail,
		}
		if err := s.queue.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale: failed to enqueue email")
			resp.Warnings = append(resp.Warnings, "Não foi possível agendar o envio do comprovante por e-mail")
		}
	}
	return resp
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *saleService) find(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, companyID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Venda")
		}
		return nil, asAppError(err)
	}
	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, companyID, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *saleService) ListSales(ctx context.Context, companyID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	f := repository.SaleFilter{CompanyID: companyID, ClientName: filter.ClientName, Page: filter.Page, Limit: filter.Limit}
	if filter.SellerID != "" {
		id, err := uuid.Parse(filter.SellerID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeValidation, "seller_id inválido")
		}
		f.SellerID = &id
	}
	if filter.CashClosureID != "" {
		id, err := uuid.Parse(filter.CashClosureID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeValidation, "cash_closure_id inválido")
		}
		f.CashClosureID = &id
	}
	var err error
	if f.From, f.To, err = dayRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	sales, total, err := s.sales.List(ctx, f)
	if err != nil {
		return nil, asAppError(err)
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		resp.Data = append(resp.Data, saleToResponse(&sales[i]))
	}
	return resp, nil
}

// ── RemoveSale ────────────────────────────────────────────────────────────────
// Allowed inside the edit window and while the sale's closure is still open.
// Stock is restored before the row is deleted, in the same transaction.

func (s *saleService) RemoveSale(ctx context.Context, companyID, id uuid.UUID) (err error) {
	ctx, end := startSpan(ctx, "sale.remove", attribute.String("sale_id", id.String()))
	defer func() { end(err) }()

	sale, err := s.find(ctx, companyID, id)
	if err != nil {
		return err
	}
	if s.now.now().Sub(sale.SaleDate) > s.editWindow {
		return apperror.Validation(apperror.CodeSaleEditWindowExpired,
			fmt.Sprintf("Vendas só podem ser removidas até %d horas após o registro", int(s.editWindow.Hours())))
	}

	restore := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for _, it := range sale.Items {
		if _, seen := restore[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		restore[it.ProductID] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		// Share lock: a close either committed already or waits for us.
		if sale.CashClosureID != nil {
			cl, err := s.closureRep.FindByIDForShareTx(tx, companyID, *sale.CashClosureID)
			if err != nil && !repository.IsNotFound(err) {
				return err
			}
			if err == nil && cl.IsClosed {
				return apperror.Conflict(apperror.CodeSaleInClosedClosure, "A venda pertence a um caixa já fechado")
			}
		}
		for _, pid := range ids {
			qty := restore[pid]
			if err := s.products.IncrementStockTx(tx, companyID, pid, qty); err != nil {
				return err
			}
			after, err := s.products.FindByIDTx(tx, companyID, pid)
			if err != nil {
				return err
			}
			ref := sale.ID
			mov := &model.StockMovement{
				CompanyID:   companyID,
				ProductID:   pid,
				Type:        model.StockMovementSaleReversal,
				Quantity:    qty,
				StockBefore: after.StockQuantity - qty,
				StockAfter:  after.StockQuantity,
				Reason:      "Remoção da venda " + shortRef(sale.ID),
				ReferenceID: &ref,
			}
			if err := s.movements.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.sales.DeleteTx(tx, sale.ID)
	})
	if txErr != nil {
		return asAppError(txErr)
	}
	log.Info().Str("sale_id", sale.ID.String()).Msg("sale: removed")
	return nil
}

// ── ReprintSale ───────────────────────────────────────────────────────────────

func (s *saleService) ReprintSale(ctx context.Context, companyID, id uuid.UUID, computerID string, ti *render.TimeInfo) (*dto.ReportResponse, error) {
	sale, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, asAppError(err)
	}
	doc, err := s.fiscal.ForSale(ctx, companyID, sale.ID)
	if err != nil {
		return nil, err
	}
	text := s.fiscal.SaleDocument(company, sale, doc, ti)
	res := s.printer.Dispatch(ctx, companyID, computerID, text, true)
	return &dto.ReportResponse{Content: text, Print: ToPrintResult(res)}, nil
}

// ── Receipt ───────────────────────────────────────────────────────────────────

func (s *saleService) Receipt(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error) {
	sale, err := s.find(ctx, companyID, id)
	if err != nil {
		return "", err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return "", asAppError(err)
	}
	return s.renderer.Receipt(saleDocument(company, sale), ti), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func paymentLines(reqs []dto.PaymentRequest) []payment.Line {
	lines := make([]payment.Line, 0, len(reqs))
	for _, p := range reqs {
		lines = append(lines, payment.Line{Method: p.Method, Amount: p.Amount, AdditionalInfo: p.AdditionalInfo})
	}
	return lines
}

func shortRef(id uuid.UUID) string {
	return id.String()[:8]
}

// ToPrintResult flattens a dispatch result for API responses.
func ToPrintResult(res printing.Result) *dto.PrintResult {
	out := &dto.PrintResult{Success: res.Success, PrinterName: res.PrinterName, Tier: string(res.Tier)}
	if res.Details != nil {
		out.Reason = &res.Details.Reason
		out.Message = &res.Details.Message
	}
	return out
}

func fiscalSummary(doc *model.FiscalDocument, out fiscal.Outcome) *dto.FiscalSummary {
	sum := &dto.FiscalSummary{Outcome: out.Kind.String()}
	if doc != nil {
		sum.FiscalDocumentID = uuidString(&doc.ID)
		sum.Status = doc.Status
		sum.AccessKey = doc.AccessKey
	}
	if out.Err != nil {
		msg := out.Err.Error()
		sum.Error = &msg
	}
	return sum
}
