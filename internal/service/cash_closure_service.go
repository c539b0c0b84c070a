package service

import (
	"context"
	"sort"
	"time"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/model"
	"vendapos/internal/render"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type CashClosureService interface {
	Open(ctx context.Context, companyID, sellerID uuid.UUID, req dto.OpenCashClosureRequest) (*dto.CashClosureResponse, error)
	GetOpen(ctx context.Context, companyID, sellerID uuid.UUID) (*dto.CashClosureResponse, error)
	Close(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CloseCashClosureRequest, ti *render.TimeInfo) (*dto.CloseCashClosureResponse, error)
	RegisterWithdrawal(ctx context.Context, companyID, sellerID uuid.UUID, req dto.WithdrawalRequest) (*dto.WithdrawalResponse, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.ClosureFilter) (*dto.CashClosureListResponse, error)
	// Report re-derives the report from persisted rows; same rows, same text.
	Report(ctx context.Context, companyID, closureID uuid.UUID, includeSaleDetails bool, ti *render.TimeInfo) (string, error)
	Reprint(ctx context.Context, companyID, closureID uuid.UUID, computerID string, includeSaleDetails bool, ti *render.TimeInfo) (*dto.ReportResponse, error)
	// OpenClosureIDTx returns the open closure of the seller's scope, nil when
	// none. The row stays share-locked until tx ends.
	OpenClosureIDTx(tx *gorm.DB, company *model.Company, sellerID uuid.UUID) (*uuid.UUID, error)
}

type cashClosureService struct {
	closures  repository.CashClosureRepository
	sales     repository.SaleRepository
	companies repository.CompanyRepository
	printer   PrintService
	renderer  *render.Renderer
	now       clock
}

func NewCashClosureService(
	closures repository.CashClosureRepository,
	sales repository.SaleRepository,
	companies repository.CompanyRepository,
	printer PrintService,
	renderer *render.Renderer,
) CashClosureService {
	return &cashClosureService{
		closures:  closures,
		sales:     sales,
		companies: companies,
		printer:   printer,
		renderer:  renderer,
	}
}

// scopeFor is the seller when the company runs individual registers, nil
// (shared register) otherwise.
func scopeFor(c *model.Company, sellerID uuid.UUID) *uuid.UUID {
	if c.IndividualCash {
		id := sellerID
		return &id
	}
	return nil
}

func (s *cashClosureService) company(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Empresa")
		}
		return nil, asAppError(err)
	}
	return c, nil
}

func noOpenClosure() *apperror.Error {
	return apperror.Conflict(apperror.CodeNoOpenClosure, "Não há caixa aberto")
}

// ── Open ──────────────────────────────────────────────────────────────────────
// The partial unique index on open closures is what actually serializes
// concurrent opens; the pre-check only gives a nicer error on the common path.

func (s *cashClosureService) Open(ctx context.Context, companyID, sellerID uuid.UUID, req dto.OpenCashClosureRequest) (*dto.CashClosureResponse, error) {
	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	scope := scopeFor(company, sellerID)

	if existing, err := s.closures.FindOpen(ctx, companyID, scope); err == nil && existing != nil {
		return nil, alreadyOpen(existing.ID)
	} else if err != nil && !repository.IsNotFound(err) {
		return nil, asAppError(err)
	}

	cl := &model.CashClosure{
		CompanyID:     companyID,
		SellerID:      scope,
		OpenedByID:    sellerID,
		OpeningDate:   s.now.now(),
		OpeningAmount: req.OpeningAmount.Round(2),
		Notes:         req.Notes,
	}
	if err := s.closures.Create(ctx, cl); err != nil {
		if repository.IsUniqueViolation(err, repository.IdxOpenClosurePerScope) {
			return nil, apperror.Conflict(apperror.CodeClosureAlreadyOpen, "Já existe um caixa aberto")
		}
		return nil, asAppError(err)
	}
	log.Info().Str("closure_id", cl.ID.String()).Str("company_id", companyID.String()).Msg("cash_closure: opened")
	resp := closureToResponse(cl)
	return &resp, nil
}

func alreadyOpen(id uuid.UUID) *apperror.Error {
	return apperror.Conflict(apperror.CodeClosureAlreadyOpen, "Já existe um caixa aberto").
		WithDetail("cash_closure_id", id.String())
}

// ── GetOpen ───────────────────────────────────────────────────────────────────

func (s *cashClosureService) GetOpen(ctx context.Context, companyID, sellerID uuid.UUID) (*dto.CashClosureResponse, error) {
	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	cl, err := s.closures.FindOpen(ctx, companyID, scopeFor(company, sellerID))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, noOpenClosure()
		}
		return nil, asAppError(err)
	}

	sales, err := s.sales.ListByClosure(ctx, cl.ID)
	if err != nil {
		return nil, asAppError(err)
	}
	withdrawals := sortedWithdrawals(cl.Withdrawals)
	sum := SummarizeClosure(cl.OpeningAmount, sales, withdrawals, nil)
	cl.TotalSales = sum.TotalSales
	cl.TotalCashSales = sum.TotalCashSales
	cl.TotalChange = sum.TotalChange
	expected := sum.ExpectedClosing
	cl.ExpectedClosing = &expected

	resp := closureToResponse(cl)
	totals, err := s.closures.SumPaymentsByMethod(ctx, cl.ID)
	if err != nil {
		return nil, asAppError(err)
	}
	for _, t := range totals {
		resp.PaymentTotals = append(resp.PaymentTotals, dto.MethodTotalResponse{Method: t.Method, Count: t.Count, Total: t.Total})
	}
	return &resp, nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Locks the open closure row, aggregates its sales and withdrawals and
// freezes the totals. Printing the report afterwards is advisory.

func (s *cashClosureService) Close(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CloseCashClosureRequest, ti *render.TimeInfo) (*dto.CloseCashClosureResponse, error) {
	ctx, end := startSpan(ctx, "cash_closure.close", attribute.String("company_id", companyID.String()))
	var spanErr error
	defer func() { end(spanErr) }()

	company, err := s.company(ctx, companyID)
	if err != nil {
		spanErr = err
		return nil, err
	}
	scope := scopeFor(company, sellerID)
	closing := req.ClosingAmount.Round(2)

	var (
		cl          *model.CashClosure
		sales       []model.Sale
		withdrawals []model.CashWithdrawal
	)
	txErr := runTx(ctx, s.closures.DB(), func(tx *gorm.DB) error {
		var err error
		cl, err = s.closures.FindOpenForUpdateTx(tx, companyID, scope)
		if err != nil {
			if repository.IsNotFound(err) {
				return noOpenClosure()
			}
			return err
		}
		if sales, err = s.sales.ListByClosureTx(tx, cl.ID); err != nil {
			return err
		}
		if withdrawals, err = s.closures.ListWithdrawalsTx(tx, cl.ID); err != nil {
			return err
		}

		sum := SummarizeClosure(cl.OpeningAmount, sales, withdrawals, &closing)
		now := s.now.now()
		expected := sum.ExpectedClosing
		cl.ClosingDate = &now
		cl.ClosingAmount = &closing
		cl.TotalSales = sum.TotalSales
		cl.TotalCashSales = sum.TotalCashSales
		cl.TotalChange = sum.TotalChange
		cl.TotalWithdrawals = sum.TotalWithdrawals
		cl.ExpectedClosing = &expected
		cl.Difference = sum.Difference
		cl.IsClosed = true
		if req.Notes != nil {
			cl.Notes = req.Notes
		}
		return s.closures.UpdateTx(tx, cl)
	})
	if txErr != nil {
		spanErr = asAppError(txErr)
		return nil, spanErr
	}

	// Rendered from the stored rows so a later reprint matches byte for byte.
	text, err := s.Report(ctx, companyID, cl.ID, false, ti)
	if err != nil {
		log.Warn().Err(err).Str("closure_id", cl.ID.String()).Msg("cash_closure: report reload failed")
		cl.Withdrawals = withdrawals
		text = s.renderer.CashClosureReport(closureReport(company, cl, sales, sortedWithdrawals(withdrawals)), false, ti)
	}
	cl.Withdrawals = withdrawals
	resp := &dto.CloseCashClosureResponse{Closure: closureToResponse(cl), ReportText: text}
	log.Info().
		Str("closure_id", cl.ID.String()).
		Str("difference", cl.Difference.StringFixed(2)).
		Str("label", resp.Closure.DifferenceLabel).
		Msg("cash_closure: closed")

	if req.Print {
		res := s.printer.Dispatch(ctx, companyID, req.ComputerID, text, true)
		resp.Print = ToPrintResult(res)
	}
	return resp, nil
}

// ── RegisterWithdrawal ────────────────────────────────────────────────────────

func (s *cashClosureService) RegisterWithdrawal(ctx context.Context, companyID, sellerID uuid.UUID, req dto.WithdrawalRequest) (*dto.WithdrawalResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation(apperror.CodeValidation, "O valor da sangria deve ser positivo")
	}
	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	scope := scopeFor(company, sellerID)

	w := &model.CashWithdrawal{SellerID: sellerID, Amount: req.Amount.Round(2), Reason: req.Reason}
	txErr := runTx(ctx, s.closures.DB(), func(tx *gorm.DB) error {
		cl, err := s.closures.FindOpenForUpdateTx(tx, companyID, scope)
		if err != nil {
			if repository.IsNotFound(err) {
				return noOpenClosure()
			}
			return err
		}
		w.CashClosureID = cl.ID
		w.CreatedAt = s.now.now()
		return s.closures.CreateWithdrawalTx(tx, w)
	})
	if txErr != nil {
		return nil, asAppError(txErr)
	}
	resp := withdrawalToResponse(w)
	return &resp, nil
}

// ── List ──────────────────────────────────────────────────────────────────────

func (s *cashClosureService) List(ctx context.Context, companyID uuid.UUID, filter dto.ClosureFilter) (*dto.CashClosureListResponse, error) {
	f := repository.ClosureFilter{CompanyID: companyID, Page: filter.Page, Limit: filter.Limit}
	if filter.SellerID != "" {
		id, err := uuid.Parse(filter.SellerID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeValidation, "seller_id inválido")
		}
		f.SellerID = &id
	}
	switch filter.Status {
	case "open":
		closed := false
		f.IsClosed = &closed
	case "closed":
		closed := true
		f.IsClosed = &closed
	}
	var err error
	if f.From, f.To, err = dayRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	closures, total, err := s.closures.List(ctx, f)
	if err != nil {
		return nil, asAppError(err)
	}
	resp := &dto.CashClosureListResponse{
		Data:  make([]dto.CashClosureResponse, 0, len(closures)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range closures {
		resp.Data = append(resp.Data, closureToResponse(&closures[i]))
	}
	return resp, nil
}

// ── Report / Reprint ──────────────────────────────────────────────────────────

func (s *cashClosureService) Report(ctx context.Context, companyID, closureID uuid.UUID, includeSaleDetails bool, ti *render.TimeInfo) (string, error) {
	cl, err := s.closures.FindByID(ctx, companyID, closureID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", apperror.NotFound("Caixa")
		}
		return "", asAppError(err)
	}
	company, err := s.company(ctx, companyID)
	if err != nil {
		return "", err
	}
	sales, err := s.sales.ListByClosure(ctx, cl.ID)
	if err != nil {
		return "", asAppError(err)
	}
	rep := closureReport(company, cl, sales, sortedWithdrawals(cl.Withdrawals))
	return s.renderer.CashClosureReport(rep, includeSaleDetails, ti), nil
}

func (s *cashClosureService) Reprint(ctx context.Context, companyID, closureID uuid.UUID, computerID string, includeSaleDetails bool, ti *render.TimeInfo) (*dto.ReportResponse, error) {
	text, err := s.Report(ctx, companyID, closureID, includeSaleDetails, ti)
	if err != nil {
		return nil, err
	}
	res := s.printer.Dispatch(ctx, companyID, computerID, text, true)
	return &dto.ReportResponse{Content: text, Print: ToPrintResult(res)}, nil
}

// ── OpenClosureIDTx ───────────────────────────────────────────────────────────

func (s *cashClosureService) OpenClosureIDTx(tx *gorm.DB, company *model.Company, sellerID uuid.UUID) (*uuid.UUID, error) {
	cl, err := s.closures.FindOpenForShareTx(tx, company.ID, scopeFor(company, sellerID))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	id := cl.ID
	return &id, nil
}

func sortedWithdrawals(ws []model.CashWithdrawal) []model.CashWithdrawal {
	out := append([]model.CashWithdrawal(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// dayRange turns YYYY-MM-DD bounds into [from 00:00, to+1 00:00).
func dayRange(from, to string) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, nil, apperror.Validation(apperror.CodeValidation, "Data inicial inválida").WithDetail("from", from)
		}
		f = &d
	}
	if to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, nil, apperror.Validation(apperror.CodeValidation, "Data final inválida").WithDetail("to", to)
		}
		d = d.AddDate(0, 0, 1)
		t = &d
	}
	return f, t, nil
}
