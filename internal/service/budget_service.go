package service

import (
	"context"
	"time"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/model"
	"vendapos/internal/payment"
	"vendapos/internal/render"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultBudgetValidDays = 7

type BudgetService interface {
	Create(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CreateBudgetRequest) (*dto.BudgetResponse, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*dto.BudgetResponse, error)
	Render(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error)
	// Approve commits the status change first. The sale is created afterwards
	// and its failure only produces a warning.
	Approve(ctx context.Context, companyID, sellerID, id uuid.UUID, req dto.ApproveBudgetRequest, ti *render.TimeInfo) (*dto.ApproveBudgetResponse, error)
	Reject(ctx context.Context, companyID, id uuid.UUID) (*dto.BudgetResponse, error)
	ExpireBudgets(ctx context.Context) (int64, error)
}

type budgetService struct {
	budgets   repository.BudgetRepository
	products  repository.ProductRepository
	companies repository.CompanyRepository
	sales     SaleService
	renderer  *render.Renderer
	now       clock
}

func NewBudgetService(
	budgets repository.BudgetRepository,
	products repository.ProductRepository,
	companies repository.CompanyRepository,
	sales SaleService,
	renderer *render.Renderer,
) BudgetService {
	return &budgetService{budgets: budgets, products: products, companies: companies, sales: sales, renderer: renderer}
}

func (s *budgetService) Create(ctx context.Context, companyID, sellerID uuid.UUID, req dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeValidation, "product_id inválido").WithDetail("product_id", it.ProductID)
		}
		ids = append(ids, id)
	}
	found, err := s.products.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, asAppError(err)
	}
	products := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	validDays := req.ValidDays
	if validDays <= 0 {
		validDays = defaultBudgetValidDays
	}
	seller := sellerID
	b := &model.Budget{
		CompanyID:     companyID,
		SellerID:      &seller,
		ClientName:    req.ClientName,
		ClientCPFCNPJ: req.ClientCPFCNPJ,
		Status:        model.BudgetPending,
		ValidUntil:    s.now.now().AddDate(0, 0, validDays),
		Notes:         req.Notes,
		Total:         decimal.Zero,
	}
	for i, it := range req.Items {
		p, ok := products[ids[i]]
		if !ok || !p.Active {
			return nil, productNotFound(ids[i])
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		b.Total = b.Total.Add(lineTotal)
		b.Items = append(b.Items, model.BudgetItem{
			LineNumber: i + 1,
			ProductID:  p.ID,
			Quantity:   it.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: lineTotal,
			Product:    p,
		})
	}

	err = runTx(ctx, s.budgets.DB(), func(tx *gorm.DB) error {
		n, err := s.companies.NextBudgetNumberTx(tx, companyID)
		if err != nil {
			return err
		}
		b.BudgetNumber = n
		return s.budgets.CreateTx(tx, b)
	})
	if err != nil {
		return nil, asAppError(err)
	}
	log.Info().Str("budget_id", b.ID.String()).Int("number", b.BudgetNumber).Msg("budget: created")
	resp := budgetToResponse(b)
	return &resp, nil
}

func (s *budgetService) find(ctx context.Context, companyID, id uuid.UUID) (*model.Budget, error) {
	b, err := s.budgets.FindByID(ctx, companyID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Orçamento")
		}
		return nil, asAppError(err)
	}
	return b, nil
}

func (s *budgetService) Get(ctx context.Context, companyID, id uuid.UUID) (*dto.BudgetResponse, error) {
	b, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := budgetToResponse(b)
	return &resp, nil
}

func (s *budgetService) Render(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error) {
	b, err := s.find(ctx, companyID, id)
	if err != nil {
		return "", err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return "", asAppError(err)
	}
	return s.renderer.Budget(budgetDocument(company, b), ti), nil
}

func (s *budgetService) Approve(ctx context.Context, companyID, sellerID, id uuid.UUID, req dto.ApproveBudgetRequest, ti *render.TimeInfo) (*dto.ApproveBudgetResponse, error) {
	b, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BudgetPending {
		// Tender is checked before the status flips so a bad request leaves the budget pending.
		if _, err := payment.Validate(b.Total, paymentLines(req.PaymentMethods), deref(b.ClientName)); err != nil {
			return nil, err
		}
	}

	var alreadyApproved bool
	err = runTx(ctx, s.budgets.DB(), func(tx *gorm.DB) error {
		locked, err := s.budgets.FindByIDForUpdateTx(tx, companyID, id)
		if err != nil {
			return err
		}
		switch {
		case locked.Status == model.BudgetApproved:
			alreadyApproved = true
			return nil
		case locked.Status != model.BudgetPending:
			return budgetNotPending(locked.Status)
		case locked.IsExpiredAt(s.now.now()):
			return apperror.Validation(apperror.CodeBudgetExpired, "Orçamento vencido").
				WithDetail("valid_until", locked.ValidUntil.Format(time.RFC3339))
		}
		return s.budgets.UpdateStatusTx(tx, locked.ID, model.BudgetApproved)
	})
	if err != nil {
		return nil, asAppError(err)
	}
	b.Status = model.BudgetApproved

	resp := &dto.ApproveBudgetResponse{Warnings: []string{}}
	sale, err := s.sales.CreateFromBudget(ctx, sellerID, b, req, ti)
	if err != nil {
		log.Warn().Err(err).Str("budget_id", b.ID.String()).Msg("budget: sale creation failed after approval")
		msg := "Orçamento aprovado, mas a venda não pôde ser criada"
		if appErr, ok := apperror.As(err); ok && appErr.Kind != apperror.KindIntegrity {
			msg += ": " + appErr.Message
		}
		resp.Warnings = append(resp.Warnings, msg)
	} else {
		resp.Sale = sale
		resp.Warnings = append(resp.Warnings, sale.Warnings...)
		saleID, _ := uuid.Parse(sale.Sale.ID)
		if b.SaleID == nil || *b.SaleID != saleID {
			if err := s.budgets.LinkSale(ctx, b.ID, saleID); err != nil {
				log.Warn().Err(err).Str("budget_id", b.ID.String()).Msg("budget: failed to link sale")
			}
			b.SaleID = &saleID
		}
	}
	if alreadyApproved {
		log.Info().Str("budget_id", b.ID.String()).Msg("budget: approval replayed")
	}
	resp.Budget = budgetToResponse(b)
	return resp, nil
}

func (s *budgetService) Reject(ctx context.Context, companyID, id uuid.UUID) (*dto.BudgetResponse, error) {
	b, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.budgets.DB(), func(tx *gorm.DB) error {
		locked, err := s.budgets.FindByIDForUpdateTx(tx, companyID, id)
		if err != nil {
			return err
		}
		if locked.Status != model.BudgetPending {
			return budgetNotPending(locked.Status)
		}
		return s.budgets.UpdateStatusTx(tx, locked.ID, model.BudgetRejected)
	})
	if err != nil {
		return nil, asAppError(err)
	}
	b.Status = model.BudgetRejected
	resp := budgetToResponse(b)
	return &resp, nil
}

// ExpireBudgets is run by the background cron.
func (s *budgetService) ExpireBudgets(ctx context.Context) (int64, error) {
	n, err := s.budgets.ExpirePending(ctx, s.now.now())
	if err != nil {
		return 0, asAppError(err)
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("budget: expired pending budgets")
	}
	return n, nil
}

func budgetNotPending(status string) *apperror.Error {
	return apperror.Conflict(apperror.CodeBudgetNotPending, "Orçamento não está pendente").WithDetail("status", status)
}
