package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/fiscal"
	"vendapos/internal/model"
	"vendapos/internal/render"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxFiscalRetries is how many background attempts a Pendente document gets
// before it is parked for manual handling.
const MaxFiscalRetries = 5

// FiscalSettings are the issuer parameters shared by every company.
type FiscalSettings struct {
	StateCode     string
	Series        int
	QRCodeBaseURL string
	ConsultURL    string
	Homologation  bool
}

// RetryReport summarizes one pass over Pendente documents.
type RetryReport struct {
	Attempted int
	Issued    int
	Failed    int
	// Exhausted lists documents that hit MaxFiscalRetries in this pass.
	Exhausted []uuid.UUID
}

type FiscalService interface {
	// IssueForSale reserves a number, asks the facade for a document and
	// persists the result. It never fails the caller; see Outcome.Kind.
	IssueForSale(ctx context.Context, company *model.Company, sale *model.Sale) (*model.FiscalDocument, fiscal.Outcome)
	ForSale(ctx context.Context, companyID, saleID uuid.UUID) (*model.FiscalDocument, error)
	Get(ctx context.Context, companyID, id uuid.UUID) (*dto.FiscalDocumentResponse, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID, reason string) (*dto.FiscalDocumentResponse, error)
	Render(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error)
	// SaleDocument renders the printable document for a sale given its
	// fiscal record, which may be nil.
	SaleDocument(company *model.Company, sale *model.Sale, doc *model.FiscalDocument, ti *render.TimeInfo) string
	RetryPending(ctx context.Context, limit int) (RetryReport, error)
}

type fiscalService struct {
	docs      repository.FiscalDocumentRepository
	sales     repository.SaleRepository
	companies repository.CompanyRepository
	facade    *fiscal.Facade
	renderer  *render.Renderer
	settings  FiscalSettings
	now       clock
}

func NewFiscalService(
	docs repository.FiscalDocumentRepository,
	sales repository.SaleRepository,
	companies repository.CompanyRepository,
	facade *fiscal.Facade,
	renderer *render.Renderer,
	settings FiscalSettings,
) FiscalService {
	if settings.Series <= 0 {
		settings.Series = 1
	}
	return &fiscalService{
		docs:      docs,
		sales:     sales,
		companies: companies,
		facade:    facade,
		renderer:  renderer,
		settings:  settings,
	}
}

// RetryBackoff is the wait before attempt n+1: 1, 2, 4 … minutes, capped at one hour.
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 7 {
		return time.Hour
	}
	return time.Duration(1<<uint(attempt-1)) * time.Minute
}

// ── IssueForSale ──────────────────────────────────────────────────────────────

func (s *fiscalService) IssueForSale(ctx context.Context, company *model.Company, sale *model.Sale) (*model.FiscalDocument, fiscal.Outcome) {
	now := s.now.now()
	saleID := sale.ID
	doc := &model.FiscalDocument{
		CompanyID:    company.ID,
		SaleID:       &saleID,
		DocumentType: model.DocumentTypeNFCe,
		Series:       s.settings.Series,
		Status:       model.FiscalStatusPending,
		TotalValue:   sale.Total,
		Origin:       model.FiscalOriginGenerated,
		EmissionDate: now,
	}
	if err := s.reserveNumber(ctx, doc); err != nil {
		log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("fiscal_service: could not reserve document number")
		return nil, fiscal.Outcome{Kind: fiscal.Failed, Err: err}
	}

	out := s.facade.Issue(ctx, s.request(company, sale, doc))
	s.apply(doc, out, now)
	if err := s.docs.Update(ctx, doc); err != nil {
		log.Error().Err(err).Str("fiscal_document_id", doc.ID.String()).Msg("fiscal_service: could not persist issuance result")
	}
	if out.Kind == fiscal.Failed {
		log.Warn().Err(out.Err).
			Str("sale_id", sale.ID.String()).
			Int64("document_number", doc.DocumentNumber).
			Msg("fiscal_service: issuance failed, scheduled for retry")
	}
	return doc, out
}

// reserveNumber inserts the Pendente row under MAX+1, retrying when a
// concurrent sale took the same number.
func (s *fiscalService) reserveNumber(ctx context.Context, doc *model.FiscalDocument) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var n int64
		n, err = s.docs.NextNumber(ctx, doc.CompanyID, doc.DocumentType, doc.Series)
		if err != nil {
			return err
		}
		doc.DocumentNumber = n
		err = s.docs.Create(ctx, doc)
		if err == nil {
			return nil
		}
		if !repository.IsUniqueViolation(err, repository.IdxFiscalNumber) {
			return err
		}
		doc.ID = uuid.Nil
	}
	return err
}

func (s *fiscalService) request(company *model.Company, sale *model.Sale, doc *model.FiscalDocument) fiscal.Request {
	req := fiscal.Request{
		CompanyID:     company.ID,
		CompanyCNPJ:   company.CNPJ,
		StateCode:     s.settings.StateCode,
		SaleID:        sale.ID,
		Series:        doc.Series,
		Number:        doc.DocumentNumber,
		Total:         sale.Total,
		ClientCPFCNPJ: deref(sale.ClientCPFCNPJ),
		EmittedAt:     doc.EmissionDate,
	}
	for _, it := range sale.Items {
		item := fiscal.Item{
			ProductID:   it.ProductID,
			Description: productName(it.Product),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.TotalPrice,
		}
		if it.Product != nil {
			item.NCM = deref(it.Product.NCM)
		}
		req.Items = append(req.Items, item)
	}
	for _, pm := range sale.PaymentMethods {
		req.Payments = append(req.Payments, fiscal.Payment{Method: pm.Method, Amount: pm.Amount})
	}
	return req
}

// apply copies an outcome onto the document. Failures stay Pendente unless
// the authority rejected the document outright.
func (s *fiscalService) apply(doc *model.FiscalDocument, out fiscal.Outcome, now time.Time) {
	switch out.Kind {
	case fiscal.Issued, fiscal.Mocked:
		a := out.Authorization
		doc.Status = model.FiscalStatusAuthorized
		if out.Kind == fiscal.Mocked {
			doc.Status = model.FiscalStatusMock
		}
		doc.AccessKey = strPtr(a.AccessKey)
		doc.Protocol = strPtr(a.Protocol)
		doc.XMLContent = strPtr(a.XML)
		if !a.EmissionDate.IsZero() {
			doc.EmissionDate = a.EmissionDate
		}
		doc.NextRetryAt = nil
		doc.LastError = nil
	default:
		msg := "falha desconhecida"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		doc.LastError = &msg
		if errors.Is(out.Err, fiscal.ErrRejected) {
			doc.Status = model.FiscalStatusRejected
			doc.NextRetryAt = nil
			return
		}
		doc.Status = model.FiscalStatusPending
		next := now.Add(RetryBackoff(doc.RetryCount + 1))
		doc.NextRetryAt = &next
	}
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *fiscalService) ForSale(ctx context.Context, companyID, saleID uuid.UUID) (*model.FiscalDocument, error) {
	doc, err := s.docs.FindBySaleID(ctx, companyID, saleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, asAppError(err)
	}
	return doc, nil
}

func (s *fiscalService) find(ctx context.Context, companyID, id uuid.UUID) (*model.FiscalDocument, error) {
	doc, err := s.docs.FindByID(ctx, companyID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Documento fiscal")
		}
		return nil, asAppError(err)
	}
	return doc, nil
}

func (s *fiscalService) Get(ctx context.Context, companyID, id uuid.UUID) (*dto.FiscalDocumentResponse, error) {
	doc, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := fiscalToResponse(doc)
	return &resp, nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Forward only: Autorizada → Cancelada. MOCK documents carry no fiscal value
// and are not cancellable.

func (s *fiscalService) Cancel(ctx context.Context, companyID, id uuid.UUID, reason string) (*dto.FiscalDocumentResponse, error) {
	doc, err := s.find(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	switch doc.Status {
	case model.FiscalStatusCancelled:
		return nil, apperror.Conflict(apperror.CodeFiscalAlreadyCancelled, "Documento fiscal já está cancelado")
	case model.FiscalStatusAuthorized:
	default:
		return nil, apperror.Conflict(apperror.CodeFiscalNotCancellable,
			fmt.Sprintf("Documento fiscal com status %s não pode ser cancelado", doc.Status))
	}

	if err := s.facade.Cancel(ctx, deref(doc.AccessKey), deref(doc.Protocol), reason); err != nil {
		log.Error().Err(err).Str("fiscal_document_id", doc.ID.String()).Msg("fiscal_service: gateway cancellation failed")
		return nil, apperror.Integrity(err)
	}

	now := s.now.now()
	doc.Status = model.FiscalStatusCancelled
	doc.CancelReason = &reason
	doc.CancelledAt = &now
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, asAppError(err)
	}
	resp := fiscalToResponse(doc)
	return &resp, nil
}

// ── Rendering ─────────────────────────────────────────────────────────────────

func (s *fiscalService) Render(ctx context.Context, companyID, id uuid.UUID, ti *render.TimeInfo) (string, error) {
	doc, err := s.find(ctx, companyID, id)
	if err != nil {
		return "", err
	}
	if doc.SaleID == nil {
		return "", apperror.Validation(apperror.CodeValidation, "Documento fiscal sem venda vinculada")
	}
	sale, err := s.sales.FindByID(ctx, companyID, *doc.SaleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", apperror.NotFound("Venda")
		}
		return "", asAppError(err)
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return "", asAppError(err)
	}
	return s.SaleDocument(company, sale, doc, ti), nil
}

// SaleDocument picks the NFC-e facsimile only for documents with fiscal
// value; MOCK and Pendente documents print as non-fiscal receipts.
func (s *fiscalService) SaleDocument(company *model.Company, sale *model.Sale, doc *model.FiscalDocument, ti *render.TimeInfo) string {
	view := saleDocument(company, sale)
	if doc == nil {
		return s.renderer.NonFiscalReceipt(view, "", ti)
	}
	switch doc.Status {
	case model.FiscalStatusAuthorized, model.FiscalStatusCancelled:
		if doc.AccessKey != nil {
			return s.renderer.NFCe(s.fiscalView(view, doc), ti)
		}
	case model.FiscalStatusPending:
		return s.renderer.NonFiscalReceipt(view, "NFC-e pendente de autorização", ti)
	case model.FiscalStatusMock:
		return s.renderer.NonFiscalReceipt(view, "Emissão fiscal em modo de teste", ti)
	}
	return s.renderer.NonFiscalReceipt(view, "", ti)
}

func (s *fiscalService) fiscalView(view render.Sale, doc *model.FiscalDocument) render.Fiscal {
	key := deref(doc.AccessKey)
	return render.Fiscal{
		Sale:           view,
		DocumentNumber: doc.DocumentNumber,
		Series:         doc.Series,
		AccessKey:      key,
		Protocol:       deref(doc.Protocol),
		Status:         doc.Status,
		EmissionDate:   doc.EmissionDate,
		ConsultURL:     s.settings.ConsultURL,
		QRCodeURL:      s.qrURL(key),
		Homologation:   s.settings.Homologation,
		Cancelled:      doc.Status == model.FiscalStatusCancelled,
	}
}

func (s *fiscalService) qrURL(key string) string {
	if key == "" {
		return ""
	}
	return fiscal.QRCodeURL(s.settings.QRCodeBaseURL, key)
}

// ── RetryPending ──────────────────────────────────────────────────────────────

func (s *fiscalService) RetryPending(ctx context.Context, limit int) (RetryReport, error) {
	var rep RetryReport
	now := s.now.now()
	docs, err := s.docs.ListDueForRetry(ctx, now, limit)
	if err != nil {
		return rep, err
	}
	for i := range docs {
		doc := &docs[i]
		if doc.SaleID == nil {
			continue
		}
		sale, err := s.sales.FindByID(ctx, doc.CompanyID, *doc.SaleID)
		if err != nil {
			log.Warn().Err(err).Str("fiscal_document_id", doc.ID.String()).Msg("fiscal_service: sale for pending document not found")
			doc.NextRetryAt = nil
			msg := "venda não encontrada"
			doc.LastError = &msg
			_ = s.docs.Update(ctx, doc)
			continue
		}
		company, err := s.companies.FindByID(ctx, doc.CompanyID)
		if err != nil {
			// Left due; the next run tries again.
			log.Warn().Err(err).
				Str("fiscal_document_id", doc.ID.String()).
				Str("company_id", doc.CompanyID.String()).
				Msg("fiscal_service: company lookup failed, skipping document")
			continue
		}

		rep.Attempted++
		out := s.facade.Issue(ctx, s.request(company, sale, doc))
		if out.Kind == fiscal.Failed {
			doc.RetryCount++
		}
		s.apply(doc, out, now)

		switch {
		case out.Kind != fiscal.Failed:
			rep.Issued++
			log.Info().
				Str("fiscal_document_id", doc.ID.String()).
				Int("total_retries", doc.RetryCount).
				Msg("fiscal_service: document issued after retry")
		case doc.Status == model.FiscalStatusRejected:
			rep.Failed++
			log.Warn().Str("fiscal_document_id", doc.ID.String()).Msg("fiscal_service: document rejected on retry")
		case doc.RetryCount >= MaxFiscalRetries:
			doc.NextRetryAt = nil
			rep.Failed++
			rep.Exhausted = append(rep.Exhausted, doc.ID)
			log.Error().
				Str("fiscal_document_id", doc.ID.String()).
				Int("retries", doc.RetryCount).
				Msg("fiscal_service: max retries exceeded")
		default:
			rep.Failed++
			log.Warn().
				Str("fiscal_document_id", doc.ID.String()).
				Int("retry_count", doc.RetryCount).
				Time("next_retry_at", *doc.NextRetryAt).
				Msg("fiscal_service: retry failed, scheduled next attempt")
		}
		if err := s.docs.Update(ctx, doc); err != nil {
			log.Error().Err(err).Str("fiscal_document_id", doc.ID.String()).Msg("fiscal_service: could not persist retry result")
		}
	}
	return rep, nil
}
