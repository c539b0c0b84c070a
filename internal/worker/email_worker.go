package worker

// email_worker.go
// Processes receipt e-mail jobs from QueueEmail: loads the sale, renders the
// PDF receipt and mails it. Failed sends are re-queued with Attempt+1 until
// MaxEmailAttempts, then parked in the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vendapos/internal/dto"
	"vendapos/internal/model"
	"vendapos/internal/render"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const MaxEmailAttempts = 3

// ReceiptMailer sends the rendered receipt. infra.Mailer satisfies it.
type ReceiptMailer interface {
	Configured() bool
	SendReceipt(fromName, to, subject, body, pdfPath string) error
}

// ReceiptRenderer writes a sale's PDF and returns its path. infra.ReceiptPDF satisfies it.
type ReceiptRenderer interface {
	Generate(ctx context.Context, company *model.Company, sale *model.Sale) (string, error)
}

// Requeuer re-enqueues or parks a job. *Dispatcher satisfies it.
type Requeuer interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
	DeadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

// EmailWorker processes receipt jobs from QueueEmail.
type EmailWorker struct {
	sales     repository.SaleRepository
	companies repository.CompanyRepository
	pdf       ReceiptRenderer
	mailer    ReceiptMailer
	queue     Requeuer
	backoff   time.Duration
}

func NewEmailWorker(
	sales repository.SaleRepository,
	companies repository.CompanyRepository,
	pdf ReceiptRenderer,
	mailer ReceiptMailer,
	queue Requeuer,
) *EmailWorker {
	return &EmailWorker{
		sales:     sales,
		companies: companies,
		pdf:       pdf,
		mailer:    mailer,
		queue:     queue,
		backoff:   2 * time.Second,
	}
}

// Process handles a single receipt job.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var job dto.ReceiptEmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		w.queue.DeadLetter(ctx, QueueEmail, JobReceiptEmail, raw, "invalid payload: "+err.Error(), 0)
		return
	}
	if job.ToEmail == "" {
		log.Warn().Str("sale_id", job.SaleID).Msg("email_worker: empty to_email, skipping")
		return
	}
	if !w.mailer.Configured() {
		log.Warn().Str("sale_id", job.SaleID).Msg("email_worker: SMTP not configured, dropping receipt")
		return
	}

	err := w.send(ctx, job)
	if err == nil {
		log.Info().Str("to", job.ToEmail).Str("sale_id", job.SaleID).Msg("email_worker: receipt sent")
		return
	}
	if errors.Is(err, errPermanent) {
		log.Warn().Err(err).Str("sale_id", job.SaleID).Msg("email_worker: receipt dropped")
		return
	}

	job.Attempt++
	if job.Attempt >= MaxEmailAttempts {
		data, _ := json.Marshal(job)
		w.queue.DeadLetter(ctx, QueueEmail, JobReceiptEmail, data,
			fmt.Sprintf("max attempts (%d) exceeded: %v", MaxEmailAttempts, err), job.Attempt)
		return
	}

	log.Warn().Err(err).Str("sale_id", job.SaleID).Int("attempt", job.Attempt).Msg("email_worker: send failed, retrying")
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff * time.Duration(job.Attempt)):
	}
	if qErr := w.queue.EnqueueEmail(ctx, job); qErr != nil {
		log.Error().Err(qErr).Str("sale_id", job.SaleID).Msg("email_worker: failed to re-enqueue")
	}
}

var errPermanent = errors.New("permanent")

func (w *EmailWorker) send(ctx context.Context, job dto.ReceiptEmailJob) error {
	companyID, err := uuid.Parse(job.CompanyID)
	if err != nil {
		return fmt.Errorf("%w: company_id: %v", errPermanent, err)
	}
	saleID, err := uuid.Parse(job.SaleID)
	if err != nil {
		return fmt.Errorf("%w: sale_id: %v", errPermanent, err)
	}

	company, err := w.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: company not found", errPermanent)
		}
		return err
	}
	// The sale may have been removed between enqueue and delivery.
	sale, err := w.sales.FindByID(ctx, companyID, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: sale not found", errPermanent)
		}
		return err
	}

	path, err := w.pdf.Generate(ctx, company, sale)
	if err != nil {
		return err
	}

	subject := "Comprovante de compra - " + company.DisplayName()
	body := fmt.Sprintf("Olá!\n\nSegue em anexo o comprovante da sua compra em %s.\nTotal: %s\n\nObrigado pela preferência.",
		render.FormatDay(sale.SaleDate, nil), render.FormatCurrency(sale.Total))
	return w.mailer.SendReceipt(company.DisplayName(), job.ToEmail, subject, body, path)
}
