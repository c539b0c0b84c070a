package repository

import (
	"context"
	"time"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FiscalDocumentRepository interface {
	Create(ctx context.Context, d *model.FiscalDocument) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.FiscalDocument, error)
	FindBySaleID(ctx context.Context, companyID, saleID uuid.UUID) (*model.FiscalDocument, error)
	Update(ctx context.Context, d *model.FiscalDocument) error
	// NextNumber is MAX(document_number)+1 for the company series. The unique
	// index on (company_id, document_type, series, document_number) rejects races.
	NextNumber(ctx context.Context, companyID uuid.UUID, docType string, series int) (int64, error)
	// ListDueForRetry returns Pendente documents whose next_retry_at has passed.
	ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]model.FiscalDocument, error)
}

type fiscalDocumentRepo struct{ db *gorm.DB }

func NewFiscalDocumentRepository(db *gorm.DB) FiscalDocumentRepository {
	return &fiscalDocumentRepo{db: db}
}

func (r *fiscalDocumentRepo) Create(ctx context.Context, d *model.FiscalDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *fiscalDocumentRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.FiscalDocument, error) {
	var d model.FiscalDocument
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&d).Error
	return &d, err
}

func (r *fiscalDocumentRepo) FindBySaleID(ctx context.Context, companyID, saleID uuid.UUID) (*model.FiscalDocument, error) {
	var d model.FiscalDocument
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND company_id = ?", saleID, companyID).
		Order("created_at DESC").
		First(&d).Error
	return &d, err
}

func (r *fiscalDocumentRepo) Update(ctx context.Context, d *model.FiscalDocument) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *fiscalDocumentRepo) NextNumber(ctx context.Context, companyID uuid.UUID, docType string, series int) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&model.FiscalDocument{}).
		Where("company_id = ? AND document_type = ? AND series = ?", companyID, docType, series).
		Select("COALESCE(MAX(document_number), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *fiscalDocumentRepo) ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]model.FiscalDocument, error) {
	var docs []model.FiscalDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", model.FiscalStatusPending, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}
