package repository

import (
	"context"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error)
	FindByBudgetID(ctx context.Context, companyID, budgetID uuid.UUID) (*model.Sale, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	// ListByClosure returns the closure's sales in a stable order
	// (sale_date, id) so reports re-render identically.
	ListByClosure(ctx context.Context, closureID uuid.UUID) ([]model.Sale, error)
	ListByClosureTx(tx *gorm.DB, closureID uuid.UUID) ([]model.Sale, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := preloadSale(r.db.WithContext(ctx)).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) FindByBudgetID(ctx context.Context, companyID, budgetID uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := preloadSale(r.db.WithContext(ctx)).
		Where("budget_id = ? AND company_id = ?", budgetID, companyID).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("sale_id = ?", id).Delete(&model.SalePaymentMethod{}).Error; err != nil {
		return err
	}
	if err := tx.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Sale{}, "id = ?", id).Error
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	where, args, err := filter.where()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where(where, args...)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageBounds(filter.Page, filter.Limit)
	var sales []model.Sale
	err = preloadSale(r.db.WithContext(ctx)).
		Where(where, args...).
		Order("sale_date DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListByClosure(ctx context.Context, closureID uuid.UUID) ([]model.Sale, error) {
	return r.ListByClosureTx(r.db.WithContext(ctx), closureID)
}

func (r *saleRepo) ListByClosureTx(tx *gorm.DB, closureID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := preloadSale(tx).
		Where("cash_closure_id = ?", closureID).
		Order("sale_date ASC, id ASC").
		Find(&sales).Error
	return sales, err
}

func preloadSale(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("Items.Product").
		Preload("PaymentMethods", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("Seller")
}
