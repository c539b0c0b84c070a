package repository

import (
	"context"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
// Every lookup is scoped by company so foreign rows read as missing.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)

	// Used inside transactions; callers pass the tx instance
	FindByIDTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Product, error)
	// DecrementStockTx subtracts qty only when enough stock remains.
	// It returns false when the guarded UPDATE touched no row.
	DecrementStockTx(tx *gorm.DB, companyID, id uuid.UUID, qty int) (bool, error)
	IncrementStockTx(tx *gorm.DB, companyID, id uuid.UUID, qty int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), companyID, id)
}

func (r *productRepo) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Where("id = ? AND company_id = ?", id, companyID).First(&p).Error
	return &p, err
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, companyID, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND company_id = ? AND stock_quantity >= ?", id, companyID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStockTx(tx *gorm.DB, companyID, id uuid.UUID, qty int) error {
	return tx.Model(&model.Product{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}
