package repository

import (
	"context"
	"time"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Budget, error)
	// ExpirePending flips pending budgets past valid_until to expired.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)

	CreateTx(tx *gorm.DB, b *model.Budget) error
	FindByIDForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Budget, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	LinkSale(ctx context.Context, id, saleID uuid.UUID) error

	DB() *gorm.DB
}

type budgetRepo struct{ db *gorm.DB }

func NewBudgetRepository(db *gorm.DB) BudgetRepository { return &budgetRepo{db: db} }

func (r *budgetRepo) DB() *gorm.DB { return r.db }

func (r *budgetRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Budget, error) {
	var b model.Budget
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("Items.Product").
		Preload("Seller").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&b).Error
	return &b, err
}

func (r *budgetRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Budget{}).
		Where("status = ? AND valid_until < ?", model.BudgetPending, now).
		Update("status", model.BudgetExpired)
	return res.RowsAffected, res.Error
}

func (r *budgetRepo) CreateTx(tx *gorm.DB, b *model.Budget) error {
	return tx.Create(b).Error
}

func (r *budgetRepo) FindByIDForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Budget, error) {
	var b model.Budget
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	err = tx.Where("budget_id = ?", b.ID).Order("line_number ASC").Find(&b.Items).Error
	return &b, err
}

func (r *budgetRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Budget{}).Where("id = ?", id).Update("status", status).Error
}

func (r *budgetRepo) LinkSale(ctx context.Context, id, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Budget{}).Where("id = ?", id).Update("sale_id", saleID).Error
}
