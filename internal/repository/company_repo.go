package repository

import (
	"context"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	// NextBudgetNumberTx bumps the per-company counter; the UPDATE row lock
	// serializes concurrent budget creation.
	NextBudgetNumberTx(tx *gorm.DB, id uuid.UUID) (int, error)
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *companyRepo) NextBudgetNumberTx(tx *gorm.DB, id uuid.UUID) (int, error) {
	var next int
	res := tx.Raw(
		"UPDATE companies SET last_budget_number = last_budget_number + 1 WHERE id = ? RETURNING last_budget_number",
		id,
	).Scan(&next)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return next, nil
}
