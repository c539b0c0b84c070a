package repository

import (
	"context"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByReference(ctx context.Context, companyID, referenceID uuid.UUID) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) ListByReference(ctx context.Context, companyID, referenceID uuid.UUID) ([]model.StockMovement, error) {
	var movs []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference_id = ?", companyID, referenceID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
