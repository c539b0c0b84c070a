package repository

import (
	"context"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SellerRepository interface {
	Create(ctx context.Context, s *model.Seller) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Seller, error)
}

type sellerRepo struct{ db *gorm.DB }

func NewSellerRepository(db *gorm.DB) SellerRepository { return &sellerRepo{db: db} }

func (r *sellerRepo) Create(ctx context.Context, s *model.Seller) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sellerRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Seller, error) {
	var s model.Seller
	err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&s).Error
	return &s, err
}
