package repository

import (
	"context"
	"time"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrinterRepository interface {
	Create(ctx context.Context, p *model.Printer) error
	List(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error)
	// ListConnected returns is_connected printers, newest first.
	ListConnected(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error)
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Printer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, connected bool, checkedAt time.Time) error
	// ClearDefaultTx unsets is_default on every printer of the company.
	ClearDefaultTx(tx *gorm.DB, companyID uuid.UUID) error
	CreateTx(tx *gorm.DB, p *model.Printer) error
	// SetDefaultTx marks one printer as default; false when it is not the company's.
	SetDefaultTx(tx *gorm.DB, companyID, id uuid.UUID) (bool, error)
	DB() *gorm.DB
}

type printerRepo struct{ db *gorm.DB }

func NewPrinterRepository(db *gorm.DB) PrinterRepository { return &printerRepo{db: db} }

func (r *printerRepo) DB() *gorm.DB { return r.db }

func (r *printerRepo) Create(ctx context.Context, p *model.Printer) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *printerRepo) CreateTx(tx *gorm.DB, p *model.Printer) error {
	return tx.Create(p).Error
}

func (r *printerRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error) {
	var ps []model.Printer
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name ASC").Find(&ps).Error
	return ps, err
}

func (r *printerRepo) ListConnected(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error) {
	var ps []model.Printer
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_connected = true", companyID).
		Order("created_at DESC").
		Find(&ps).Error
	return ps, err
}

func (r *printerRepo) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*model.Printer, error) {
	var p model.Printer
	err := r.db.WithContext(ctx).Where("company_id = ? AND name = ?", companyID, name).First(&p).Error
	return &p, err
}

func (r *printerRepo) UpdateStatus(ctx context.Context, id uuid.UUID, connected bool, checkedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Printer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_connected":      connected,
		"last_status_check": checkedAt,
	}).Error
}

func (r *printerRepo) ClearDefaultTx(tx *gorm.DB, companyID uuid.UUID) error {
	return tx.Model(&model.Printer{}).Where("company_id = ? AND is_default = true", companyID).
		Update("is_default", false).Error
}

func (r *printerRepo) SetDefaultTx(tx *gorm.DB, companyID, id uuid.UUID) (bool, error) {
	res := tx.Model(&model.Printer{}).Where("id = ? AND company_id = ?", id, companyID).Update("is_default", true)
	return res.RowsAffected > 0, res.Error
}
