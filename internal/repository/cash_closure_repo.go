package repository

import (
	"context"

	"vendapos/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentTotal is one row of the per-method aggregation of a closure's sales.
type PaymentTotal struct {
	Method string
	Total  decimal.Decimal
	Count  int64
}

type CashClosureRepository interface {
	Create(ctx context.Context, c *model.CashClosure) error
	// FindOpen returns the open closure for the scope. sellerID nil is the
	// shared register.
	FindOpen(ctx context.Context, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error)
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.CashClosure, error)
	List(ctx context.Context, filter ClosureFilter) ([]model.CashClosure, int64, error)
	// SumPaymentsByMethod aggregates tender lines of every sale linked to the closure.
	SumPaymentsByMethod(ctx context.Context, closureID uuid.UUID) ([]PaymentTotal, error)

	// Used inside transactions; callers pass the tx instance
	FindOpenForUpdateTx(tx *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error)
	// FindOpenForShareTx and FindByIDForShareTx hold a share lock until the
	// transaction ends, so a concurrent close waits for the caller to commit.
	FindOpenForShareTx(tx *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error)
	FindByIDForShareTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.CashClosure, error)
	UpdateTx(tx *gorm.DB, c *model.CashClosure) error
	CreateWithdrawalTx(tx *gorm.DB, w *model.CashWithdrawal) error
	ListWithdrawalsTx(tx *gorm.DB, closureID uuid.UUID) ([]model.CashWithdrawal, error)

	DB() *gorm.DB
}

type cashClosureRepo struct {
	db      *gorm.DB
	builder sq.StatementBuilderType
}

func NewCashClosureRepository(db *gorm.DB) CashClosureRepository {
	return &cashClosureRepo{db: db, builder: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

func (r *cashClosureRepo) DB() *gorm.DB { return r.db }

func (r *cashClosureRepo) Create(ctx context.Context, c *model.CashClosure) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cashClosureRepo) FindOpen(ctx context.Context, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	db := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Withdrawals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
	return r.findOpen(db, companyID, sellerID)
}

func (r *cashClosureRepo) FindOpenForUpdateTx(tx *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	return r.findOpen(tx.Clauses(clause.Locking{Strength: "UPDATE"}), companyID, sellerID)
}

func (r *cashClosureRepo) FindOpenForShareTx(tx *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	return r.findOpen(tx.Clauses(clause.Locking{Strength: "SHARE"}), companyID, sellerID)
}

func (r *cashClosureRepo) FindByIDForShareTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.CashClosure, error) {
	var c model.CashClosure
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&c).Error
	return &c, err
}

func (r *cashClosureRepo) findOpen(db *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	where, args, err := scopeWhere(companyID, sellerID)
	if err != nil {
		return nil, err
	}
	var c model.CashClosure
	err = db.Where(where, args...).First(&c).Error
	return &c, err
}

func (r *cashClosureRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.CashClosure, error) {
	var c model.CashClosure
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Withdrawals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&c).Error
	return &c, err
}

func (r *cashClosureRepo) List(ctx context.Context, filter ClosureFilter) ([]model.CashClosure, int64, error) {
	where, args, err := filter.where()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CashClosure{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := pageBounds(filter.Page, filter.Limit)
	var closures []model.CashClosure
	err = r.db.WithContext(ctx).
		Preload("Seller").
		Where(where, args...).
		Order("opening_date DESC").
		Offset(offset).Limit(limit).
		Find(&closures).Error
	return closures, total, err
}

func (r *cashClosureRepo) SumPaymentsByMethod(ctx context.Context, closureID uuid.UUID) ([]PaymentTotal, error) {
	query, args, err := r.builder.
		Select("pm.method AS method", "COALESCE(SUM(pm.amount), 0) AS total", "COUNT(*) AS count").
		From("sale_payment_methods pm").
		Join("sales s ON s.id = pm.sale_id").
		Where(sq.Eq{"s.cash_closure_id": closureID}).
		GroupBy("pm.method").
		OrderBy("pm.method").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []PaymentTotal
	err = r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *cashClosureRepo) UpdateTx(tx *gorm.DB, c *model.CashClosure) error {
	return tx.Save(c).Error
}

func (r *cashClosureRepo) CreateWithdrawalTx(tx *gorm.DB, w *model.CashWithdrawal) error {
	if err := tx.Create(w).Error; err != nil {
		return err
	}
	return tx.Model(&model.CashClosure{}).
		Where("id = ?", w.CashClosureID).
		Update("total_withdrawals", gorm.Expr("total_withdrawals + ?", w.Amount)).Error
}

func (r *cashClosureRepo) ListWithdrawalsTx(tx *gorm.DB, closureID uuid.UUID) ([]model.CashWithdrawal, error) {
	var ws []model.CashWithdrawal
	err := tx.Where("cash_closure_id = ?", closureID).Order("created_at ASC, id ASC").Find(&ws).Error
	return ws, err
}
