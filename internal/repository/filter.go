package repository

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// SaleFilter narrows ListSales. Zero values mean "no restriction".
type SaleFilter struct {
	CompanyID     uuid.UUID
	SellerID      *uuid.UUID
	CashClosureID *uuid.UUID
	From          *time.Time
	To            *time.Time
	ClientName    string
	Page          int
	Limit         int
}

type ClosureFilter struct {
	CompanyID uuid.UUID
	SellerID  *uuid.UUID
	IsClosed  *bool
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// where renders the filter as a gorm-compatible WHERE fragment ("?" placeholders).
func (f SaleFilter) where() (string, []any, error) {
	conds := sq.And{sq.Eq{"company_id": f.CompanyID}}
	if f.SellerID != nil {
		conds = append(conds, sq.Eq{"seller_id": *f.SellerID})
	}
	if f.CashClosureID != nil {
		conds = append(conds, sq.Eq{"cash_closure_id": *f.CashClosureID})
	}
	if f.From != nil {
		conds = append(conds, sq.GtOrEq{"sale_date": *f.From})
	}
	if f.To != nil {
		conds = append(conds, sq.Lt{"sale_date": *f.To})
	}
	if f.ClientName != "" {
		conds = append(conds, sq.ILike{"client_name": "%" + f.ClientName + "%"})
	}
	return conds.ToSql()
}

func (f ClosureFilter) where() (string, []any, error) {
	conds := sq.And{sq.Eq{"company_id": f.CompanyID}}
	if f.SellerID != nil {
		conds = append(conds, sq.Eq{"seller_id": *f.SellerID})
	}
	if f.IsClosed != nil {
		conds = append(conds, sq.Eq{"is_closed": *f.IsClosed})
	}
	if f.From != nil {
		conds = append(conds, sq.GtOrEq{"opening_date": *f.From})
	}
	if f.To != nil {
		conds = append(conds, sq.Lt{"opening_date": *f.To})
	}
	return conds.ToSql()
}

// scopeWhere matches the register scope: a seller's own register or the
// shared one (seller_id IS NULL).
func scopeWhere(companyID uuid.UUID, sellerID *uuid.UUID) (string, []any, error) {
	var seller any
	if sellerID != nil {
		seller = *sellerID
	}
	return sq.And{
		sq.Eq{"company_id": companyID},
		sq.Eq{"seller_id": seller},
		sq.Eq{"is_closed": false},
	}.ToSql()
}

func pageBounds(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
