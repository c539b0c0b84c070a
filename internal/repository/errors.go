package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Constraint names created by infra.NewDatabase schema patches.
const (
	IdxOpenClosurePerScope = "idx_cash_closures_open_scope"
	IdxSaleBudget          = "idx_sales_budget_id"
	IdxFiscalNumber        = "idx_fiscal_documents_number"
)

const pgUniqueViolation = "23505"

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a postgres unique violation,
// optionally on a specific constraint (empty matches any).
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return constraint == "" && errors.Is(err, gorm.ErrDuplicatedKey)
}
