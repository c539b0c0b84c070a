package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant. Every business row carries its CompanyID and every
// lookup is scoped by it.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	TradeName *string
	CNPJ      string `gorm:"column:cnpj;type:varchar(18);uniqueIndex;not null"`
	StateReg  *string
	Address   *string
	City      *string
	State     *string `gorm:"type:varchar(2)"`
	Phone     *string
	Email     *string
	LogoURL   *string
	// IndividualCash scopes cash closures per seller instead of one shared register.
	IndividualCash bool `gorm:"not null;default:false"`
	// LastBudgetNumber is the monotonic counter behind Budget.BudgetNumber.
	LastBudgetNumber int `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName prefers the trade name when present.
func (c *Company) DisplayName() string {
	if c.TradeName != nil && *c.TradeName != "" {
		return *c.TradeName
	}
	return c.Name
}
