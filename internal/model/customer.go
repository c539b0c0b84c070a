package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	CPFCNPJ   *string   `gorm:"column:cpf_cnpj;type:varchar(18)"`
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
