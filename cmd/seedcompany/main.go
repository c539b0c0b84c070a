// cmd/seedcompany/main.go creates a demo company, seller and catalog and
// prints a bearer token for it.
// Usage: go run ./cmd/seedcompany
package main

import (
	"fmt"
	"os"
	"time"

	"vendapos/internal/config"
	"vendapos/internal/infra"
	"vendapos/internal/middleware"
	"vendapos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoCNPJ = "11222333000181"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required to sign the demo token")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var company model.Company
	var seller model.Seller
	err = db.Transaction(func(tx *gorm.DB) error {
		trade := "Mercadinho Demo"
		address := "Rua das Flores, 100 - Centro"
		company = model.Company{Name: "Mercadinho Demo LTDA", TradeName: &trade, CNPJ: demoCNPJ, Address: &address}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cnpj"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "trade_name", "address", "updated_at"}),
		}).Create(&company).Error; err != nil {
			return err
		}
		if err := tx.Where("cnpj = ?", demoCNPJ).First(&company).Error; err != nil {
			return err
		}

		if err := tx.Where(model.Seller{CompanyID: company.ID, Name: "Vendedor Demo"}).
			Attrs(model.Seller{Active: true}).
			FirstOrCreate(&seller).Error; err != nil {
			return err
		}

		for _, p := range demoProducts(company.ID) {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, company.ID, seller.ID, seller.Name, 30*24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Printf("company_id=%s\nseller_id=%s\ntoken=%s\n", company.ID, seller.ID, token)
}

func demoProducts(companyID uuid.UUID) []model.Product {
	item := func(barcode, name, price string, stock int) model.Product {
		return model.Product{
			CompanyID:     companyID,
			Barcode:       &barcode,
			Name:          name,
			Price:         decimal.RequireFromString(price),
			StockQuantity: stock,
			Unit:          "UN",
			Active:        true,
		}
	}
	return []model.Product{
		item("7891000100103", "Café Torrado 500g", "18.90", 40),
		item("7891910000197", "Açúcar Refinado 1kg", "5.49", 60),
		item("7896005800027", "Arroz Tipo 1 5kg", "27.90", 25),
		item("7896036090244", "Feijão Carioca 1kg", "8.79", 30),
		item("7891149103102", "Refrigerante Cola 2L", "9.99", 48),
	}
}
