// Command seed creates or refreshes the demo admin and a demo shop.
// Usage: go run ./cmd/seed
package main

import (
	"errors"
	"os"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/config"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "poster2026")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		admin := model.Barista{
			Username: username, Name: "Admin Demo",
			PasswordHash: string(hash), Role: model.RoleAdmin, Active: true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "name", "role", "active"}),
		}).Create(&admin).Error; err != nil {
			return err
		}

		var shop model.Shop
		err := tx.Where("name = ?", "Demo Shop").First(&shop).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		shop = model.Shop{
			Name:    "Demo Shop",
			Address: "1 Roastery Lane",
			Balance: ledger.Balance{Cash: 1000},
			Storage: &model.Storage{Stock: ledger.Stock{
				CoffeeArabika: decimal.NewFromInt(5),
				CoffeeBlend:   decimal.NewFromInt(5),
				Milk:          decimal.NewFromInt(20),
				Panini:        decimal.NewFromInt(30),
				Sweets:        decimal.NewFromInt(30),
				Packages:      decimal.NewFromInt(200),
			}},
			Equipment: &model.Equipment{CoffeeMachine: "La Marzocco Linea", CoffeeGrinder: "Mazzer Major"},
		}
		return tx.Omit("Baristas").Create(&shop).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("username", username).Msg("admin and demo shop ready")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
