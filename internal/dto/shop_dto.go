package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// StockLevels is the six-product quantity set used for initial stock,
// closing counts and consumption.
type StockLevels struct {
	CoffeeArabika decimal.Decimal `json:"coffee_arabika" validate:"min=0"`
	CoffeeBlend   decimal.Decimal `json:"coffee_blend"   validate:"min=0"`
	Milk          decimal.Decimal `json:"milk"           validate:"min=0"`
	Panini        decimal.Decimal `json:"panini"         validate:"min=0"`
	Sweets        decimal.Decimal `json:"sweets"         validate:"min=0"`
	Packages      decimal.Decimal `json:"packages"       validate:"min=0"`
}

type EquipmentRequest struct {
	CoffeeMachine string `json:"coffee_machine" validate:"max=120"`
	CoffeeGrinder string `json:"coffee_grinder" validate:"max=120"`
	Blender       string `json:"blender"        validate:"max=120"`
	Refrigerator  string `json:"refrigerator"   validate:"max=120"`
}

type CreateShopRequest struct {
	Name         string           `json:"name"    validate:"required,min=2,max=120"`
	Address      string           `json:"address" validate:"required,min=2,max=255"`
	Cash         int64            `json:"cash"`
	Cashless     int64            `json:"cashless"`
	InitialStock StockLevels      `json:"initial_stock"`
	Equipment    EquipmentRequest `json:"equipment"`
}

type AssignBaristaRequest struct {
	BaristaID uint `json:"barista_id" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShopResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Address   string           `json:"address"`
	Cash      int64            `json:"cash"`
	Cashless  int64            `json:"cashless"`
	StorageID uint             `json:"storage_id"`
	Stock     StockLevels      `json:"stock"`
	Equipment EquipmentRequest `json:"equipment"`
	Baristas  []uint           `json:"baristas"`
}
