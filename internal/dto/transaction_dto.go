package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// TransactionRequest is the payload shared by every transaction kind.
// Fields a kind does not use are ignored; per-kind required fields are
// checked by the handler before the service sees the request.
type TransactionRequest struct {
	ShopID            uint            `json:"shop_id"             validate:"required"`
	DestinationShopID uint            `json:"destination_shop_id"`
	TypeCost          string          `json:"type_cost"           validate:"omitempty,oneof=cash cashless"`
	Money             int64           `json:"money"               validate:"gte=0"`
	Product           string          `json:"product"             validate:"omitempty,oneof=coffee_arabika coffee_blend milk panini sweets packages"`
	Amount            decimal.Decimal `json:"amount"              validate:"min=0"`
	Backdating        bool            `json:"backdating"`
	IsGlobal          bool            `json:"is_global"`
	CategoryIDs       []uint          `json:"category_ids"`
	Description       string          `json:"description"         validate:"max=255"`
}

// TransactionFilter narrows a listing to one shop and, optionally, one day.
type TransactionFilter struct {
	ShopID uint   `form:"shop_id" validate:"required"`
	Date   string `form:"date"` // YYYY-MM-DD in the configured time zone
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionResponse struct {
	ID                uint             `json:"id"`
	Kind              string           `json:"kind"`
	ShopID            uint             `json:"shop_id"`
	BaristaID         uint             `json:"barista_id"`
	StorageID         uint             `json:"storage_id,omitempty"`
	DestinationShopID uint             `json:"destination_shop_id,omitempty"`
	TypeCost          string           `json:"type_cost,omitempty"`
	Money             int64            `json:"money"`
	Product           string           `json:"product,omitempty"`
	Unit              string           `json:"unit,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Backdating        bool             `json:"backdating"`
	IsGlobal          bool             `json:"is_global,omitempty"`
	CategoryIDs       []uint           `json:"category_ids,omitempty"`
	Description       string           `json:"description,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
	LastEdit          *time.Time       `json:"last_edit"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
