package model

import (
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
)

// Shop is a point of sale with its running cash and cashless balances.
// Storage and Equipment are created with the shop and removed with it.
type Shop struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"uniqueIndex;not null"`
	Address string `gorm:"uniqueIndex;not null"`
	ledger.Balance
	CreatedAt time.Time
	UpdatedAt time.Time

	Storage   *Storage   `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Equipment *Equipment `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Baristas  []Barista  `gorm:"many2many:shop_baristas"`
}

// Storage holds the six tracked stock quantities of one shop.
type Storage struct {
	ID     uint `gorm:"primaryKey"`
	ShopID uint `gorm:"uniqueIndex;not null"`
	ledger.Stock
	UpdatedAt time.Time
}

// Equipment records the machines installed in a shop.
type Equipment struct {
	ID            uint   `gorm:"primaryKey"`
	ShopID        uint   `gorm:"uniqueIndex;not null"`
	CoffeeMachine string `gorm:"size:120"`
	CoffeeGrinder string `gorm:"size:120"`
	Blender       string `gorm:"size:120"`
	Refrigerator  string `gorm:"size:120"`
	UpdatedAt     time.Time
}

// TableName keeps "equipment" uncountable.
func (Equipment) TableName() string { return "equipment" }
