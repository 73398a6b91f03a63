package model

import (
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/shopspring/decimal"
)

// Entry holds the fields shared by every transaction record.
// A backdated entry is stored for the record only and never moved live
// balances or stock.
type Entry struct {
	ID         uint      `gorm:"primaryKey"`
	ShopID     uint      `gorm:"index;not null"`
	BaristaID  uint      `gorm:"index;not null"`
	Timestamp  time.Time `gorm:"index;not null"`
	LastEdit   *time.Time
	Backdating bool `gorm:"not null;default:false"`
}

// Base exposes the shared fields to kind-independent code.
func (e *Entry) Base() *Entry { return e }

// Record is implemented by every transaction type.
type Record interface {
	Kind() ledger.Kind
	Base() *Entry
	// Movement describes the record's current field values in ledger terms.
	Movement() ledger.Movement
}

// Expense debits the shop balance. Global expenses belong to the business
// as a whole and are left out of the shop's daily reconciliation.
type Expense struct {
	Entry
	TypeCost    ledger.TypeCost `gorm:"type:varchar(10);not null"`
	Money       int64           `gorm:"not null"`
	IsGlobal    bool            `gorm:"not null;default:false"`
	Description string          `gorm:"size:255"`

	Categories []Category `gorm:"many2many:expense_categories"`
}

func (*Expense) Kind() ledger.Kind { return ledger.KindExpense }

func (e *Expense) Movement() ledger.Movement {
	return ledger.Movement{ShopID: e.ShopID, TypeCost: e.TypeCost, Money: e.Money}
}

// Supply is a paid delivery of product into storage.
type Supply struct {
	Entry
	StorageID uint            `gorm:"index;not null"`
	TypeCost  ledger.TypeCost `gorm:"type:varchar(10);not null"`
	Money     int64           `gorm:"not null"`
	Product   ledger.Product  `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Supplier  string          `gorm:"size:120"`
}

func (*Supply) Kind() ledger.Kind { return ledger.KindSupply }

func (s *Supply) Movement() ledger.Movement {
	return ledger.Movement{
		ShopID: s.ShopID, StorageID: s.StorageID, TypeCost: s.TypeCost,
		Money: s.Money, Product: s.Product, Amount: s.Amount,
	}
}

// WeighedSale is product sold by weight straight from storage.
type WeighedSale struct {
	Entry
	StorageID uint            `gorm:"index;not null"`
	TypeCost  ledger.TypeCost `gorm:"type:varchar(10);not null"`
	Money     int64           `gorm:"not null"`
	Product   ledger.Product  `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
}

func (WeighedSale) TableName() string { return "weighed_sales" }

func (*WeighedSale) Kind() ledger.Kind { return ledger.KindWeighedSale }

func (w *WeighedSale) Movement() ledger.Movement {
	return ledger.Movement{
		ShopID: w.ShopID, StorageID: w.StorageID, TypeCost: w.TypeCost,
		Money: w.Money, Product: w.Product, Amount: w.Amount,
	}
}

// WriteOff removes spoiled or lost product from storage.
type WriteOff struct {
	Entry
	StorageID uint            `gorm:"index;not null"`
	Product   ledger.Product  `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason    string          `gorm:"size:255"`
}

func (*WriteOff) Kind() ledger.Kind { return ledger.KindWriteOff }

func (w *WriteOff) Movement() ledger.Movement {
	return ledger.Movement{ShopID: w.ShopID, StorageID: w.StorageID, Product: w.Product, Amount: w.Amount}
}

// DepositFund is money put into the shop (change float, owner top-up).
type DepositFund struct {
	Entry
	TypeCost ledger.TypeCost `gorm:"type:varchar(10);not null"`
	Money    int64           `gorm:"not null"`
	Reason   string          `gorm:"size:255"`
}

func (*DepositFund) Kind() ledger.Kind { return ledger.KindDepositFund }

func (d *DepositFund) Movement() ledger.Movement {
	return ledger.Movement{ShopID: d.ShopID, TypeCost: d.TypeCost, Money: d.Money}
}

// CollectionFund is money taken out of the shop by the owner.
type CollectionFund struct {
	Entry
	TypeCost ledger.TypeCost `gorm:"type:varchar(10);not null"`
	Money    int64           `gorm:"not null"`
	Reason   string          `gorm:"size:255"`
}

func (*CollectionFund) Kind() ledger.Kind { return ledger.KindCollectionFund }

func (c *CollectionFund) Movement() ledger.Movement {
	return ledger.Movement{ShopID: c.ShopID, TypeCost: c.TypeCost, Money: c.Money}
}

// TransferProduct moves product from this shop's storage to another shop's.
type TransferProduct struct {
	Entry
	StorageID            uint            `gorm:"index;not null"`
	DestinationShopID    uint            `gorm:"index;not null"`
	DestinationStorageID uint            `gorm:"not null"`
	Product              ledger.Product  `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(12,3);not null"`
}

func (*TransferProduct) Kind() ledger.Kind { return ledger.KindTransferProduct }

func (t *TransferProduct) Movement() ledger.Movement {
	return ledger.Movement{
		ShopID: t.ShopID, StorageID: t.StorageID, CounterpartStorageID: t.DestinationStorageID,
		Product: t.Product, Amount: t.Amount,
	}
}

// NewRecord returns an empty record of kind k, or nil for an unknown kind.
func NewRecord(k ledger.Kind) Record {
	switch k {
	case ledger.KindExpense:
		return &Expense{}
	case ledger.KindSupply:
		return &Supply{}
	case ledger.KindWeighedSale:
		return &WeighedSale{}
	case ledger.KindWriteOff:
		return &WriteOff{}
	case ledger.KindDepositFund:
		return &DepositFund{}
	case ledger.KindCollectionFund:
		return &CollectionFund{}
	case ledger.KindTransferProduct:
		return &TransferProduct{}
	}
	return nil
}
