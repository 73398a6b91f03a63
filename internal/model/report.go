package model

import (
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
)

// Report is the end-of-day reconciliation of one shop.
//
//	CashBalance    = ActualBalance - expected cash (variance, negative = shortage)
//	RemainderOfDay = CashBalance + Cashless
//	Cashbox        = RemainderOfDay + DayCashExpenses
//
// Remaining is the declared closing stock and Consumption the derived
// usage of each tracked product.
type Report struct {
	ID             uint      `gorm:"primaryKey"`
	ShopID         uint      `gorm:"index;not null"`
	BaristaID      uint      `gorm:"index;not null"`
	Timestamp      time.Time `gorm:"index;not null"`
	LastEdit       *time.Time
	Cashbox        int64 `gorm:"not null"`
	RemainderOfDay int64 `gorm:"not null"`
	CashBalance    int64 `gorm:"not null"`
	Cashless       int64 `gorm:"not null"`
	ActualBalance  int64 `gorm:"not null"`
	// Day aggregates captured at submission so the report can be reversed.
	DayCashExpenses int64 `gorm:"not null;default:0"`
	DayWeighedCash  int64 `gorm:"not null;default:0"`

	Remaining   ledger.Stock `gorm:"embedded;embeddedPrefix:remaining_"`
	Consumption ledger.Stock `gorm:"embedded;embeddedPrefix:consumption_"`

	Expenses []Expense `gorm:"many2many:report_expenses"`
}
