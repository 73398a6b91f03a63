// Package ledger holds the balance and stock primitives shared by every
// transaction kind, plus the rule table that turns a movement into a
// concrete effect on a shop and its storage.
//
// Nothing here touches the database. Callers apply an Effect to entities
// loaded inside a transaction and persist them together with the record.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TypeCost selects which of the two shop balances a movement hits.
type TypeCost string

const (
	CostCash     TypeCost = "cash"
	CostCashless TypeCost = "cashless"
)

// Balance is the pair of running monetary totals attached to a shop.
// Values are integer currency units and may go negative (deficit).
type Balance struct {
	Cash     int64 `gorm:"not null;default:0"`
	Cashless int64 `gorm:"not null;default:0"`
}

// Credit adds amount to the balance selected by cost.
func (b *Balance) Credit(cost TypeCost, amount int64) {
	switch cost {
	case CostCashless:
		b.Cashless += amount
	default:
		b.Cash += amount
	}
}

// Debit subtracts amount from the balance selected by cost.
func (b *Balance) Debit(cost TypeCost, amount int64) {
	b.Credit(cost, -amount)
}

// Stock is the set of six tracked quantities held by a storage.
type Stock struct {
	CoffeeArabika decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CoffeeBlend   decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Milk          decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Panini        decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	Sweets        decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	Packages      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
}

// field routes a product name to its stock attribute.
func (s *Stock) field(p Product) (*decimal.Decimal, error) {
	switch p {
	case CoffeeArabika:
		return &s.CoffeeArabika, nil
	case CoffeeBlend:
		return &s.CoffeeBlend, nil
	case Milk:
		return &s.Milk, nil
	case Panini:
		return &s.Panini, nil
	case Sweets:
		return &s.Sweets, nil
	case Packages:
		return &s.Packages, nil
	}
	return nil, fmt.Errorf("unknown product %q", p)
}

// Level returns the current quantity of p.
func (s *Stock) Level(p Product) (decimal.Decimal, error) {
	f, err := s.field(p)
	if err != nil {
		return decimal.Zero, err
	}
	return *f, nil
}

// Increase adds qty of p.
func (s *Stock) Increase(p Product, qty decimal.Decimal) error {
	f, err := s.field(p)
	if err != nil {
		return err
	}
	*f = f.Add(qty)
	return nil
}

// Decrease removes qty of p.
func (s *Stock) Decrease(p Product, qty decimal.Decimal) error {
	return s.Increase(p, qty.Neg())
}
