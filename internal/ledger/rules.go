package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies a transaction type.
type Kind string

const (
	KindExpense         Kind = "expense"
	KindSupply          Kind = "supply"
	KindWeighedSale     Kind = "by_weight"
	KindWriteOff        Kind = "write_off"
	KindDepositFund     Kind = "deposit_fund"
	KindCollectionFund  Kind = "collection_fund"
	KindTransferProduct Kind = "transfer_product"
)

// Kinds lists every transaction kind.
var Kinds = []Kind{
	KindExpense, KindSupply, KindWeighedSale, KindWriteOff,
	KindDepositFund, KindCollectionFund, KindTransferProduct,
}

// ParseKind resolves a kind name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown transaction kind %q", name)
}

// Direction is the sign a rule applies to an amount.
type Direction int

const (
	None  Direction = 0
	Plus  Direction = 1
	Minus Direction = -1
)

// Rule describes what a transaction kind does to the live state.
// Stock applies to the referenced storage; when Counterpart is set the
// opposite direction is applied to the counterpart storage.
type Rule struct {
	Money           Direction
	Stock           Direction
	RequiresStorage bool
	Counterpart     bool
}

var rules = map[Kind]Rule{
	KindExpense:         {Money: Minus},
	KindSupply:          {Money: Minus, Stock: Plus, RequiresStorage: true},
	KindWeighedSale:     {Money: Plus, Stock: Minus, RequiresStorage: true},
	KindWriteOff:        {Stock: Minus, RequiresStorage: true},
	KindDepositFund:     {Money: Plus},
	KindCollectionFund:  {Money: Minus},
	KindTransferProduct: {Stock: Minus, RequiresStorage: true, Counterpart: true},
}

// RuleFor returns the rule of k.
func RuleFor(k Kind) (Rule, bool) {
	r, ok := rules[k]
	return r, ok
}

// Movement is the kind-independent view of a transaction record.
type Movement struct {
	ShopID               uint
	StorageID            uint
	CounterpartStorageID uint
	TypeCost             TypeCost
	Money                int64
	Product              Product
	Amount               decimal.Decimal
}

// StockDelta is a signed quantity change on one storage attribute.
type StockDelta struct {
	StorageID uint
	Product   Product
	Qty       decimal.Decimal
}

// Effect is the full signed change one record makes to live state.
type Effect struct {
	ShopID   uint
	Cash     int64
	Cashless int64
	Stock    []StockDelta
}

// Reverse returns the effect that undoes e.
func (e Effect) Reverse() Effect {
	out := Effect{ShopID: e.ShopID, Cash: -e.Cash, Cashless: -e.Cashless}
	for _, d := range e.Stock {
		out.Stock = append(out.Stock, StockDelta{StorageID: d.StorageID, Product: d.Product, Qty: d.Qty.Neg()})
	}
	return out
}

// IsZero reports whether e changes nothing.
func (e Effect) IsZero() bool {
	if e.Cash != 0 || e.Cashless != 0 {
		return false
	}
	for _, d := range e.Stock {
		if !d.Qty.IsZero() {
			return false
		}
	}
	return true
}

// Compute builds the effect of a movement of kind k.
func Compute(k Kind, m Movement) (Effect, error) {
	rule, ok := RuleFor(k)
	if !ok {
		return Effect{}, fmt.Errorf("unknown transaction kind %q", k)
	}
	e := Effect{ShopID: m.ShopID}

	if rule.Money != None {
		delta := int64(rule.Money) * m.Money
		if m.TypeCost == CostCashless {
			e.Cashless = delta
		} else {
			e.Cash = delta
		}
	}

	if rule.Stock != None {
		if rule.RequiresStorage && m.StorageID == 0 {
			return Effect{}, fmt.Errorf("%s requires a storage", k)
		}
		if _, err := ParseProduct(string(m.Product)); err != nil {
			return Effect{}, err
		}
		qty := m.Amount.Mul(decimal.NewFromInt(int64(rule.Stock)))
		e.Stock = append(e.Stock, StockDelta{StorageID: m.StorageID, Product: m.Product, Qty: qty})
		if rule.Counterpart {
			if m.CounterpartStorageID == 0 {
				return Effect{}, fmt.Errorf("%s requires a destination storage", k)
			}
			e.Stock = append(e.Stock, StockDelta{StorageID: m.CounterpartStorageID, Product: m.Product, Qty: qty.Neg()})
		}
	}
	return e, nil
}
