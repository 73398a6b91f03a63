package ledger

import "fmt"

// Product names one of the six stock attributes of a storage.
type Product string

const (
	CoffeeArabika Product = "coffee_arabika"
	CoffeeBlend   Product = "coffee_blend"
	Milk          Product = "milk"
	Panini        Product = "panini"
	Sweets        Product = "sweets"
	Packages      Product = "packages"
)

// Products lists the tracked products in display order.
var Products = []Product{CoffeeArabika, CoffeeBlend, Milk, Panini, Sweets, Packages}

// Unit is the display family of a product. It never enters arithmetic.
type Unit string

const (
	UnitWeight Unit = "kg"
	UnitVolume Unit = "l"
	UnitPiece  Unit = "pcs"
)

// Unit returns the display unit of p.
func (p Product) Unit() Unit {
	switch p {
	case CoffeeArabika, CoffeeBlend:
		return UnitWeight
	case Milk:
		return UnitVolume
	default:
		return UnitPiece
	}
}

// Counted reports whether p is counted in whole pieces.
func (p Product) Counted() bool { return p.Unit() == UnitPiece }

// ParseProduct resolves a product name.
func ParseProduct(name string) (Product, error) {
	for _, p := range Products {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown product %q", name)
}
