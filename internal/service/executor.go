package service

import (
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"gorm.io/gorm"
)

// applyEffect is the only code path that changes live balances and stock.
// It must run on the same transaction that persists the owning record.
func applyEffect(tx *gorm.DB, shops repository.ShopRepository, e ledger.Effect) error {
	if e.IsZero() {
		return nil
	}

	if e.Cash != 0 || e.Cashless != 0 {
		shop, err := shops.FindShopForUpdateTx(tx, e.ShopID)
		if err != nil {
			return notFoundOr(err, ErrValidation, "shop", e.ShopID)
		}
		shop.Credit(ledger.CostCash, e.Cash)
		shop.Credit(ledger.CostCashless, e.Cashless)
		if err := shops.SaveBalanceTx(tx, shop); err != nil {
			return persistence(err)
		}
	}

	for _, d := range e.Stock {
		if d.Qty.IsZero() {
			continue
		}
		st, err := shops.FindStorageForUpdateTx(tx, d.StorageID)
		if err != nil {
			return notFoundOr(err, ErrValidation, "storage", d.StorageID)
		}
		if err := st.Increase(d.Product, d.Qty); err != nil {
			return validationf("%v", err)
		}
		if err := shops.SaveStockTx(tx, st); err != nil {
			return persistence(err)
		}
	}
	return nil
}

// reverseEffect undoes the live effect of a committed movement. Backdated
// movements never had one.
func reverseEffect(tx *gorm.DB, shops repository.ShopRepository, kind ledger.Kind, m ledger.Movement, backdated bool) error {
	if backdated {
		return nil
	}
	e, err := ledger.Compute(kind, m)
	if err != nil {
		return validationf("%v", err)
	}
	return applyEffect(tx, shops, e.Reverse())
}

func forwardEffect(tx *gorm.DB, shops repository.ShopRepository, kind ledger.Kind, m ledger.Movement, backdated bool) error {
	if backdated {
		return nil
	}
	e, err := ledger.Compute(kind, m)
	if err != nil {
		return validationf("%v", err)
	}
	return applyEffect(tx, shops, e)
}
