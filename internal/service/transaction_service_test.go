package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMoneyKinds(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))

	cases := []struct {
		kind     ledger.Kind
		cost     string
		money    int64
		cash     int64
		cashless int64
	}{
		{ledger.KindExpense, "cash", 200, 800, 0},
		{ledger.KindDepositFund, "cashless", 50, 800, 50},
		{ledger.KindCollectionFund, "cash", 300, 500, 50},
		{ledger.KindExpense, "cashless", 20, 500, 30},
	}
	for _, tc := range cases {
		_, err := f.tx.Create(ctx, tc.kind, dto.TransactionRequest{ShopID: shop, TypeCost: tc.cost, Money: tc.money}, actor)
		require.NoError(t, err, tc.kind)
		s := f.state(t, shop)
		assert.Equal(t, tc.cash, s.Cash, tc.kind)
		assert.Equal(t, tc.cashless, s.Cashless, tc.kind)
	}
}

func TestSupplyWeighedSaleAndWriteOffMoveStock(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("10"))

	_, err := f.tx.Create(ctx, ledger.KindSupply, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 400, Product: "coffee_arabika", Amount: dec("2.5"), Description: "Roaster Ltd",
	}, actor)
	require.NoError(t, err)

	sale, err := f.tx.Create(ctx, ledger.KindWeighedSale, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cashless", Money: 150, Product: "coffee_arabika", Amount: dec("0.5"),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "kg", sale.Unit)
	assert.Equal(t, actor, sale.BaristaID)

	_, err = f.tx.Create(ctx, ledger.KindWriteOff, dto.TransactionRequest{
		ShopID: shop, Product: "milk", Amount: dec("1"), Description: "spoiled",
	}, actor)
	require.NoError(t, err)

	s := f.state(t, shop)
	assert.Equal(t, int64(600), s.Cash)
	assert.Equal(t, int64(150), s.Cashless)
	assert.True(t, s.Storage.CoffeeArabika.Equal(dec("12")), s.Storage.CoffeeArabika.String())
	assert.True(t, s.Storage.Milk.Equal(dec("9")))
	assert.True(t, s.Storage.Panini.Equal(dec("10")))
}

func TestBackdatedTransactionNeverTouchesLiveState(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("10"))

	req := dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 300, Product: "milk", Amount: dec("4"), Backdating: true,
	}
	rec, err := f.tx.Create(ctx, ledger.KindSupply, req, actor)
	require.NoError(t, err)
	assert.True(t, rec.Backdating)

	req.Money, req.Amount = 500, dec("6")
	_, err = f.tx.Edit(ctx, ledger.KindSupply, rec.ID, req, actor)
	require.NoError(t, err)
	require.NoError(t, f.tx.Delete(ctx, ledger.KindSupply, rec.ID))

	s := f.state(t, shop)
	assert.Equal(t, int64(1000), s.Cash)
	assert.True(t, s.Storage.Milk.Equal(dec("10")))
}

func TestEditMatchesDeleteThenCreate(t *testing.T) {
	ctx := context.Background()
	first := dto.TransactionRequest{ShopID: 0, TypeCost: "cash", Money: 300, Product: "milk", Amount: dec("4")}
	second := dto.TransactionRequest{ShopID: 0, TypeCost: "cashless", Money: 120, Product: "coffee_blend", Amount: dec("1.5")}

	edited := newFixture(t, fixtureOpts{})
	a := edited.newShop(t, "A", 1000, stockOf("10"))
	first.ShopID, second.ShopID = a, a
	rec, err := edited.tx.Create(ctx, ledger.KindSupply, first, actor)
	require.NoError(t, err)
	edited.clock.Set(edited.clock.Now().Add(time.Hour))
	out, err := edited.tx.Edit(ctx, ledger.KindSupply, rec.ID, second, actor+1)
	require.NoError(t, err)
	assert.Equal(t, actor+1, out.BaristaID)
	require.NotNil(t, out.LastEdit)

	recreated := newFixture(t, fixtureOpts{})
	b := recreated.newShop(t, "A", 1000, stockOf("10"))
	first.ShopID, second.ShopID = b, b
	rec, err = recreated.tx.Create(ctx, ledger.KindSupply, first, actor)
	require.NoError(t, err)
	require.NoError(t, recreated.tx.Delete(ctx, ledger.KindSupply, rec.ID))
	_, err = recreated.tx.Create(ctx, ledger.KindSupply, second, actor)
	require.NoError(t, err)

	x, y := edited.state(t, a), recreated.state(t, b)
	assert.Equal(t, y.Balance, x.Balance)
	assert.True(t, x.Storage.Milk.Equal(y.Storage.Milk))
	assert.True(t, x.Storage.CoffeeBlend.Equal(y.Storage.CoffeeBlend))
	assert.Equal(t, int64(1000), x.Cash)
	assert.Equal(t, int64(-120), x.Cashless)
	assert.True(t, x.Storage.CoffeeBlend.Equal(dec("11.5")))
}

func TestTransferProductConservesStock(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	src := f.newShop(t, "Source", 0, stockOf("10"))
	dst := f.newShop(t, "Dest", 0, stockOf("1"))

	rec, err := f.tx.Create(ctx, ledger.KindTransferProduct, dto.TransactionRequest{
		ShopID: src, DestinationShopID: dst, Product: "panini", Amount: dec("4"),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, dst, rec.DestinationShopID)

	assert.True(t, f.state(t, src).Storage.Panini.Equal(dec("6")))
	assert.True(t, f.state(t, dst).Storage.Panini.Equal(dec("5")))

	require.NoError(t, f.tx.Delete(ctx, ledger.KindTransferProduct, rec.ID))
	assert.True(t, f.state(t, src).Storage.Panini.Equal(dec("10")))
	assert.True(t, f.state(t, dst).Storage.Panini.Equal(dec("1")))
}

func TestTransferToMissingOrSameShopIsRejected(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	src := f.newShop(t, "Source", 0, stockOf("10"))

	_, err := f.tx.Create(ctx, ledger.KindTransferProduct, dto.TransactionRequest{
		ShopID: src, DestinationShopID: 999, Product: "sweets", Amount: dec("3"),
	}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.tx.Create(ctx, ledger.KindTransferProduct, dto.TransactionRequest{
		ShopID: src, DestinationShopID: src, Product: "sweets", Amount: dec("3"),
	}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)

	assert.True(t, f.state(t, src).Storage.Sweets.Equal(dec("10")))
}

func TestFailedCreateRollsBack(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))

	_, err := f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 100, CategoryIDs: []uint{42},
	}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: 404, TypeCost: "cash", Money: 100}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: shop, Money: 100}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)

	assert.Equal(t, int64(1000), f.state(t, shop).Cash)
	list, err := f.tx.List(ctx, ledger.KindExpense, dto.TransactionFilter{ShopID: shop})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestExpenseCategoriesAndListing(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))

	rent, err := f.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Rent"})
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, dto.CreateCategoryRequest{Name: "rent"})
	assert.ErrorIs(t, err, service.ErrValidation)

	rec, err := f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 100, CategoryIDs: []uint{rent.ID, rent.ID}, Description: "March",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, []uint{rent.ID}, rec.CategoryIDs)

	f.clock.Set(f.clock.Now().AddDate(0, 0, 1))
	_, err = f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 5}, actor)
	require.NoError(t, err)

	all, err := f.tx.List(ctx, ledger.KindExpense, dto.TransactionFilter{ShopID: shop})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, int64(5), all.Data[0].Money, "newest first")

	day, err := f.tx.List(ctx, ledger.KindExpense, dto.TransactionFilter{ShopID: shop, Date: "2026-03-10"})
	require.NoError(t, err)
	require.Len(t, day.Data, 1)
	assert.Equal(t, rec.ID, day.Data[0].ID)

	_, err = f.tx.List(ctx, ledger.KindExpense, dto.TransactionFilter{ShopID: shop, Date: "10/03/2026"})
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, f.tx.Delete(ctx, ledger.KindExpense, rec.ID))
	assert.Equal(t, int64(995), f.state(t, shop).Cash)
}

func TestEditAndDeleteUnknownRecord(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("0"))

	_, err := f.tx.Edit(ctx, ledger.KindDepositFund, 77, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 1}, actor)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.tx.Delete(ctx, ledger.KindDepositFund, 77), service.ErrNotFound)
	_, err = f.tx.Create(ctx, "refund", dto.TransactionRequest{ShopID: shop}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, uint) (func(), error) { return nil, infra.ErrLockNotObtained }

type brokenLocker struct{}

func (brokenLocker) Lock(context.Context, uint) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func TestEditUnderHeldLockIsConcurrencyError(t *testing.T) {
	f := newFixture(t, fixtureOpts{locker: busyLocker{}})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("0"))

	rec, err := f.tx.Create(ctx, ledger.KindDepositFund, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 10}, actor)
	require.NoError(t, err)

	_, err = f.tx.Edit(ctx, ledger.KindDepositFund, rec.ID, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 99}, actor)
	assert.ErrorIs(t, err, service.ErrConcurrency)
	assert.Equal(t, int64(10), f.state(t, shop).Cash)

	g := newFixture(t, fixtureOpts{locker: brokenLocker{}})
	shop = g.newShop(t, "Central", 0, stockOf("0"))
	rec, err = g.tx.Create(ctx, ledger.KindDepositFund, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 10}, actor)
	require.NoError(t, err)
	_, err = g.tx.Edit(ctx, ledger.KindDepositFund, rec.ID, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 99}, actor)
	assert.ErrorIs(t, err, service.ErrPersistence)
}

func TestInsertFailureRollsBackAppliedEffect(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("10"))

	// The effect is applied before the row insert; make the insert fail.
	require.NoError(t, f.db.Exec(
		`CREATE TRIGGER reject_supply BEFORE INSERT ON supplies BEGIN SELECT RAISE(ABORT, 'disk full'); END`,
	).Error)

	_, err := f.tx.Create(ctx, ledger.KindSupply, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 250, Product: "milk", Amount: dec("3"),
	}, actor)
	require.ErrorIs(t, err, service.ErrPersistence)

	s := f.state(t, shop)
	assert.Equal(t, int64(1000), s.Cash)
	assert.True(t, s.Storage.Milk.Equal(dec("10")))
}

// recordingLocker remembers lock order and refuses the shops in busy.
type recordingLocker struct {
	locked []uint
	busy   map[uint]bool
}

func (l *recordingLocker) Lock(_ context.Context, shopID uint) (func(), error) {
	if l.busy[shopID] {
		return nil, infra.ErrLockNotObtained
	}
	l.locked = append(l.locked, shopID)
	return func() {}, nil
}

func TestEditLocksStoredAndTargetShop(t *testing.T) {
	locker := &recordingLocker{}
	f := newFixture(t, fixtureOpts{locker: locker})
	ctx := context.Background()
	north := f.newShop(t, "North", 0, stockOf("0"))
	south := f.newShop(t, "South", 0, stockOf("0"))

	rec, err := f.tx.Create(ctx, ledger.KindDepositFund, dto.TransactionRequest{ShopID: south, TypeCost: "cash", Money: 10}, actor)
	require.NoError(t, err)

	_, err = f.tx.Edit(ctx, ledger.KindDepositFund, rec.ID, dto.TransactionRequest{ShopID: south, TypeCost: "cash", Money: 20}, actor)
	require.NoError(t, err)
	assert.Equal(t, []uint{south}, locker.locked)

	locker.locked = nil
	_, err = f.tx.Edit(ctx, ledger.KindDepositFund, rec.ID, dto.TransactionRequest{ShopID: north, TypeCost: "cash", Money: 20}, actor)
	require.NoError(t, err)
	assert.Equal(t, []uint{north, south}, locker.locked, "both shops, ascending")
	assert.Equal(t, int64(0), f.state(t, south).Cash)
	assert.Equal(t, int64(20), f.state(t, north).Cash)

	// moving back while the record's current shop is busy must not proceed
	locker.locked = nil
	locker.busy = map[uint]bool{north: true}
	_, err = f.tx.Edit(ctx, ledger.KindDepositFund, rec.ID, dto.TransactionRequest{ShopID: south, TypeCost: "cash", Money: 20}, actor)
	assert.ErrorIs(t, err, service.ErrConcurrency)
	assert.Equal(t, int64(20), f.state(t, north).Cash)
	assert.Empty(t, locker.locked)
}
