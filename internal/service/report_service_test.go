package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// dayOne sets up the worked example: cash 1050, a 200 cash expense and a
// 150 cash weighed sale of 2 kg arabika.
func dayOne(t *testing.T, f *fixture) uint {
	t.Helper()
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1050, stockOf("10"))

	_, err := f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 200}, actor)
	require.NoError(t, err)
	_, err = f.tx.Create(ctx, ledger.KindWeighedSale, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cash", Money: 150, Product: "coffee_arabika", Amount: dec("2"),
	}, actor)
	require.NoError(t, err)
	return shop
}

func closing(arabika string) dto.StockLevels {
	c := stockOf("10")
	c.CoffeeArabika = dec(arabika)
	return c
}

func TestSubmitReportReconciles(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	shop := dayOne(t, f)
	require.Equal(t, int64(1000), f.state(t, shop).Cash)

	rep, err := f.reports.Submit(context.Background(), dto.ReportRequest{
		ShopID: shop, Cashless: 300, ActualBalance: 1050, Closing: closing("7"),
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, int64(0), rep.CashBalance)
	assert.Equal(t, int64(300), rep.RemainderOfDay)
	assert.Equal(t, int64(500), rep.Cashbox)
	assert.Equal(t, int64(200), rep.DayCashExpenses)
	assert.Equal(t, int64(150), rep.DayWeighedCash)
	assert.Len(t, rep.ExpenseIDs, 1)
	assert.Equal(t, actor, rep.BaristaID)

	// consumption = storage before (8) - closing (7) + weighed (2)
	assert.True(t, rep.Consumption.CoffeeArabika.Equal(dec("3")), rep.Consumption.CoffeeArabika.String())
	assert.True(t, rep.Consumption.Milk.IsZero())
	assert.True(t, rep.Remaining.CoffeeArabika.Equal(dec("7")))

	s := f.state(t, shop)
	assert.Equal(t, int64(1050), s.Cash)
	assert.Equal(t, int64(300), s.Cashless)
	assert.True(t, s.Storage.CoffeeArabika.Equal(dec("5")), s.Storage.CoffeeArabika.String())
	assert.True(t, s.Storage.Milk.Equal(dec("10")))

	assert.Empty(t, f.alerts.sent, "no alert without a threshold")
}

func TestReportConsumptionCountsWeighedQuantity(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("11"))

	_, err := f.tx.Create(ctx, ledger.KindWeighedSale, dto.TransactionRequest{
		ShopID: shop, TypeCost: "cashless", Money: 40, Product: "milk", Amount: dec("1"),
	}, actor)
	require.NoError(t, err)

	c := stockOf("11")
	c.Milk = dec("6")
	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, ActualBalance: 0, Closing: c}, actor)
	require.NoError(t, err)

	assert.True(t, rep.Consumption.Milk.Equal(dec("5")))
	assert.Zero(t, rep.DayWeighedCash, "cashless sale adds no cash")
	assert.True(t, f.state(t, shop).Storage.Milk.Equal(dec("5")))
}

func TestSecondReportSameDayIsRejected(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := dayOne(t, f)
	req := dto.ReportRequest{ShopID: shop, Cashless: 300, ActualBalance: 1050, Closing: closing("7")}

	_, err := f.reports.Submit(ctx, req, actor)
	require.NoError(t, err)
	before := f.state(t, shop)

	f.clock.Set(f.clock.Now().Add(11 * time.Hour)) // 23:00, same day
	_, err = f.reports.Submit(ctx, req, actor)
	require.ErrorIs(t, err, service.ErrReportAlreadySubmitted)

	after := f.state(t, shop)
	assert.Equal(t, before.Balance, after.Balance)
	assert.True(t, before.Storage.CoffeeArabika.Equal(after.Storage.CoffeeArabika))

	f.clock.Set(f.clock.Now().Add(2 * time.Hour)) // next day
	_, err = f.reports.Submit(ctx, req, actor)
	assert.NoError(t, err)
}

func TestReportsPerDayIsConfigurable(t *testing.T) {
	f := newFixture(t, fixtureOpts{perDay: 2})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("0"))
	req := dto.ReportRequest{ShopID: shop, Closing: stockOf("0")}

	for i := 0; i < 2; i++ {
		_, err := f.reports.Submit(ctx, req, actor)
		require.NoError(t, err)
	}
	_, err := f.reports.Submit(ctx, req, actor)
	assert.ErrorIs(t, err, service.ErrReportAlreadySubmitted)
}

func TestLaterReportSameDayRecountsDayExpenses(t *testing.T) {
	f := newFixture(t, fixtureOpts{perDay: 2})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))
	exp, err := f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 100}, actor)
	require.NoError(t, err)

	req := dto.ReportRequest{ShopID: shop, ActualBalance: 900, Closing: stockOf("0")}
	first, err := f.reports.Submit(ctx, req, actor)
	require.NoError(t, err)
	second, err := f.reports.Submit(ctx, req, actor)
	require.NoError(t, err)

	// The day window always starts at local midnight, so both reports see
	// and attach the same expense.
	for _, rep := range []*dto.ReportResponse{first, second} {
		assert.Equal(t, int64(100), rep.DayCashExpenses)
		assert.Equal(t, []uint{exp.ID}, rep.ExpenseIDs)
		assert.Equal(t, int64(-100), rep.CashBalance)
	}
	assert.Equal(t, int64(900), f.state(t, shop).Cash)
}

func TestReportDayFollowsConfiguredZone(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*3600)
	f := newFixture(t, fixtureOpts{loc: plus3})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))

	// 20:30 UTC is 23:30 local on March 10.
	f.clock.Set(time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC))
	_, err := f.tx.Create(ctx, ledger.KindExpense, dto.TransactionRequest{ShopID: shop, TypeCost: "cash", Money: 100}, actor)
	require.NoError(t, err)

	// 22:30 UTC is already March 11 locally, so yesterday's expense is out.
	f.clock.Set(time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC))
	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, ActualBalance: 900, Closing: stockOf("0")}, actor)
	require.NoError(t, err)
	assert.Zero(t, rep.DayCashExpenses)
	assert.Empty(t, rep.ExpenseIDs)
	assert.Zero(t, rep.CashBalance)
}

func TestReportSkipsGlobalBackdatedAndCashlessExpenses(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 1000, stockOf("0"))

	for _, req := range []dto.TransactionRequest{
		{ShopID: shop, TypeCost: "cash", Money: 10},
		{ShopID: shop, TypeCost: "cash", Money: 20, IsGlobal: true},
		{ShopID: shop, TypeCost: "cash", Money: 40, Backdating: true},
		{ShopID: shop, TypeCost: "cashless", Money: 80},
	} {
		_, err := f.tx.Create(ctx, ledger.KindExpense, req, actor)
		require.NoError(t, err)
	}

	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, ActualBalance: 970, Closing: stockOf("0")}, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rep.DayCashExpenses)
	assert.Len(t, rep.ExpenseIDs, 1)
	// live cash 970 (1000-10-20), expected 980
	assert.Equal(t, int64(-10), rep.CashBalance)
}

func TestEditReportShiftsByDeclaredDelta(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := dayOne(t, f)

	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, Cashless: 300, ActualBalance: 1050, Closing: closing("7")}, actor)
	require.NoError(t, err)

	f.clock.Set(f.clock.Now().Add(time.Hour))
	out, err := f.reports.Edit(ctx, rep.ID, dto.ReportEditRequest{Cashless: 250, ActualBalance: 1150, Closing: closing("6")}, actor+1)
	require.NoError(t, err)

	assert.Equal(t, int64(100), out.CashBalance)
	assert.Equal(t, int64(350), out.RemainderOfDay)
	assert.Equal(t, int64(550), out.Cashbox)
	assert.True(t, out.Consumption.CoffeeArabika.Equal(dec("4")))
	assert.Equal(t, actor+1, out.BaristaID)
	require.NotNil(t, out.LastEdit)

	s := f.state(t, shop)
	assert.Equal(t, int64(1150), s.Cash)
	assert.Equal(t, int64(250), s.Cashless)
	assert.True(t, s.Storage.CoffeeArabika.Equal(dec("4")))
}

func TestDeleteReportRestoresShop(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := dayOne(t, f)
	before := f.state(t, shop)

	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, Cashless: 300, ActualBalance: 1020, Closing: closing("7")}, actor)
	require.NoError(t, err)
	require.NoError(t, f.reports.Delete(ctx, rep.ID))

	after := f.state(t, shop)
	assert.Equal(t, before.Balance, after.Balance)
	assert.True(t, before.Storage.CoffeeArabika.Equal(after.Storage.CoffeeArabika))

	_, err = f.reports.Get(ctx, rep.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// The day is free again and the expense can be attached to a new report.
	again, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, Cashless: 300, ActualBalance: 1050, Closing: closing("7")}, actor)
	require.NoError(t, err)
	assert.Len(t, again.ExpenseIDs, 1)
}

func TestSubmitReportErrors(t *testing.T) {
	f := newFixture(t, fixtureOpts{locker: busyLocker{}})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("0"))

	_, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, Closing: stockOf("0")}, actor)
	assert.ErrorIs(t, err, service.ErrConcurrency)

	g := newFixture(t, fixtureOpts{})
	_, err = g.reports.Submit(ctx, dto.ReportRequest{ShopID: 12, Closing: stockOf("0")}, actor)
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = g.reports.Edit(ctx, 12, dto.ReportEditRequest{}, actor)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, g.reports.Delete(ctx, 12), service.ErrNotFound)
}

func TestShortageAlertQueuedAfterCommit(t *testing.T) {
	f := newFixture(t, fixtureOpts{threshold: 100})
	ctx := context.Background()
	shop := dayOne(t, f)

	rep, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, ActualBalance: 900, Closing: closing("7")}, actor)
	require.NoError(t, err)
	require.Equal(t, int64(-150), rep.CashBalance)

	require.Len(t, f.alerts.sent, 1)
	assert.Equal(t, rep.ID, f.alerts.sent[0].ReportID)
	assert.Equal(t, "owner@example.com", f.alerts.sent[0].ToEmail)
}

func TestReportListingAndExports(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := dayOne(t, f)

	_, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, Cashless: 300, ActualBalance: 1050, Closing: closing("7")}, actor)
	require.NoError(t, err)
	f.clock.Set(f.clock.Now().AddDate(0, 0, 1))
	second, err := f.reports.Submit(ctx, dto.ReportRequest{ShopID: shop, ActualBalance: 1050, Closing: closing("7")}, actor)
	require.NoError(t, err)

	all, err := f.reports.List(ctx, dto.ReportFilter{ShopID: shop})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	one, err := f.reports.List(ctx, dto.ReportFilter{ShopID: shop, From: "2026-03-11", To: "2026-03-11"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, second.ID, one[0].ID)

	_, err = f.reports.List(ctx, dto.ReportFilter{ShopID: shop, From: "yesterday"})
	assert.ErrorIs(t, err, service.ErrValidation)

	var xlsx bytes.Buffer
	require.NoError(t, f.reports.ExportExcel(ctx, dto.ReportFilter{ShopID: shop}, &xlsx))
	book, err := excelize.OpenReader(&xlsx)
	require.NoError(t, err)
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two reports")

	var pdf bytes.Buffer
	require.NoError(t, f.reports.ExportPDF(ctx, second.ID, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))
}
