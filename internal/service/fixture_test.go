package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const actor uint = 7

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type fakeAlerts struct{ sent []worker.ShortageAlertPayload }

func (f *fakeAlerts) EnqueueShortageAlert(_ context.Context, p worker.ShortageAlertPayload) error {
	f.sent = append(f.sent, p)
	return nil
}

type fixture struct {
	db         *gorm.DB
	clock      *fakeClock
	alerts     *fakeAlerts
	shopRepo   repository.ShopRepository
	categories service.CategoryService
	shops      service.ShopService
	tx         service.TransactionService
	reports    service.ReportService
}

type fixtureOpts struct {
	loc       *time.Location
	locker    service.Locker
	perDay    int
	threshold int64
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	db, err := infra.NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if opts.loc == nil {
		opts.loc = time.UTC
	}
	if opts.perDay == 0 {
		opts.perDay = 1
	}

	f := &fixture{
		db:     db,
		clock:  &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
		alerts: &fakeAlerts{},
	}
	f.shopRepo = repository.NewShopRepository(db)
	baristas := repository.NewBaristaRepository(db)
	catRepo := repository.NewCategoryRepository(db)

	f.categories = service.NewCategoryService(catRepo)
	f.shops = service.NewShopService(f.shopRepo, baristas)
	f.tx = service.NewTransactionService(repository.NewTransactionRepository(db), f.shopRepo, catRepo,
		f.clock.Now, opts.loc, opts.locker)
	f.reports = service.NewReportService(repository.NewReportRepository(db), f.shopRepo, service.ReportConfig{
		PerDay:            opts.perDay,
		Location:          opts.loc,
		ShortageThreshold: opts.threshold,
		AlertEmail:        "owner@example.com",
	}, f.clock.Now, opts.locker, f.alerts)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newShop creates a shop with the given cash and a uniform stock level.
func (f *fixture) newShop(t *testing.T, name string, cash int64, stock dto.StockLevels) uint {
	t.Helper()
	resp, err := f.shops.Create(context.Background(), dto.CreateShopRequest{
		Name: name, Address: name + " street", Cash: cash, InitialStock: stock,
	})
	require.NoError(t, err)
	return resp.ID
}

// state reloads the shop with its storage.
func (f *fixture) state(t *testing.T, shopID uint) *model.Shop {
	t.Helper()
	s, err := f.shopRepo.FindByID(context.Background(), shopID)
	require.NoError(t, err)
	require.NotNil(t, s.Storage)
	return s
}

func stockOf(v string) dto.StockLevels {
	d := dec(v)
	return dto.StockLevels{CoffeeArabika: d, CoffeeBlend: d, Milk: d, Panini: d, Sweets: d, Packages: d}
}
