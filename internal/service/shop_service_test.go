package service_test

import (
	"context"
	"testing"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopLifecycle(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	created, err := f.shops.Create(ctx, dto.CreateShopRequest{
		Name: "Harbour", Address: "2 Pier Road", Cash: 500, Cashless: 20,
		InitialStock: stockOf("3"),
		Equipment:    dto.EquipmentRequest{CoffeeMachine: "Linea Mini"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.StorageID)
	assert.True(t, created.Stock.Milk.Equal(dec("3")))

	got, err := f.shops.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Cash)
	assert.Equal(t, "Linea Mini", got.Equipment.CoffeeMachine)

	_, err = f.shops.Create(ctx, dto.CreateShopRequest{Name: "Harbour", Address: "elsewhere"})
	assert.ErrorIs(t, err, service.ErrValidation)

	list, err := f.shops.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.shops.Delete(ctx, created.ID))
	_, err = f.shops.Get(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.shops.Delete(ctx, created.ID), service.ErrNotFound)

	var storages int64
	require.NoError(t, f.db.Model(&model.Storage{}).Where("shop_id = ?", created.ID).Count(&storages).Error)
	assert.Zero(t, storages)
}

func TestAssignBarista(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	shop := f.newShop(t, "Central", 0, stockOf("0"))

	b := model.Barista{Username: "ana", Name: "Ana", PasswordHash: "x", Role: model.RoleBarista, Active: true}
	require.NoError(t, f.db.Create(&b).Error)

	require.NoError(t, f.shops.AssignBarista(ctx, shop, b.ID))
	got, err := f.shops.Get(ctx, shop)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, got.Baristas)

	assert.ErrorIs(t, f.shops.AssignBarista(ctx, shop, 999), service.ErrValidation)
	assert.ErrorIs(t, f.shops.AssignBarista(ctx, 999, b.ID), service.ErrNotFound)
}
