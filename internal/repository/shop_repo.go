package repository

import (
	"context"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShopRepository owns shops, their storages and equipment.
// The ...ForUpdateTx loaders take a row lock so concurrent movements on the
// same shop serialize on the database.
type ShopRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Shop) error
	FindByID(ctx context.Context, id uint) (*model.Shop, error)
	List(ctx context.Context) ([]model.Shop, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	AssignBarista(ctx context.Context, shopID, baristaID uint) error

	FindShopTx(tx *gorm.DB, id uint) (*model.Shop, error)
	FindShopForUpdateTx(tx *gorm.DB, id uint) (*model.Shop, error)
	FindStorageByShopTx(tx *gorm.DB, shopID uint) (*model.Storage, error)
	FindStorageForUpdateTx(tx *gorm.DB, id uint) (*model.Storage, error)
	SaveBalanceTx(tx *gorm.DB, s *model.Shop) error
	SaveStockTx(tx *gorm.DB, s *model.Storage) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) DB() *gorm.DB { return r.db }

func (r *shopRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *shopRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Shop) error {
	// Storage and Equipment are has-one associations and get inserted with the shop.
	return r.conn(ctx, tx).Omit("Baristas").Create(s).Error
}

func (r *shopRepo) FindByID(ctx context.Context, id uint) (*model.Shop, error) {
	var s model.Shop
	err := r.db.WithContext(ctx).
		Preload("Storage").Preload("Equipment").Preload("Baristas").
		First(&s, id).Error
	return &s, err
}

func (r *shopRepo) List(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).Preload("Storage").Order("name ASC").Find(&shops).Error
	return shops, err
}

// Delete removes the shop together with its storage, equipment and roster.
// Children are deleted explicitly so the cascade does not depend on the
// driver enforcing foreign keys.
func (r *shopRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.conn(ctx, tx)
	if err := db.Where("shop_id = ?", id).Delete(&model.Storage{}).Error; err != nil {
		return err
	}
	if err := db.Where("shop_id = ?", id).Delete(&model.Equipment{}).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM shop_baristas WHERE shop_id = ?", id).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Shop{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shopRepo) AssignBarista(ctx context.Context, shopID, baristaID uint) error {
	shop := model.Shop{ID: shopID}
	return r.db.WithContext(ctx).Model(&shop).Association("Baristas").Append(&model.Barista{ID: baristaID})
}

// ── Transaction-scoped access ────────────────────────────────────────────────

func (r *shopRepo) FindShopTx(tx *gorm.DB, id uint) (*model.Shop, error) {
	var s model.Shop
	err := tx.First(&s, id).Error
	return &s, err
}

func (r *shopRepo) FindShopForUpdateTx(tx *gorm.DB, id uint) (*model.Shop, error) {
	var s model.Shop
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *shopRepo) FindStorageByShopTx(tx *gorm.DB, shopID uint) (*model.Storage, error) {
	var s model.Storage
	err := tx.Where("shop_id = ?", shopID).First(&s).Error
	return &s, err
}

func (r *shopRepo) FindStorageForUpdateTx(tx *gorm.DB, id uint) (*model.Storage, error) {
	var s model.Storage
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *shopRepo) SaveBalanceTx(tx *gorm.DB, s *model.Shop) error {
	return tx.Model(&model.Shop{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"cash":     s.Cash,
		"cashless": s.Cashless,
	}).Error
}

func (r *shopRepo) SaveStockTx(tx *gorm.DB, s *model.Storage) error {
	return tx.Model(&model.Storage{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"coffee_arabika": s.CoffeeArabika,
		"coffee_blend":   s.CoffeeBlend,
		"milk":           s.Milk,
		"panini":         s.Panini,
		"sweets":         s.Sweets,
		"packages":       s.Packages,
	}).Error
}
