package repository

import (
	"context"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BaristaRepository interface {
	Create(ctx context.Context, b *model.Barista) error
	FindByUsername(ctx context.Context, username string) (*model.Barista, error)
	FindByID(ctx context.Context, id uint) (*model.Barista, error)
	List(ctx context.Context) ([]model.Barista, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type baristaRepo struct{ db *gorm.DB }

func NewBaristaRepository(db *gorm.DB) BaristaRepository { return &baristaRepo{db: db} }

type shopBarista struct {
	ShopID    uint `gorm:"primaryKey"`
	BaristaID uint `gorm:"primaryKey"`
}

func (shopBarista) TableName() string { return "shop_baristas" }

// Create inserts the barista and its roster rows in one transaction. An
// unknown shop id fails with gorm.ErrForeignKeyViolated on every dialect.
func (r *baristaRepo) Create(ctx context.Context, b *model.Barista) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		if len(b.Shops) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(b.Shops))
		for _, s := range b.Shops {
			ids = append(ids, s.ID)
		}
		var shops []model.Shop
		if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&shops).Error; err != nil {
			return err
		}
		if len(shops) != len(ids) {
			return gorm.ErrForeignKeyViolated
		}

		rows := make([]shopBarista, 0, len(shops))
		for _, s := range shops {
			rows = append(rows, shopBarista{ShopID: s.ID, BaristaID: b.ID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		b.Shops = shops
		return nil
	})
}

// FindByUsername accepts login by username or email and skips inactive staff.
func (r *baristaRepo) FindByUsername(ctx context.Context, username string) (*model.Barista, error) {
	var b model.Barista
	err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND active = ?", username, username, true).
		Preload("Shops").
		First(&b).Error
	return &b, err
}

func (r *baristaRepo) FindByID(ctx context.Context, id uint) (*model.Barista, error) {
	var b model.Barista
	err := r.db.WithContext(ctx).Preload("Shops").First(&b, id).Error
	return &b, err
}

func (r *baristaRepo) List(ctx context.Context) ([]model.Barista, error) {
	var list []model.Barista
	err := r.db.WithContext(ctx).Preload("Shops").Order("username ASC").Find(&list).Error
	return list, err
}

func (r *baristaRepo) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Barista{}).Where("id = ?", id).Update("active", active).Error
}
