package repository

import (
	"context"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	List(ctx context.Context) ([]model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Category, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&c).Error
	return &c, err
}

func (r *categoryRepo) FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Category, error) {
	var cats []model.Category
	if len(ids) == 0 {
		return cats, nil
	}
	err := tx.Where("id IN ? AND active = ?", ids, true).Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
