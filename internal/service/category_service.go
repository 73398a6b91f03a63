package service

import (
	"context"
	"errors"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"gorm.io/gorm"
)

// CategoryService manages the expense categories.
type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func mapCategory(c model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Active: c.Active}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error) {
	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, persistence(err)
	}
	if err == nil && existing != nil {
		return dto.CategoryResponse{}, validationf("category %q already exists", req.Name)
	}

	c := &model.Category{Name: req.Name, Active: true}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, persistence(err)
	}
	return mapCategory(*c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	result := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategory(c))
	}
	return result, nil
}

// Deactivate hides a category from new expenses. Existing links are kept.
func (s *categoryService) Deactivate(ctx context.Context, id uint) error {
	return notFoundOr(s.repo.SetActive(ctx, id, false), ErrNotFound, "category", id)
}
