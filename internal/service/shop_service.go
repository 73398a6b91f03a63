package service

import (
	"context"
	"errors"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"gorm.io/gorm"
)

// ShopService manages shops together with their storage and equipment.
type ShopService interface {
	Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error)
	Get(ctx context.Context, id uint) (*dto.ShopResponse, error)
	List(ctx context.Context) ([]dto.ShopResponse, error)
	Delete(ctx context.Context, id uint) error
	AssignBarista(ctx context.Context, shopID, baristaID uint) error
}

type shopService struct {
	repo     repository.ShopRepository
	baristas repository.BaristaRepository
}

func NewShopService(repo repository.ShopRepository, baristas repository.BaristaRepository) ShopService {
	return &shopService{repo: repo, baristas: baristas}
}

// Create inserts the shop with its storage and equipment in one transaction,
// so a shop never exists without both.
func (s *shopService) Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error) {
	shop := &model.Shop{
		Name:    req.Name,
		Address: req.Address,
		Balance: ledger.Balance{Cash: req.Cash, Cashless: req.Cashless},
		Storage: &model.Storage{Stock: stockFromLevels(req.InitialStock)},
		Equipment: &model.Equipment{
			CoffeeMachine: req.Equipment.CoffeeMachine,
			CoffeeGrinder: req.Equipment.CoffeeGrinder,
			Blender:       req.Equipment.Blender,
			Refrigerator:  req.Equipment.Refrigerator,
		},
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, shop)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, validationf("a shop with this name or address already exists")
	}
	if err != nil {
		return nil, persistence(err)
	}
	resp := shopToResponse(shop)
	return &resp, nil
}

func (s *shopService) Get(ctx context.Context, id uint) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "shop", id)
	}
	resp := shopToResponse(shop)
	return &resp, nil
}

func (s *shopService) List(ctx context.Context) ([]dto.ShopResponse, error) {
	shops, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	resp := make([]dto.ShopResponse, len(shops))
	for i := range shops {
		resp[i] = shopToResponse(&shops[i])
	}
	return resp, nil
}

// Delete removes the shop, its storage and equipment. Transaction and report
// history stays in place.
func (s *shopService) Delete(ctx context.Context, id uint) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return notFoundOr(err, ErrNotFound, "shop", id)
	}
	return nil
}

func (s *shopService) AssignBarista(ctx context.Context, shopID, baristaID uint) error {
	if _, err := s.repo.FindByID(ctx, shopID); err != nil {
		return notFoundOr(err, ErrNotFound, "shop", shopID)
	}
	if _, err := s.baristas.FindByID(ctx, baristaID); err != nil {
		return notFoundOr(err, ErrValidation, "barista", baristaID)
	}
	return persistence(s.repo.AssignBarista(ctx, shopID, baristaID))
}

func shopToResponse(s *model.Shop) dto.ShopResponse {
	resp := dto.ShopResponse{
		ID:       s.ID,
		Name:     s.Name,
		Address:  s.Address,
		Cash:     s.Cash,
		Cashless: s.Cashless,
		Baristas: make([]uint, 0, len(s.Baristas)),
	}
	if s.Storage != nil {
		resp.StorageID = s.Storage.ID
		resp.Stock = levelsFromStock(s.Storage.Stock)
	}
	if e := s.Equipment; e != nil {
		resp.Equipment = dto.EquipmentRequest{
			CoffeeMachine: e.CoffeeMachine, CoffeeGrinder: e.CoffeeGrinder,
			Blender: e.Blender, Refrigerator: e.Refrigerator,
		}
	}
	for _, b := range s.Baristas {
		resp.Baristas = append(resp.Baristas, b.ID)
	}
	return resp
}
