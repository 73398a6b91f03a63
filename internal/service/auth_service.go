package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/config"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/middleware"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Login and Refresh for any auth failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateBarista(ctx context.Context, req dto.CreateBaristaRequest) (*dto.BaristaResponse, error)
	ListBaristas(ctx context.Context) ([]dto.BaristaResponse, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

type authService struct {
	repo  repository.BaristaRepository
	cfg   *config.Config
	clock Clock
}

func NewAuthService(repo repository.BaristaRepository, cfg *config.Config, clock Clock) AuthService {
	if clock == nil {
		clock = time.Now
	}
	return &authService{repo: repo, cfg: cfg, clock: clock}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	b, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(b.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(b)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := middleware.ParseToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidCredentials
	}
	b, err := s.repo.FindByID(ctx, claims.BaristaID)
	if err != nil || !b.Active {
		return nil, ErrInvalidCredentials
	}
	return s.issue(b)
}

func (s *authService) CreateBarista(ctx context.Context, req dto.CreateBaristaRequest) (*dto.BaristaResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	b := &model.Barista{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	for _, id := range uniqueIDs(req.ShopIDs) {
		b.Shops = append(b.Shops, model.Shop{ID: id})
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationf("username %q is taken", req.Username)
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, validationf("unknown shop in shop_ids")
		}
		return nil, persistence(err)
	}
	resp := baristaToResponse(b)
	return &resp, nil
}

func (s *authService) ListBaristas(ctx context.Context) ([]dto.BaristaResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	resp := make([]dto.BaristaResponse, len(list))
	for i := range list {
		resp[i] = baristaToResponse(&list[i])
	}
	return resp, nil
}

func (s *authService) SetActive(ctx context.Context, id uint, active bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, ErrNotFound, "barista", id)
	}
	return persistence(s.repo.SetActive(ctx, id, active))
}

func (s *authService) issue(b *model.Barista) (*dto.LoginResponse, error) {
	access, err := s.sign(b, "access", time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(b, "refresh", time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         baristaToResponse(b),
	}, nil
}

func (s *authService) sign(b *model.Barista, kind string, ttl time.Duration) (string, error) {
	now := s.clock()
	claims := middleware.JWTClaims{
		BaristaID: b.ID,
		Username:  b.Username,
		Role:      b.Role,
		ShopIDs:   shopIDs(b.Shops),
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(b.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func shopIDs(shops []model.Shop) []uint {
	ids := make([]uint, 0, len(shops))
	for _, sh := range shops {
		ids = append(ids, sh.ID)
	}
	return ids
}

func baristaToResponse(b *model.Barista) dto.BaristaResponse {
	return dto.BaristaResponse{
		ID:       b.ID,
		Username: b.Username,
		Name:     b.Name,
		Email:    b.Email,
		Role:     b.Role,
		ShopIDs:  shopIDs(b.Shops),
		Active:   b.Active,
	}
}
