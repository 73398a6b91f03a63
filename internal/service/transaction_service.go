package service

import (
	"context"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService creates, edits and deletes every movement kind through
// one rule-driven path. Each call is a single database transaction: the
// record and all of its balance and stock effects commit together or not at all.
type TransactionService interface {
	Create(ctx context.Context, kind ledger.Kind, req dto.TransactionRequest, actorID uint) (*dto.TransactionResponse, error)
	Edit(ctx context.Context, kind ledger.Kind, id uint, req dto.TransactionRequest, actorID uint) (*dto.TransactionResponse, error)
	Delete(ctx context.Context, kind ledger.Kind, id uint) error
	Get(ctx context.Context, kind ledger.Kind, id uint) (*dto.TransactionResponse, error)
	List(ctx context.Context, kind ledger.Kind, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
}

type transactionService struct {
	repo       repository.TransactionRepository
	shops      repository.ShopRepository
	categories repository.CategoryRepository
	clock      Clock
	loc        *time.Location
	locker     Locker
}

func NewTransactionService(
	repo repository.TransactionRepository,
	shops repository.ShopRepository,
	categories repository.CategoryRepository,
	clock Clock,
	loc *time.Location,
	locker Locker,
) TransactionService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &transactionService{
		repo: repo, shops: shops, categories: categories,
		clock: clock, loc: loc, locker: locker,
	}
}

// refs are the foreign keys a request resolves to.
type refs struct {
	storageID     uint
	destShopID    uint
	destStorageID uint
	categoryIDs   []uint
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *transactionService) Create(ctx context.Context, kind ledger.Kind, req dto.TransactionRequest, actorID uint) (*dto.TransactionResponse, error) {
	rec := model.NewRecord(kind)
	if rec == nil {
		return nil, validationf("unknown transaction kind %q", kind)
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		r, err := s.resolve(tx, kind, req)
		if err != nil {
			return err
		}
		assign(rec, req, r)
		base := rec.Base()
		base.BaristaID = actorID
		base.Timestamp = s.clock().UTC()
		base.Backdating = req.Backdating

		if err := forwardEffect(tx, s.shops, kind, rec.Movement(), base.Backdating); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, rec); err != nil {
			return persistence(err)
		}
		if kind == ledger.KindExpense {
			if err := s.repo.ReplaceCategoriesTx(tx, base.ID, r.categoryIDs); err != nil {
				return persistence(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, persistence(err)
	}

	log.Debug().Str("kind", string(kind)).Uint("record_id", rec.Base().ID).
		Uint("shop_id", rec.Base().ShopID).Bool("backdating", rec.Base().Backdating).
		Msg("transaction created")
	return s.Get(ctx, kind, rec.Base().ID)
}

// ── Edit ─────────────────────────────────────────────────────────────────────
// Reverse the stored effect, overwrite the fields, apply the new effect.
// The record is loaded inside the transaction, so a failed edit leaves both
// the row and the caller's view untouched.

func (s *transactionService) Edit(ctx context.Context, kind ledger.Kind, id uint, req dto.TransactionRequest, actorID uint) (*dto.TransactionResponse, error) {
	if model.NewRecord(kind) == nil {
		return nil, validationf("unknown transaction kind %q", kind)
	}

	stored, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, string(kind), id)
	}

	// Lock the shop the record lives in, and the target shop when it moves.
	err = withShopLocks(ctx, s.locker, []uint{stored.Base().ShopID, req.ShopID}, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			rec, err := s.repo.FindForUpdateTx(tx, kind, id)
			if err != nil {
				return notFoundOr(err, ErrNotFound, string(kind), id)
			}
			base := rec.Base()

			if err := reverseEffect(tx, s.shops, kind, rec.Movement(), base.Backdating); err != nil {
				return err
			}

			r, err := s.resolve(tx, kind, req)
			if err != nil {
				return err
			}
			assign(rec, req, r)
			now := s.clock().UTC()
			base.BaristaID = actorID
			base.Backdating = req.Backdating
			base.LastEdit = &now

			if err := forwardEffect(tx, s.shops, kind, rec.Movement(), base.Backdating); err != nil {
				return err
			}
			if err := s.repo.SaveTx(tx, rec); err != nil {
				return persistence(err)
			}
			if kind == ledger.KindExpense {
				if err := s.repo.ReplaceCategoriesTx(tx, base.ID, r.categoryIDs); err != nil {
					return persistence(err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, persistence(err)
	}

	log.Debug().Str("kind", string(kind)).Uint("record_id", id).Msg("transaction edited")
	return s.Get(ctx, kind, id)
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *transactionService) Delete(ctx context.Context, kind ledger.Kind, id uint) error {
	if model.NewRecord(kind) == nil {
		return validationf("unknown transaction kind %q", kind)
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, kind, id)
		if err != nil {
			return notFoundOr(err, ErrNotFound, string(kind), id)
		}
		if err := reverseEffect(tx, s.shops, kind, rec.Movement(), rec.Base().Backdating); err != nil {
			return err
		}
		if err := s.repo.DeleteTx(tx, rec); err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return persistence(err)
	}

	log.Debug().Str("kind", string(kind)).Uint("record_id", id).Msg("transaction deleted")
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *transactionService) Get(ctx context.Context, kind ledger.Kind, id uint) (*dto.TransactionResponse, error) {
	rec, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, string(kind), id)
	}
	resp := transactionToResponse(rec)
	return &resp, nil
}

func (s *transactionService) List(ctx context.Context, kind ledger.Kind, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if model.NewRecord(kind) == nil {
		return nil, validationf("unknown transaction kind %q", kind)
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	f := repository.TransactionFilter{ShopID: filter.ShopID, Offset: (page - 1) * limit, Limit: limit}
	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, s.loc)
		if err != nil {
			return nil, validationf("date must be YYYY-MM-DD")
		}
		f.From = day.UTC()
		f.To = day.AddDate(0, 0, 1).UTC()
	}

	recs, total, err := s.repo.List(ctx, kind, f)
	if err != nil {
		return nil, persistence(err)
	}
	out := &dto.TransactionListResponse{Data: make([]dto.TransactionResponse, 0, len(recs)), Total: total, Page: page, Limit: limit}
	for _, rec := range recs {
		out.Data = append(out.Data, transactionToResponse(rec))
	}
	return out, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolve checks every reference the request names against the store.
func (s *transactionService) resolve(tx *gorm.DB, kind ledger.Kind, req dto.TransactionRequest) (refs, error) {
	var r refs
	rule, ok := ledger.RuleFor(kind)
	if !ok {
		return r, validationf("unknown transaction kind %q", kind)
	}

	if _, err := s.shops.FindShopTx(tx, req.ShopID); err != nil {
		return r, notFoundOr(err, ErrValidation, "shop", req.ShopID)
	}

	if rule.Money != ledger.None {
		switch ledger.TypeCost(req.TypeCost) {
		case ledger.CostCash, ledger.CostCashless:
		default:
			return r, validationf("type_cost must be cash or cashless")
		}
	}

	if rule.RequiresStorage {
		st, err := s.shops.FindStorageByShopTx(tx, req.ShopID)
		if err != nil {
			return r, notFoundOr(err, ErrValidation, "storage of shop", req.ShopID)
		}
		r.storageID = st.ID
		if _, err := ledger.ParseProduct(req.Product); err != nil {
			return r, validationf("%v", err)
		}
	}

	if rule.Counterpart {
		if req.DestinationShopID == 0 {
			return r, validationf("destination_shop_id is required")
		}
		if req.DestinationShopID == req.ShopID {
			return r, validationf("destination shop must differ from the source shop")
		}
		if _, err := s.shops.FindShopTx(tx, req.DestinationShopID); err != nil {
			return r, notFoundOr(err, ErrValidation, "destination shop", req.DestinationShopID)
		}
		st, err := s.shops.FindStorageByShopTx(tx, req.DestinationShopID)
		if err != nil {
			return r, notFoundOr(err, ErrValidation, "storage of shop", req.DestinationShopID)
		}
		r.destShopID = req.DestinationShopID
		r.destStorageID = st.ID
	}

	if kind == ledger.KindExpense && len(req.CategoryIDs) > 0 {
		ids := uniqueIDs(req.CategoryIDs)
		cats, err := s.categories.FindByIDsTx(tx, ids)
		if err != nil {
			return r, persistence(err)
		}
		if len(cats) != len(ids) {
			return r, validationf("unknown or inactive category in %v", ids)
		}
		r.categoryIDs = ids
	}
	return r, nil
}

// assign copies the request fields a kind uses onto rec.
func assign(rec model.Record, req dto.TransactionRequest, r refs) {
	rec.Base().ShopID = req.ShopID
	cost := ledger.TypeCost(req.TypeCost)
	product := ledger.Product(req.Product)

	switch v := rec.(type) {
	case *model.Expense:
		v.TypeCost, v.Money = cost, req.Money
		v.IsGlobal = req.IsGlobal
		v.Description = req.Description
	case *model.Supply:
		v.StorageID = r.storageID
		v.TypeCost, v.Money = cost, req.Money
		v.Product, v.Amount = product, req.Amount
		v.Supplier = req.Description
	case *model.WeighedSale:
		v.StorageID = r.storageID
		v.TypeCost, v.Money = cost, req.Money
		v.Product, v.Amount = product, req.Amount
	case *model.WriteOff:
		v.StorageID = r.storageID
		v.Product, v.Amount = product, req.Amount
		v.Reason = req.Description
	case *model.DepositFund:
		v.TypeCost, v.Money = cost, req.Money
		v.Reason = req.Description
	case *model.CollectionFund:
		v.TypeCost, v.Money = cost, req.Money
		v.Reason = req.Description
	case *model.TransferProduct:
		v.StorageID = r.storageID
		v.DestinationShopID, v.DestinationStorageID = r.destShopID, r.destStorageID
		v.Product, v.Amount = product, req.Amount
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func transactionToResponse(rec model.Record) dto.TransactionResponse {
	base := rec.Base()
	resp := dto.TransactionResponse{
		ID:         base.ID,
		Kind:       string(rec.Kind()),
		ShopID:     base.ShopID,
		BaristaID:  base.BaristaID,
		Backdating: base.Backdating,
		Timestamp:  base.Timestamp,
		LastEdit:   base.LastEdit,
	}
	withStock := func(storageID uint, p ledger.Product, amount decimal.Decimal) {
		resp.StorageID = storageID
		resp.Product = string(p)
		resp.Unit = string(p.Unit())
		resp.Amount = &amount
	}

	switch v := rec.(type) {
	case *model.Expense:
		resp.TypeCost, resp.Money = string(v.TypeCost), v.Money
		resp.IsGlobal = v.IsGlobal
		resp.Description = v.Description
		for _, c := range v.Categories {
			resp.CategoryIDs = append(resp.CategoryIDs, c.ID)
		}
	case *model.Supply:
		resp.TypeCost, resp.Money = string(v.TypeCost), v.Money
		resp.Description = v.Supplier
		withStock(v.StorageID, v.Product, v.Amount)
	case *model.WeighedSale:
		resp.TypeCost, resp.Money = string(v.TypeCost), v.Money
		withStock(v.StorageID, v.Product, v.Amount)
	case *model.WriteOff:
		resp.Description = v.Reason
		withStock(v.StorageID, v.Product, v.Amount)
	case *model.DepositFund:
		resp.TypeCost, resp.Money = string(v.TypeCost), v.Money
		resp.Description = v.Reason
	case *model.CollectionFund:
		resp.TypeCost, resp.Money = string(v.TypeCost), v.Money
		resp.Description = v.Reason
	case *model.TransferProduct:
		resp.DestinationShopID = v.DestinationShopID
		withStock(v.StorageID, v.Product, v.Amount)
	}
	return resp
}
