package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter selects records of one kind for a shop; zero bounds are open.
type TransactionFilter struct {
	ShopID uint
	From   time.Time
	To     time.Time
	Offset int
	Limit  int
}

// TransactionRepository stores every transaction kind behind model.Record.
type TransactionRepository interface {
	CreateTx(tx *gorm.DB, rec model.Record) error
	SaveTx(tx *gorm.DB, rec model.Record) error
	DeleteTx(tx *gorm.DB, rec model.Record) error
	FindForUpdateTx(tx *gorm.DB, kind ledger.Kind, id uint) (model.Record, error)
	ReplaceCategoriesTx(tx *gorm.DB, expenseID uint, categoryIDs []uint) error

	FindByID(ctx context.Context, kind ledger.Kind, id uint) (model.Record, error)
	List(ctx context.Context, kind ledger.Kind, f TransactionFilter) ([]model.Record, int64, error)

	DB() *gorm.DB
}

type expenseCategory struct {
	ExpenseID  uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

func (expenseCategory) TableName() string { return "expense_categories" }

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) CreateTx(tx *gorm.DB, rec model.Record) error {
	return tx.Omit(clause.Associations).Create(rec).Error
}

func (r *transactionRepo) SaveTx(tx *gorm.DB, rec model.Record) error {
	return tx.Omit(clause.Associations).Save(rec).Error
}

func (r *transactionRepo) DeleteTx(tx *gorm.DB, rec model.Record) error {
	id := rec.Base().ID
	if rec.Kind() == ledger.KindExpense {
		if err := tx.Where("expense_id = ?", id).Delete(&expenseCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("expense_id = ?", id).Delete(&reportExpense{}).Error; err != nil {
			return err
		}
	}
	return tx.Delete(rec).Error
}

func (r *transactionRepo) FindForUpdateTx(tx *gorm.DB, kind ledger.Kind, id uint) (model.Record, error) {
	rec := model.NewRecord(kind)
	if rec == nil {
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(rec, id).Error; err != nil {
		return nil, err
	}
	if e, ok := rec.(*model.Expense); ok {
		if err := tx.Model(e).Association("Categories").Find(&e.Categories); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (r *transactionRepo) ReplaceCategoriesTx(tx *gorm.DB, expenseID uint, categoryIDs []uint) error {
	if err := tx.Where("expense_id = ?", expenseID).Delete(&expenseCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]expenseCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, expenseCategory{ExpenseID: expenseID, CategoryID: id})
	}
	return tx.Create(&rows).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, kind ledger.Kind, id uint) (model.Record, error) {
	rec := model.NewRecord(kind)
	if rec == nil {
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	q := r.db.WithContext(ctx)
	if kind == ledger.KindExpense {
		q = q.Preload("Categories")
	}
	if err := q.First(rec, id).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *transactionRepo) List(ctx context.Context, kind ledger.Kind, f TransactionFilter) ([]model.Record, int64, error) {
	probe := model.NewRecord(kind)
	if probe == nil {
		return nil, 0, fmt.Errorf("unknown transaction kind %q", kind)
	}

	q := r.db.WithContext(ctx).Model(probe).Where("shop_id = ?", f.ShopID)
	if !f.From.IsZero() {
		q = q.Where(clause.Gte{Column: "timestamp", Value: f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(clause.Lt{Column: "timestamp", Value: f.To})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order(byTimestampDesc).Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var (
		out []model.Record
		err error
	)
	switch kind {
	case ledger.KindExpense:
		out, err = findRecords[model.Expense](q.Preload("Categories"))
	case ledger.KindSupply:
		out, err = findRecords[model.Supply](q)
	case ledger.KindWeighedSale:
		out, err = findRecords[model.WeighedSale](q)
	case ledger.KindWriteOff:
		out, err = findRecords[model.WriteOff](q)
	case ledger.KindDepositFund:
		out, err = findRecords[model.DepositFund](q)
	case ledger.KindCollectionFund:
		out, err = findRecords[model.CollectionFund](q)
	case ledger.KindTransferProduct:
		out, err = findRecords[model.TransferProduct](q)
	}
	return out, total, err
}

// timestamp is a type keyword in postgres, so the column is always quoted.
var byTimestampDesc = clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}

func findRecords[T any, PT interface {
	*T
	model.Record
}](q *gorm.DB) ([]model.Record, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Record, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}
