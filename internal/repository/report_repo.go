package repository

import (
	"context"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository persists reports and answers the day aggregates the
// reconciliation needs. Every aggregate skips backdated rows: they never
// touched the live balance, so folding them back in would double count.
type ReportRepository interface {
	CountSinceTx(tx *gorm.DB, shopID uint, since time.Time) (int64, error)
	DayCashExpensesTx(tx *gorm.DB, shopID uint, since time.Time) ([]model.Expense, error)
	DayWeighedSalesTx(tx *gorm.DB, shopID uint, since time.Time) ([]model.WeighedSale, error)

	CreateTx(tx *gorm.DB, r *model.Report) error
	SaveTx(tx *gorm.DB, r *model.Report) error
	DeleteTx(tx *gorm.DB, id uint) error
	FindForUpdateTx(tx *gorm.DB, id uint) (*model.Report, error)
	AttachExpensesTx(tx *gorm.DB, reportID uint, expenseIDs []uint) error

	FindByID(ctx context.Context, id uint) (*model.Report, error)
	List(ctx context.Context, shopID uint, from, to time.Time) ([]model.Report, error)

	DB() *gorm.DB
}

type reportExpense struct {
	ReportID  uint `gorm:"primaryKey"`
	ExpenseID uint `gorm:"primaryKey"`
}

func (reportExpense) TableName() string { return "report_expenses" }

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) DB() *gorm.DB { return r.db }

func since(q *gorm.DB, t time.Time) *gorm.DB {
	return q.Where(clause.Gte{Column: "timestamp", Value: t})
}

func (r *reportRepo) CountSinceTx(tx *gorm.DB, shopID uint, t time.Time) (int64, error) {
	var n int64
	err := since(tx.Model(&model.Report{}).Where("shop_id = ?", shopID), t).Count(&n).Error
	return n, err
}

// DayCashExpensesTx returns the shop's local cash expenses recorded since t.
func (r *reportRepo) DayCashExpensesTx(tx *gorm.DB, shopID uint, t time.Time) ([]model.Expense, error) {
	var rows []model.Expense
	err := since(tx.Where("shop_id = ? AND type_cost = ? AND is_global = ? AND backdating = ?",
		shopID, ledger.CostCash, false, false), t).
		Find(&rows).Error
	return rows, err
}

// DayWeighedSalesTx returns every weighed sale recorded since t regardless of
// type_cost; callers split cash money from product quantities.
func (r *reportRepo) DayWeighedSalesTx(tx *gorm.DB, shopID uint, t time.Time) ([]model.WeighedSale, error) {
	var rows []model.WeighedSale
	err := since(tx.Where("shop_id = ? AND backdating = ?", shopID, false), t).
		Find(&rows).Error
	return rows, err
}

func (r *reportRepo) CreateTx(tx *gorm.DB, rep *model.Report) error {
	return tx.Omit(clause.Associations).Create(rep).Error
}

func (r *reportRepo) SaveTx(tx *gorm.DB, rep *model.Report) error {
	return tx.Omit(clause.Associations).Save(rep).Error
}

func (r *reportRepo) DeleteTx(tx *gorm.DB, id uint) error {
	if err := tx.Where("report_id = ?", id).Delete(&reportExpense{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Report{}, id).Error
}

func (r *reportRepo) FindForUpdateTx(tx *gorm.DB, id uint) (*model.Report, error) {
	var rep model.Report
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rep, id).Error
	return &rep, err
}

func (r *reportRepo) AttachExpensesTx(tx *gorm.DB, reportID uint, expenseIDs []uint) error {
	if len(expenseIDs) == 0 {
		return nil
	}
	rows := make([]reportExpense, 0, len(expenseIDs))
	for _, id := range expenseIDs {
		rows = append(rows, reportExpense{ReportID: reportID, ExpenseID: id})
	}
	return tx.Create(&rows).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id uint) (*model.Report, error) {
	var rep model.Report
	err := r.db.WithContext(ctx).Preload("Expenses").First(&rep, id).Error
	return &rep, err
}

func (r *reportRepo) List(ctx context.Context, shopID uint, from, to time.Time) ([]model.Report, error) {
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if !from.IsZero() {
		q = since(q, from)
	}
	if !to.IsZero() {
		q = q.Where(clause.Lt{Column: "timestamp", Value: to})
	}
	var reps []model.Report
	err := q.Preload("Expenses").Order(byTimestampDesc).Find(&reps).Error
	return reps, err
}
