package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ReportRequest is the barista's end-of-day declaration.
type ReportRequest struct {
	ShopID        uint        `json:"shop_id"        validate:"required"`
	Cashless      int64       `json:"cashless"       validate:"gte=0"`
	ActualBalance int64       `json:"actual_balance" validate:"gte=0"`
	Closing       StockLevels `json:"closing"`
}

// ReportEditRequest changes the declared values of a submitted report.
type ReportEditRequest struct {
	Cashless      int64       `json:"cashless"       validate:"gte=0"`
	ActualBalance int64       `json:"actual_balance" validate:"gte=0"`
	Closing       StockLevels `json:"closing"`
}

type ReportFilter struct {
	ShopID uint   `form:"shop_id" validate:"required"`
	From   string `form:"from"` // YYYY-MM-DD
	To     string `form:"to"`   // YYYY-MM-DD, inclusive
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReportResponse struct {
	ID              uint        `json:"id"`
	ShopID          uint        `json:"shop_id"`
	BaristaID       uint        `json:"barista_id"`
	Timestamp       time.Time   `json:"timestamp"`
	LastEdit        *time.Time  `json:"last_edit"`
	Cashbox         int64       `json:"cashbox"`
	RemainderOfDay  int64       `json:"remainder_of_day"`
	CashBalance     int64       `json:"cash_balance"`
	Cashless        int64       `json:"cashless"`
	ActualBalance   int64       `json:"actual_balance"`
	DayCashExpenses int64       `json:"day_cash_expenses"`
	DayWeighedCash  int64       `json:"day_weighed_cash"`
	Remaining       StockLevels `json:"remaining"`
	Consumption     StockLevels `json:"consumption"`
	ExpenseIDs      []uint      `json:"expense_ids"`
}
