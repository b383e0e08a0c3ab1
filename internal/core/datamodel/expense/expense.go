package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64           `gorm:"primaryKey"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	ExpenseDate time.Time       `gorm:"column:expense_date;type:date;not null"`
	CategoryID  int64           `gorm:"column:category_id;not null"`
	Notes       string          `gorm:"column:notes"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// CategoryTotal is the raw group-by row produced by the expense repository
// for reporting. Percentage is derived later, outside the store.
type CategoryTotal struct {
	CategoryID   int64           `gorm:"column:category_id"`
	CategoryName string          `gorm:"column:category_name"`
	Total        decimal.Decimal `gorm:"column:total"`
	Count        int64           `gorm:"column:count"`
}
