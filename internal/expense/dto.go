package expense

import (
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	"github.com/frahmantamala/expense-ledger/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// ExpenseDTO is the payload for both create and full-field update; both
// paths run the same shared validation the bulk importer uses.
type ExpenseDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	CategoryID  int64           `json:"category_id"`
	Notes       string          `json:"notes,omitempty"`
}

func (dto ExpenseDTO) Validate() *internal.AppError {
	if err := validation.ValidateExpenseAmount(dto.Amount); err != nil {
		return err
	}
	if err := validation.ValidateExpenseDate(dto.ExpenseDate); err != nil {
		return err
	}
	if dto.CategoryID <= 0 {
		return internal.NewValidationError("A category is required", internal.ErrCodeInvalidCategory)
	}
	return nil
}

type ExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

type TotalResponse struct {
	Total decimal.Decimal `json:"total"`
}
