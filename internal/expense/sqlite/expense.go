package sqlite

import (
	"errors"
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-ledger/internal/expense"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseRepository implements the expense.RepositoryAPI interface using GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *expenseDatamodel.Expense) error {
	return r.db.Create(exp).Error
}

func (r *ExpenseRepository) GetByID(id int64) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) Update(exp *expenseDatamodel.Expense) error {
	exp.UpdatedAt = time.Now()
	return r.db.Save(exp).Error
}

func (r *ExpenseRepository) Delete(id int64) (int64, error) {
	result := r.db.Where("id = ?", id).Delete(&expenseDatamodel.Expense{})
	return result.RowsAffected, result.Error
}

func (r *ExpenseRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&expenseDatamodel.Expense{}).Error
}

// List returns expenses newest first; id breaks date ties so pages stay
// stable across calls.
func (r *ExpenseRepository) List(limit, offset int) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.Order("expense_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) ListByDateRange(start, end time.Time) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.Where("expense_date >= ? AND expense_date <= ?", start, end).
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) ListByCategory(categoryID int64) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.Where("category_id = ?", categoryID).
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) SumAmount() (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&expenseDatamodel.Expense{}).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *ExpenseRepository) SumAmountInRange(start, end time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&expenseDatamodel.Expense{}).
		Select("SUM(amount)").
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *ExpenseRepository) CountByCategory(categoryID int64) (int64, error) {
	var count int64
	err := r.db.Model(&expenseDatamodel.Expense{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// SummarizeByCategory groups expenses in the inclusive date range by
// category. Ordering by total is left to the caller: decimal ordering of
// SUM results is not guaranteed by every backing engine.
func (r *ExpenseRepository) SummarizeByCategory(start, end time.Time) ([]expenseDatamodel.CategoryTotal, error) {
	var totals []expenseDatamodel.CategoryTotal
	err := r.db.Model(&expenseDatamodel.Expense{}).
		Select("expenses.category_id AS category_id, expense_categories.name AS category_name, SUM(expenses.amount) AS total, COUNT(*) AS count").
		Joins("LEFT JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.expense_date >= ? AND expenses.expense_date <= ?", start, end).
		Group("expenses.category_id, expense_categories.name").
		Scan(&totals).Error
	return totals, err
}
