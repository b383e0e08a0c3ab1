package expense

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	"github.com/frahmantamala/expense-ledger/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

// RepositoryAPI defines the data access methods for expenses.
type RepositoryAPI interface {
	Create(expense *expenseDatamodel.Expense) error
	GetByID(id int64) (*expenseDatamodel.Expense, error)
	Update(expense *expenseDatamodel.Expense) error
	Delete(id int64) (int64, error)
	DeleteAll() error
	List(limit, offset int) ([]*expenseDatamodel.Expense, error)
	ListByDateRange(start, end time.Time) ([]*expenseDatamodel.Expense, error)
	ListByCategory(categoryID int64) ([]*expenseDatamodel.Expense, error)
	SumAmount() (decimal.Decimal, error)
	SumAmountInRange(start, end time.Time) (decimal.Decimal, error)
	CountByCategory(categoryID int64) (int64, error)
	SummarizeByCategory(start, end time.Time) ([]expenseDatamodel.CategoryTotal, error)
}

// CategoryChecker is the slice of the category store the expense service
// needs: referential validation of the category foreign key.
type CategoryChecker interface {
	GetByID(id int64) (*categoryDatamodel.ExpenseCategory, error)
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryChecker
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// validate runs the shared field validation plus the referential category
// check. Both Create and Update (and through them the CSV importer) go
// through here, so the rules cannot diverge.
func (s *Service) validate(dto ExpenseDTO) *internal.AppError {
	if err := dto.Validate(); err != nil {
		return err
	}

	cat, err := s.categories.GetByID(dto.CategoryID)
	if err != nil {
		return internal.NewInternalError("Could not verify category", err)
	}
	if cat == nil {
		return internal.NewValidationError("The selected category does not exist", internal.ErrCodeInvalidCategory)
	}
	return nil
}

func (s *Service) Create(dto ExpenseDTO) (*Expense, error) {
	if err := s.validate(dto); err != nil {
		s.logger.Error("expense validation failed", "error", err)
		return nil, err
	}

	dataExpense := &expenseDatamodel.Expense{
		Amount:      dto.Amount,
		ExpenseDate: dto.ExpenseDate,
		CategoryID:  dto.CategoryID,
		Notes:       validation.NormalizeNotes(dto.Notes),
	}

	if err := s.repo.Create(dataExpense); err != nil {
		s.logger.Error("failed to create expense", "error", err)
		return nil, internal.NewInternalError("Could not save expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", dataExpense.ID,
		"amount", dto.Amount.String(),
		"category_id", dto.CategoryID)

	return FromDataModel(dataExpense), nil
}

// Update replaces all mutable fields of the target expense after running
// the same validations as Create.
func (s *Service) Update(id int64, dto ExpenseDTO) (*Expense, error) {
	dataExpense, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load expense for update", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("Could not update expense", err)
	}
	if dataExpense == nil {
		return nil, internal.NewNotFoundError("Expense not found", internal.ErrCodeExpenseNotFound)
	}

	if err := s.validate(dto); err != nil {
		s.logger.Error("expense validation failed", "error", err, "expense_id", id)
		return nil, err
	}

	dataExpense.Amount = dto.Amount
	dataExpense.ExpenseDate = dto.ExpenseDate
	dataExpense.CategoryID = dto.CategoryID
	dataExpense.Notes = validation.NormalizeNotes(dto.Notes)

	if err := s.repo.Update(dataExpense); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("Could not update expense", err)
	}

	s.logger.Info("expense updated", "expense_id", id)
	return FromDataModel(dataExpense), nil
}

func (s *Service) Delete(id int64) error {
	affected, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return internal.NewInternalError("Could not delete expense", err)
	}
	if affected == 0 {
		return internal.NewNotFoundError("Expense not found", internal.ErrCodeExpenseNotFound)
	}

	s.logger.Info("expense deleted", "expense_id", id)
	return nil
}

// DeleteAll removes every expense. Deleting from an empty store succeeds.
func (s *Service) DeleteAll() error {
	if err := s.repo.DeleteAll(); err != nil {
		s.logger.Error("failed to delete all expenses", "error", err)
		return internal.NewInternalError("Could not delete expenses", err)
	}

	s.logger.Info("all expenses deleted")
	return nil
}

func (s *Service) Get(id int64) (*Expense, error) {
	dataExpense, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("Could not load expense", err)
	}
	if dataExpense == nil {
		return nil, internal.NewNotFoundError("Expense not found", internal.ErrCodeExpenseNotFound)
	}
	return FromDataModel(dataExpense), nil
}

// List returns one page of expenses, newest first (date descending, id
// descending on ties) so pagination is stable.
func (s *Service) List(page, pageSize int) ([]*Expense, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	dataExpenses, err := s.repo.List(pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err)
		return nil, internal.NewInternalError("Could not load expenses", err)
	}
	return FromDataModelSlice(dataExpenses), nil
}

func (s *Service) ListByDateRange(start, end time.Time) ([]*Expense, error) {
	dataExpenses, err := s.repo.ListByDateRange(start, end)
	if err != nil {
		s.logger.Error("failed to list expenses by date range", "error", err)
		return nil, internal.NewInternalError("Could not load expenses", err)
	}
	return FromDataModelSlice(dataExpenses), nil
}

func (s *Service) ListByCategory(categoryID int64) ([]*Expense, error) {
	dataExpenses, err := s.repo.ListByCategory(categoryID)
	if err != nil {
		s.logger.Error("failed to list expenses by category", "error", err, "category_id", categoryID)
		return nil, internal.NewInternalError("Could not load expenses", err)
	}
	return FromDataModelSlice(dataExpenses), nil
}

func (s *Service) TotalAmount() (decimal.Decimal, error) {
	total, err := s.repo.SumAmount()
	if err != nil {
		s.logger.Error("failed to sum expenses", "error", err)
		return decimal.Zero, internal.NewInternalError("Could not compute total", err)
	}
	return total, nil
}

func (s *Service) TotalAmountInRange(start, end time.Time) (decimal.Decimal, error) {
	total, err := s.repo.SumAmountInRange(start, end)
	if err != nil {
		s.logger.Error("failed to sum expenses in range", "error", err)
		return decimal.Zero, internal.NewInternalError("Could not compute total", err)
	}
	return total, nil
}
