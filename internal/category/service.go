package category

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/expense-ledger/internal"
	"github.com/frahmantamala/expense-ledger/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll() ([]*categoryDatamodel.ExpenseCategory, error)
	GetByID(id int64) (*categoryDatamodel.ExpenseCategory, error)
	GetByNameFold(name string) (*categoryDatamodel.ExpenseCategory, error)
	Create(category *categoryDatamodel.ExpenseCategory) error
	Update(category *categoryDatamodel.ExpenseCategory) error
	Delete(id int64) error
	Count() (int64, error)
	UpsertByName(name string) (*categoryDatamodel.ExpenseCategory, error)
}

// ExpenseCounter reports how many expenses reference a category. It is
// implemented by the expense repository and consulted before deletion.
type ExpenseCounter interface {
	CountByCategory(categoryID int64) (int64, error)
}

type Service struct {
	repo     RepositoryAPI
	expenses ExpenseCounter
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, expenses ExpenseCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		expenses: expenses,
		logger:   logger,
	}
}

func (s *Service) GetAll() ([]*Category, error) {
	dataCategories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, internal.NewInternalError("Could not load categories", err)
	}
	return FromDataModelSlice(dataCategories), nil
}

// GetByID returns nil without an error when the id is unknown; absence is a
// sentinel here, not a failure.
func (s *Service) GetByID(id int64) (*Category, error) {
	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", id)
		return nil, internal.NewInternalError("Could not load category", err)
	}
	if dataCategory == nil {
		return nil, nil
	}
	return FromDataModel(dataCategory), nil
}

func (s *Service) Create(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		s.logger.Error("category validation failed", "error", err, "name", name)
		return nil, err
	}

	existing, err := s.repo.GetByNameFold(name)
	if err != nil {
		s.logger.Error("failed to check for duplicate category", "error", err, "name", name)
		return nil, internal.NewInternalError("Could not create category", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError(
			fmt.Sprintf("A category named '%s' already exists", existing.Name),
			internal.ErrCodeDuplicateCategory)
	}

	dataCategory := ToDataModel(NewCategory(name))
	if err := s.repo.Create(dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", name)
		return nil, internal.NewInternalError("Could not create category", err)
	}

	s.logger.Info("category created", "category_id", dataCategory.ID, "name", name)
	return FromDataModel(dataCategory), nil
}

func (s *Service) Update(id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		s.logger.Error("category validation failed", "error", err, "category_id", id)
		return nil, err
	}

	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load category for update", "error", err, "category_id", id)
		return nil, internal.NewInternalError("Could not update category", err)
	}
	if dataCategory == nil {
		return nil, internal.NewNotFoundError("Category not found", internal.ErrCodeCategoryNotFound)
	}

	// a rename may collide with a different category; renaming onto itself
	// (including a case change) is allowed
	existing, err := s.repo.GetByNameFold(name)
	if err != nil {
		s.logger.Error("failed to check for duplicate category", "error", err, "name", name)
		return nil, internal.NewInternalError("Could not update category", err)
	}
	if existing != nil && existing.ID != id {
		return nil, internal.NewConflictError(
			fmt.Sprintf("A category named '%s' already exists", existing.Name),
			internal.ErrCodeDuplicateCategory)
	}

	dataCategory.Name = name
	if err := s.repo.Update(dataCategory); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, internal.NewInternalError("Could not update category", err)
	}

	s.logger.Info("category updated", "category_id", id, "name", name)
	return FromDataModel(dataCategory), nil
}

func (s *Service) Delete(id int64) error {
	dataCategory, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load category for delete", "error", err, "category_id", id)
		return internal.NewInternalError("Could not delete category", err)
	}
	if dataCategory == nil {
		return internal.NewNotFoundError("Category not found", internal.ErrCodeCategoryNotFound)
	}

	count, err := s.expenses.CountByCategory(id)
	if err != nil {
		s.logger.Error("failed to count expenses for category", "error", err, "category_id", id)
		return internal.NewInternalError("Could not delete category", err)
	}
	if count > 0 {
		return internal.NewConflictError(
			fmt.Sprintf("Cannot delete category '%s': %d expense(s) still use it", dataCategory.Name, count),
			internal.ErrCodeCategoryInUse)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return internal.NewInternalError("Could not delete category", err)
	}

	s.logger.Info("category deleted", "category_id", id, "name", dataCategory.Name)
	return nil
}

// EnsureDefaults seeds the fixed default category set when the store is
// empty. Idempotent: a non-empty store is left untouched.
func (s *Service) EnsureDefaults() error {
	count, err := s.repo.Count()
	if err != nil {
		s.logger.Error("failed to count categories", "error", err)
		return internal.NewInternalError("Could not seed default categories", err)
	}
	if count > 0 {
		return nil
	}

	for _, name := range DefaultCategories {
		dataCategory := ToDataModel(NewCategory(name))
		if err := s.repo.Create(dataCategory); err != nil {
			s.logger.Error("failed to seed default category", "error", err, "name", name)
			return internal.NewInternalError("Could not seed default categories", err)
		}
	}

	s.logger.Info("seeded default categories", "count", len(DefaultCategories))
	return nil
}

// UpsertByName returns the category with the given name (case-insensitive),
// creating it atomically when absent. Used by the import engine so two
// concurrent imports cannot double-create the fallback category.
func (s *Service) UpsertByName(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, err
	}

	dataCategory, err := s.repo.UpsertByName(name)
	if err != nil {
		s.logger.Error("failed to upsert category", "error", err, "name", name)
		return nil, internal.NewInternalError("Could not create category", err)
	}
	return FromDataModel(dataCategory), nil
}
