package expense_test

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	categoryDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-ledger/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestExpenseService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Service Suite")
}

// MockRepository implements expense.RepositoryAPI for testing
type MockRepository struct {
	expenses   map[int64]*expenseDatamodel.Expense
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		expenses: make(map[int64]*expenseDatamodel.Expense),
		nextID:   1,
	}
}

func (m *MockRepository) Create(exp *expenseDatamodel.Expense) error {
	if m.shouldFail {
		return m.failError
	}
	exp.ID = m.nextID
	m.nextID++
	m.expenses[exp.ID] = exp
	return nil
}

func (m *MockRepository) GetByID(id int64) (*expenseDatamodel.Expense, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	exp, exists := m.expenses[id]
	if !exists {
		return nil, nil
	}
	return exp, nil
}

func (m *MockRepository) Update(exp *expenseDatamodel.Expense) error {
	if m.shouldFail {
		return m.failError
	}
	m.expenses[exp.ID] = exp
	return nil
}

func (m *MockRepository) Delete(id int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	if _, exists := m.expenses[id]; !exists {
		return 0, nil
	}
	delete(m.expenses, id)
	return 1, nil
}

func (m *MockRepository) DeleteAll() error {
	if m.shouldFail {
		return m.failError
	}
	m.expenses = make(map[int64]*expenseDatamodel.Expense)
	return nil
}

func (m *MockRepository) List(limit, offset int) ([]*expenseDatamodel.Expense, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*expenseDatamodel.Expense
	for _, exp := range m.expenses {
		result = append(result, exp)
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRepository) ListByDateRange(start, end time.Time) ([]*expenseDatamodel.Expense, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*expenseDatamodel.Expense
	for _, exp := range m.expenses {
		if !exp.ExpenseDate.Before(start) && !exp.ExpenseDate.After(end) {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *MockRepository) ListByCategory(categoryID int64) ([]*expenseDatamodel.Expense, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*expenseDatamodel.Expense
	for _, exp := range m.expenses {
		if exp.CategoryID == categoryID {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *MockRepository) SumAmount() (decimal.Decimal, error) {
	if m.shouldFail {
		return decimal.Zero, m.failError
	}
	total := decimal.Zero
	for _, exp := range m.expenses {
		total = total.Add(exp.Amount)
	}
	return total, nil
}

func (m *MockRepository) SumAmountInRange(start, end time.Time) (decimal.Decimal, error) {
	if m.shouldFail {
		return decimal.Zero, m.failError
	}
	total := decimal.Zero
	for _, exp := range m.expenses {
		if !exp.ExpenseDate.Before(start) && !exp.ExpenseDate.After(end) {
			total = total.Add(exp.Amount)
		}
	}
	return total, nil
}

func (m *MockRepository) CountByCategory(categoryID int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	var count int64
	for _, exp := range m.expenses {
		if exp.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) SummarizeByCategory(start, end time.Time) ([]expenseDatamodel.CategoryTotal, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return nil, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

// MockCategoryChecker implements expense.CategoryChecker for testing
type MockCategoryChecker struct {
	categories map[int64]*categoryDatamodel.ExpenseCategory
	shouldFail bool
	failError  error
}

func NewMockCategoryChecker() *MockCategoryChecker {
	return &MockCategoryChecker{categories: make(map[int64]*categoryDatamodel.ExpenseCategory)}
}

func (m *MockCategoryChecker) GetByID(id int64) (*categoryDatamodel.ExpenseCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	cat, exists := m.categories[id]
	if !exists {
		return nil, nil
	}
	return cat, nil
}

func (m *MockCategoryChecker) AddCategory(id int64, name string) {
	m.categories[id] = &categoryDatamodel.ExpenseCategory{ID: id, Name: name}
}

var _ = Describe("Expense Service", func() {
	var (
		mockRepo       *MockRepository
		mockCategories *MockCategoryChecker
		service        *expense.Service
		logger         *slog.Logger
		yesterday      time.Time
	)

	validDTO := func() expense.ExpenseDTO {
		return expense.ExpenseDTO{
			Amount:      decimal.NewFromFloat(12.50),
			ExpenseDate: yesterday,
			CategoryID:  1,
			Notes:       "lunch",
		}
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockCategories = NewMockCategoryChecker()
		mockCategories.AddCategory(1, "Food & Dining")
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(mockRepo, mockCategories, logger)
		yesterday = time.Now().AddDate(0, 0, -1)
	})

	Describe("Create", func() {
		It("should create a valid expense", func() {
			result, err := service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.Amount).To(Equal(decimal.NewFromFloat(12.50)))
			Expect(result.Notes).To(Equal("lunch"))
		})

		It("should reject a zero amount", func() {
			dto := validDTO()
			dto.Amount = decimal.Zero

			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("should reject a negative amount", func() {
			dto := validDTO()
			dto.Amount = decimal.NewFromFloat(-5)

			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a future date", func() {
			dto := validDTO()
			dto.ExpenseDate = time.Now().AddDate(0, 0, 1)

			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("should reject a missing date", func() {
			dto := validDTO()
			dto.ExpenseDate = time.Time{}

			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown category", func() {
			dto := validDTO()
			dto.CategoryID = 999

			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("The selected category does not exist"))
		})

		It("should silently truncate over-length notes", func() {
			dto := validDTO()
			dto.Notes = strings.Repeat("n", 600)

			result, err := service.Create(dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Notes).To(HaveLen(500))
		})

		It("should trim notes", func() {
			dto := validDTO()
			dto.Notes = "  coffee  "

			result, err := service.Create(dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Notes).To(Equal("coffee"))
		})
	})

	Describe("Update", func() {
		var created *expense.Expense

		BeforeEach(func() {
			var err error
			created, err = service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should replace all mutable fields", func() {
			dto := validDTO()
			dto.Amount = decimal.NewFromFloat(99.99)
			dto.Notes = "dinner"

			result, err := service.Update(created.ID, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Amount).To(Equal(decimal.NewFromFloat(99.99)))
			Expect(result.Notes).To(Equal("dinner"))
		})

		It("should return not found for an unknown id", func() {
			_, err := service.Update(999, validDTO())
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("should run the same validation as Create", func() {
			dto := validDTO()
			dto.Amount = decimal.Zero

			_, err := service.Update(created.ID, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("should delete an existing expense", func() {
			created, err := service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(created.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return not found for an unknown id", func() {
			err := service.Delete(999)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("DeleteAll", func() {
		It("should succeed on an empty store", func() {
			Expect(service.DeleteAll()).To(Succeed())
		})

		It("should remove every expense", func() {
			_, err := service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteAll()).To(Succeed())

			total, err := service.TotalAmount()
			Expect(err).NotTo(HaveOccurred())
			Expect(total.IsZero()).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("should return the expense", func() {
			created, err := service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Get(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(created.ID))
		})

		It("should return not found for an unknown id", func() {
			_, err := service.Get(999)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("TotalAmount", func() {
		It("should return zero for an empty store", func() {
			total, err := service.TotalAmount()
			Expect(err).NotTo(HaveOccurred())
			Expect(total.IsZero()).To(BeTrue())
		})

		It("should sum all expense amounts", func() {
			dto := validDTO()
			_, err := service.Create(dto)
			Expect(err).NotTo(HaveOccurred())

			dto.Amount = decimal.NewFromFloat(7.50)
			_, err = service.Create(dto)
			Expect(err).NotTo(HaveOccurred())

			total, err := service.TotalAmount()
			Expect(err).NotTo(HaveOccurred())
			Expect(total.Equal(decimal.NewFromInt(20))).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("should clamp invalid page parameters", func() {
			_, err := service.Create(validDTO())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.List(-1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})
	})

	Context("when the repository fails", func() {
		BeforeEach(func() {
			mockRepo.SetShouldFail(true, errors.New("disk full"))
		})

		It("should wrap Create failures as internal errors", func() {
			_, err := service.Create(validDTO())
			Expect(err).To(HaveOccurred())
			Expect(internal.IsInternal(err)).To(BeTrue())
		})

		It("should wrap TotalAmount failures as internal errors", func() {
			_, err := service.TotalAmount()
			Expect(err).To(HaveOccurred())
			Expect(internal.IsInternal(err)).To(BeTrue())
		})
	})
})
