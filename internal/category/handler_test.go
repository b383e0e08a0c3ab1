package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/expense-ledger/internal/category"
	categorySqlite "github.com/frahmantamala/expense-ledger/internal/category/sqlite"
	categoryDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	expenseSqlite "github.com/frahmantamala/expense-ledger/internal/expense/sqlite"
	"github.com/frahmantamala/expense-ledger/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func decimalFromString(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	Expect(err).NotTo(HaveOccurred())
	return d
}

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    category.RepositoryAPI
		service *category.Service
		handler *category.Handler
		router  *chi.Mux
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&categoryDatamodel.ExpenseCategory{}, &expenseDatamodel.Expense{})
		Expect(err).NotTo(HaveOccurred())

		repo = categorySqlite.NewCategoryRepository(db)
		expenseRepo := expenseSqlite.NewExpenseRepository(db)
		service = category.NewService(repo, expenseRepo, slogger)
		baseHandler := &transport.BaseHandler{Logger: slogger}
		handler = category.NewHandler(baseHandler, service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)

		for _, name := range []string{"Food & Dining", "Travel"} {
			err := repo.Create(&categoryDatamodel.ExpenseCategory{Name: name})
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		Expect(err).NotTo(HaveOccurred())
		Expect(response.Categories).To(HaveLen(2))

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
		}
		Expect(names).To(ConsistOf("Food & Dining", "Travel"))
	})

	It("should create a category via POST /categories", func() {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Gifts"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))

		var response category.CategoryResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		Expect(err).NotTo(HaveOccurred())
		Expect(response.Name).To(Equal("Gifts"))
		Expect(response.ID).To(BeNumerically(">", 0))
	})

	It("should return 409 for a duplicate name", func() {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"food & dining"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("already exists"))
	})

	It("should return 400 for a blank name", func() {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"  "}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for an unknown category id", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories/999", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should rename a category via PUT", func() {
		req := httptest.NewRequest(http.MethodPut, "/categories/1", strings.NewReader(`{"name":"Dining"}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))

		var response category.CategoryResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		Expect(err).NotTo(HaveOccurred())
		Expect(response.Name).To(Equal("Dining"))
	})

	It("should delete an unused category", func() {
		req := httptest.NewRequest(http.MethodDelete, "/categories/1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should return 409 when deleting a category with expenses", func() {
		err := db.Create(&expenseDatamodel.Expense{
			Amount:     decimalFromString("9.99"),
			CategoryID: 1,
		}).Error
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodDelete, "/categories/1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("1 expense(s) still use it"))
	})
})
