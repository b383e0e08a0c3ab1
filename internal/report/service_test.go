package report_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-ledger/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestReportService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Service Suite")
}

// MockSummarizer implements report.ExpenseSummarizer for testing
type MockSummarizer struct {
	totals     []expenseDatamodel.CategoryTotal
	shouldFail bool
	failError  error
}

func (m *MockSummarizer) SummarizeByCategory(start, end time.Time) ([]expenseDatamodel.CategoryTotal, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.totals, nil
}

var _ = Describe("Report Service", func() {
	var (
		mockSummarizer *MockSummarizer
		service        *report.Service
		logger         *slog.Logger
		start, end     time.Time
	)

	BeforeEach(func() {
		mockSummarizer = &MockSummarizer{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = report.NewService(mockSummarizer, logger)
		start = time.Time{}
		end = time.Now()
	})

	Describe("CategorySummaries", func() {
		Context("with expenses in several categories", func() {
			BeforeEach(func() {
				mockSummarizer.totals = []expenseDatamodel.CategoryTotal{
					{CategoryID: 1, CategoryName: "Food", Total: decimal.NewFromInt(25), Count: 2},
					{CategoryID: 2, CategoryName: "Travel", Total: decimal.NewFromInt(75), Count: 1},
				}
			})

			It("should sort by total descending", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries).To(HaveLen(2))
				Expect(summaries[0].CategoryName).To(Equal("Travel"))
				Expect(summaries[1].CategoryName).To(Equal("Food"))
			})

			It("should derive percentages of the grand total", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries[0].Percentage.Equal(decimal.NewFromInt(75))).To(BeTrue())
				Expect(summaries[1].Percentage.Equal(decimal.NewFromInt(25))).To(BeTrue())
			})

			It("should carry the counts through", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries[0].Count).To(Equal(int64(1)))
				Expect(summaries[1].Count).To(Equal(int64(2)))
			})
		})

		Context("with a single category", func() {
			BeforeEach(func() {
				mockSummarizer.totals = []expenseDatamodel.CategoryTotal{
					{CategoryID: 1, CategoryName: "Food", Total: decimal.NewFromFloat(12.5), Count: 1},
				}
			})

			It("should report a 100 percent share", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries[0].Percentage.Equal(decimal.NewFromInt(100))).To(BeTrue())
			})
		})

		Context("with uneven splits", func() {
			BeforeEach(func() {
				mockSummarizer.totals = []expenseDatamodel.CategoryTotal{
					{CategoryID: 1, CategoryName: "Food", Total: decimal.NewFromInt(1), Count: 1},
					{CategoryID: 2, CategoryName: "Travel", Total: decimal.NewFromInt(2), Count: 1},
				}
			})

			It("should round percentages to four decimal places", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries[0].Percentage.String()).To(Equal("66.6667"))
				Expect(summaries[1].Percentage.String()).To(Equal("33.3333"))
			})
		})

		Context("with no expenses", func() {
			It("should return an empty slice", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).NotTo(HaveOccurred())
				Expect(summaries).To(BeEmpty())
			})
		})

		Context("when the store fails", func() {
			BeforeEach(func() {
				mockSummarizer.shouldFail = true
				mockSummarizer.failError = errors.New("database error")
			})

			It("should return an internal error", func() {
				summaries, err := service.CategorySummaries(start, end)
				Expect(err).To(HaveOccurred())
				Expect(summaries).To(BeNil())
				Expect(internal.IsInternal(err)).To(BeTrue())
			})
		})
	})
})
