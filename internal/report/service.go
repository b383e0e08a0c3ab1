package report

import (
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	expenseDatamodel "github.com/frahmantamala/expense-ledger/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

// ExpenseSummarizer is the slice of the expense store the report service
// consumes: grouped totals per category over a date range.
type ExpenseSummarizer interface {
	SummarizeByCategory(start, end time.Time) ([]expenseDatamodel.CategoryTotal, error)
}

type CategorySummary struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
	Percentage   decimal.Decimal `json:"percentage"`
}

type SummariesResponse struct {
	Summaries []CategorySummary `json:"summaries"`
	Total     decimal.Decimal   `json:"total"`
}

type Service struct {
	expenses ExpenseSummarizer
	logger   *slog.Logger
}

func NewService(expenses ExpenseSummarizer, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		logger:   logger,
	}
}

var oneHundred = decimal.NewFromInt(100)

// CategorySummaries aggregates expenses per category over the inclusive
// date range, sorts by total descending and derives each group's share of
// the grand total on a 0-100 scale. Sorting and percentages are computed
// here, after aggregation, not pushed to the store.
func (s *Service) CategorySummaries(start, end time.Time) ([]CategorySummary, error) {
	totals, err := s.expenses.SummarizeByCategory(start, end)
	if err != nil {
		s.logger.Error("failed to summarize expenses", "error", err)
		return nil, internal.NewInternalError("Could not compute category summaries", err)
	}

	grandTotal := decimal.Zero
	for _, t := range totals {
		grandTotal = grandTotal.Add(t.Total)
	}

	summaries := make([]CategorySummary, 0, len(totals))
	for _, t := range totals {
		summary := CategorySummary{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Total:        t.Total,
			Count:        t.Count,
			Percentage:   decimal.Zero,
		}
		if grandTotal.IsPositive() {
			summary.Percentage = t.Total.Mul(oneHundred).DivRound(grandTotal, 4)
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total.GreaterThan(summaries[j].Total)
	})

	return summaries, nil
}
