// Package transfer implements the CSV import/export engine. It is the only
// component composing the category store, the expense store, and the CSV
// codec; import is fault tolerant with per-row diagnostics, export emits
// injection-safe CSV text.
package transfer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	"github.com/frahmantamala/expense-ledger/internal/category"
	"github.com/frahmantamala/expense-ledger/internal/csv"
	"github.com/frahmantamala/expense-ledger/internal/expense"
	"github.com/shopspring/decimal"
)

const (
	// Header is the fixed CSV header for both import and export.
	Header = "Date,Amount,Category,Notes"

	exportDateFormat = "2006-01-02"
	maxInlineErrors  = 5
)

// importDateFormats are tried in order when parsing a data row's date.
// ISO first, then the common regional formats.
var importDateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// CategoryStore is the slice of the category service the engine needs.
type CategoryStore interface {
	GetAll() ([]*category.Category, error)
	UpsertByName(name string) (*category.Category, error)
}

// ExpenseStore is the slice of the expense service the engine needs.
type ExpenseStore interface {
	Create(dto expense.ExpenseDTO) (*expense.Expense, error)
	ListByDateRange(start, end time.Time) ([]*expense.Expense, error)
}

type Service struct {
	categories CategoryStore
	expenses   ExpenseStore
	logger     *slog.Logger
}

func NewService(categories CategoryStore, expenses ExpenseStore, logger *slog.Logger) *Service {
	return &Service{
		categories: categories,
		expenses:   expenses,
		logger:     logger,
	}
}

// ExportCSV renders all expenses in the inclusive date range as CSV text.
// Nil bounds default to all time. The caller decides where the text goes;
// no file I/O happens here.
func (s *Service) ExportCSV(start, end *time.Time) (string, error) {
	rangeStart := time.Time{}
	if start != nil {
		rangeStart = *start
	}
	rangeEnd := time.Now()
	if end != nil {
		rangeEnd = *end
	}

	categories, err := s.categories.GetAll()
	if err != nil {
		return "", err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	expenses, err := s.expenses.ListByDateRange(rangeStart, rangeEnd)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")

	for _, e := range expenses {
		name, ok := names[e.CategoryID]
		if !ok {
			name = "Unknown"
		}
		b.WriteString(e.ExpenseDate.Format(exportDateFormat))
		b.WriteString(",")
		b.WriteString(e.Amount.String())
		b.WriteString(",")
		b.WriteString(csv.EscapeField(name))
		b.WriteString(",")
		b.WriteString(csv.EscapeField(e.Notes))
		b.WriteString("\n")
	}

	s.logger.Info("exported expenses to CSV", "rows", len(expenses))
	return b.String(), nil
}

// ImportCSV parses the whole CSV text and inserts every importable row. A
// bad row is skipped, never fatal; only a structurally empty file or an
// unexpected internal fault fails the call, and already-imported rows are
// not rolled back.
func (s *Service) ImportCSV(text string) (result ImportResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("import panicked", "panic", rec)
			result.Success = false
			result.Message = fmt.Sprintf("Import stopped unexpectedly after %d expenses: %v", result.Imported, rec)
		}
	}()

	lines := splitLines(text)
	if len(lines) < 2 {
		return ImportResult{
			Success: false,
			Message: "CSV file must contain a header row and at least one data row",
		}
	}

	// Advisory snapshot of category names; refreshed only when the
	// fallback category is created mid-import.
	lookup, err := s.categoryLookup()
	if err != nil {
		s.logger.Error("failed to load categories for import", "error", err)
		return ImportResult{
			Success: false,
			Message: "Could not load categories: " + err.Error(),
		}
	}

	var rowErrors []string

	for i, line := range lines[1:] {
		lineNum := i + 2

		fields := csv.ParseLine(line)
		if len(fields) < 3 {
			result.Skipped++
			continue
		}

		date, ok := parseImportDate(strings.TrimSpace(fields[0]))
		if !ok {
			result.Skipped++
			continue
		}

		// sign validity is re-checked by the store at insert; any
		// parseable decimal passes here
		amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			result.Skipped++
			continue
		}

		name := strings.TrimSpace(fields[2])
		if name == "" {
			result.Skipped++
			continue
		}

		categoryID, ok := lookup[strings.ToLower(name)]
		if !ok {
			categoryID, ok = lookup[strings.ToLower(category.DefaultName)]
			if !ok {
				created, err := s.categories.UpsertByName(category.DefaultName)
				if err != nil {
					rowErrors = append(rowErrors,
						fmt.Sprintf("Line %d: Could not create '%s' category", lineNum, category.DefaultName))
					result.Skipped++
					continue
				}
				if refreshed, err := s.categoryLookup(); err == nil {
					lookup = refreshed
				}
				lookup[strings.ToLower(created.Name)] = created.ID
				categoryID = created.ID
			}
		}

		notes := ""
		if len(fields) > 3 {
			notes = fields[3]
		}

		_, err = s.expenses.Create(expense.ExpenseDTO{
			Amount:      amount,
			ExpenseDate: date,
			CategoryID:  categoryID,
			Notes:       notes,
		})
		if err != nil {
			if internal.IsInternal(err) {
				s.logger.Error("import aborted by storage fault", "error", err, "line", lineNum)
				result.Success = false
				result.Message = fmt.Sprintf("Import stopped after %d expenses: %s", result.Imported, err.Error())
				result.Errors = rowErrors
				return result
			}
			rowErrors = append(rowErrors, fmt.Sprintf("Line %d: %s", lineNum, err.Error()))
			result.Skipped++
			continue
		}

		result.Imported++
	}

	result.Success = true
	result.Errors = rowErrors
	result.Message = summaryMessage(result.Imported, result.Skipped, rowErrors)

	s.logger.Info("import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(rowErrors))
	return result
}

func (s *Service) categoryLookup() (map[string]int64, error) {
	categories, err := s.categories.GetAll()
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]int64, len(categories))
	for _, c := range categories {
		lookup[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
	}
	return lookup, nil
}

// splitLines normalizes \r\n and bare \r to \n, then drops empty lines.
func splitLines(text string) []string {
	normalized := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseImportDate(value string) (time.Time, bool) {
	for _, format := range importDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func summaryMessage(imported, skipped int, rowErrors []string) string {
	msg := fmt.Sprintf("Successfully imported %d expenses", imported)
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d invalid rows", skipped)
	}
	if len(rowErrors) > 0 {
		shown := rowErrors
		if len(shown) > maxInlineErrors {
			shown = shown[:maxInlineErrors]
		}
		msg += ". " + strings.Join(shown, "; ")
		if len(rowErrors) > maxInlineErrors {
			msg += fmt.Sprintf(" and %d more...", len(rowErrors)-maxInlineErrors)
		}
	}
	return msg
}
