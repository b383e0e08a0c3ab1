package report

import (
	"net/http"
	"time"

	"github.com/frahmantamala/expense-ledger/internal/transport"
	"github.com/shopspring/decimal"
)

const queryDateFormat = "2006-01-02"

type ServiceAPI interface {
	CategorySummaries(start, end time.Time) ([]CategorySummary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCategorySummaries reports per-category totals and percentages over the
// requested range, defaulting to all time.
func (h *Handler) GetCategorySummaries(w http.ResponseWriter, r *http.Request) {
	start := time.Time{}
	end := time.Now()

	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		t, err := time.Parse(queryDateFormat, startStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		start = t
	}
	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		t, err := time.Parse(queryDateFormat, endStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		end = t
	}

	summaries, err := h.Service.CategorySummaries(start, end)
	if err != nil {
		h.Logger.Error("GetCategorySummaries: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Total)
	}

	h.WriteJSON(w, http.StatusOK, SummariesResponse{
		Summaries: summaries,
		Total:     total,
	})
}
