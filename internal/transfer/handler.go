package transfer

import (
	"io"
	"net/http"
	"time"

	"github.com/frahmantamala/expense-ledger/internal/transport"
)

const queryDateFormat = "2006-01-02"

type ServiceAPI interface {
	ExportCSV(start, end *time.Time) (string, error)
	ImportCSV(text string) ImportResult
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

// ImportCSV accepts the raw CSV document as the request body and responds
// with the per-row reconciliation outcome.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error("ImportCSV: failed to read request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	result := h.Service.ImportCSV(string(body))
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}

	h.WriteJSON(w, status, result)
}

// ExportCSV streams the ledger as CSV text; start_date and end_date are
// optional and default to all time.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time

	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		t, err := time.Parse(queryDateFormat, startStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		start = &t
	}
	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		t, err := time.Parse(queryDateFormat, endStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		end = &t
	}

	text, err := h.Service.ExportCSV(start, end)
	if err != nil {
		h.Logger.Error("ExportCSV: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		h.Logger.Error("ExportCSV: failed to write response", "error", err)
	}
}
