package expense

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/expense-ledger/internal/transport"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

const queryDateFormat = "2006-01-02"

type ServiceAPI interface {
	Create(dto ExpenseDTO) (*Expense, error)
	Update(id int64, dto ExpenseDTO) (*Expense, error)
	Delete(id int64) error
	DeleteAll() error
	Get(id int64) (*Expense, error)
	List(page, pageSize int) ([]*Expense, error)
	ListByDateRange(start, end time.Time) ([]*Expense, error)
	ListByCategory(categoryID int64) ([]*Expense, error)
	TotalAmount() (decimal.Decimal, error)
	TotalAmountInRange(start, end time.Time) (decimal.Decimal, error)
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

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.Create(dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateExpense: expense created",
		"expense_id", exp.ID,
		"amount", exp.Amount.String())

	h.WriteJSON(w, http.StatusCreated, exp)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	exp, err := h.Service.Get(id)
	if err != nil {
		h.Logger.Error("GetExpense: service error", "error", err, "expense_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateExpense: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.Update(id, dto)
	if err != nil {
		h.Logger.Error("UpdateExpense: service error", "error", err, "expense_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.expenseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteExpense: service error", "error", err, "expense_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) DeleteAllExpenses(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAll(); err != nil {
		h.Logger.Error("DeleteAllExpenses: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListExpenses lists one page of expenses, or filters by category or date
// range when the matching query parameters are present.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	if categoryIDStr := r.URL.Query().Get("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		expenses, err := h.Service.ListByCategory(categoryID)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses})
		return
	}

	if start, end, ok, handled := h.dateRange(w, r); handled {
		return
	} else if ok {
		expenses, err := h.Service.ListByDateRange(start, end)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses})
		return
	}

	page := 1
	pageSize := 20
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			pageSize = s
		}
	}

	expenses, err := h.Service.List(page, pageSize)
	if err != nil {
		h.Logger.Error("ListExpenses: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ExpensesResponse{
		Expenses: expenses,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *Handler) GetTotal(w http.ResponseWriter, r *http.Request) {
	start, end, ok, handled := h.dateRange(w, r)
	if handled {
		return
	}

	var total decimal.Decimal
	var err error
	if ok {
		total, err = h.Service.TotalAmountInRange(start, end)
	} else {
		total, err = h.Service.TotalAmount()
	}
	if err != nil {
		h.Logger.Error("GetTotal: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TotalResponse{Total: total})
}

func (h *Handler) expenseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid expense ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return 0, false
	}
	return id, true
}

// dateRange reads optional start_date/end_date query parameters. ok is true
// when both are present and valid; handled is true when a response was
// already written for a malformed value.
func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok, handled bool) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr == "" && endStr == "" {
		return time.Time{}, time.Time{}, false, false
	}

	var err error
	start, err = time.Parse(queryDateFormat, startStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false, true
	}
	end, err = time.Parse(queryDateFormat, endStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false, true
	}

	return start, end, true, false
}
