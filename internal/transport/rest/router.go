package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-ledger/internal/category"
	"github.com/frahmantamala/expense-ledger/internal/expense"
	"github.com/frahmantamala/expense-ledger/internal/report"
	"github.com/frahmantamala/expense-ledger/internal/transfer"
	"github.com/frahmantamala/expense-ledger/internal/transport/middleware"
	"github.com/frahmantamala/expense-ledger/internal/transport/swagger"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	categoryHandler *category.Handler,
	expenseHandler *expense.Handler,
	transferHandler *transfer.Handler,
	reportHandler *report.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI spec at root, with the swagger UI alongside
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/categories", func(cr chi.Router) {
			cr.Get("/", categoryHandler.GetCategories)
			cr.Post("/", categoryHandler.CreateCategory)
			cr.Get("/{id}", categoryHandler.GetCategory)
			cr.Put("/{id}", categoryHandler.UpdateCategory)
			cr.Delete("/{id}", categoryHandler.DeleteCategory)
		})

		r.Route("/expenses", func(er chi.Router) {
			er.Get("/", expenseHandler.ListExpenses)
			er.Post("/", expenseHandler.CreateExpense)
			er.Delete("/", expenseHandler.DeleteAllExpenses)
			er.Get("/total", expenseHandler.GetTotal)
			er.Get("/{id}", expenseHandler.GetExpense)
			er.Put("/{id}", expenseHandler.UpdateExpense)
			er.Delete("/{id}", expenseHandler.DeleteExpense)
		})

		r.Route("/transfer", func(tr chi.Router) {
			tr.Post("/import", transferHandler.ImportCSV)
			tr.Get("/export", transferHandler.ExportCSV)
		})

		r.Get("/reports/categories", reportHandler.GetCategorySummaries)
	})
}
