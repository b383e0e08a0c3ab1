package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/expense-ledger/internal"
	"github.com/frahmantamala/expense-ledger/internal/category"
	categorySqlite "github.com/frahmantamala/expense-ledger/internal/category/sqlite"
	"github.com/frahmantamala/expense-ledger/internal/expense"
	expenseSqlite "github.com/frahmantamala/expense-ledger/internal/expense/sqlite"
	"github.com/frahmantamala/expense-ledger/internal/report"
	"github.com/frahmantamala/expense-ledger/internal/transfer"
	"github.com/frahmantamala/expense-ledger/internal/transport"
	"github.com/frahmantamala/expense-ledger/internal/transport/rest"
	"github.com/frahmantamala/expense-ledger/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormSqlite.Dialector{Conn: db.DB}, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over sqlite: %w", err)
	}

	categoryRepo := categorySqlite.NewCategoryRepository(gormDB)
	expenseRepo := expenseSqlite.NewExpenseRepository(gormDB)

	categoryService := category.NewService(categoryRepo, expenseRepo, log)
	expenseService := expense.NewService(expenseRepo, categoryRepo, log)
	transferService := transfer.NewService(categoryService, expenseService, log)
	reportService := report.NewService(expenseRepo, log)

	if err := categoryService.EnsureDefaults(); err != nil {
		return nil, fmt.Errorf("failed to seed default categories: %w", err)
	}

	baseHandler := transport.NewBaseHandler(log)
	categoryHandler := category.NewHandler(baseHandler, categoryService)
	expenseHandler := expense.NewHandler(baseHandler, expenseService)
	transferHandler := transfer.NewHandler(baseHandler, transferService)
	reportHandler := report.NewHandler(baseHandler, reportService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, categoryHandler, expenseHandler, transferHandler, reportHandler, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "sqlite3"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
