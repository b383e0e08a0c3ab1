package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/expense-ledger/internal/category"
	categorySqlite "github.com/frahmantamala/expense-ledger/internal/category/sqlite"
	expenseSqlite "github.com/frahmantamala/expense-ledger/internal/expense/sqlite"
	"github.com/frahmantamala/expense-ledger/pkg/logger"
	"github.com/spf13/cobra"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default category set",
	Long:  `Seed the database with the default expense categories. Does nothing when categories already exist.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		gormDB, err := gorm.Open(gormSqlite.Dialector{Conn: sqlxDB.DB}, &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm over sqlite: %v", err)
		}

		logger.Init(os.Getenv("APP_ENV"))

		categoryRepo := categorySqlite.NewCategoryRepository(gormDB)
		expenseRepo := expenseSqlite.NewExpenseRepository(gormDB)
		categoryService := category.NewService(categoryRepo, expenseRepo, logger.L())

		if err := categoryService.EnsureDefaults(); err != nil {
			log.Fatalf("failed to seed default categories: %v", err)
		}

		fmt.Println("Default expense categories seeded successfully")
	},
}
