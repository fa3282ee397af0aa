package inventory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	db := openInventoryTestDB(t)
	return NewLedger(repository.NewProductRepository(db), repository.NewStockAdjustmentRepository(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product
}
