package repository

import (
	"testing"

	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/models"
)

func createLedgerProduct(t *testing.T, repo *GormProductRepository, name string, stock, sold int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromInt(100),
		StockQuantity: stock,
		QuantitySold:  sold,
		IsActive:      true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestDecrementStockRequiresSufficientQuantity(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	product := createLedgerProduct(t, repo, "lamp", 3, 0)

	affected, err := repo.DecrementStock(product.ID, 2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement affected want 1 got %d", affected)
	}

	affected, err = repo.DecrementStock(product.ID, 2)
	if err != nil {
		t.Fatalf("second decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("insufficient decrement should affect 0 rows, got %d", affected)
	}

	stored, err := repo.GetByID(product.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stored.StockQuantity != 1 || stored.QuantitySold != 2 {
		t.Fatalf("want stock=1 sold=2, got stock=%d sold=%d", stored.StockQuantity, stored.QuantitySold)
	}
}

func TestIncrementStockFloorsSoldAtZero(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	product := createLedgerProduct(t, repo, "vase", 5, 1)

	affected, err := repo.IncrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("increment affected want 1 got %d", affected)
	}
	stored, _ := repo.GetByID(product.ID)
	if stored.StockQuantity != 8 || stored.QuantitySold != 0 {
		t.Fatalf("want stock=8 sold=0, got stock=%d sold=%d", stored.StockQuantity, stored.QuantitySold)
	}
}

func TestIncrementStockMissingProduct(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	affected, err := repo.IncrementStock(999, 1)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("missing product should affect 0 rows, got %d", affected)
	}
	if _, err := repo.DecrementStock(0, 1); err == nil {
		t.Fatalf("expected invalid params error")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	product, err := repo.GetByID(42)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil product")
	}
}

func TestStockAdjustmentInsertOncePerReference(t *testing.T) {
	repo := NewStockAdjustmentRepository(openRepositoryTestDB(t))
	created, err := repo.Insert(&models.StockAdjustment{Reference: "OD1", State: constants.StockAdjustReduced, Items: "[]"})
	if err != nil || !created {
		t.Fatalf("first insert want created, got created=%v err=%v", created, err)
	}
	created, err = repo.Insert(&models.StockAdjustment{Reference: "OD1", State: constants.StockAdjustVoided, Items: "[]"})
	if err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}
	if created {
		t.Fatalf("duplicate insert should not be created")
	}

	affected, err := repo.TransitionState("OD1", constants.StockAdjustReduced, constants.StockAdjustRestored)
	if err != nil || affected != 1 {
		t.Fatalf("transition want 1 row, got %d err=%v", affected, err)
	}
	affected, _ = repo.TransitionState("OD1", constants.StockAdjustReduced, constants.StockAdjustRestored)
	if affected != 0 {
		t.Fatalf("second transition should be a no-op")
	}
	stored, err := repo.GetByReference("OD1")
	if err != nil || stored == nil || stored.State != constants.StockAdjustRestored {
		t.Fatalf("want RESTORED adjustment, got %+v err=%v", stored, err)
	}
}
