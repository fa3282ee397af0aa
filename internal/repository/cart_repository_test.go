package repository

import (
	"testing"
)

func TestCartAddQuantityAccumulates(t *testing.T) {
	repo := NewCartRepository(openRepositoryTestDB(t))
	cart, err := repo.GetOrCreate(7)
	if err != nil {
		t.Fatalf("get or create cart failed: %v", err)
	}
	again, err := repo.GetOrCreate(7)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("cart should be reused, got %d and %d", cart.ID, again.ID)
	}

	if err := repo.AddQuantity(cart.ID, 1, 2); err != nil {
		t.Fatalf("add quantity failed: %v", err)
	}
	if err := repo.AddQuantity(cart.ID, 1, 3); err != nil {
		t.Fatalf("add quantity again failed: %v", err)
	}
	if err := repo.AddQuantity(cart.ID, 2, 1); err != nil {
		t.Fatalf("add second product failed: %v", err)
	}

	stored, err := repo.GetByUser(7)
	if err != nil || stored == nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(stored.Items))
	}
	if stored.Items[0].ProductID != 1 || stored.Items[0].Quantity != 5 {
		t.Fatalf("want product 1 qty 5, got product %d qty %d", stored.Items[0].ProductID, stored.Items[0].Quantity)
	}
}

func TestCartDeleteItemsKeepsOthers(t *testing.T) {
	repo := NewCartRepository(openRepositoryTestDB(t))
	cart, err := repo.GetOrCreate(8)
	if err != nil {
		t.Fatalf("get or create cart failed: %v", err)
	}
	for _, productID := range []uint{1, 2, 3} {
		if err := repo.AddQuantity(cart.ID, productID, 1); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}
	deleted, err := repo.DeleteItems(cart.ID, []uint{1, 3})
	if err != nil {
		t.Fatalf("delete items failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("want 2 deleted, got %d", deleted)
	}
	if err := repo.DeleteItem(cart.ID, 99); err != nil {
		t.Fatalf("deleting absent item should not fail: %v", err)
	}
	stored, _ := repo.GetByUser(8)
	if len(stored.Items) != 1 || stored.Items[0].ProductID != 2 {
		t.Fatalf("want only product 2 left, got %+v", stored.Items)
	}
}

func TestCartGetByUserMissing(t *testing.T) {
	repo := NewCartRepository(openRepositoryTestDB(t))
	cart, err := repo.GetByUser(404)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart")
	}
}
