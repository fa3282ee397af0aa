package provider

import (
	"testing"
	"time"

	"github.com/luxdecor-shop/internal/inventory"
)

func TestSplitCatalogClientsKeepsCheckoutOffSnapshotCache(t *testing.T) {
	base := inventory.NewLocalClient(nil)

	checkout, cart := splitCatalogClients(base, false, time.Minute)
	if checkout != inventory.Client(base) || cart != inventory.Client(base) {
		t.Fatalf("without redis both sides should use the catalog client directly")
	}
	checkout, cart = splitCatalogClients(base, true, 0)
	if checkout != inventory.Client(base) || cart != inventory.Client(base) {
		t.Fatalf("zero ttl should disable the snapshot cache")
	}

	checkout, cart = splitCatalogClients(base, true, 30*time.Second)
	if _, ok := cart.(*inventory.CachedClient); !ok {
		t.Fatalf("cart should read through the snapshot cache, got %T", cart)
	}
	bypass, ok := checkout.(*inventory.CachedClient)
	if !ok {
		t.Fatalf("checkout should keep cache invalidation, got %T", checkout)
	}
	if bypass.CachesSnapshots() {
		t.Fatalf("checkout must read live prices")
	}
	if cached := cart.(*inventory.CachedClient); !cached.CachesSnapshots() {
		t.Fatalf("cart client should cache snapshots")
	}
}
