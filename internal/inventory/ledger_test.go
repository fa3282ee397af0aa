package inventory

import (
	"errors"
	"sync"
	"testing"

	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerFetchProduct(t *testing.T) {
	ledger, db := newTestLedger(t)
	lamp := seedProduct(t, db, "Lamp", 250000, 4)

	snapshot, err := ledger.FetchProduct(lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", snapshot.Name)
	assert.Equal(t, "250000.00", snapshot.Price.String())
	assert.Equal(t, 4, snapshot.StockQuantity)

	_, err = ledger.FetchProduct(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", lamp.ID).Update("is_active", false).Error)
	_, err = ledger.FetchProduct(lamp.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLedgerReduceStockAllOrNothing(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)
	rug := seedProduct(t, db, "Rug", 300, 1)

	err := ledger.ReduceStock("OD-ALL-OR-NOTHING", []StockItem{
		{ProductID: vase.ID, Quantity: 2},
		{ProductID: rug.ID, Quantity: 2},
	})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, rug.ID, insufficient.ProductID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, reloadProduct(t, db, vase.ID).StockQuantity)
	assert.Equal(t, 1, reloadProduct(t, db, rug.ID).StockQuantity)

	var count int64
	require.NoError(t, db.Model(&models.StockAdjustment{}).Count(&count).Error)
	assert.Zero(t, count, "rejected reduce must not leave a journal row")
}

func TestLedgerReduceStockMergesDuplicates(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)

	require.NoError(t, ledger.ReduceStock("", []StockItem{
		{ProductID: vase.ID, Quantity: 2},
		{ProductID: vase.ID, Quantity: 3},
	}))
	reloaded := reloadProduct(t, db, vase.ID)
	assert.Equal(t, 0, reloaded.StockQuantity)
	assert.Equal(t, 5, reloaded.QuantitySold)
}

func TestLedgerReduceStockUnknownProduct(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)

	err := ledger.ReduceStock("OD-UNKNOWN", []StockItem{
		{ProductID: vase.ID, Quantity: 1},
		{ProductID: 4242, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, reloadProduct(t, db, vase.ID).StockQuantity)
}

func TestLedgerReduceStockRejectsInvalidItems(t *testing.T) {
	ledger, _ := newTestLedger(t)
	assert.ErrorIs(t, ledger.ReduceStock("OD-X", nil), ErrInvalidStockItem)
	assert.ErrorIs(t, ledger.ReduceStock("OD-X", []StockItem{{ProductID: 1, Quantity: 0}}), ErrInvalidStockItem)
	assert.ErrorIs(t, ledger.ReduceStock("OD-X", []StockItem{{ProductID: 0, Quantity: 1}}), ErrInvalidStockItem)
}

func TestLedgerReduceStockReplayIsNoop(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)
	items := []StockItem{{ProductID: vase.ID, Quantity: 2}}

	require.NoError(t, ledger.ReduceStock("OD-REPLAY", items))
	require.NoError(t, ledger.ReduceStock("OD-REPLAY", items))
	assert.Equal(t, 3, reloadProduct(t, db, vase.ID).StockQuantity)
}

func TestLedgerRestoreStockOnlyOnce(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)
	items := []StockItem{{ProductID: vase.ID, Quantity: 2}}

	require.NoError(t, ledger.ReduceStock("OD-RESTORE", items))
	require.NoError(t, ledger.RestoreStock("OD-RESTORE", items))
	require.NoError(t, ledger.RestoreStock("OD-RESTORE", items))

	reloaded := reloadProduct(t, db, vase.ID)
	assert.Equal(t, 5, reloaded.StockQuantity)
	assert.Equal(t, 0, reloaded.QuantitySold)

	var adjustment models.StockAdjustment
	require.NoError(t, db.Where("reference = ?", "OD-RESTORE").First(&adjustment).Error)
	assert.Equal(t, constants.StockAdjustRestored, adjustment.State)

	err := ledger.ReduceStock("OD-RESTORE", items)
	assert.ErrorIs(t, err, ErrStockReferenceClosed)
	assert.Equal(t, 5, reloadProduct(t, db, vase.ID).StockQuantity)
}

func TestLedgerRestoreBeforeReduceVoidsReference(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 5)
	items := []StockItem{{ProductID: vase.ID, Quantity: 2}}

	require.NoError(t, ledger.RestoreStock("OD-LATE", items))
	assert.Equal(t, 5, reloadProduct(t, db, vase.ID).StockQuantity)

	var adjustment models.StockAdjustment
	require.NoError(t, db.Where("reference = ?", "OD-LATE").First(&adjustment).Error)
	assert.Equal(t, constants.StockAdjustVoided, adjustment.State)

	// 迟到的扣减不能再生效
	err := ledger.ReduceStock("OD-LATE", items)
	assert.ErrorIs(t, err, ErrStockReferenceClosed)
	assert.Equal(t, 5, reloadProduct(t, db, vase.ID).StockQuantity)
}

func TestLedgerRestoreWithoutReference(t *testing.T) {
	ledger, db := newTestLedger(t)
	vase := seedProduct(t, db, "Vase", 100, 1)

	require.NoError(t, ledger.RestoreStock("", []StockItem{{ProductID: vase.ID, Quantity: 3}}))
	assert.Equal(t, 4, reloadProduct(t, db, vase.ID).StockQuantity)

	err := ledger.RestoreStock("", []StockItem{{ProductID: 777, Quantity: 1}})
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestLedgerConcurrentLastUnit(t *testing.T) {
	ledger, db := newTestLedger(t)
	chair := seedProduct(t, db, "Chair", 900, 1)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := ledger.ReduceStock("", []StockItem{{ProductID: chair.ID, Quantity: 1}})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if errors.Is(err, ErrInsufficientStock) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, rejected)
	assert.Equal(t, 0, reloadProduct(t, db, chair.ID).StockQuantity)
}

func TestMergeStockItemsSortsByProduct(t *testing.T) {
	merged, err := MergeStockItems([]StockItem{
		{ProductID: 9, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 9, Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []StockItem{{ProductID: 2, Quantity: 1}, {ProductID: 9, Quantity: 5}}, merged)
}
