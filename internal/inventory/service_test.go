package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/auth"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/inventory"
	"senorito-pos/internal/testutil"
)

var (
	admin   = auth.Actor{UserID: 1, Username: "admin", Role: auth.RoleAdmin}
	cashier = auth.Actor{UserID: 2, Username: "cash", Role: auth.RoleCashier}
)

func newService(t *testing.T) (*inventory.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	return inventory.NewService(db, zap.NewNop()), db
}

func TestCreateItemWritesOpeningBalance(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name:        "Whole Milk",
		Unit:        "L",
		Quantity:    decimal.NewFromInt(10),
		CostPerUnit: decimal.NewFromInt(80),
		Category:    "Dairy",
	})
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))

	var entries []models.InventoryAuditLog
	require.NoError(t, db.Where("inventory_item_id = ?", item.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionInitial, entries[0].Action)
	assert.True(t, entries[0].QuantityBefore.IsZero())
	assert.True(t, entries[0].QuantityAfter.Equal(decimal.NewFromInt(10)))
}

func TestLogActionRestockAndWastage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Cups", Unit: "pcs", Quantity: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	res, err := svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionRestock, Quantity: decimal.NewFromInt(20), Reason: "Delivery",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(decimal.NewFromInt(25)))

	res, err = svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionWastage, Quantity: decimal.NewFromInt(3), Reason: "Dropped",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(decimal.NewFromInt(22)))
	assert.True(t, res.Entry.QuantityChange.Equal(decimal.NewFromInt(-3)))
}

func TestWastageClampsAtZero(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Syrup", Unit: "ml", Quantity: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	res, err := svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionWastage, Quantity: decimal.NewFromInt(500), Reason: "Spoiled",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.IsZero())
	// The audit entry records the actual movement, not the request.
	assert.True(t, res.Entry.QuantityChange.Equal(decimal.NewFromInt(-100)))
	assert.True(t, res.Entry.QuantityBefore.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Entry.QuantityAfter.IsZero())
}

func TestAdjustmentSetsAbsoluteLevel(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Beans", Unit: "kg", Quantity: decimal.NewFromInt(7),
	})
	require.NoError(t, err)

	res, err := svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionAdjustment, Quantity: decimal.NewFromInt(4), Reason: "Stocktake",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, res.Entry.QuantityChange.Equal(decimal.NewFromInt(-3)))
}

func TestReplayQuantityMatchesStoredQuantity(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Milk", Unit: "L", Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionRestock, Quantity: decimal.NewFromFloat(2.5),
	})
	require.NoError(t, err)
	_, err = svc.LogAction(ctx, admin, item.ID, inventory.LogActionInput{
		Action: models.ActionWastage, Quantity: decimal.NewFromFloat(1.2),
	})
	require.NoError(t, err)

	replayed, err := svc.ReplayQuantity(ctx, item.ID)
	require.NoError(t, err)

	current, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, replayed.Equal(current.Quantity), "replayed %s, stored %s", replayed, current.Quantity)
	assert.True(t, replayed.Equal(decimal.NewFromFloat(11.3)))
}

func TestBulkRestockAbortsWholeBatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Sugar", Unit: "kg", Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	b, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Cocoa", Unit: "kg", Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	err = svc.BulkRestock(ctx, admin, []int64{a.ID, b.ID, 9999}, decimal.NewFromInt(5), "Delivery")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	for _, id := range []int64{a.ID, b.ID} {
		item, err := svc.GetItem(ctx, id)
		require.NoError(t, err)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(3)), "item %d must be untouched", id)
	}
}

func TestCashierCannotManageInventory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, cashier, inventory.CreateItemInput{
		Name: "Milk", Unit: "L",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestDeactivateItemHidesFromList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Old Syrup", Unit: "ml", Quantity: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateItem(ctx, admin, item.ID))

	items, err := svc.ListItems(ctx, inventory.ListFilter{})
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEqual(t, item.ID, it.ID)
	}
}

func TestListItemsStatusFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	low, err := svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Low Beans", Unit: "kg", Quantity: decimal.NewFromInt(2), ReorderLevel: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, admin, inventory.CreateItemInput{
		Name: "Full Milk", Unit: "L", Quantity: decimal.NewFromInt(50), ReorderLevel: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	items, err := svc.ListItems(ctx, inventory.ListFilter{Status: "low"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}
