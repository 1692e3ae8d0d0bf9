package recipes_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"senorito-pos/internal/database/models"
	"senorito-pos/internal/recipes"
	"senorito-pos/internal/testutil"
)

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price float64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{Name: name, Price: decimal.NewFromFloat(price), IsAvailable: true}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedInventoryItem(t *testing.T, db *gorm.DB, name, unit string, qty float64) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:     name,
		Unit:     unit,
		Quantity: decimal.NewFromFloat(qty),
		IsActive: true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func addRecipeLine(t *testing.T, db *gorm.DB, menuItemID, invItemID int64, qty float64, unit string) {
	t.Helper()
	line := &models.Recipe{
		MenuItemID:      menuItemID,
		InventoryItemID: invItemID,
		QuantityNeeded:  decimal.NewFromFloat(qty),
	}
	if unit != "" {
		line.RecipeUnit = &unit
	}
	require.NoError(t, db.Create(line).Error)
}

func TestResolveConsumptionConvertsUnits(t *testing.T) {
	db := testutil.OpenDB(t)
	latte := seedMenuItem(t, db, "Latte", 150)
	milk := seedInventoryItem(t, db, "Whole Milk", "L", 10)
	addRecipeLine(t, db, latte.ID, milk.ID, 200, "ml")

	got, err := recipes.ResolveConsumption(db, latte.ID, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, milk.ID, got[0].InventoryItemID)
	assert.True(t, got[0].UnitKnown)
	assert.Equal(t, "ml", got[0].RecipeUnit)
	assert.Equal(t, "L", got[0].InventoryUnit)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromFloat(0.6)), "got %s", got[0].Quantity)
}

func TestResolveConsumptionDefaultsToInventoryUnit(t *testing.T) {
	db := testutil.OpenDB(t)
	espresso := seedMenuItem(t, db, "Espresso", 100)
	beans := seedInventoryItem(t, db, "Beans", "g", 1000)
	addRecipeLine(t, db, espresso.ID, beans.ID, 18, "")

	got, err := recipes.ResolveConsumption(db, espresso.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].UnitKnown)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(36)))
}

func TestResolveConsumptionUnknownUnitPassesThrough(t *testing.T) {
	db := testutil.OpenDB(t)
	cake := seedMenuItem(t, db, "Cake Slice", 120)
	flour := seedInventoryItem(t, db, "Flour", "sack", 4)
	addRecipeLine(t, db, cake.ID, flour.ID, 0.05, "kg")

	got, err := recipes.ResolveConsumption(db, cake.ID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].UnitKnown)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromFloat(0.05)))
}

func TestResolveConsumptionNoRecipeLines(t *testing.T) {
	db := testutil.OpenDB(t)
	water := seedMenuItem(t, db, "Bottled Water", 25)

	got, err := recipes.ResolveConsumption(db, water.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
