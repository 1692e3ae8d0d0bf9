// Package recipes resolves a sold menu item into the inventory consumption
// its bill of materials implies, converting recipe units into each
// ingredient's stocking unit.
package recipes

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/units"
)

// Consumption is one ingredient deduction, expressed in the inventory
// item's own unit. UnitKnown is false when the recipe unit had no
// conversion to the inventory unit and the quantity passed through
// unchanged.
type Consumption struct {
	InventoryItemID int64
	ItemName        string
	Quantity        decimal.Decimal
	RecipeUnit      string
	InventoryUnit   string
	UnitKnown       bool
}

// ResolveConsumption computes the deductions for soldQuantity units of a
// menu item. Menu items without recipe lines consume nothing.
func ResolveConsumption(tx *gorm.DB, menuItemID int64, soldQuantity int) ([]Consumption, error) {
	var lines []models.Recipe
	err := tx.Preload("InventoryItem").
		Where("menu_item_id = ?", menuItemID).
		Find(&lines).Error
	if err != nil {
		return nil, apperr.Persistence("load recipe lines", err)
	}

	out := make([]Consumption, 0, len(lines))
	for _, line := range lines {
		if line.InventoryItem == nil {
			return nil, apperr.NotFoundf("recipe %d references missing inventory item %d", line.ID, line.InventoryItemID)
		}
		recipeUnit := line.InventoryItem.Unit
		if line.RecipeUnit != nil && *line.RecipeUnit != "" {
			recipeUnit = *line.RecipeUnit
		}
		needed := line.QuantityNeeded.Mul(decimal.NewFromInt(int64(soldQuantity)))
		converted, known := units.Convert(needed, recipeUnit, line.InventoryItem.Unit)
		out = append(out, Consumption{
			InventoryItemID: line.InventoryItemID,
			ItemName:        line.InventoryItem.Name,
			Quantity:        converted,
			RecipeUnit:      recipeUnit,
			InventoryUnit:   line.InventoryItem.Unit,
			UnitKnown:       known,
		})
	}
	return out, nil
}
