package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
)

// CostChange revalues an item's unit cost alongside a quantity change.
type CostChange struct {
	NewCost decimal.Decimal
	Method  string
}

// Change describes one inventory mutation. Quantity is the operand; how it
// is applied depends on the action (see Apply). Absolute is honored only for
// manual adjustments, where Quantity is the new absolute stock level.
type Change struct {
	Action      models.AuditAction
	Quantity    decimal.Decimal
	Absolute    bool
	Reason      string
	ReferenceID string
	Source      models.AuditSource
	Cost        *CostChange
}

// Apply is the only way stock moves. It reads the item inside the caller's
// transaction, computes the new quantity per the action's rule, persists it
// and appends exactly one audit row whose before/after matches the
// transition. Deductions clamp at zero; restores do not.
func Apply(tx *gorm.DB, itemID, actorID int64, ch Change) (*models.InventoryAuditLog, error) {
	var item models.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("inventory item %d not found", itemID)
		}
		return nil, apperr.Persistence("load inventory item", err)
	}

	before := item.Quantity
	var after decimal.Decimal

	switch ch.Action {
	case models.ActionSaleDeduction, models.ActionWastage, models.ActionPlatformSale:
		after = decimal.Max(decimal.Zero, before.Sub(ch.Quantity))
	case models.ActionRestock, models.ActionPOReceived, models.ActionInitial, models.ActionImport:
		after = before.Add(ch.Quantity)
	case models.ActionAdjustment:
		if ch.Absolute {
			after = ch.Quantity
		} else {
			after = before.Add(ch.Quantity)
		}
	default:
		return nil, apperr.Validationf("unknown inventory action %q", ch.Action)
	}

	updates := map[string]interface{}{
		"quantity":   after,
		"updated_at": time.Now(),
	}

	entry := models.InventoryAuditLog{
		InventoryItemID: item.ID,
		Action:          ch.Action,
		QuantityChange:  after.Sub(before),
		QuantityBefore:  before,
		QuantityAfter:   after,
		Source:          ch.Source,
		UserID:          actorID,
		CreatedAt:       time.Now(),
	}
	if ch.Reason != "" {
		entry.Reason = &ch.Reason
	}
	if ch.ReferenceID != "" {
		entry.ReferenceID = &ch.ReferenceID
	}
	if ch.Cost != nil {
		costBefore := item.CostPerUnit
		costAfter := ch.Cost.NewCost
		method := ch.Cost.Method
		entry.CostBefore = &costBefore
		entry.CostAfter = &costAfter
		entry.CostMethod = &method
		updates["cost_per_unit"] = costAfter
	}

	if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		return nil, apperr.Persistence("update inventory item", err)
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperr.Persistence("append audit entry", err)
	}
	return &entry, nil
}
