package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/auth"
	"senorito-pos/internal/database/models"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

type CreateItemInput struct {
	Name         string
	Unit         string
	Quantity     decimal.Decimal
	CostPerUnit  decimal.Decimal
	ReorderLevel decimal.Decimal
	Category     string
	Supplier     string
	Notes        string
}

// CreateItem registers a new stocked item and writes its opening balance as
// an `initial` audit entry, so replay starts from zero like everything else.
func (s *Service) CreateItem(ctx context.Context, actor auth.Actor, in CreateItemInput) (*models.InventoryItem, error) {
	if err := auth.Require(actor, auth.CapManageInventory); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, apperr.Validationf("item name is required")
	}
	if in.Quantity.IsNegative() || in.CostPerUnit.IsNegative() {
		return nil, apperr.Validationf("quantity and cost must not be negative")
	}
	if in.Unit == "" {
		in.Unit = "pcs"
	}
	if in.ReorderLevel.IsZero() {
		in.ReorderLevel = decimal.NewFromInt(10)
	}

	item := models.InventoryItem{
		Name:         in.Name,
		Unit:         in.Unit,
		Quantity:     decimal.Zero,
		CostPerUnit:  in.CostPerUnit,
		ReorderLevel: in.ReorderLevel,
		IsActive:     true,
	}
	if in.Category != "" {
		item.Category = &in.Category
	}
	if in.Supplier != "" {
		item.Supplier = &in.Supplier
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return apperr.Persistence("create inventory item", err)
		}
		reason := in.Notes
		if reason == "" {
			reason = "Initial stock"
		}
		_, err := Apply(tx, item.ID, actor.UserID, Change{
			Action:   models.ActionInitial,
			Quantity: in.Quantity,
			Reason:   reason,
			Source:   models.SourceInventory,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	item.Quantity = in.Quantity
	return &item, nil
}

type UpdateItemInput struct {
	Name         string
	Unit         string
	CostPerUnit  decimal.Decimal
	ReorderLevel decimal.Decimal
	Category     string
	Supplier     string
}

// UpdateItem edits descriptive fields only. Quantity moves exclusively
// through LogAction and the order/purchasing ledgers.
func (s *Service) UpdateItem(ctx context.Context, actor auth.Actor, itemID int64, in UpdateItemInput) error {
	if err := auth.Require(actor, auth.CapManageInventory); err != nil {
		return err
	}
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("inventory item %d not found", itemID)
		}
		return apperr.Persistence("load inventory item", err)
	}

	updates := map[string]interface{}{
		"cost_per_unit": in.CostPerUnit,
		"reorder_level": in.ReorderLevel,
	}
	if in.Name != "" {
		updates["name"] = in.Name
	}
	if in.Unit != "" {
		updates["unit"] = in.Unit
	}
	if in.Category != "" {
		updates["category"] = in.Category
	}
	if in.Supplier != "" {
		updates["supplier"] = in.Supplier
	}
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", itemID).Updates(updates).Error; err != nil {
		return apperr.Persistence("update inventory item", err)
	}
	return nil
}

// DeactivateItem soft-deletes an item. Its audit history stays intact.
func (s *Service) DeactivateItem(ctx context.Context, actor auth.Actor, itemID int64) error {
	if err := auth.Require(actor, auth.CapDeleteItem); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", itemID).Update("is_active", false)
	if res.Error != nil {
		return apperr.Persistence("deactivate inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("inventory item %d not found", itemID)
	}
	return nil
}

type LogActionInput struct {
	Action   models.AuditAction // restock, wastage or adjustment
	Quantity decimal.Decimal
	Reason   string
}

type LogActionResult struct {
	NewQuantity decimal.Decimal
	Entry       *models.InventoryAuditLog
}

// LogAction is the manual stock path: restock adds, wastage subtracts
// clamped at zero, adjustment sets an absolute level.
func (s *Service) LogAction(ctx context.Context, actor auth.Actor, itemID int64, in LogActionInput) (*LogActionResult, error) {
	if err := auth.Require(actor, auth.CapManageInventory); err != nil {
		return nil, err
	}
	switch in.Action {
	case models.ActionRestock, models.ActionWastage, models.ActionAdjustment:
	default:
		return nil, apperr.Validationf("action must be restock, wastage or adjustment")
	}
	if in.Quantity.IsNegative() {
		return nil, apperr.Validationf("quantity must not be negative")
	}

	var result LogActionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := Apply(tx, itemID, actor.UserID, Change{
			Action:   in.Action,
			Quantity: in.Quantity,
			Absolute: in.Action == models.ActionAdjustment,
			Reason:   in.Reason,
			Source:   models.SourceInventory,
		})
		if err != nil {
			return err
		}
		result.Entry = entry
		result.NewQuantity = entry.QuantityAfter
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkRestock adds the same quantity to every listed item in one
// transaction; a single missing item aborts the whole batch.
func (s *Service) BulkRestock(ctx context.Context, actor auth.Actor, itemIDs []int64, quantity decimal.Decimal, reason string) error {
	if err := auth.Require(actor, auth.CapManageInventory); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return apperr.Validationf("no items selected")
	}
	if quantity.IsNegative() {
		return apperr.Validationf("quantity must not be negative")
	}
	if reason == "" {
		reason = "Bulk restock"
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range itemIDs {
			if _, err := Apply(tx, id, actor.UserID, Change{
				Action:   models.ActionRestock,
				Quantity: quantity,
				Reason:   reason,
				Source:   models.SourceInventory,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkSetReorderLevel changes the reorder threshold for every listed item
// in one transaction. Reorder level is not stock, so no audit entry.
func (s *Service) BulkSetReorderLevel(ctx context.Context, actor auth.Actor, itemIDs []int64, level decimal.Decimal) error {
	if err := auth.Require(actor, auth.CapManageInventory); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return apperr.Validationf("no items selected")
	}
	if level.IsNegative() {
		return apperr.Validationf("reorder level must not be negative")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range itemIDs {
			res := tx.Model(&models.InventoryItem{}).Where("id = ?", id).Update("reorder_level", level)
			if res.Error != nil {
				return apperr.Persistence("update reorder level", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.NotFoundf("inventory item %d not found", id)
			}
		}
		return nil
	})
}

type ListFilter struct {
	Category string
	Status   string // low, out, in-stock
	Search   string
}

func (s *Service) ListItems(ctx context.Context, f ListFilter) ([]models.InventoryItem, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	switch f.Status {
	case "low":
		q = q.Where("quantity <= reorder_level AND quantity > 0")
	case "out":
		q = q.Where("quantity <= 0")
	case "in-stock":
		q = q.Where("quantity > reorder_level")
	}
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	var items []models.InventoryItem
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, apperr.Persistence("list inventory items", err)
	}
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("inventory item %d not found", itemID)
		}
		return nil, apperr.Persistence("load inventory item", err)
	}
	return &item, nil
}

type ValuationLine struct {
	Item       models.InventoryItem
	TotalValue decimal.Decimal
}

type Valuation struct {
	Lines      []ValuationLine
	TotalValue decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// Valuate computes quantity x cost per item plus a category breakdown.
func (s *Service) Valuate(ctx context.Context) (*Valuation, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&items).Error; err != nil {
		return nil, apperr.Persistence("load inventory items", err)
	}
	v := Valuation{ByCategory: map[string]decimal.Decimal{}}
	for _, item := range items {
		value := item.Quantity.Mul(item.CostPerUnit).Round(2)
		v.Lines = append(v.Lines, ValuationLine{Item: item, TotalValue: value})
		v.TotalValue = v.TotalValue.Add(value)
		cat := "Uncategorized"
		if item.Category != nil {
			cat = *item.Category
		}
		v.ByCategory[cat] = v.ByCategory[cat].Add(value)
	}
	return &v, nil
}
