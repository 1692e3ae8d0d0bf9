// Package purchasing owns the purchase-order lifecycle: authoring, the
// draft -> ordered -> received flow that moves stock and revalues cost, the
// cancellation path that must not touch stock, and the one-to-one expense
// linkage for received orders.
package purchasing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/auth"
	"senorito-pos/internal/database"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/inventory"
)

const EventPOReceived = "po.received"

type Service struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

func NewService(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{db: db, redis: rdb, log: log}
}

type POLine struct {
	InventoryItemID int64
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
}

type CreatePOInput struct {
	SupplierName string
	Items        []POLine
	Notes        string
	ExpectedDate string
}

// CreatePO validates and persists a draft purchase order under the day's
// next PO number.
func (s *Service) CreatePO(ctx context.Context, actor auth.Actor, in CreatePOInput) (*models.PurchaseOrder, error) {
	if err := auth.Require(actor, auth.CapManagePO); err != nil {
		return nil, err
	}
	if in.SupplierName == "" {
		return nil, apperr.Validationf("supplier name is required")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validationf("at least one item is required")
	}
	for i, line := range in.Items {
		if line.InventoryItemID == 0 {
			return nil, apperr.Validationf("line %d: item selection is required", i+1)
		}
		if !line.Quantity.IsPositive() {
			return nil, apperr.Validationf("line %d: quantity must be greater than 0", i+1)
		}
		if !line.UnitCost.IsPositive() {
			return nil, apperr.Validationf("line %d: unit cost must be greater than 0", i+1)
		}
	}

	var po models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		poNumber, err := database.NextDocumentNumber(tx, "po", now)
		if err != nil {
			return apperr.Persistence("allocate PO number", err)
		}

		totalCost := decimal.Zero
		for _, line := range in.Items {
			totalCost = totalCost.Add(line.Quantity.Mul(line.UnitCost))
		}

		po = models.PurchaseOrder{
			PONumber:     poNumber,
			SupplierName: in.SupplierName,
			Status:       models.PODraft,
			TotalCost:    totalCost.Round(2),
			CreatedBy:    actor.UserID,
			CreatedAt:    now,
		}
		if in.Notes != "" {
			notes := in.Notes
			po.Notes = &notes
		}
		if in.ExpectedDate != "" {
			expected := in.ExpectedDate
			po.ExpectedDate = &expected
		}
		if err := tx.Create(&po).Error; err != nil {
			return apperr.Persistence("create purchase order", err)
		}

		for _, line := range in.Items {
			var exists int64
			if err := tx.Model(&models.InventoryItem{}).Where("id = ?", line.InventoryItemID).Count(&exists).Error; err != nil {
				return apperr.Persistence("check inventory item", err)
			}
			if exists == 0 {
				return apperr.NotFoundf("inventory item %d not found", line.InventoryItemID)
			}
			item := models.PurchaseOrderItem{
				PurchaseOrderID: po.ID,
				InventoryItemID: line.InventoryItemID,
				Quantity:        line.Quantity,
				UnitCost:        line.UnitCost,
				TotalCost:       line.Quantity.Mul(line.UnitCost).Round(2),
			}
			if err := tx.Create(&item).Error; err != nil {
				return apperr.Persistence("create purchase order item", err)
			}
			po.Items = append(po.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// MarkOrdered moves a draft PO to ordered.
func (s *Service) MarkOrdered(ctx context.Context, actor auth.Actor, poID int64) error {
	if err := auth.Require(actor, auth.CapManagePO); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := loadPO(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != models.PODraft {
			return apperr.StateConflictf("only draft POs can be marked as ordered")
		}
		now := time.Now()
		return wrapPersist("mark PO ordered", tx.Model(&models.PurchaseOrder{}).Where("id = ?", poID).Updates(map[string]interface{}{
			"status":     models.POOrdered,
			"order_date": now,
		}).Error)
	})
}

type ReceiptSummary struct {
	PONumber      string
	ItemsReceived int
	TotalCost     decimal.Decimal
}

// ReceivePO books every line into stock and revalues each item's unit cost
// under the chosen method, all in one transaction. latest takes the line
// cost as-is; weighted blends existing and incoming value by quantity,
// falling back to the line cost when there is no prior stock to weigh.
func (s *Service) ReceivePO(ctx context.Context, actor auth.Actor, poID int64, method models.CostMethod) (*ReceiptSummary, error) {
	if err := auth.Require(actor, auth.CapManagePO); err != nil {
		return nil, err
	}
	if !method.Valid() {
		return nil, apperr.Validationf("cost method must be latest or weighted")
	}

	var summary ReceiptSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := loadPO(tx, poID)
		if err != nil {
			return err
		}
		if !po.Status.CanTransitionTo(models.POReceived) {
			return apperr.StateConflictf("PO %s is %s and cannot be received", po.PONumber, po.Status)
		}

		now := time.Now()
		if err := wrapPersist("receive PO", tx.Model(&models.PurchaseOrder{}).Where("id = ?", poID).Updates(map[string]interface{}{
			"status":        models.POReceived,
			"received_date": now,
			"received_by":   actor.UserID,
		}).Error); err != nil {
			return err
		}

		for _, line := range po.Items {
			if line.InventoryItem == nil {
				return apperr.NotFoundf("inventory item %d not found", line.InventoryItemID)
			}
			stock := line.InventoryItem.Quantity
			currentCost := line.InventoryItem.CostPerUnit

			newCost := line.UnitCost
			if method == models.CostWeighted && stock.IsPositive() {
				oldValue := stock.Mul(currentCost)
				newValue := line.Quantity.Mul(line.UnitCost)
				newCost = oldValue.Add(newValue).DivRound(stock.Add(line.Quantity), 4)
			}

			_, err := inventory.Apply(tx, line.InventoryItemID, actor.UserID, inventory.Change{
				Action:      models.ActionPOReceived,
				Quantity:    line.Quantity,
				Reason:      "Received from " + po.PONumber,
				ReferenceID: po.PONumber,
				Source:      models.SourcePurchaseOrders,
				Cost: &inventory.CostChange{
					NewCost: newCost,
					Method:  method.Label(),
				},
			})
			if err != nil {
				return err
			}
		}

		summary = ReceiptSummary{
			PONumber:      po.PONumber,
			ItemsReceived: len(po.Items),
			TotalCost:     po.TotalCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishReceipt(ctx, &summary)
	return &summary, nil
}

// CancelPO is reachable from draft and ordered only. The goods never
// arrived, so stock and the audit ledger are left untouched.
func (s *Service) CancelPO(ctx context.Context, actor auth.Actor, poID int64, reason string) error {
	if err := auth.Require(actor, auth.CapManagePO); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := loadPO(tx, poID)
		if err != nil {
			return err
		}
		if !po.Status.CanTransitionTo(models.POCancelled) {
			return apperr.StateConflictf("PO %s is %s and cannot be cancelled", po.PONumber, po.Status)
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":         models.POCancelled,
			"cancelled_date": now,
			"cancelled_by":   actor.UserID,
		}
		if reason != "" {
			note := "[CANCELLED: " + reason + "]"
			if po.Notes != nil && *po.Notes != "" {
				note = *po.Notes + "\n" + note
			}
			updates["notes"] = note
		}
		return wrapPersist("cancel PO", tx.Model(&models.PurchaseOrder{}).Where("id = ?", poID).Updates(updates).Error)
	})
}

// CreateExpenseFromPO books a received PO as an Inventory Purchase expense.
// The po_number key makes the linkage one-to-one; a second call conflicts.
func (s *Service) CreateExpenseFromPO(ctx context.Context, actor auth.Actor, poID int64) (*models.Expense, error) {
	if err := auth.Require(actor, auth.CapCreateExpense); err != nil {
		return nil, err
	}

	var expense models.Expense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := loadPO(tx, poID)
		if err != nil {
			return err
		}
		if po.Status != models.POReceived {
			return apperr.StateConflictf("only received POs can create expense entries")
		}

		var existing int64
		if err := tx.Model(&models.Expense{}).Where("po_reference = ?", po.PONumber).Count(&existing).Error; err != nil {
			return apperr.Persistence("check existing expense", err)
		}
		if existing > 0 {
			return apperr.StateConflictf("expense already exists for PO %s", po.PONumber)
		}

		date := time.Now().Format("2006-01-02")
		if po.ReceivedDate != nil {
			date = po.ReceivedDate.Format("2006-01-02")
		}
		poRef := po.PONumber
		expense = models.Expense{
			Category:    "Inventory Purchase",
			Description: fmt.Sprintf("%s - %s", po.PONumber, po.SupplierName),
			Amount:      po.TotalCost,
			Date:        date,
			POReference: &poRef,
			UserID:      actor.UserID,
		}
		return wrapPersist("create expense", tx.Create(&expense).Error)
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Service) GetPO(ctx context.Context, poID int64) (*models.PurchaseOrder, error) {
	po, err := loadPO(s.db.WithContext(ctx), poID)
	if err != nil {
		return nil, err
	}
	return po, nil
}

type POFilter struct {
	Search string
	Status models.POStatus
}

func (s *Service) ListPOs(ctx context.Context, f POFilter) ([]models.PurchaseOrder, error) {
	q := s.db.WithContext(ctx).Model(&models.PurchaseOrder{})
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("po_number LIKE ? OR supplier_name LIKE ?", pattern, pattern)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var pos []models.PurchaseOrder
	if err := q.Preload("Items").Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, apperr.Persistence("list purchase orders", err)
	}
	return pos, nil
}

func loadPO(tx *gorm.DB, poID int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := tx.Preload("Items.InventoryItem").First(&po, poID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("purchase order %d not found", poID)
	} else if err != nil {
		return nil, apperr.Persistence("load purchase order", err)
	}
	return &po, nil
}

func wrapPersist(op string, err error) error {
	if err != nil {
		return apperr.Persistence(op, err)
	}
	return nil
}

func (s *Service) publishReceipt(ctx context.Context, summary *ReceiptSummary) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event_type":     EventPOReceived,
		"po_number":      summary.PONumber,
		"items_received": summary.ItemsReceived,
		"total_cost":     summary.TotalCost,
		"timestamp":      time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, "pos:events:"+EventPOReceived, payload).Err(); err != nil {
		s.log.Warn("failed to publish PO receipt event", zap.Error(err))
	}
}
