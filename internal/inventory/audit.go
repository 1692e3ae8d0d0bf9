package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
)

// The audit ledger is query-only from here on out: entries are created by
// Apply and never updated or deleted.

func (s *Service) ItemHistory(ctx context.Context, itemID int64, limit int) ([]models.InventoryAuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.InventoryAuditLog
	err := s.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence("load item history", err)
	}
	return entries, nil
}

// EntriesByReference returns every entry caused by one logical event, e.g.
// all deductions of a single order number.
func (s *Service) EntriesByReference(ctx context.Context, referenceID string) ([]models.InventoryAuditLog, error) {
	var entries []models.InventoryAuditLog
	err := s.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at, id").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence("load entries by reference", err)
	}
	return entries, nil
}

func (s *Service) EntriesByDateRange(ctx context.Context, from, to time.Time) ([]models.InventoryAuditLog, error) {
	var entries []models.InventoryAuditLog
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at, id").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence("load entries by date range", err)
	}
	return entries, nil
}

type AuditPage struct {
	Entries []models.InventoryAuditLog
	Total   int64
	Page    int
	Pages   int
}

func (s *Service) AuditLog(ctx context.Context, page, perPage int) (*AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 50
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryAuditLog{}).Count(&total).Error; err != nil {
		return nil, apperr.Persistence("count audit entries", err)
	}
	var entries []models.InventoryAuditLog
	err := s.db.WithContext(ctx).
		Preload("Item").
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Persistence("load audit entries", err)
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return &AuditPage{Entries: entries, Total: total, Page: page, Pages: pages}, nil
}

// ReplayQuantity folds an item's audit entries in order and returns the
// quantity they reconstruct. For a consistent ledger this equals the item's
// current quantity exactly.
func (s *Service) ReplayQuantity(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var entries []models.InventoryAuditLog
	err := s.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Order("created_at, id").
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, apperr.Persistence("load audit entries", err)
	}
	qty := decimal.Zero
	for _, e := range entries {
		qty = qty.Add(e.QuantityChange)
	}
	return qty, nil
}
