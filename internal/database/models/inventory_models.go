package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	Name         string          `gorm:"size:255;not null"`
	Unit         string          `gorm:"size:20;not null;default:'pcs'"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Category     *string         `gorm:"size:100"`
	Supplier     *string         `gorm:"size:255"`
	IsActive     bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuditAction is the closed set of inventory mutations. Every quantity or
// cost change on an InventoryItem is recorded as exactly one audit row.
type AuditAction string

const (
	ActionSaleDeduction AuditAction = "sale_deduction"
	ActionRestock       AuditAction = "restock"
	ActionAdjustment    AuditAction = "adjustment"
	ActionWastage       AuditAction = "wastage"
	ActionInitial       AuditAction = "initial"
	ActionPOReceived    AuditAction = "po_received"
	ActionPOCancelled   AuditAction = "po_cancelled"
	ActionImport        AuditAction = "import"
	ActionPlatformSale  AuditAction = "platform_sale"
)

type AuditSource string

const (
	SourcePOS            AuditSource = "POS"
	SourceInventory      AuditSource = "Inventory"
	SourcePurchaseOrders AuditSource = "Purchase Orders"
	SourceImport         AuditSource = "Import"
	SourceSystem         AuditSource = "System"
)

// InventoryAuditLog rows are append-only: nothing in the codebase updates
// or deletes them, and replaying an item's rows in order reproduces its
// current quantity.
type InventoryAuditLog struct {
	ID              int64            `gorm:"primaryKey;autoIncrement"`
	InventoryItemID int64            `gorm:"index;not null"`
	Action          AuditAction      `gorm:"size:32;not null"`
	QuantityChange  decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	QuantityBefore  decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	QuantityAfter   decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	Reason          *string          `gorm:"size:255"`
	ReferenceID     *string          `gorm:"size:100;index"`
	Source          AuditSource      `gorm:"size:32;not null;default:'Inventory'"`
	CostBefore      *decimal.Decimal `gorm:"type:decimal(12,4)"`
	CostAfter       *decimal.Decimal `gorm:"type:decimal(12,4)"`
	CostMethod      *string          `gorm:"size:32"`
	UserID          int64            `gorm:"not null"`
	CreatedAt       time.Time

	Item *InventoryItem `gorm:"foreignKey:InventoryItemID"`
}

// DayCounter backs day-scoped document numbering. The sequence is advanced
// with an atomic upsert inside the caller's transaction, so two concurrent
// checkouts can never draw the same number.
type DayCounter struct {
	Scope string `gorm:"primaryKey;size:16"`
	Day   string `gorm:"primaryKey;size:8"`
	Seq   int64  `gorm:"not null"`
}
