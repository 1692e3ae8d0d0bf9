package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type POStatus string

const (
	PODraft     POStatus = "draft"
	POOrdered   POStatus = "ordered"
	POReceived  POStatus = "received"
	POCancelled POStatus = "cancelled"
)

// poTransitions: draft -> ordered -> received, with cancellation reachable
// from draft and ordered only. Received and cancelled are terminal.
var poTransitions = map[POStatus][]POStatus{
	PODraft:   {POOrdered, POReceived, POCancelled},
	POOrdered: {POReceived, POCancelled},
}

func (s POStatus) CanTransitionTo(to POStatus) bool {
	for _, t := range poTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// CostMethod selects how receiving a purchase order revalues stock.
type CostMethod string

const (
	CostLatest   CostMethod = "latest"
	CostWeighted CostMethod = "weighted"
)

func (m CostMethod) Valid() bool {
	return m == CostLatest || m == CostWeighted
}

// Label is the human-readable form recorded on audit entries.
func (m CostMethod) Label() string {
	if m == CostWeighted {
		return "Weighted Average"
	}
	return "Latest Cost"
}

type PurchaseOrder struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	PONumber      string          `gorm:"size:32;uniqueIndex;not null"`
	SupplierName  string          `gorm:"size:255;not null"`
	Status        POStatus        `gorm:"size:16;not null;default:'draft'"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes         *string         `gorm:"type:text"`
	CreatedBy     int64           `gorm:"not null"`
	OrderDate     *time.Time
	ExpectedDate  *string         `gorm:"size:10"`
	ReceivedDate  *time.Time
	ReceivedBy    *int64
	CancelledDate *time.Time
	CancelledBy   *int64
	CreatedAt     time.Time

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
}

type PurchaseOrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID int64           `gorm:"index;not null"`
	InventoryItemID int64           `gorm:"not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID"`
}

// Expense rows created from a received PO are keyed by POReference so each
// purchase order can fund at most one expense entry.
type Expense struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	Category      string          `gorm:"size:100;not null;default:'Other'"`
	Description   string          `gorm:"size:255;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date          string          `gorm:"size:10;not null"`
	POReference   *string         `gorm:"size:32;uniqueIndex"`
	PaymentMethod string          `gorm:"size:32;not null;default:'Cash'"`
	UserID        int64           `gorm:"not null"`
	CreatedAt     time.Time
}
