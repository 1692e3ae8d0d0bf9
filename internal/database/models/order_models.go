package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderVoided    OrderStatus = "voided"
	// OrderRefunded exists in historical data but no operation produces it;
	// it is accepted when reading, never written.
	OrderRefunded OrderStatus = "refunded"
)

// orderTransitions is the only legal movement: completed orders can be
// voided, and voided is terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCompleted: {OrderVoided},
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

type DiscountType string

const (
	DiscountNone   DiscountType = "none"
	DiscountSenior DiscountType = "senior"
	DiscountPWD    DiscountType = "pwd"
	DiscountCustom DiscountType = "custom"
)

func (d DiscountType) Valid() bool {
	switch d {
	case DiscountNone, DiscountSenior, DiscountPWD, DiscountCustom:
		return true
	}
	return false
}

type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OrderNumber   string          `gorm:"size:32;uniqueIndex;not null"`
	UserID        int64           `gorm:"not null"`
	ShiftID       *int64          `gorm:"index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountType  DiscountType    `gorm:"size:16;not null;default:'none'"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"size:16;not null;default:'cash'"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangeAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        OrderStatus     `gorm:"size:16;not null;default:'completed'"`
	Source        string          `gorm:"size:16;not null;default:'in-store'"`
	Notes         *string         `gorm:"type:text"`
	CreatedAt     time.Time

	OrderItems []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	OrderID    int64           `gorm:"index;not null"`
	MenuItemID int64           `gorm:"not null"`
	ItemName   string          `gorm:"size:255;not null"` // denormalized at creation time
	Quantity   int             `gorm:"not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes      *string         `gorm:"size:255"`
}
