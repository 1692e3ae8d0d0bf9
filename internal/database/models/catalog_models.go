package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"size:100;uniqueIndex;not null"`
	SortOrder int     `gorm:"not null;default:0"`
	IsActive  bool    `gorm:"not null;default:true"`
}

type MenuItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:255;not null"`
	CategoryID  *int64
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description *string         `gorm:"type:text"`
	IsAvailable bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
	Recipes  []Recipe  `gorm:"foreignKey:MenuItemID"`
}

// Recipe is one bill-of-materials line: how much of an inventory item a
// single sold unit of the menu item consumes. RecipeUnit, when set, is the
// unit the quantity is expressed in; otherwise the inventory item's unit
// applies.
type Recipe struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	MenuItemID      int64           `gorm:"index;not null"`
	InventoryItemID int64           `gorm:"not null"`
	QuantityNeeded  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	RecipeUnit      *string         `gorm:"size:20"`

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID"`
}
