package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"size:100;uniqueIndex;not null"`
	Password  string `gorm:"size:100;not null"` // bcrypt hash
	FullName  string `gorm:"size:255;not null"`
	Role      string `gorm:"size:32;not null;default:'cashier'"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

type Shift struct {
	ID             int64            `gorm:"primaryKey;autoIncrement"`
	UserID         int64            `gorm:"index;not null"`
	StartTime      time.Time        `gorm:"not null"`
	EndTime        *time.Time
	StartingCash   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	EndingCash     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedCash   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CashDifference *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes          *string          `gorm:"type:text"`
	Status         ShiftStatus      `gorm:"size:16;not null;default:'open'"`
}

type ThirdPartySale struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	Platform         string          `gorm:"size:32;not null"`
	ReferenceNumber  *string         `gorm:"size:100"`
	ItemsDescription *string         `gorm:"type:text"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Commission       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date             string          `gorm:"size:10;not null;index"`
	Notes            *string         `gorm:"type:text"`
	UserID           int64           `gorm:"not null"`
	CreatedAt        time.Time
}
