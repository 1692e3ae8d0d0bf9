// Package shifts tracks cashier sessions and the cash reconciliation done
// when a drawer is closed.
package shifts

import (
	"context"
	"errors"
	"time"

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

// StartShift opens a drawer session for the actor. A user can hold at most
// one open shift at a time.
func (s *Service) StartShift(ctx context.Context, actor auth.Actor, startingCash decimal.Decimal) (*models.Shift, error) {
	if startingCash.IsNegative() {
		return nil, apperr.Validationf("starting cash cannot be negative")
	}

	var shift models.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Shift{}).
			Where("user_id = ? AND status = ?", actor.UserID, models.ShiftOpen).
			Count(&open).Error; err != nil {
			return apperr.Persistence("check open shift", err)
		}
		if open > 0 {
			return apperr.StateConflictf("you already have an open shift")
		}
		shift = models.Shift{
			UserID:       actor.UserID,
			StartTime:    time.Now(),
			StartingCash: startingCash.Round(2),
			Status:       models.ShiftOpen,
		}
		if err := tx.Create(&shift).Error; err != nil {
			return apperr.Persistence("start shift", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("shift started", zap.Int64("shift_id", shift.ID), zap.Int64("user_id", actor.UserID))
	return &shift, nil
}

type EndShiftInput struct {
	ShiftID    int64
	EndingCash decimal.Decimal
	Notes      string
}

// EndShift closes a shift and reconciles the drawer: expected cash is the
// starting float plus cash takings from completed orders in the shift, and
// the difference against the counted amount is recorded as over/short.
// Only the shift owner or an admin can close it.
func (s *Service) EndShift(ctx context.Context, actor auth.Actor, in EndShiftInput) (*models.Shift, error) {
	if in.EndingCash.IsNegative() {
		return nil, apperr.Validationf("ending cash cannot be negative")
	}

	var shift models.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&shift, in.ShiftID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("shift %d not found", in.ShiftID)
		} else if err != nil {
			return apperr.Persistence("load shift", err)
		}
		if shift.UserID != actor.UserID && actor.Role != auth.RoleAdmin {
			return apperr.Authorizationf("only the shift owner or an admin can close this shift")
		}
		if shift.Status != models.ShiftOpen {
			return apperr.StateConflictf("shift %d is already closed", in.ShiftID)
		}

		var cashSales struct {
			Sum decimal.Decimal
		}
		if err := tx.Model(&models.Order{}).
			Where("shift_id = ? AND status = ? AND payment_method = ?", shift.ID, models.OrderCompleted, "cash").
			Select("COALESCE(SUM(total), 0) AS sum").
			Scan(&cashSales).Error; err != nil {
			return apperr.Persistence("sum cash sales", err)
		}

		now := time.Now()
		expected := shift.StartingCash.Add(cashSales.Sum).Round(2)
		ending := in.EndingCash.Round(2)
		diff := ending.Sub(expected)

		shift.EndTime = &now
		shift.EndingCash = &ending
		shift.ExpectedCash = &expected
		shift.CashDifference = &diff
		shift.Status = models.ShiftClosed
		if in.Notes != "" {
			notes := in.Notes
			shift.Notes = &notes
		}
		if err := tx.Save(&shift).Error; err != nil {
			return apperr.Persistence("close shift", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("shift closed",
		zap.Int64("shift_id", shift.ID),
		zap.String("difference", shift.CashDifference.String()))
	return &shift, nil
}

// HasOpen reports whether the user currently has an open shift.
func (s *Service) HasOpen(ctx context.Context, userID int64) (bool, error) {
	var open int64
	if err := s.db.WithContext(ctx).Model(&models.Shift{}).
		Where("user_id = ? AND status = ?", userID, models.ShiftOpen).
		Count(&open).Error; err != nil {
		return false, apperr.Persistence("check open shift", err)
	}
	return open > 0, nil
}

// Current returns the actor's open shift, or a not-found error.
func (s *Service) Current(ctx context.Context, userID int64) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ShiftOpen).
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("no open shift")
	} else if err != nil {
		return nil, apperr.Persistence("load current shift", err)
	}
	return &shift, nil
}

type TopItem struct {
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type ShiftSummary struct {
	Shift           models.Shift               `json:"shift"`
	OrderCount      int64                      `json:"order_count"`
	TotalSales      decimal.Decimal            `json:"total_sales"`
	VoidedCount     int64                      `json:"voided_count"`
	VoidedTotal     decimal.Decimal            `json:"voided_total"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	BySource        map[string]decimal.Decimal `json:"by_source"`
	TopItems        []TopItem                  `json:"top_items"`
}

// Summary aggregates a shift's sales: totals, payment and source breakdowns
// for completed orders, voided totals, and the best-selling items.
func (s *Service) Summary(ctx context.Context, shiftID int64) (*ShiftSummary, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).First(&shift, shiftID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("shift %d not found", shiftID)
	} else if err != nil {
		return nil, apperr.Persistence("load shift", err)
	}

	sum := &ShiftSummary{
		Shift:           shift,
		TotalSales:      decimal.Zero,
		VoidedTotal:     decimal.Zero,
		ByPaymentMethod: map[string]decimal.Decimal{},
		BySource:        map[string]decimal.Decimal{},
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("shift_id = ?", shiftID).Find(&orders).Error; err != nil {
		return nil, apperr.Persistence("load shift orders", err)
	}
	for _, o := range orders {
		switch o.Status {
		case models.OrderCompleted:
			sum.OrderCount++
			sum.TotalSales = sum.TotalSales.Add(o.Total)
			sum.ByPaymentMethod[o.PaymentMethod] = sum.ByPaymentMethod[o.PaymentMethod].Add(o.Total)
			sum.BySource[o.Source] = sum.BySource[o.Source].Add(o.Total)
		case models.OrderVoided:
			sum.VoidedCount++
			sum.VoidedTotal = sum.VoidedTotal.Add(o.Total)
		}
	}

	rows := []struct {
		ItemName string
		Quantity int
		Total    decimal.Decimal
	}{}
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_items.item_name, SUM(order_items.quantity) AS quantity, SUM(order_items.total_price) AS total").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.shift_id = ? AND orders.status = ?", shiftID, models.OrderCompleted).
		Group("order_items.item_name").
		Order("quantity DESC").
		Limit(5).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Persistence("aggregate top items", err)
	}
	for _, r := range rows {
		sum.TopItems = append(sum.TopItems, TopItem(r))
	}
	return sum, nil
}
