package orders

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
	"senorito-pos/internal/recipes"
)

const (
	EventOrderCreated = "order.created"
	EventOrderVoided  = "order.voided"
)

// ErrNoOpenShift is returned when an actor tries to check out without an
// open shift; the HTTP layer tells the client to start one.
var ErrNoOpenShift = apperr.StateConflictf("no open shift; start a shift before processing orders")

var seniorPWDRate = decimal.NewFromFloat(0.20)

type Service struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

func NewService(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{db: db, redis: rdb, log: log}
}

type OrderLine struct {
	MenuItemID int64
	Quantity   int
	Notes      string
}

type CreateOrderInput struct {
	Items         []OrderLine
	PaymentMethod string
	AmountPaid    decimal.Decimal
	Discount      decimal.Decimal
	DiscountType  models.DiscountType
	Notes         string
	Source        string
}

// CreateOrder runs the whole checkout as one unit of work: price the cart,
// apply the discount, allocate the day's next order number, persist the
// order and its lines, and deduct every ingredient with a sale_deduction
// audit entry referencing the order number. Any failure rolls back all of
// it.
func (s *Service) CreateOrder(ctx context.Context, actor auth.Actor, in CreateOrderInput) (*models.Order, error) {
	if err := auth.Require(actor, auth.CapCreateOrder); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validationf("no items in order")
	}
	if in.DiscountType == "" {
		in.DiscountType = models.DiscountNone
	}
	if !in.DiscountType.Valid() {
		return nil, apperr.Validationf("invalid discount type %q", in.DiscountType)
	}
	if in.Discount.IsNegative() {
		return nil, apperr.Validationf("discount must not be negative")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "cash"
	}
	if in.Source == "" {
		in.Source = "in-store"
	}

	var openShift models.Shift
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", actor.UserID, models.ShiftOpen).
		First(&openShift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenShift
	} else if err != nil {
		return nil, apperr.Persistence("check open shift", err)
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(in.Items))
		for _, line := range in.Items {
			qty := line.Quantity
			if qty < 1 {
				qty = 1
			}
			var menuItem models.MenuItem
			if err := tx.Where("id = ? AND is_available = ?", line.MenuItemID, true).First(&menuItem).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("menu item %d not found or unavailable", line.MenuItemID)
				}
				return apperr.Persistence("load menu item", err)
			}
			totalPrice := menuItem.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
			subtotal = subtotal.Add(totalPrice)
			item := models.OrderItem{
				MenuItemID: menuItem.ID,
				ItemName:   menuItem.Name,
				Quantity:   qty,
				UnitPrice:  menuItem.Price,
				TotalPrice: totalPrice,
			}
			if line.Notes != "" {
				notes := line.Notes
				item.Notes = &notes
			}
			orderItems = append(orderItems, item)
		}

		discount := decimal.Zero
		switch in.DiscountType {
		case models.DiscountSenior, models.DiscountPWD:
			discount = subtotal.Mul(seniorPWDRate).Round(2)
		case models.DiscountCustom:
			discount = in.Discount.Round(2)
		}

		total := decimal.Max(decimal.Zero, subtotal.Sub(discount))
		if in.AmountPaid.LessThan(total) {
			return apperr.Validationf("amount paid %s is less than total %s", in.AmountPaid.StringFixed(2), total.StringFixed(2))
		}
		change := decimal.Max(decimal.Zero, in.AmountPaid.Sub(total))

		orderNumber, err := database.NextDocumentNumber(tx, "order", now)
		if err != nil {
			return apperr.Persistence("allocate order number", err)
		}

		shiftID := openShift.ID
		order = models.Order{
			OrderNumber:   orderNumber,
			UserID:        actor.UserID,
			ShiftID:       &shiftID,
			Subtotal:      subtotal,
			Discount:      discount,
			DiscountType:  in.DiscountType,
			Total:         total,
			PaymentMethod: in.PaymentMethod,
			AmountPaid:    in.AmountPaid,
			ChangeAmount:  change,
			Status:        models.OrderCompleted,
			Source:        in.Source,
			CreatedAt:     now,
		}
		if in.Notes != "" {
			notes := in.Notes
			order.Notes = &notes
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Persistence("create order", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
			if err := tx.Create(&orderItems[i]).Error; err != nil {
				return apperr.Persistence("create order item", err)
			}
			if err := s.deductLine(tx, actor, orderNumber, orderItems[i]); err != nil {
				return err
			}
		}
		order.OrderItems = orderItems
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, EventOrderCreated, &order)
	return &order, nil
}

func (s *Service) deductLine(tx *gorm.DB, actor auth.Actor, orderNumber string, item models.OrderItem) error {
	consumptions, err := recipes.ResolveConsumption(tx, item.MenuItemID, item.Quantity)
	if err != nil {
		return err
	}
	for _, c := range consumptions {
		if !c.UnitKnown {
			s.log.Warn("no unit conversion for recipe line, deducting as-is",
				zap.Int64("inventory_item_id", c.InventoryItemID),
				zap.String("recipe_unit", c.RecipeUnit),
				zap.String("inventory_unit", c.InventoryUnit))
		}
		_, err := inventory.Apply(tx, c.InventoryItemID, actor.UserID, inventory.Change{
			Action:      models.ActionSaleDeduction,
			Quantity:    c.Quantity,
			Reason:      fmt.Sprintf("Sold %dx %s", item.Quantity, item.ItemName),
			ReferenceID: orderNumber,
			Source:      models.SourcePOS,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// VoidOrder transitions a completed order to voided and restores every
// ingredient by its original deduction. Prices and statistics are not
// restored, and a voided order cannot be un-voided.
func (s *Service) VoidOrder(ctx context.Context, actor auth.Actor, orderID int64) error {
	if err := auth.Require(actor, auth.CapVoidOrder); err != nil {
		return err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("order %d not found", orderID)
			}
			return apperr.Persistence("load order", err)
		}
		if !order.Status.CanTransitionTo(models.OrderVoided) {
			return apperr.StateConflictf("order %s is %s and cannot be voided", order.OrderNumber, order.Status)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderVoided).Error; err != nil {
			return apperr.Persistence("void order", err)
		}

		// Restore from the recorded deductions, not by re-resolving the
		// recipes: a clamped deduction or an edited recipe would otherwise
		// put back a different amount than was taken.
		var deductions []models.InventoryAuditLog
		if err := tx.
			Where("reference_id = ? AND action = ?", order.OrderNumber, models.ActionSaleDeduction).
			Find(&deductions).Error; err != nil {
			return apperr.Persistence("load order deductions", err)
		}
		for _, d := range deductions {
			_, err := inventory.Apply(tx, d.InventoryItemID, actor.UserID, inventory.Change{
				Action:      models.ActionAdjustment,
				Quantity:    d.QuantityChange.Neg(),
				Reason:      "Voided order " + order.OrderNumber,
				ReferenceID: order.OrderNumber,
				Source:      models.SourcePOS,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Status = models.OrderVoided
	s.publishEvent(ctx, EventOrderVoided, &order)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("order %d not found", orderID)
	} else if err != nil {
		return nil, apperr.Persistence("load order", err)
	}
	return &order, nil
}

type HistoryPage struct {
	Orders []models.Order
	Total  int64
	Page   int
	Pages  int
}

// History lists orders newest first, optionally filtered to one day
// (YYYY-MM-DD).
func (s *Service) History(ctx context.Context, date string, page, perPage int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 50
	}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, apperr.Validationf("invalid date %q, want YYYY-MM-DD", date)
		}
		q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Persistence("count orders", err)
	}
	var list []models.Order
	err := q.Preload("OrderItems").
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Persistence("list orders", err)
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return &HistoryPage{Orders: list, Total: total, Page: page, Pages: pages}, nil
}

type orderEvent struct {
	EventType   string          `json:"event_type"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
}

// publishEvent notifies subscribers after commit; failures are logged, not
// surfaced, since the order is already durable.
func (s *Service) publishEvent(ctx context.Context, eventType string, order *models.Order) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(orderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Status:      string(order.Status),
		Timestamp:   time.Now(),
	})
	if err != nil {
		return
	}
	channel := "pos:events:" + eventType
	if err := s.redis.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn("failed to publish order event", zap.String("channel", channel), zap.Error(err))
	}
}
