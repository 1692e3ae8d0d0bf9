package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/auth"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/orders"
	"senorito-pos/internal/testutil"
)

var cashier = auth.Actor{UserID: 1, Username: "maria", Role: auth.RoleCashier}

type fixture struct {
	db    *gorm.DB
	svc   *orders.Service
	milk  *models.InventoryItem
	latte *models.MenuItem
}

// newFixture seeds a cashier with an open shift, 10 L of milk, and a Latte
// priced at 100 that consumes 200 ml of milk per cup.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)

	require.NoError(t, db.Create(&models.Shift{
		UserID:       cashier.UserID,
		StartTime:    time.Now(),
		StartingCash: decimal.NewFromInt(500),
		Status:       models.ShiftOpen,
	}).Error)

	milk := &models.InventoryItem{
		Name: "Whole Milk", Unit: "L",
		Quantity: decimal.NewFromInt(10), IsActive: true,
	}
	require.NoError(t, db.Create(milk).Error)

	latte := &models.MenuItem{Name: "Latte", Price: decimal.NewFromInt(100), IsAvailable: true}
	require.NoError(t, db.Create(latte).Error)

	unit := "ml"
	require.NoError(t, db.Create(&models.Recipe{
		MenuItemID:      latte.ID,
		InventoryItemID: milk.ID,
		QuantityNeeded:  decimal.NewFromInt(200),
		RecipeUnit:      &unit,
	}).Error)

	return &fixture{
		db:    db,
		svc:   orders.NewService(db, nil, zap.NewNop()),
		milk:  milk,
		latte: latte,
	}
}

func (f *fixture) milkQuantity(t *testing.T) decimal.Decimal {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, f.db.First(&item, f.milk.ID).Error)
	return item.Quantity
}

func TestCreateOrderDeductsIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:        []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 3}},
		AmountPaid:   decimal.NewFromInt(300),
		DiscountType: models.DiscountNone,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(300)))
	assert.True(t, f.milkQuantity(t).Equal(decimal.NewFromFloat(9.4)), "3 lattes consume 0.6 L")

	var entries []models.InventoryAuditLog
	require.NoError(t, f.db.Where("inventory_item_id = ?", f.milk.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionSaleDeduction, entries[0].Action)
	require.NotNil(t, entries[0].ReferenceID)
	assert.Equal(t, order.OrderNumber, *entries[0].ReferenceID)
}

func TestSeniorDiscountTwentyPercent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:        []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 2}},
		AmountPaid:   decimal.NewFromInt(200),
		DiscountType: models.DiscountSenior,
	})
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(40)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(160)))
	assert.True(t, order.ChangeAmount.Equal(decimal.NewFromInt(40)))
}

func TestVoidOrderRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 3}},
		AmountPaid: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	require.True(t, f.milkQuantity(t).Equal(decimal.NewFromFloat(9.4)))

	admin := auth.Actor{UserID: 9, Username: "boss", Role: auth.RoleAdmin}
	require.NoError(t, f.svc.VoidOrder(ctx, admin, order.ID))
	assert.True(t, f.milkQuantity(t).Equal(decimal.NewFromInt(10)), "void restores the deduction")

	err = f.svc.VoidOrder(ctx, admin, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))
	assert.True(t, f.milkQuantity(t).Equal(decimal.NewFromInt(10)), "second void must not restore again")
}

func TestVoidRestoresClampedDeductionExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Only 0.4 L left; 3 lattes want 0.6 L, so the deduction clamps at 0.
	require.NoError(t, f.db.Model(&models.InventoryItem{}).
		Where("id = ?", f.milk.ID).
		Update("quantity", decimal.NewFromFloat(0.4)).Error)

	order, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 3}},
		AmountPaid: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	require.True(t, f.milkQuantity(t).IsZero())

	admin := auth.Actor{UserID: 9, Username: "boss", Role: auth.RoleAdmin}
	require.NoError(t, f.svc.VoidOrder(ctx, admin, order.ID))
	assert.True(t, f.milkQuantity(t).Equal(decimal.NewFromFloat(0.4)),
		"void puts back what was actually taken, not the recipe amount")
}

func TestCashierCannotVoid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	err = f.svc.VoidOrder(ctx, cashier, order.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestRejectUnderpayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 2}},
		AmountPaid: decimal.NewFromInt(150),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.True(t, f.milkQuantity(t).Equal(decimal.NewFromInt(10)), "failed checkout must not deduct")
}

func TestCreateOrderRequiresOpenShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&models.Shift{}).
		Where("user_id = ?", cashier.UserID).
		Update("status", models.ShiftClosed).Error)

	_, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, orders.ErrNoOpenShift))
}

func TestOrderNumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	day := time.Now().Format("20060102")
	assert.Equal(t, "SC-"+day+"-0001", first.OrderNumber)
	assert.Equal(t, "SC-"+day+"-0002", second.OrderNumber)
}

func TestUnavailableMenuItemRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&models.MenuItem{}).
		Where("id = ?", f.latte.ID).
		Update("is_available", false).Error)

	_, err := f.svc.CreateOrder(ctx, cashier, orders.CreateOrderInput{
		Items:      []orders.OrderLine{{MenuItemID: f.latte.ID, Quantity: 1}},
		AmountPaid: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
