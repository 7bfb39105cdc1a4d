package statemachine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type engineFixture struct {
	engine *Engine
	orders *store.OrderStore
	carts  *store.CartStore
	db     *gorm.DB

	restaurant models.Restaurant
	kabsa      models.MenuItem
	salad      models.MenuItem
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	return newEngineFixtureWith(t, kvstore.NewMemStore())
}

func newEngineFixtureWith(t *testing.T, kv kvstore.Store) *engineFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Restaurant{}, &models.MenuItem{}))

	f := &engineFixture{db: db}
	f.restaurant = models.Restaurant{
		OwnerID: 2, Name: "Najd Kitchen", NameAr: "مطبخ نجد",
		IsOpen: true, DeliveryFee: 10, MinOrder: 20,
	}
	require.NoError(t, db.Create(&f.restaurant).Error)
	f.kabsa = models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Kabsa", NameAr: "كبسة", Price: 45, IsAvailable: true}
	f.salad = models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Salad", NameAr: "سلطة", Price: 12.5, IsAvailable: true}
	require.NoError(t, db.Create(&f.kabsa).Error)
	require.NoError(t, db.Create(&f.salad).Error)

	f.orders = store.NewOrderStore(kv)
	f.carts = store.NewCartStore(kv)
	f.engine = NewEngine(db, f.orders, f.carts, nil)
	return f
}

func (f *engineFixture) fillCart(t *testing.T, customerID uint, items ...models.MenuItem) {
	t.Helper()
	ctx := context.Background()
	cart, err := f.carts.Get(ctx, customerID)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, cart.AddLine(item.RestaurantID, models.CartLine{
			MenuItemID: item.ID, Name: item.Name, NameAr: item.NameAr,
			UnitPrice: item.Price, Quantity: 1,
		}))
	}
	require.NoError(t, f.carts.Save(ctx, cart))
}

var customer = CustomerInfo{ID: 7, Name: "Sara", Phone: "+966500000001"}

func (f *engineFixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	f.fillCart(t, customer.ID, f.kabsa)
	order, err := f.engine.CreateOrder(context.Background(), customer, CheckoutInput{
		Address: "12 King Fahd Rd, Riyadh", PaymentMethod: "cash",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name      string
		customer  CustomerInfo
		address   string
		fillCart  bool
		wantField string
	}{
		{"missing_name", CustomerInfo{ID: 7, Phone: "+966500000001"}, "addr", true, "customerName"},
		{"missing_phone", CustomerInfo{ID: 7, Name: "Sara"}, "addr", true, "customerPhone"},
		{"missing_address", customer, "", true, "deliveryAddress"},
		{"empty_cart", customer, "addr", false, "cart"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newEngineFixture(t)
			if tc.fillCart {
				f.fillCart(t, tc.customer.ID, f.kabsa)
			}
			_, err := f.engine.CreateOrder(context.Background(), tc.customer, CheckoutInput{
				Address: tc.address, PaymentMethod: "cash",
			})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.wantField, appErr.Field)

			// no partial state was written
			all, err := f.orders.All(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateOrderSnapshotsCartAndClearsIt(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.fillCart(t, customer.ID, f.kabsa, f.kabsa, f.salad)

	order, err := f.engine.CreateOrder(ctx, customer, CheckoutInput{
		Address: "12 King Fahd Rd, Riyadh", Instructions: "ring twice", PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 102.5, order.Total)
	assert.Equal(t, order.LinesTotal(), order.Total)
	assert.Equal(t, 10.0, order.DeliveryFee)
	assert.Equal(t, "Najd Kitchen", order.RestaurantName)
	assert.Equal(t, 30*time.Minute, order.EstimatedDelivery.Sub(order.CreatedAt))
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 2, order.Lines[0].Quantity)

	// round-trip: the persisted record equals the returned one
	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, order.Lines, stored.Lines)
	assert.Equal(t, order.Total, stored.Total)
	assert.Equal(t, order.Status, stored.Status)
	assert.Equal(t, order.Version, stored.Version)
	assert.True(t, order.CreatedAt.Equal(stored.CreatedAt))
	assert.True(t, order.EstimatedDelivery.Equal(stored.EstimatedDelivery))

	cart, err := f.carts.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, cart.Empty())

	history, err := f.orders.ByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestCreateOrderBusinessRules(t *testing.T) {
	t.Run("minimum_order_not_met", func(t *testing.T) {
		f := newEngineFixture(t)
		f.fillCart(t, customer.ID, f.salad) // 12.5 < 20 minimum
		_, err := f.engine.CreateOrder(context.Background(), customer, CheckoutInput{Address: "addr", PaymentMethod: "cash"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeMinimumOrderNotMet))
	})

	t.Run("restaurant_closed", func(t *testing.T) {
		f := newEngineFixture(t)
		f.fillCart(t, customer.ID, f.kabsa)
		require.NoError(t, f.db.Model(&f.restaurant).Update("is_open", false).Error)
		_, err := f.engine.CreateOrder(context.Background(), customer, CheckoutInput{Address: "addr", PaymentMethod: "cash"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeRestaurantClosed))
	})

	t.Run("item_became_unavailable", func(t *testing.T) {
		f := newEngineFixture(t)
		f.fillCart(t, customer.ID, f.kabsa)
		require.NoError(t, f.db.Model(&f.kabsa).Update("is_available", false).Error)
		_, err := f.engine.CreateOrder(context.Background(), customer, CheckoutInput{Address: "addr", PaymentMethod: "cash"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeItemNotAvailable))
	})

	t.Run("kitchen_at_capacity", func(t *testing.T) {
		f := newEngineFixture(t)
		require.NoError(t, f.db.Model(&f.restaurant).Update("max_active_orders", 1).Error)
		f.placeOrder(t)
		f.fillCart(t, customer.ID, f.kabsa)
		_, err := f.engine.CreateOrder(context.Background(), customer, CheckoutInput{Address: "addr", PaymentMethod: "cash"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenBusy))
	})
}

func TestAdvanceFullLifecycle(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	kitchenID, driverID := uint(2), uint(9)

	// the kitchen carries the order to ready
	wantChain := []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady}
	for _, want := range wantChain {
		updated, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, kitchenID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.Status)
	}

	// the fourth kitchen advance hits a driver-owned edge
	_, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, kitchenID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthorization))
	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, stored.Status)

	// driver takes over
	picked, err := f.engine.Pickup(ctx, order.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, picked.Status)
	require.NotNil(t, picked.DriverID)
	assert.Equal(t, driverID, *picked.DriverID)

	active, err := f.orders.DriverActive(ctx, driverID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, order.ID, active.ID)

	delivered, err := f.engine.Deliver(ctx, order.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)

	// custody released, terminal state reached
	active, err = f.orders.DriverActive(ctx, driverID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = f.engine.Deliver(ctx, order.ID, driverID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	// the customer's history shows the order under delivered
	history, err := f.orders.ByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusDelivered, history[0].Status)
	assert.Len(t, history[0].History, 6)
}

func TestAdvanceWrongRoleLeavesStatusUnchanged(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	_, err := f.engine.Advance(ctx, order.ID, models.RoleDriver, 9)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthorization))

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestDriverDeliveryRequiresCustody(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	for i := 0; i < 3; i++ {
		_, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, 2)
		require.NoError(t, err)
	}
	_, err := f.engine.Pickup(ctx, order.ID, 9)
	require.NoError(t, err)

	// a different driver cannot deliver the order
	_, err = f.engine.Deliver(ctx, order.ID, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthorization))
}

func TestDriverHoldsAtMostOneActiveOrder(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	first := f.placeOrder(t)
	second := f.placeOrder(t)
	for _, id := range []string{first.ID, second.ID} {
		for i := 0; i < 3; i++ {
			_, err := f.engine.Advance(ctx, id, models.RoleKitchen, 2)
			require.NoError(t, err)
		}
	}

	_, err := f.engine.Pickup(ctx, first.ID, 9)
	require.NoError(t, err)

	_, err = f.engine.Pickup(ctx, second.ID, 9)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDriverNotAvailable))

	// a second driver cannot pick up an order already in custody
	_, err = f.engine.Pickup(ctx, first.ID, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestPickupRetryDoesNotDeliver(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)
	for i := 0; i < 3; i++ {
		_, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, 2)
		require.NoError(t, err)
	}

	_, err := f.engine.Pickup(ctx, order.ID, 9)
	require.NoError(t, err)

	// the same driver retrying the pickup gets a conflict, and the order
	// stays in picked_up rather than sliding on to delivered
	_, err = f.engine.Pickup(ctx, order.ID, 9)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, stored.Status)
}

func TestPickupDemandsReadyState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t) // still pending

	_, err := f.engine.Pickup(ctx, order.ID, 9)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.Equal(t, "pending", appErr.CurrentStatus)

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.DriverID)
}

// flakyStore refuses writes to order records on demand; index, cart and
// custody keys stay writable.
type flakyStore struct {
	kvstore.Store
	failOrderWrites bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failOrderWrites && strings.HasPrefix(key, "order:") {
		return errors.New("write refused")
	}
	return s.Store.Set(ctx, key, value)
}

func TestPickupReleasesCustodyWhenWriteFails(t *testing.T) {
	flaky := &flakyStore{Store: kvstore.NewMemStore()}
	f := newEngineFixtureWith(t, flaky)
	ctx := context.Background()
	order := f.placeOrder(t)
	for i := 0; i < 3; i++ {
		_, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, 2)
		require.NoError(t, err)
	}

	flaky.failOrderWrites = true
	_, err := f.engine.Pickup(ctx, order.ID, 9)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNetwork))
	flaky.failOrderWrites = false

	// the custody claim was rolled back along with the failed write
	active, err := f.orders.DriverActive(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, active)

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, stored.Status)
	assert.Nil(t, stored.DriverID)

	// the driver is free to pick the order up once the store recovers
	picked, err := f.engine.Pickup(ctx, order.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, picked.Status)
}

func TestCancelOnlyFromPending(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	t.Run("pending_cancels", func(t *testing.T) {
		order := f.placeOrder(t)
		cancelled, err := f.engine.Cancel(ctx, order.ID, models.RoleCustomer, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)

		// cancelling twice fails rather than silently succeeding
		_, err = f.engine.Cancel(ctx, order.ID, models.RoleCustomer, customer.ID)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyCancelled))
	})

	t.Run("preparing_refuses", func(t *testing.T) {
		order := f.placeOrder(t)
		for i := 0; i < 2; i++ {
			_, err := f.engine.Advance(ctx, order.ID, models.RoleKitchen, 2)
			require.NoError(t, err)
		}
		_, err := f.engine.Cancel(ctx, order.ID, models.RoleCustomer, customer.ID)
		require.Error(t, err)
		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.CodeCannotCancel, appErr.Code)
		assert.Equal(t, "preparing", appErr.CurrentStatus)

		stored, err := f.orders.Get(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPreparing, stored.Status)
	})
}

func TestStaleWriteRejected(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t)

	stale, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.engine.Advance(ctx, order.ID, models.RoleKitchen, 2)
	require.NoError(t, err)

	stale.Status = models.StatusCancelled
	err = f.orders.Update(ctx, stale)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
