package statemachine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/relay"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	deliveryOffset = 30 * time.Minute
	idAttempts     = 5
)

// CustomerInfo identifies the ordering customer at checkout.
type CustomerInfo struct {
	ID    uint
	Name  string
	Phone string
}

// CheckoutInput carries the resolved checkout fields. Address must already
// be a non-empty free-text line (saved-address resolution happens at the
// handler).
type CheckoutInput struct {
	Address       string
	Instructions  string
	PaymentMethod string
}

// Engine drives order creation and every status transition.
type Engine struct {
	db        *gorm.DB
	orders    *store.OrderStore
	carts     *store.CartStore
	publisher *relay.Publisher
	now       func() time.Time
}

func NewEngine(db *gorm.DB, orders *store.OrderStore, carts *store.CartStore, publisher *relay.Publisher) *Engine {
	return &Engine{db: db, orders: orders, carts: carts, publisher: publisher, now: time.Now}
}

// CreateOrder converts the customer's cart into a pending order. Every
// precondition is checked before anything is written; on success the order
// is persisted, the cart is cleared and a notification goes out.
func (e *Engine) CreateOrder(ctx context.Context, customer CustomerInfo, input CheckoutInput) (*models.Order, error) {
	if customer.Name == "" {
		return nil, apperrors.Validation("customerName", "Customer name is required", "اسم العميل مطلوب")
	}
	if customer.Phone == "" {
		return nil, apperrors.Validation("customerPhone", "Customer phone is required", "رقم هاتف العميل مطلوب")
	}
	if input.Address == "" {
		return nil, apperrors.Validation("deliveryAddress", "Delivery address is required", "عنوان التوصيل مطلوب")
	}

	cart, err := e.carts.Get(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, apperrors.Validation("cart", "Cart is empty", "السلة فارغة")
	}

	var restaurant models.Restaurant
	if err := e.db.WithContext(ctx).First(&restaurant, cart.RestaurantID).Error; err != nil {
		return nil, apperrors.NotFound("Restaurant not found", "المطعم غير موجود")
	}
	if !restaurant.IsOpen {
		return nil, apperrors.RestaurantClosed()
	}
	if cart.Total() < restaurant.MinOrder {
		return nil, apperrors.MinimumOrderNotMet(restaurant.MinOrder)
	}
	if restaurant.MaxActiveOrders > 0 {
		active, err := e.orders.ActiveByRestaurant(ctx, restaurant.ID)
		if err != nil {
			return nil, err
		}
		if len(active) >= restaurant.MaxActiveOrders {
			return nil, apperrors.KitchenBusy()
		}
	}

	// Availability may have changed since the item entered the cart.
	lines := make([]models.OrderLine, 0, len(cart.Lines))
	for _, cl := range cart.Lines {
		var item models.MenuItem
		if err := e.db.WithContext(ctx).First(&item, cl.MenuItemID).Error; err != nil || !item.IsAvailable {
			return nil, apperrors.ItemNotAvailable(cl.Name)
		}
		lines = append(lines, models.OrderLine{
			MenuItemID:     cl.MenuItemID,
			Name:           cl.Name,
			NameAr:         cl.NameAr,
			Quantity:       cl.Quantity,
			UnitPrice:      cl.UnitPrice,
			Customizations: cl.Customizations,
		})
	}

	now := e.now()
	order := &models.Order{
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		CustomerPhone:     customer.Phone,
		RestaurantID:      restaurant.ID,
		RestaurantName:    restaurant.Name,
		RestaurantNameAr:  restaurant.NameAr,
		Lines:             lines,
		Status:            models.StatusPending,
		DeliveryFee:       restaurant.DeliveryFee,
		DeliveryAddress:   input.Address,
		Instructions:      input.Instructions,
		PaymentMethod:     input.PaymentMethod,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: now.Add(deliveryOffset),
		History: []models.StatusChange{{
			To:      models.StatusPending,
			Actor:   models.RoleCustomer,
			ActorID: customer.ID,
			Note:    "Order placed",
			At:      now,
		}},
	}
	order.Total = order.LinesTotal()

	// Order ids are unique through the key space: a collision re-rolls.
	for attempt := 0; ; attempt++ {
		order.ID = newOrderID(now)
		err := e.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if err == kvstore.ErrKeyExists && attempt < idAttempts-1 {
			continue
		}
		if err == kvstore.ErrKeyExists {
			return nil, apperrors.Network(fmt.Errorf("could not allocate a unique order id"))
		}
		return nil, apperrors.Network(err)
	}

	if err := e.carts.Clear(ctx, customer.ID); err != nil {
		log.Printf("engine: order %s placed but cart %d not cleared: %v", order.ID, customer.ID, err)
	}

	e.notify(ctx, order, models.NotifyOrder,
		"Order received", "تم استلام الطلب",
		fmt.Sprintf("Order %s was placed at %s", order.ID, restaurant.Name),
		fmt.Sprintf("تم تقديم الطلب %s لدى %s", order.ID, restaurant.NameAr))
	return order, nil
}

// Advance moves the order one step along the status chain on behalf of the
// acting role. The kitchen drives its edges through here; driver edges go
// through Pickup and Deliver, which name their target state explicitly.
func (e *Engine) Advance(ctx context.Context, orderID string, role models.UserRole, actorID uint) (*models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, err := CanAdvance(order.Status, role)
	if err != nil {
		return nil, err
	}
	return e.transition(ctx, order, next, role, actorID)
}

// Pickup assigns the order to the driver and moves ready → picked_up. The
// target state is explicit: a retried pickup of an order already in custody
// fails instead of sliding the order further along the chain.
func (e *Engine) Pickup(ctx context.Context, orderID string, driverID uint) (*models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DriverID != nil {
		if *order.DriverID == driverID {
			return nil, apperrors.Conflict(
				"You have already picked up this order.",
				"لقد استلمت هذا الطلب بالفعل.",
			)
		}
		return nil, apperrors.Conflict(
			"The order has already been picked up by another driver.",
			"تم استلام الطلب من قبل سائق آخر.",
		)
	}
	if err := CanTransition(order.Status, models.StatusPickedUp, models.RoleDriver); err != nil {
		return nil, err
	}
	active, err := e.orders.DriverActive(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperrors.DriverNotAvailable()
	}

	// Custody is claimed before the status write; a failed write releases
	// the claim again.
	if err := e.orders.SetDriverActive(ctx, driverID, order.ID); err != nil {
		return nil, err
	}
	order.DriverID = &driverID
	updated, err := e.transition(ctx, order, models.StatusPickedUp, models.RoleDriver, driverID)
	if err != nil {
		_ = e.orders.ClearDriverActive(ctx, driverID)
		return nil, err
	}
	return updated, nil
}

// Deliver completes the order. Only the driver in custody may drive the
// picked_up → delivered edge.
func (e *Engine) Deliver(ctx context.Context, orderID string, driverID uint) (*models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(order.Status, models.StatusDelivered, models.RoleDriver); err != nil {
		return nil, err
	}
	if order.DriverID == nil || *order.DriverID != driverID {
		return nil, apperrors.Authorization(
			"You are not the assigned driver for this order.",
			"لست السائق المعين لهذا الطلب.",
		)
	}
	updated, err := e.transition(ctx, order, models.StatusDelivered, models.RoleDriver, driverID)
	if err != nil {
		return nil, err
	}
	_ = e.orders.ClearDriverActive(ctx, driverID)
	return updated, nil
}

func (e *Engine) transition(ctx context.Context, order *models.Order, next models.OrderStatus, role models.UserRole, actorID uint) (*models.Order, error) {
	prev := order.Status
	order.Status = next
	order.History = append(order.History, models.StatusChange{
		From:    prev,
		To:      next,
		Actor:   role,
		ActorID: actorID,
		At:      e.now(),
	})
	if err := e.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	kind := models.NotifyOrder
	if next == models.StatusPickedUp || next == models.StatusDelivered {
		kind = models.NotifyDelivery
	}
	e.notify(ctx, order, kind,
		"Order "+string(next), "تحديث حالة الطلب",
		fmt.Sprintf("Order %s is now %s", order.ID, next),
		fmt.Sprintf("الطلب %s الآن في حالة %s", order.ID, next))
	return order, nil
}

// Cancel aborts a pending order. Later stages refuse with the current
// status; a repeated cancel fails rather than silently succeeding.
func (e *Engine) Cancel(ctx context.Context, orderID string, role models.UserRole, actorID uint) (*models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := CanCancel(order.Status); err != nil {
		return nil, err
	}
	if role != models.RoleCustomer && role != models.RoleKitchen && role != models.RoleAdmin {
		return nil, apperrors.Authorization(
			"Only the customer or the kitchen may cancel a pending order.",
			"إلغاء الطلب من صلاحية العميل أو المطبخ فقط.",
		)
	}

	prev := order.Status
	order.Status = models.StatusCancelled
	order.History = append(order.History, models.StatusChange{
		From:    prev,
		To:      models.StatusCancelled,
		Actor:   role,
		ActorID: actorID,
		Note:    "Order cancelled",
		At:      e.now(),
	})
	if err := e.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	e.notify(ctx, order, models.NotifyOrder,
		"Order cancelled", "تم إلغاء الطلب",
		fmt.Sprintf("Order %s was cancelled", order.ID),
		fmt.Sprintf("تم إلغاء الطلب %s", order.ID))
	return order, nil
}

func (e *Engine) notify(ctx context.Context, order *models.Order, kind models.NotificationType, titleEN, titleAR, msgEN, msgAR string) {
	if e.publisher == nil {
		return
	}
	n := models.Notification{
		Type:      kind,
		Title:     titleEN,
		TitleAr:   titleAR,
		Message:   msgEN,
		MessageAr: msgAR,
		ActionURL: "/orders/" + order.ID,
		OrderID:   order.ID,
	}
	if err := e.publisher.Publish(ctx, n); err != nil {
		log.Printf("engine: notification for order %s not published: %v", order.ID, err)
	}
}

// newOrderID builds a human-shareable id: a sortable time prefix plus a
// short random suffix.
func newOrderID(now time.Time) string {
	suffix := uuid.NewString()
	return "ORD-" + now.Format("20060102150405") + "-" + suffix[:6]
}
