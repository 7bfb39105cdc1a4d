// Package store keeps the cart, order and profile records behind the
// key-value contract, as JSON documents plus id-list index keys.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
)

const (
	orderKeyPrefix = "order:"
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

func orderKey(id string) string               { return orderKeyPrefix + id }
func customerOrdersKey(customerID uint) string { return fmt.Sprintf("orders:customer:%d", customerID) }
func restaurantOrdersKey(restaurantID uint) string {
	return fmt.Sprintf("orders:restaurant:%d", restaurantID)
}
func driverActiveKey(driverID uint) string { return fmt.Sprintf("driver:active:%d", driverID) }

// withRetry runs fn with bounded exponential backoff. Store failures are
// transient by contract; domain errors never pass through here.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return apperrors.Network(ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return apperrors.Network(err)
}

// OrderStore is the single durable owner of order records. Updates go
// through a version check so a stale writer never clobbers a newer record.
type OrderStore struct {
	kv kvstore.Store
	mu sync.Mutex // serializes read-check-write update cycles
}

func NewOrderStore(kv kvstore.Store) *OrderStore {
	return &OrderStore{kv: kv}
}

// Create persists a brand-new order. The order id doubles as the uniqueness
// guard: a key collision surfaces as kvstore.ErrKeyExists so the caller can
// regenerate the id.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	if err := s.kv.SetIfAbsent(ctx, orderKey(order.ID), payload); err != nil {
		return err
	}
	if err := s.appendIndex(ctx, customerOrdersKey(order.CustomerID), order.ID); err != nil {
		return err
	}
	return s.appendIndex(ctx, restaurantOrdersKey(order.RestaurantID), order.ID)
}

// Get loads an order by id. A corrupted value is purged and reported as
// absent.
func (s *OrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	var raw []byte
	var found bool
	err := withRetry(ctx, func() error {
		var getErr error
		raw, found, getErr = s.kv.Get(ctx, orderKey(id))
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("Order not found", "الطلب غير موجود")
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		_ = s.kv.Remove(ctx, orderKey(id))
		return nil, apperrors.NotFound("Order not found", "الطلب غير موجود")
	}
	return &order, nil
}

// Update writes back an order read earlier. order.Version must still match
// the stored version; on mismatch the write is rejected and the caller must
// re-read. The stored version is bumped on success.
func (s *OrderStore) Update(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, order.ID)
	if err != nil {
		return err
	}
	if current.Version != order.Version {
		return apperrors.Conflict(
			"The order was modified by someone else. Refresh and try again.",
			"تم تعديل الطلب من جهة أخرى. حدّث الصفحة وحاول مرة أخرى.",
		)
	}
	order.Version++
	order.UpdatedAt = time.Now()
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return withRetry(ctx, func() error {
		return s.kv.Set(ctx, orderKey(order.ID), payload)
	})
}

// ByCustomer returns the customer's order history, newest first.
func (s *OrderStore) ByCustomer(ctx context.Context, customerID uint) ([]*models.Order, error) {
	return s.byIndex(ctx, customerOrdersKey(customerID))
}

// ByRestaurant returns every order ever placed at the restaurant, newest
// first.
func (s *OrderStore) ByRestaurant(ctx context.Context, restaurantID uint) ([]*models.Order, error) {
	return s.byIndex(ctx, restaurantOrdersKey(restaurantID))
}

// ActiveByRestaurant is the kitchen work queue: the restaurant's orders that
// are not yet delivered or cancelled.
func (s *OrderStore) ActiveByRestaurant(ctx context.Context, restaurantID uint) ([]*models.Order, error) {
	orders, err := s.ByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	active := orders[:0]
	for _, o := range orders {
		if !o.Status.Terminal() {
			active = append(active, o)
		}
	}
	return active, nil
}

// ReadyUnassigned is the driver pool: ready orders with no driver in
// custody, oldest first.
func (s *OrderStore) ReadyUnassigned(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var pool []*models.Order
	for _, o := range orders {
		if o.Status == models.StatusReady && o.DriverID == nil {
			pool = append(pool, o)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].CreatedAt.Before(pool[j].CreatedAt) })
	return pool, nil
}

// All scans the full order set, newest first. Admin dashboards only.
func (s *OrderStore) All(ctx context.Context) ([]*models.Order, error) {
	keys, err := s.kv.Keys(ctx, orderKeyPrefix)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	var orders []*models.Order
	for _, key := range keys {
		order, err := s.Get(ctx, key[len(orderKeyPrefix):])
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				continue // purged corrupt entry
			}
			return nil, err
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// DriverActive returns the driver's current non-terminal order, or nil.
func (s *OrderStore) DriverActive(ctx context.Context, driverID uint) (*models.Order, error) {
	raw, found, err := s.kv.Get(ctx, driverActiveKey(driverID))
	if err != nil {
		return nil, apperrors.Network(err)
	}
	if !found {
		return nil, nil
	}
	order, err := s.Get(ctx, string(raw))
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			_ = s.kv.Remove(ctx, driverActiveKey(driverID))
			return nil, nil
		}
		return nil, err
	}
	if order.Status.Terminal() {
		_ = s.kv.Remove(ctx, driverActiveKey(driverID))
		return nil, nil
	}
	return order, nil
}

// SetDriverActive records custody of an order by a driver.
func (s *OrderStore) SetDriverActive(ctx context.Context, driverID uint, orderID string) error {
	return s.kv.Set(ctx, driverActiveKey(driverID), []byte(orderID))
}

// ClearDriverActive releases a driver for the next pickup.
func (s *OrderStore) ClearDriverActive(ctx context.Context, driverID uint) error {
	return s.kv.Remove(ctx, driverActiveKey(driverID))
}

func (s *OrderStore) byIndex(ctx context.Context, indexKey string) ([]*models.Order, error) {
	ids, err := s.readIndex(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	var orders []*models.Order
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *OrderStore) readIndex(ctx context.Context, key string) ([]string, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	if !found {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		_ = s.kv.Remove(ctx, key)
		return nil, nil
	}
	return ids, nil
}

func (s *OrderStore) appendIndex(ctx context.Context, key, id string) error {
	ids, err := s.readIndex(ctx, key)
	if err != nil {
		return err
	}
	ids = append(ids, id)
	payload, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, payload)
}
