package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
)

func cartKey(customerID uint) string { return fmt.Sprintf("cart:%d", customerID) }

// CartStore persists one cart snapshot per customer.
type CartStore struct {
	kv kvstore.Store
}

func NewCartStore(kv kvstore.Store) *CartStore {
	return &CartStore{kv: kv}
}

// Get loads the customer's cart. An absent or corrupted snapshot yields a
// fresh empty cart; corrupted entries are purged.
func (s *CartStore) Get(ctx context.Context, customerID uint) (*models.Cart, error) {
	raw, found, err := s.kv.Get(ctx, cartKey(customerID))
	if err != nil {
		return nil, apperrors.Network(err)
	}
	cart := &models.Cart{CustomerID: customerID}
	if !found {
		return cart, nil
	}
	if err := json.Unmarshal(raw, cart); err != nil {
		_ = s.kv.Remove(ctx, cartKey(customerID))
		return &models.Cart{CustomerID: customerID}, nil
	}
	cart.CustomerID = customerID
	return cart, nil
}

// Save writes the cart snapshot after every mutation.
func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return withRetry(ctx, func() error {
		return s.kv.Set(ctx, cartKey(cart.CustomerID), payload)
	})
}

// Clear drops the customer's cart entirely.
func (s *CartStore) Clear(ctx context.Context, customerID uint) error {
	return withRetry(ctx, func() error {
		return s.kv.Remove(ctx, cartKey(customerID))
	})
}
