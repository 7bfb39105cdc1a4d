// Package cart implements the cart aggregator: menu selections accumulate
// into a pending order for one restaurant at a time, with every mutation
// written through to the key-value store.
package cart

import (
	"context"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/store"

	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	carts *store.CartStore
}

func NewService(db *gorm.DB, carts *store.CartStore) *Service {
	return &Service{db: db, carts: carts}
}

// Get returns the customer's current cart (possibly empty).
func (s *Service) Get(ctx context.Context, customerID uint) (*models.Cart, error) {
	return s.carts.Get(ctx, customerID)
}

// AddItem validates the menu item against the catalog and inserts or
// increments the matching cart line. The cart is persisted only after the
// mutation succeeds, so a rejected add leaves the stored snapshot untouched.
func (s *Service) AddItem(ctx context.Context, customerID, menuItemID uint, customizations string) (*models.Cart, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, menuItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Menu item not found", "الصنف غير موجود")
		}
		return nil, apperrors.Network(err)
	}
	if !item.IsAvailable {
		return nil, apperrors.ItemNotAvailable(item.Name)
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, item.RestaurantID).Error; err != nil {
		return nil, apperrors.NotFound("Restaurant not found", "المطعم غير موجود")
	}
	if !restaurant.IsOpen {
		return nil, apperrors.RestaurantClosed()
	}

	cart, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	line := models.CartLine{
		MenuItemID:     item.ID,
		Name:           item.Name,
		NameAr:         item.NameAr,
		UnitPrice:      item.Price,
		Quantity:       1,
		Customizations: customizations,
	}
	if err := cart.AddLine(item.RestaurantID, line); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// DecrementItem lowers a line's quantity by one, dropping the line at zero.
// Absent items are a no-op, not an error.
func (s *Service) DecrementItem(ctx context.Context, customerID, menuItemID uint) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	cart.Decrement(menuItemID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes a line outright.
func (s *Service) RemoveItem(ctx context.Context, customerID, menuItemID uint) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	cart.Remove(menuItemID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(ctx context.Context, customerID uint) error {
	return s.carts.Clear(ctx, customerID)
}
