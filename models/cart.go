package models

import (
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
)

// Cart is a customer's in-progress selection, stored as JSON under
// "cart:<customer_id>". All lines belong to a single restaurant.
type Cart struct {
	CustomerID   uint       `json:"customer_id"`
	RestaurantID uint       `json:"restaurant_id"`
	Lines        []CartLine `json:"lines"`
}

// CartLine holds a snapshot of a menu item plus the chosen quantity.
type CartLine struct {
	MenuItemID     uint    `json:"menu_item_id"`
	Name           string  `json:"name"`
	NameAr         string  `json:"name_ar"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int     `json:"quantity"`
	Customizations string  `json:"customizations,omitempty"`
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Total recomputes the cart value on every read; it is never stored.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// AddLine inserts a new line with quantity 1, or increments the quantity of
// an existing line with the same menu item id. Adding from a different
// restaurant than the cart's current one fails without touching the cart.
func (c *Cart) AddLine(restaurantID uint, line CartLine) error {
	if !c.Empty() && c.RestaurantID != restaurantID {
		return apperrors.CrossRestaurant()
	}
	c.RestaurantID = restaurantID
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == line.MenuItemID {
			c.Lines[i].Quantity++
			return nil
		}
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// Decrement reduces a line's quantity by one, removing the line when it
// reaches zero. Absent items are a no-op.
func (c *Cart) Decrement(menuItemID uint) {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID {
			c.Lines[i].Quantity--
			if c.Lines[i].Quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			}
			break
		}
	}
	if c.Empty() {
		c.RestaurantID = 0
	}
}

// Remove deletes a line outright regardless of quantity.
func (c *Cart) Remove(menuItemID uint) {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			break
		}
	}
	if c.Empty() {
		c.RestaurantID = 0
	}
}

// ClearLines empties the cart unconditionally.
func (c *Cart) ClearLines() {
	c.Lines = nil
	c.RestaurantID = 0
}
