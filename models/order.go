package models

import "time"

// OrderStatus represents all possible states of a food delivery order.
// Orders move along a strict linear chain; "cancelled" is reachable only
// from "pending".
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusPickedUp, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is the canonical order record, stored as JSON in the key-value
// store under "order:<id>". The item list is immutable after creation;
// only Status, DriverID, Version, History and UpdatedAt mutate.
type Order struct {
	ID                string        `json:"id"`
	CustomerID        uint          `json:"customer_id"`
	CustomerName      string        `json:"customer_name"`
	CustomerPhone     string        `json:"customer_phone"`
	RestaurantID      uint          `json:"restaurant_id"`
	RestaurantName    string        `json:"restaurant_name"`
	RestaurantNameAr  string        `json:"restaurant_name_ar"`
	Lines             []OrderLine   `json:"lines"`
	Status            OrderStatus   `json:"status"`
	Total             float64       `json:"total"`
	DeliveryFee       float64       `json:"delivery_fee"`
	DeliveryAddress   string        `json:"delivery_address"`
	Instructions      string        `json:"instructions,omitempty"`
	PaymentMethod     string        `json:"payment_method"`
	DriverID          *uint         `json:"driver_id,omitempty"`
	Version           int           `json:"version"` // bumped on every write; stale writes are rejected
	History           []StatusChange `json:"history,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
}

// OrderLine is a snapshot of a menu item at checkout time. Name and unit
// price are copied so later menu edits never rewrite placed orders.
type OrderLine struct {
	MenuItemID     uint    `json:"menu_item_id"`
	Name           string  `json:"name"`
	NameAr         string  `json:"name_ar"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	Customizations string  `json:"customizations,omitempty"`
}

// Subtotal is the line's contribution to the order total.
func (l OrderLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// LinesTotal recomputes the sum of line subtotals. The stored Total must
// always equal this value.
func (o *Order) LinesTotal() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.Subtotal()
	}
	return total
}

// StatusChange is one entry in an order's audit trail.
type StatusChange struct {
	From    OrderStatus `json:"from,omitempty"`
	To      OrderStatus `json:"to"`
	Actor   UserRole    `json:"actor"`
	ActorID uint        `json:"actor_id"`
	Note    string      `json:"note,omitempty"`
	At      time.Time   `json:"at"`
}
