package models

import "time"

type Restaurant struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	OwnerID       uint    `json:"owner_id" gorm:"not null"`
	Owner         User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name          string  `json:"name" gorm:"not null"`
	NameAr        string  `json:"name_ar"`
	Cuisine       string  `json:"cuisine"`
	Address       string  `json:"address"`
	Description   string  `json:"description"`
	DescriptionAr string  `json:"description_ar"`
	IsOpen        bool    `json:"is_open" gorm:"default:true"`
	Rating        float64 `json:"rating" gorm:"default:0"`
	DeliveryFee   float64 `json:"delivery_fee" gorm:"default:0"`
	MinOrder      float64 `json:"min_order_amount" gorm:"default:0"`
	// MaxActiveOrders caps the kitchen's concurrent non-terminal orders.
	// Zero means unlimited.
	MaxActiveOrders int        `json:"max_active_orders" gorm:"default:0"`
	MenuItems       []MenuItem `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type MenuItem struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	RestaurantID  uint      `json:"restaurant_id" gorm:"not null"`
	Name          string    `json:"name" gorm:"not null"`
	NameAr        string    `json:"name_ar"`
	Description   string    `json:"description"`
	DescriptionAr string    `json:"description_ar"`
	Price         float64   `json:"price" gorm:"not null"`
	Category      string    `json:"category"`
	IsAvailable   bool      `json:"is_available" gorm:"default:true"`
	PrepMinutes   int       `json:"prep_minutes" gorm:"default:10"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
