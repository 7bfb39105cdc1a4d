package handlers

import (
	"net/http"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
)

// ── Restaurant Management ────────────────────────────────────────────────────

type CreateRestaurantRequest struct {
	Name            string  `json:"name" binding:"required"`
	NameAr          string  `json:"name_ar"`
	Cuisine         string  `json:"cuisine"`
	Address         string  `json:"address" binding:"required"`
	Description     string  `json:"description"`
	DescriptionAr   string  `json:"description_ar"`
	DeliveryFee     float64 `json:"delivery_fee" binding:"gte=0"`
	MinOrder        float64 `json:"min_order_amount" binding:"gte=0"`
	MaxActiveOrders int     `json:"max_active_orders" binding:"gte=0"`
}

// CreateRestaurant lets a kitchen-role user create their restaurant
func (a *App) CreateRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restaurant := models.Restaurant{
		OwnerID:         ownerID,
		Name:            req.Name,
		NameAr:          req.NameAr,
		Cuisine:         req.Cuisine,
		Address:         req.Address,
		Description:     req.Description,
		DescriptionAr:   req.DescriptionAr,
		DeliveryFee:     req.DeliveryFee,
		MinOrder:        req.MinOrder,
		MaxActiveOrders: req.MaxActiveOrders,
		IsOpen:          true,
	}
	if err := a.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restaurant"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// GetMyRestaurant fetches the restaurant owned by the logged-in user
func (a *App) GetMyRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := a.DB.Preload("MenuItems").Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No restaurant found for your account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// UpdateRestaurant updates restaurant details
func (a *App) UpdateRestaurant(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := a.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Only allow safe fields
	allowed := map[string]bool{
		"name": true, "name_ar": true, "cuisine": true, "address": true,
		"description": true, "description_ar": true, "is_open": true,
		"delivery_fee": true, "min_order_amount": true, "max_active_orders": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	a.DB.Model(&restaurant).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

// ── Menu Management ─────────────────────────────────────────────────────────

type CreateMenuItemRequest struct {
	Name          string  `json:"name" binding:"required"`
	NameAr        string  `json:"name_ar"`
	Description   string  `json:"description"`
	DescriptionAr string  `json:"description_ar"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	Category      string  `json:"category"`
	PrepMinutes   int     `json:"prep_minutes" binding:"gte=0"`
}

// AddMenuItem adds a new item to the restaurant's menu
func (a *App) AddMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := a.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Create a restaurant first before adding menu items"})
		return
	}

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.MenuItem{
		RestaurantID:  restaurant.ID,
		Name:          req.Name,
		NameAr:        req.NameAr,
		Description:   req.Description,
		DescriptionAr: req.DescriptionAr,
		Price:         req.Price,
		Category:      req.Category,
		PrepMinutes:   req.PrepMinutes,
		IsAvailable:   true,
	}
	if err := a.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem updates a menu item (only by the owner)
func (a *App) UpdateMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	itemID := c.Param("itemId")

	var item models.MenuItem
	if err := a.DB.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	var restaurant models.Restaurant
	if err := a.DB.Where("id = ? AND owner_id = ?", item.RestaurantID, ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this menu item"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	allowed := map[string]bool{
		"name": true, "name_ar": true, "description": true, "description_ar": true,
		"price": true, "category": true, "is_available": true, "prep_minutes": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	a.DB.Model(&item).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem removes a menu item. Placed orders are unaffected: order
// lines carry their own name/price snapshots.
func (a *App) DeleteMenuItem(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	itemID := c.Param("itemId")

	var item models.MenuItem
	if err := a.DB.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	var restaurant models.Restaurant
	if err := a.DB.Where("id = ? AND owner_id = ?", item.RestaurantID, ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this menu item"})
		return
	}
	a.DB.Delete(&item)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
