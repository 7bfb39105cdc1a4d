package handlers

import (
	"net/http"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/statemachine"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns all restaurants (public)
func (a *App) ListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	query := a.DB

	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine LIKE ?", "%"+cuisine+"%")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ? OR name_ar LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if open := c.Query("open"); open == "true" {
		query = query.Where("is_open = ?", true)
	}

	query.Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant with its menu
func (a *App) GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := a.DB.Preload("MenuItems").First(&restaurant, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetMenu returns the menu for a specific restaurant (public)
func (a *App) GetMenu(c *gin.Context) {
	restaurantID := c.Param("id")
	var restaurant models.Restaurant
	if err := a.DB.First(&restaurant, restaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	var items []models.MenuItem
	query := a.DB.Where("restaurant_id = ?", restaurantID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if available := c.Query("available"); available == "true" {
		query = query.Where("is_available = ?", true)
	}
	query.Find(&items)

	c.JSON(http.StatusOK, gin.H{
		"restaurant":    restaurant.Name,
		"restaurant_ar": restaurant.NameAr,
		"count":         len(items),
		"menu":          items,
	})
}

// GetStateMachineInfo returns the full order state machine for informational purposes
func (a *App) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.AllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Order lifecycle: pending → confirmed → preparing → ready → picked_up → delivered, cancellable while pending",
	})
}
