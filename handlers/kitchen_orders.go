package handlers

import (
	"net/http"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/statemachine"

	"github.com/gin-gonic/gin"
)

func (a *App) ownedRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	ownerID := middleware.GetUserID(c)
	var restaurant models.Restaurant
	if err := a.DB.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No restaurant found for your account"})
		return nil, false
	}
	return &restaurant, true
}

// GetKitchenQueue returns the restaurant's non-terminal orders with a
// per-status summary
func (a *App) GetKitchenQueue(c *gin.Context) {
	restaurant, ok := a.ownedRestaurant(c)
	if !ok {
		return
	}

	orders, err := a.Orders.ActiveByRestaurant(c.Request.Context(), restaurant.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if status := c.Query("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant":    restaurant.Name,
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// GetKitchenHistory returns every order ever placed at the restaurant
func (a *App) GetKitchenHistory(c *gin.Context) {
	restaurant, ok := a.ownedRestaurant(c)
	if !ok {
		return
	}
	orders, err := a.Orders.ByRestaurant(c.Request.Context(), restaurant.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// AdvanceOrder moves one of the restaurant's orders to its next status.
// The engine computes the next step; the kitchen never names a target state.
func (a *App) AdvanceOrder(c *gin.Context) {
	restaurant, ok := a.ownedRestaurant(c)
	if !ok {
		return
	}
	orderID := c.Param("id")

	order, err := a.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if order.RestaurantID != restaurant.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to your restaurant"})
		return
	}

	prev := order.Status
	order, err = a.Engine.Advance(c.Request.Context(), orderID, models.RoleKitchen, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated",
		"order_id":          order.ID,
		"previous_status":   prev,
		"current_status":    order.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// KitchenCancelOrder cancels one of the restaurant's pending orders
func (a *App) KitchenCancelOrder(c *gin.Context) {
	restaurant, ok := a.ownedRestaurant(c)
	if !ok {
		return
	}
	orderID := c.Param("id")

	order, err := a.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if order.RestaurantID != restaurant.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to your restaurant"})
		return
	}

	order, err = a.Engine.Cancel(c.Request.Context(), orderID, models.RoleKitchen, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}
