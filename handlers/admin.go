package handlers

import (
	"net/http"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns all orders with full detail — admin only
func (a *App) AdminGetAllOrders(c *gin.Context) {
	orders, err := a.Orders.All(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	status := c.Query("status")
	filtered := orders[:0]
	for _, o := range orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		filtered = append(filtered, o)
	}
	orders = filtered

	// Dashboard aggregates: count per status, revenue over delivered orders
	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Total + o.DeliveryFee
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminGetAllUsers returns all users — admin only
func (a *App) AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := a.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminGetAllRestaurants returns all restaurants — admin only
func (a *App) AdminGetAllRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	a.DB.Preload("Owner").Preload("MenuItems").Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// AdminForceOrderStatus lets admin override any order state (emergency use).
// It bypasses the transition chain but still records the audit entry.
func (a *App) AdminForceOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + string(req.Status)})
		return
	}

	order, err := a.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	prev := order.Status
	order.Status = req.Status
	order.History = append(order.History, models.StatusChange{
		From:    prev,
		To:      req.Status,
		Actor:   models.RoleAdmin,
		ActorID: middleware.GetUserID(c),
		Note:    "[ADMIN OVERRIDE] " + req.Reason,
		At:      time.Now(),
	})
	if err := a.Orders.Update(c.Request.Context(), order); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status force-updated by admin",
		"order_id":        order.ID,
		"previous_status": prev,
		"new_status":      req.Status,
	})
}
