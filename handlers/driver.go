package handlers

import (
	"net/http"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"

	"github.com/gin-gonic/gin"
)

// GetAvailableOrders shows ready orders that have no driver assigned,
// oldest first
func (a *App) GetAvailableOrders(c *gin.Context) {
	orders, err := a.Orders.ReadyUnassigned(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetActiveDelivery returns the driver's current order, if any. A driver
// carries at most one non-terminal order at a time.
func (a *App) GetActiveDelivery(c *gin.Context) {
	driverID := middleware.GetUserID(c)
	order, err := a.Orders.DriverActive(c.Request.Context(), driverID)
	if err != nil {
		fail(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "order": order})
}

// PickupOrder assigns the order to the driver and transitions ready → picked_up
func (a *App) PickupOrder(c *gin.Context) {
	driverID := middleware.GetUserID(c)
	order, err := a.Engine.Pickup(c.Request.Context(), c.Param("id"), driverID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Order picked up successfully",
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// DeliverOrder transitions picked_up → delivered and releases the driver
func (a *App) DeliverOrder(c *gin.Context) {
	driverID := middleware.GetUserID(c)
	order, err := a.Engine.Deliver(c.Request.Context(), c.Param("id"), driverID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Order delivered successfully",
		"order_id": order.ID,
		"status":   order.Status,
	})
}
