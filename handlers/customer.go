package handlers

import (
	"net/http"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/statemachine"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// InlineAddress is a new delivery address entered on the checkout form.
type InlineAddress struct {
	Title     string `json:"title"`
	FullText  string `json:"full_text" binding:"required"`
	Area      string `json:"area"`
	City      string `json:"city"`
	Building  string `json:"building"`
	Floor     string `json:"floor"`
	Apartment string `json:"apartment"`
	Save      bool   `json:"save"` // keep on the profile for next time
}

type CheckoutRequest struct {
	AddressID     string         `json:"address_id"`
	Address       *InlineAddress `json:"address"`
	Instructions  string         `json:"instructions"`
	PaymentMethod string         `json:"payment_method" binding:"required,oneof=cash card"`
}

// Checkout converts the customer's cart into a pending order. The delivery
// address is resolved from a saved address id, an inline form, or the
// profile default, in that order.
func (a *App) Checkout(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	ctx := c.Request.Context()

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := a.DB.First(&user, customerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	address, err := a.resolveAddress(c, customerID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	order, err := a.Engine.CreateOrder(ctx,
		statemachine.CustomerInfo{ID: customerID, Name: user.Name, Phone: user.Phone},
		statemachine.CheckoutInput{
			Address:       address,
			Instructions:  req.Instructions,
			PaymentMethod: req.PaymentMethod,
		})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":            "Order placed successfully",
		"order":              order,
		"estimated_delivery": order.EstimatedDelivery,
	})
}

func (a *App) resolveAddress(c *gin.Context, customerID uint, req *CheckoutRequest) (string, error) {
	ctx := c.Request.Context()
	if req.AddressID != "" {
		profile, err := a.Profiles.Get(ctx, customerID)
		if err != nil {
			return "", err
		}
		saved := profile.FindAddress(req.AddressID)
		if saved == nil {
			return "", apperrors.NotFound("Address not found", "العنوان غير موجود")
		}
		return saved.Resolved(), nil
	}
	if req.Address != nil {
		addr := models.DeliveryAddress{
			Title:     req.Address.Title,
			FullText:  req.Address.FullText,
			Area:      req.Address.Area,
			City:      req.Address.City,
			Building:  req.Address.Building,
			Floor:     req.Address.Floor,
			Apartment: req.Address.Apartment,
		}
		if req.Address.Save {
			if _, err := a.Profiles.AddAddress(ctx, customerID, addr); err != nil {
				return "", err
			}
		}
		return addr.Resolved(), nil
	}
	profile, err := a.Profiles.Get(ctx, customerID)
	if err != nil {
		return "", err
	}
	if def := profile.DefaultAddress(); def != nil {
		return def.Resolved(), nil
	}
	return "", nil // the engine reports the missing field
}

// GetMyOrders returns the customer's order history, newest first
func (a *App) GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orders, err := a.Orders.ByCustomer(c.Request.Context(), customerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (a *App) GetOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	order, err := a.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"minutes_elapsed": int(time.Since(order.CreatedAt).Minutes()),
	})
}

// CancelOrder cancels a pending order
func (a *App) CancelOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	order, err := a.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	order, err = a.Engine.Cancel(c.Request.Context(), orderID, models.RoleCustomer, customerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// OrderQR renders a QR code pointing at the order tracking page
func (a *App) OrderQR(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	order, err := a.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	png, err := qrcode.Encode(a.BaseURL+"/track/"+order.ID, qrcode.Medium, 256)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
