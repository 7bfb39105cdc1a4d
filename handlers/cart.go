package handlers

import (
	"net/http"
	"strconv"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
)

type AddCartItemRequest struct {
	MenuItemID     uint   `json:"menu_item_id" binding:"required"`
	Customizations string `json:"customizations"`
}

func cartBody(cart *models.Cart) gin.H {
	return gin.H{
		"cart":  cart,
		"total": cart.Total(),
	}
}

// GetCart returns the customer's current cart with its recomputed total
func (a *App) GetCart(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	cart, err := a.Cart.Get(c.Request.Context(), customerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// AddCartItem adds a menu item to the cart or bumps its quantity
func (a *App) AddCartItem(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := a.Cart.AddItem(c.Request.Context(), customerID, req.MenuItemID, req.Customizations)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// DecrementCartItem lowers an item's quantity by one
func (a *App) DecrementCartItem(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}
	cart, err := a.Cart.DecrementItem(c.Request.Context(), customerID, uint(itemID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// RemoveCartItem deletes an item line regardless of quantity
func (a *App) RemoveCartItem(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}
	cart, err := a.Cart.RemoveItem(c.Request.Context(), customerID, uint(itemID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// ClearCart empties the cart
func (a *App) ClearCart(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	if err := a.Cart.Clear(c.Request.Context(), customerID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
