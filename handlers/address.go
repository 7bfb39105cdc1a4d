package handlers

import (
	"net/http"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
)

type AddAddressRequest struct {
	Title     string `json:"title" binding:"required"`
	FullText  string `json:"full_text" binding:"required"`
	Area      string `json:"area"`
	City      string `json:"city"`
	Building  string `json:"building"`
	Floor     string `json:"floor"`
	Apartment string `json:"apartment"`
	IsDefault bool   `json:"is_default"`
}

// ListAddresses returns the customer's saved delivery addresses
func (a *App) ListAddresses(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	profile, err := a.Profiles.Get(c.Request.Context(), customerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(profile.Addresses), "addresses": profile.Addresses})
}

// AddAddress saves a new delivery address on the profile
func (a *App) AddAddress(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := a.Profiles.AddAddress(c.Request.Context(), customerID, models.DeliveryAddress{
		Title:     req.Title,
		FullText:  req.FullText,
		Area:      req.Area,
		City:      req.City,
		Building:  req.Building,
		Floor:     req.Floor,
		Apartment: req.Apartment,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address saved", "address": saved})
}

// SetDefaultAddress marks one saved address as the default
func (a *App) SetDefaultAddress(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	if err := a.Profiles.SetDefault(c.Request.Context(), customerID, c.Param("addressId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}

// DeleteAddress removes a saved address
func (a *App) DeleteAddress(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	if err := a.Profiles.DeleteAddress(c.Request.Context(), customerID, c.Param("addressId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
