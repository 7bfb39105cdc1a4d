package routes

import (
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/handlers"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/middleware"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, app *handlers.App) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", app.Register)
		public.POST("/auth/login", app.Login)

		// Restaurants & menus (no auth needed)
		public.GET("/restaurants", app.ListRestaurants)
		public.GET("/restaurants/:id", app.GetRestaurant)
		public.GET("/restaurants/:id/menu", app.GetMenu)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", app.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", app.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		// Cart
		customer.GET("/cart", app.GetCart)
		customer.POST("/cart/items", app.AddCartItem)
		customer.PUT("/cart/items/:itemId/decrement", app.DecrementCartItem)
		customer.DELETE("/cart/items/:itemId", app.RemoveCartItem)
		customer.DELETE("/cart", app.ClearCart)

		// Saved addresses
		customer.GET("/addresses", app.ListAddresses)
		customer.POST("/addresses", app.AddAddress)
		customer.PUT("/addresses/:addressId/default", app.SetDefaultAddress)
		customer.DELETE("/addresses/:addressId", app.DeleteAddress)

		// Orders
		customer.POST("/orders", app.Checkout)
		customer.GET("/orders", app.GetMyOrders)
		customer.GET("/orders/:id", app.GetOrderDetail)
		customer.GET("/orders/:id/qr", app.OrderQR)
		customer.PUT("/orders/:id/cancel", app.CancelOrder)
	}

	// ── Kitchen routes ─────────────────────────────────────────────
	kitchen := r.Group("/api/kitchen")
	kitchen.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleKitchen))
	{
		// Restaurant management
		kitchen.POST("/restaurant", app.CreateRestaurant)
		kitchen.GET("/restaurant", app.GetMyRestaurant)
		kitchen.PUT("/restaurant", app.UpdateRestaurant)

		// Menu management
		kitchen.POST("/menu", app.AddMenuItem)
		kitchen.PUT("/menu/:itemId", app.UpdateMenuItem)
		kitchen.DELETE("/menu/:itemId", app.DeleteMenuItem)

		// Order queue
		kitchen.GET("/orders", app.GetKitchenQueue)
		kitchen.GET("/orders/history", app.GetKitchenHistory)
		kitchen.PUT("/orders/:id/advance", app.AdvanceOrder)
		kitchen.PUT("/orders/:id/cancel", app.KitchenCancelOrder)
	}

	// ── Driver routes ──────────────────────────────────────────────
	driver := r.Group("/api/driver")
	driver.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/orders/available", app.GetAvailableOrders)
		driver.GET("/orders/active", app.GetActiveDelivery)
		driver.PUT("/orders/:id/pickup", app.PickupOrder)
		driver.PUT("/orders/:id/deliver", app.DeliverOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", app.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", app.AdminForceOrderStatus)
		admin.GET("/users", app.AdminGetAllUsers)
		admin.GET("/restaurants", app.AdminGetAllRestaurants)
	}
}
