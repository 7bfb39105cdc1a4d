package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/config"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/handlers"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/relay"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/routes"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	cfg := config.Load()
	config.InitDB(cfg.DBPath)

	// Cart and order records live behind the key-value contract: redis
	// when configured, the sqlite kv table otherwise.
	var kv kvstore.Store
	if cfg.RedisAddr != "" {
		kv = kvstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Println("Using redis key-value store at", cfg.RedisAddr)
	} else {
		kv = kvstore.NewGormStore(config.DB)
	}

	relayMgr := relay.NewManager(cfg.KafkaBrokers, cfg.KafkaTopic)
	relayMgr.Connect(context.Background())
	defer relayMgr.Disconnect()

	publisher := relay.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, relayMgr)
	defer publisher.Close()

	app := handlers.NewApp(config.DB, kv, relayMgr, publisher, cfg.PublicBaseURL)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "MomFood Cloud Kitchen API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the MomFood Cloud Kitchen API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "kitchen", "driver", "admin"},
		})
	})

	routes.SetupRoutes(r, app)

	log.Printf("Server running on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
