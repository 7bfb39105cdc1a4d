package config

import (
	"log"
	"os"
	"strings"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "momfood_super_secret_2024"))

// Config carries the environment-driven settings read at boot.
type Config struct {
	Port          string
	DBPath        string
	RedisAddr     string   // empty: use the sqlite-backed kv store
	KafkaBrokers  []string // empty: relay runs in loopback mode
	KafkaTopic    string
	PublicBaseURL string // used for order-tracking links and QR codes
}

func Load() Config {
	brokers := []string{}
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	return Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "momfood.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  brokers,
		KafkaTopic:    getEnv("KAFKA_TOPIC", "momfood.notifications"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB(path string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate the relational catalog plus the kv table
	err = DB.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&kvstore.Entry{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
}
