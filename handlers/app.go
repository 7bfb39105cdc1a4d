package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/cart"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/kvstore"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/relay"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/statemachine"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App bundles the injected collaborators every handler needs. Nothing in
// this package reaches for globals beyond the config secrets.
type App struct {
	DB       *gorm.DB
	Orders   *store.OrderStore
	Carts    *store.CartStore
	Profiles *store.ProfileStore
	Cart     *cart.Service
	Engine   *statemachine.Engine
	Relay    *relay.Manager
	BaseURL  string
}

func NewApp(db *gorm.DB, kv kvstore.Store, relayMgr *relay.Manager, publisher *relay.Publisher, baseURL string) *App {
	orders := store.NewOrderStore(kv)
	carts := store.NewCartStore(kv)
	return &App{
		DB:       db,
		Orders:   orders,
		Carts:    carts,
		Profiles: store.NewProfileStore(kv),
		Cart:     cart.NewService(db, carts),
		Engine:   statemachine.NewEngine(db, orders, carts, publisher),
		Relay:    relayMgr,
		BaseURL:  baseURL,
	}
}

// lang picks the response language from ?lang= or Accept-Language; Arabic
// is the app's first language.
func lang(c *gin.Context) string {
	if l := c.Query("lang"); l == "ar" || l == "en" {
		return l
	}
	if strings.HasPrefix(c.GetHeader("Accept-Language"), "en") {
		return "en"
	}
	return "ar"
}

// fail renders any error as a localized JSON body. Unclassified errors
// become a generic recoverable failure, never a silent one.
func fail(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body := gin.H{
			"error":      appErr.Localized(lang(c)),
			"code":       appErr.Code,
			"message":    appErr.MessageEN,
			"message_ar": appErr.MessageAR,
		}
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
		if appErr.CurrentStatus != "" {
			body["current_status"] = appErr.CurrentStatus
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}
	log.Printf("handlers: unclassified error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Something went wrong. Please try again.",
		"code":  "INTERNAL",
	})
}
